package models

import "time"

// Receipt records delivery and read acknowledgement of one message by one
// user. The author's own receipt is inserted at send time with both
// timestamps set. A set timestamp never regresses.
type Receipt struct {
	MessageID  string     `db:"message_id" json:"messageId"`
	Username   string     `db:"username" json:"username"`
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`
	ReadAt     *time.Time `db:"read_at" json:"readAt,omitempty"`
}
