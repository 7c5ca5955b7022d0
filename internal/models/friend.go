package models

import "time"

// FriendStatus is the state of a friend edge.
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
)

// FriendEdge is the single relationship row between two users. At most one
// edge exists per unordered pair; direction only matters while pending.
type FriendEdge struct {
	Requester string       `db:"requester" json:"requester"`
	Target    string       `db:"target" json:"target"`
	Status    FriendStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}
