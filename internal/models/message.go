package models

import "time"

// MessageKind is the payload type of a message. Attachment messages carry
// the attachment type ("image", "file", ...) as their kind.
type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindSystem MessageKind = "system"
)

// Message is a message on a group timeline. Once Deleted is set the content
// is cleared and no further edits are accepted.
type Message struct {
	ID             string      `db:"id" json:"id"`
	GroupID        string      `db:"group_id" json:"groupId"`
	Sender         string      `db:"sender" json:"sender"`
	Content        string      `db:"content" json:"content"`
	Kind           MessageKind `db:"kind" json:"kind"`
	ReplyTo        *string     `db:"reply_to" json:"replyTo,omitempty"`
	ReplyPreview   *string     `db:"reply_preview" json:"replyPreview,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	Edited         bool        `db:"edited" json:"edited"`
	Deleted        bool        `db:"deleted" json:"deleted"`
	AttachmentURL  string      `db:"attachment_url" json:"attachmentUrl,omitempty"`
	AttachmentType string      `db:"attachment_type" json:"attachmentType,omitempty"`
}

// MessageView is a message enriched with its aggregate receipt state.
type MessageView struct {
	Message
	ReceivedBy []string `json:"receivedBy"`
	ReadBy     []string `json:"readBy"`
	Read       bool     `json:"read"`
}
