package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository abstracts message persistence.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.Message) error
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
	ListGroupMessages(ctx context.Context, groupID string) ([]models.Message, error)
	UpdateContent(ctx context.Context, messageID, content string) error
	MarkDeleted(ctx context.Context, messageID string) error
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message row.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.Message) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages
        (id, group_id, sender, content, kind, reply_to, reply_preview, created_at, edited, deleted, attachment_url, attachment_type)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		msg.ID, msg.GroupID, msg.Sender, msg.Content, msg.Kind, msg.ReplyTo, msg.ReplyPreview,
		msg.CreatedAt, msg.Edited, msg.Deleted, msg.AttachmentURL, msg.AttachmentType)
	return err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT id, group_id, sender, content, kind, reply_to, reply_preview, created_at, edited, deleted, attachment_url, attachment_type
        FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListGroupMessages returns the group timeline in insertion order.
func (r *MessageRepo) ListGroupMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, group_id, sender, content, kind, reply_to, reply_preview, created_at, edited, deleted, attachment_url, attachment_type
        FROM messages WHERE group_id=$1 ORDER BY created_at ASC`, groupID)
	return msgs, err
}

// UpdateContent replaces the body and marks the message edited.
func (r *MessageRepo) UpdateContent(ctx context.Context, messageID, content string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET content=$2, edited=TRUE WHERE id=$1`, messageID, content)
	if err != nil {
		return err
	}
	return requireRow(res, ErrMessageNotFound)
}

// MarkDeleted tombstones the message and clears the body.
func (r *MessageRepo) MarkDeleted(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET deleted=TRUE, content='' WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrMessageNotFound)
}
