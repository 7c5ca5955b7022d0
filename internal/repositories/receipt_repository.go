package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// ReceiptRepository abstracts per-(message,user) delivery/read state. All
// writes are COALESCE upserts so a set timestamp never regresses and never
// moves backwards, which makes every acknowledgement idempotent.
type ReceiptRepository interface {
	InsertSelfReceipt(ctx context.Context, messageID, username string, at time.Time) error
	MarkReceived(ctx context.Context, messageID, username string, at time.Time) error
	MarkGroupRead(ctx context.Context, groupID, username string, at time.Time) error
	ListGroupReceipts(ctx context.Context, groupID string) ([]models.Receipt, error)
}

// ReceiptRepo is a sqlx implementation of ReceiptRepository.
type ReceiptRepo struct {
	db *sqlx.DB
}

// NewReceiptRepo constructs a ReceiptRepo.
func NewReceiptRepo(db *sqlx.DB) *ReceiptRepo {
	return &ReceiptRepo{db: db}
}

// InsertSelfReceipt records the author's own receipt at send time with both
// timestamps set.
func (r *ReceiptRepo) InsertSelfReceipt(ctx context.Context, messageID, username string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_receipts (message_id, username, received_at, read_at)
        VALUES ($1, $2, $3, $3)
        ON CONFLICT (message_id, username) DO UPDATE SET
            received_at = COALESCE(message_receipts.received_at, EXCLUDED.received_at),
            read_at = COALESCE(message_receipts.read_at, EXCLUDED.read_at)`,
		messageID, username, at)
	return err
}

// MarkReceived sets received_at if absent.
func (r *ReceiptRepo) MarkReceived(ctx context.Context, messageID, username string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_receipts (message_id, username, received_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (message_id, username) DO UPDATE SET
            received_at = COALESCE(message_receipts.received_at, EXCLUDED.received_at)`,
		messageID, username, at)
	return err
}

// MarkGroupRead is the bulk read acknowledgement: every non-system message
// in the group that the user has not read yet gets read_at, implicitly also
// received_at since reading implies having received.
func (r *ReceiptRepo) MarkGroupRead(ctx context.Context, groupID, username string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_receipts (message_id, username, received_at, read_at)
        SELECT m.id, $2, $3, $3 FROM messages m WHERE m.group_id=$1 AND m.kind <> 'system'
        ON CONFLICT (message_id, username) DO UPDATE SET
            received_at = COALESCE(message_receipts.received_at, EXCLUDED.received_at),
            read_at = COALESCE(message_receipts.read_at, EXCLUDED.read_at)`,
		groupID, username, at)
	return err
}

// ListGroupReceipts returns every receipt row for the group's messages.
func (r *ReceiptRepo) ListGroupReceipts(ctx context.Context, groupID string) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.SelectContext(ctx, &receipts, `SELECT mr.message_id, mr.username, mr.received_at, mr.read_at
        FROM message_receipts mr
        INNER JOIN messages m ON m.id = mr.message_id
        WHERE m.group_id=$1`, groupID)
	return receipts, err
}
