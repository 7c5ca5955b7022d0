package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrEdgeNotFound = errors.New("friend edge not found")

// FriendRepository abstracts friend edge persistence. An edge between two
// users may exist in either (requester, target) ordering; readers always
// check both.
type FriendRepository interface {
	GetEdge(ctx context.Context, userA, userB string) (models.FriendEdge, error)
	CreateEdge(ctx context.Context, requester, target string, at time.Time) error
	AcceptEdge(ctx context.Context, requester, target string) error
	DeleteEdge(ctx context.Context, userA, userB string) error
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	ListFriends(ctx context.Context, username string) ([]models.UserProfile, error)
	ListPending(ctx context.Context, username string) ([]models.FriendEdge, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// GetEdge fetches the edge between the unordered pair, if any.
func (r *FriendRepo) GetEdge(ctx context.Context, userA, userB string) (models.FriendEdge, error) {
	var edge models.FriendEdge
	err := r.db.GetContext(ctx, &edge, `SELECT requester, target, status, created_at FROM friend_requests
        WHERE (requester=$1 AND target=$2) OR (requester=$2 AND target=$1)`, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendEdge{}, ErrEdgeNotFound
	}
	return edge, err
}

// CreateEdge inserts a pending edge.
func (r *FriendRepo) CreateEdge(ctx context.Context, requester, target string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO friend_requests (requester, target, status, created_at)
        VALUES ($1, $2, $3, $4)`, requester, target, models.FriendPending, at)
	return err
}

// AcceptEdge flips a pending edge to accepted.
func (r *FriendRepo) AcceptEdge(ctx context.Context, requester, target string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE friend_requests SET status=$3
        WHERE requester=$1 AND target=$2 AND status=$4`,
		requester, target, models.FriendAccepted, models.FriendPending)
	if err != nil {
		return err
	}
	return requireRow(res, ErrEdgeNotFound)
}

// DeleteEdge removes the edge between the unordered pair.
func (r *FriendRepo) DeleteEdge(ctx context.Context, userA, userB string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friend_requests
        WHERE (requester=$1 AND target=$2) OR (requester=$2 AND target=$1)`, userA, userB)
	if err != nil {
		return err
	}
	return requireRow(res, ErrEdgeNotFound)
}

// AreFriends reports whether an accepted edge exists in either ordering.
func (r *FriendRepo) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friend_requests
        WHERE status=$3 AND ((requester=$1 AND target=$2) OR (requester=$2 AND target=$1)))`,
		userA, userB, models.FriendAccepted)
	return exists, err
}

// ListFriends returns the public profiles of all accepted friends.
func (r *FriendRepo) ListFriends(ctx context.Context, username string) ([]models.UserProfile, error) {
	var rows []struct {
		Username    string `db:"username"`
		DisplayName string `db:"display_name"`
		Avatar      string `db:"avatar"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT u.username, u.display_name, u.avatar
        FROM friend_requests fr
        INNER JOIN users u ON u.username = CASE WHEN fr.requester=$1 THEN fr.target ELSE fr.requester END
        WHERE fr.status=$2 AND (fr.requester=$1 OR fr.target=$1)
        ORDER BY u.username`, username, models.FriendAccepted)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.UserProfile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, models.UserProfile{Username: row.Username, DisplayName: row.DisplayName, Avatar: row.Avatar})
	}
	return profiles, nil
}

// ListPending returns requests awaiting the user's response.
func (r *FriendRepo) ListPending(ctx context.Context, username string) ([]models.FriendEdge, error) {
	var edges []models.FriendEdge
	err := r.db.SelectContext(ctx, &edges, `SELECT requester, target, status, created_at FROM friend_requests
        WHERE target=$1 AND status=$2 ORDER BY created_at ASC`, username, models.FriendPending)
	return edges, err
}
