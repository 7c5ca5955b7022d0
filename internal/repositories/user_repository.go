package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user profile persistence.
type UserRepository interface {
	EnsureUser(ctx context.Context, username string) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
	UpdateSettings(ctx context.Context, username string, upd models.SettingsUpdate) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureUser inserts the profile row on first authenticated contact and
// returns the current row either way.
func (r *UserRepo) EnsureUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (username, display_name)
        VALUES ($1, $1)
        ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
        RETURNING username, display_name, avatar, theme, invisible, created_at`, username).
		StructScan(&user)
	return user, err
}

// GetUser fetches a single user.
func (r *UserRepo) GetUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT username, display_name, avatar, theme, invisible, created_at FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateSettings applies a partial settings change and returns the new row.
func (r *UserRepo) UpdateSettings(ctx context.Context, username string, upd models.SettingsUpdate) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET
            display_name = COALESCE($2, display_name),
            avatar = COALESCE($3, avatar),
            theme = COALESCE($4, theme),
            invisible = COALESCE($5, invisible)
        WHERE username=$1
        RETURNING username, display_name, avatar, theme, invisible, created_at`,
		username, upd.DisplayName, upd.Avatar, upd.Theme, upd.Invisible).
		StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
