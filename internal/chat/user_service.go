package chat

import (
	"context"
	"errors"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// UserService applies settings updates and routes their side effects: a
// visibility flip goes through the presence broadcaster, a public profile
// change is pushed to friends.
type UserService struct {
	users    repositories.UserRepository
	friends  repositories.FriendRepository
	gateway  Gateway
	presence PresenceNotifier
}

// NewUserService constructs a UserService.
func NewUserService(users repositories.UserRepository, friends repositories.FriendRepository, gateway Gateway, presence PresenceNotifier) *UserService {
	return &UserService{users: users, friends: friends, gateway: gateway, presence: presence}
}

// Get returns the user's own record.
func (s *UserService) Get(ctx context.Context, username string) (models.User, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateSettings applies a partial settings change.
func (s *UserService) UpdateSettings(ctx context.Context, username string, upd models.SettingsUpdate) (models.User, error) {
	before, err := s.Get(ctx, username)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.UpdateSettings(ctx, username, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	if user.Invisible != before.Invisible {
		s.presence.VisibilityChanged(username, user.Invisible)
	}

	if user.DisplayName != before.DisplayName || user.Avatar != before.Avatar {
		profile := user.Profile()
		friends, err := s.friends.ListFriends(ctx, username)
		if err != nil {
			return user, err
		}
		for _, friend := range friends {
			s.gateway.SendTo(friend.Username, models.ProfileUpdateEvent{Type: models.EventProfileUpdate, Username: username, User: profile})
		}
	}

	return user, nil
}
