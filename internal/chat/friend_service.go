package chat

import (
	"context"
	"errors"
	"time"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// FriendService runs the relationship state machine: none -> pending
// (directional) -> accepted (symmetric) or back to none. At most one edge
// exists per unordered pair at any time.
type FriendService struct {
	friends repositories.FriendRepository
	users   repositories.UserRepository
	gateway Gateway
}

// NewFriendService constructs a FriendService.
func NewFriendService(friends repositories.FriendRepository, users repositories.UserRepository, gateway Gateway) *FriendService {
	return &FriendService{friends: friends, users: users, gateway: gateway}
}

// Request creates a pending edge from one user to another and notifies the
// target. Rejected when the users are the same, either is unknown, or an
// edge already exists in any state or ordering.
func (s *FriendService) Request(ctx context.Context, from, to string) error {
	if from == to {
		return ErrInvalidState
	}
	for _, user := range []string{from, to} {
		if _, err := s.users.GetUser(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrNotFound
			}
			return err
		}
	}
	if _, err := s.friends.GetEdge(ctx, from, to); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, repositories.ErrEdgeNotFound) {
		return err
	}

	now := time.Now().UTC()
	if err := s.friends.CreateEdge(ctx, from, to, now); err != nil {
		return err
	}
	s.gateway.SendTo(to, models.FriendRequestEvent{Type: models.EventFriendRequest, From: from, Timestamp: now})
	return nil
}

// Respond accepts or denies the pending request from the named requester.
// Accepting makes the edge symmetric and hands both parties each other's
// public profile; denying removes the edge.
func (s *FriendService) Respond(ctx context.Context, user, from string, accept bool) error {
	edge, err := s.friends.GetEdge(ctx, from, user)
	if err != nil {
		if errors.Is(err, repositories.ErrEdgeNotFound) {
			return ErrNotFound
		}
		return err
	}
	// Only the target of a still-pending request may respond.
	if edge.Status != models.FriendPending || edge.Requester != from || edge.Target != user {
		return ErrInvalidState
	}

	if !accept {
		return s.friends.DeleteEdge(ctx, from, user)
	}

	if err := s.friends.AcceptEdge(ctx, from, user); err != nil {
		if errors.Is(err, repositories.ErrEdgeNotFound) {
			return ErrInvalidState
		}
		return err
	}

	requester, err := s.users.GetUser(ctx, from)
	if err != nil {
		return err
	}
	accepter, err := s.users.GetUser(ctx, user)
	if err != nil {
		return err
	}
	s.gateway.SendTo(from, models.FriendAcceptedEvent{Type: models.EventFriendAccepted, User: accepter.Profile()})
	s.gateway.SendTo(user, models.FriendAcceptedEvent{Type: models.EventFriendAccepted, User: requester.Profile()})
	return nil
}

// Remove deletes the edge between the pair regardless of direction or state
// and notifies both parties so they drop cached friendship state.
func (s *FriendService) Remove(ctx context.Context, user, target string) error {
	if err := s.friends.DeleteEdge(ctx, user, target); err != nil {
		if errors.Is(err, repositories.ErrEdgeNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.gateway.SendTo(user, models.FriendRemovedEvent{Type: models.EventFriendRemoved, Username: target})
	s.gateway.SendTo(target, models.FriendRemovedEvent{Type: models.EventFriendRemoved, Username: user})
	return nil
}

// Friends returns the public profiles of the user's accepted friends.
func (s *FriendService) Friends(ctx context.Context, user string) ([]models.UserProfile, error) {
	return s.friends.ListFriends(ctx, user)
}

// Pending returns requests awaiting the user's response.
func (s *FriendService) Pending(ctx context.Context, user string) ([]models.FriendEdge, error) {
	return s.friends.ListPending(ctx, user)
}
