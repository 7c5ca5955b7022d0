package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// GroupService enforces every structural group mutation: create, join,
// invite, kick, promote/demote, leave, mute, delete and identifier reset.
// Role hierarchy: the owner outranks admins, admins outrank members, and
// only a strictly higher rank may restrict (kick/mute/demote) a target.
type GroupService struct {
	groups   repositories.GroupRepository
	users    repositories.UserRepository
	friends  repositories.FriendRepository
	messages *MessageService
	gateway  Gateway
}

// NewGroupService constructs a GroupService.
func NewGroupService(groups repositories.GroupRepository, users repositories.UserRepository, friends repositories.FriendRepository, messages *MessageService, gateway Gateway) *GroupService {
	return &GroupService{groups: groups, users: users, friends: friends, messages: messages, gateway: gateway}
}

// Create allocates a new group owned by the creator. Direct groups are
// idempotent: creating a second direct chat between the same two users
// returns the existing group.
func (s *GroupService) Create(ctx context.Context, owner, name string, kind models.GroupKind, members []string) (models.Group, error) {
	if kind == models.GroupKindDirect {
		if len(members) != 1 || members[0] == owner {
			return models.Group{}, ErrInvalidState
		}
		existing, err := s.groups.FindDirectGroup(ctx, owner, members[0])
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repositories.ErrGroupNotFound) {
			return models.Group{}, err
		}
	}

	for _, member := range members {
		if _, err := s.users.GetUser(ctx, member); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return models.Group{}, ErrNotFound
			}
			return models.Group{}, err
		}
	}

	now := time.Now().UTC()
	group := models.Group{
		ID:           uuid.NewString(),
		Name:         name,
		Kind:         kind,
		Owner:        owner,
		InvitePolicy: models.InviteAdminOnly,
		CreatedAt:    now,
	}

	rows := make([]models.Member, 0, len(members)+1)
	rows = append(rows, models.Member{GroupID: group.ID, Username: owner, IsAdmin: true, JoinedAt: now})
	for _, member := range members {
		rows = append(rows, models.Member{GroupID: group.ID, Username: member, JoinedAt: now})
	}

	if err := s.groups.CreateGroup(ctx, group, rows); err != nil {
		return models.Group{}, err
	}
	for _, member := range members {
		s.gateway.SendTo(member, models.GroupAddedEvent{Type: models.EventGroupAdded, GroupID: group.ID})
	}
	return group, nil
}

// Join is permissionless: any holder of a valid group identifier may
// self-join. Used for shareable invite links.
func (s *GroupService) Join(ctx context.Context, user, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Kind == models.GroupKindDirect {
		return ErrInvalidState
	}
	if _, err := s.groups.GetMember(ctx, groupID, user); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, repositories.ErrMemberNotFound) {
		return err
	}

	if err := s.groups.AddMember(ctx, models.Member{GroupID: groupID, Username: user, JoinedAt: time.Now().UTC()}); err != nil {
		return err
	}
	s.gateway.SendTo(user, models.GroupAddedEvent{Type: models.EventGroupAdded, GroupID: groupID})
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s joined the group", user))
}

// Invite adds a friend of the requester subject to the group invite policy.
func (s *GroupService) Invite(ctx context.Context, requester, target, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Kind == models.GroupKindDirect {
		return ErrInvalidState
	}
	member, err := s.requireMember(ctx, groupID, requester)
	if err != nil {
		return err
	}
	if _, err := s.users.GetUser(ctx, target); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.groups.GetMember(ctx, groupID, target); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, repositories.ErrMemberNotFound) {
		return err
	}

	friends, err := s.friends.AreFriends(ctx, requester, target)
	if err != nil {
		return err
	}
	if !friends {
		return ErrPermissionDenied
	}
	if group.InvitePolicy == models.InviteAdminOnly && group.Owner != requester && !member.IsAdmin {
		return ErrPermissionDenied
	}

	if err := s.groups.AddMember(ctx, models.Member{GroupID: groupID, Username: target, JoinedAt: time.Now().UTC()}); err != nil {
		return err
	}
	s.gateway.SendTo(target, models.GroupAddedEvent{Type: models.EventGroupAdded, GroupID: groupID})
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s added %s", requester, target))
}

// Kick removes a member. Owner and admins may kick; admins may not kick
// other admins or the owner.
func (s *GroupService) Kick(ctx context.Context, requester, target, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireRestrictRank(ctx, group, requester, target); err != nil {
		return err
	}

	if err := s.groups.RemoveMember(ctx, groupID, target); err != nil {
		return err
	}
	if err := s.groups.Unpin(ctx, target, groupID); err != nil {
		return err
	}
	s.gateway.SendTo(target, models.GroupRemovedEvent{Type: models.EventGroupRemoved, GroupID: groupID})
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s was removed by %s", target, requester))
}

// SetAdmin promotes or demotes a member. Owner only.
func (s *GroupService) SetAdmin(ctx context.Context, requester, target, groupID string, isAdmin bool) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Kind == models.GroupKindDirect {
		return ErrInvalidState
	}
	if group.Owner != requester {
		return ErrPermissionDenied
	}
	if target == group.Owner {
		return ErrInvalidState
	}
	if _, err := s.requireMember(ctx, groupID, target); err != nil {
		return err
	}

	if err := s.groups.SetAdmin(ctx, groupID, target, isAdmin); err != nil {
		return err
	}
	verb := "promoted %s to admin"
	if !isAdmin {
		verb = "revoked admin from %s"
	}
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s "+verb, requester, target))
}

// Leave is self-service removal. The owner cannot leave; a group must
// always contain its owner. Any pin the leaver held is cleared.
func (s *GroupService) Leave(ctx context.Context, user, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Owner == user {
		return ErrInvalidState
	}
	if _, err := s.requireMember(ctx, groupID, user); err != nil {
		return err
	}

	if err := s.groups.RemoveMember(ctx, groupID, user); err != nil {
		return err
	}
	if err := s.groups.Unpin(ctx, user, groupID); err != nil {
		return err
	}
	s.gateway.SendTo(user, models.GroupRemovedEvent{Type: models.EventGroupRemoved, GroupID: groupID})
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s left the group", user))
}

// Mute restricts a member from authoring messages. durationSeconds <= 0
// encodes a permanent mute. Same hierarchy as Kick.
func (s *GroupService) Mute(ctx context.Context, requester, target, groupID string, durationSeconds int64) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireRestrictRank(ctx, group, requester, target); err != nil {
		return err
	}

	until := models.MutePermanent
	if durationSeconds > 0 {
		until = time.Now().UnixMilli() + durationSeconds*1000
	}
	if err := s.groups.UpsertMute(ctx, models.Mute{GroupID: groupID, Username: target, MutedUntil: until}); err != nil {
		return err
	}
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s was muted by %s", target, requester))
}

// Unmute lifts a mute window. Same hierarchy as Mute.
func (s *GroupService) Unmute(ctx context.Context, requester, target, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireRestrictRank(ctx, group, requester, target); err != nil {
		return err
	}
	if err := s.groups.DeleteMute(ctx, groupID, target); err != nil {
		return err
	}
	return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s was unmuted by %s", target, requester))
}

// SetInvitePolicy switches between admin-only and all-members invites. Owner only.
func (s *GroupService) SetInvitePolicy(ctx context.Context, requester, groupID string, policy models.InvitePolicy) error {
	if policy != models.InviteAdminOnly && policy != models.InviteAllMembers {
		return ErrInvalidState
	}
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Owner != requester {
		return ErrPermissionDenied
	}
	return s.groups.SetInvitePolicy(ctx, groupID, policy)
}

// UpdateInfo renames the group or replaces its avatar. Owner or admin.
func (s *GroupService) UpdateInfo(ctx context.Context, requester, groupID, name, avatar string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	member, err := s.requireMember(ctx, groupID, requester)
	if err != nil {
		return err
	}
	if group.Owner != requester && !member.IsAdmin {
		return ErrPermissionDenied
	}

	if err := s.groups.UpdateGroupInfo(ctx, groupID, name, avatar); err != nil {
		return err
	}
	if name != "" && name != group.Name {
		return s.messages.SendSystem(ctx, groupID, fmt.Sprintf("%s renamed the group to %s", requester, name))
	}
	return nil
}

// Pin marks the group as pinned for the member.
func (s *GroupService) Pin(ctx context.Context, user, groupID string) error {
	if _, err := s.requireMember(ctx, groupID, user); err != nil {
		return err
	}
	return s.groups.Pin(ctx, user, groupID)
}

// Unpin clears the user's pin.
func (s *GroupService) Unpin(ctx context.Context, user, groupID string) error {
	return s.groups.Unpin(ctx, user, groupID)
}

// Pinned returns the ids of the groups the user pinned.
func (s *GroupService) Pinned(ctx context.Context, user string) ([]string, error) {
	return s.groups.ListPinned(ctx, user)
}

// Delete removes the group and everything under it. Owner only. The
// group_deleted event goes out before rows disappear, while the membership
// set is still resolvable.
func (s *GroupService) Delete(ctx context.Context, requester, groupID string) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Owner != requester {
		return ErrPermissionDenied
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return err
	}

	for _, m := range members {
		s.gateway.SendTo(m.Username, models.GroupDeletedEvent{Type: models.EventGroupDeleted, GroupID: groupID})
	}
	return s.groups.DeleteGroup(ctx, groupID)
}

// ResetID rotates the externally visible group identifier. Owner only. The
// copy/re-point/delete sequence runs as one transaction in the repository,
// so a partial failure never leaves the group reachable under two
// identifiers or under none.
func (s *GroupService) ResetID(ctx context.Context, requester, groupID string) (string, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	if group.Owner != requester {
		return "", ErrPermissionDenied
	}

	newID := uuid.NewString()
	if err := s.groups.ResetGroupID(ctx, groupID, newID); err != nil {
		return "", err
	}

	members, err := s.groups.ListMembers(ctx, newID)
	if err != nil {
		return newID, err
	}
	for _, m := range members {
		s.gateway.SendTo(m.Username, models.GroupIDChangedEvent{Type: models.EventGroupIDChanged, OldID: groupID, NewID: newID})
	}
	return newID, nil
}

// ListGroups returns the groups the user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, user string) ([]models.Group, error) {
	return s.groups.ListGroupsForUser(ctx, user)
}

// GroupDetail is a group with its membership set.
type GroupDetail struct {
	models.Group
	Members []models.Member `json:"members"`
}

// Detail returns the group and members; callers must be members.
func (s *GroupService) Detail(ctx context.Context, user, groupID string) (GroupDetail, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return GroupDetail{}, err
	}
	if _, err := s.requireMember(ctx, groupID, user); err != nil {
		return GroupDetail{}, err
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return GroupDetail{}, err
	}
	return GroupDetail{Group: group, Members: members}, nil
}

func (s *GroupService) requireGroup(ctx context.Context, groupID string) (models.Group, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return group, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, user string) (models.Member, error) {
	member, err := s.groups.GetMember(ctx, groupID, user)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return models.Member{}, ErrNotMember
		}
		return models.Member{}, err
	}
	return member, nil
}

// requireRestrictRank enforces the hierarchy for kick/mute/unmute: the
// requester must be owner or admin, the target must be a member and not the
// owner, and an admin target may only be restricted by the owner.
func (s *GroupService) requireRestrictRank(ctx context.Context, group models.Group, requester, target string) error {
	requesterMember, err := s.requireMember(ctx, group.ID, requester)
	if err != nil {
		return err
	}
	targetMember, err := s.groups.GetMember(ctx, group.ID, target)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotFound
		}
		return err
	}

	if group.Owner != requester && !requesterMember.IsAdmin {
		return ErrPermissionDenied
	}
	if target == group.Owner {
		return ErrPermissionDenied
	}
	if targetMember.IsAdmin && requester != group.Owner {
		return ErrPermissionDenied
	}
	return nil
}
