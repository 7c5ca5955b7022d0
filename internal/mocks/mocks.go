package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) EnsureUser(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateSettings(ctx context.Context, username string, upd models.SettingsUpdate) (models.User, error) {
	args := m.Called(ctx, username, upd)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, group models.Group, members []models.Member) error {
	args := m.Called(ctx, group, members)
	return args.Error(0)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) FindDirectGroup(ctx context.Context, userA, userB string) (models.Group, error) {
	args := m.Called(ctx, userA, userB)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, username string) ([]models.Group, error) {
	args := m.Called(ctx, username)
	var list []models.Group
	if val := args.Get(0); val != nil {
		list = val.([]models.Group)
	}
	return list, args.Error(1)
}

func (m *GroupRepositoryMock) UpdateGroupInfo(ctx context.Context, groupID, name, avatar string) error {
	args := m.Called(ctx, groupID, name, avatar)
	return args.Error(0)
}

func (m *GroupRepositoryMock) SetInvitePolicy(ctx context.Context, groupID string, policy models.InvitePolicy) error {
	args := m.Called(ctx, groupID, policy)
	return args.Error(0)
}

func (m *GroupRepositoryMock) DeleteGroup(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) ResetGroupID(ctx context.Context, oldID, newID string) error {
	args := m.Called(ctx, oldID, newID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) AddMember(ctx context.Context, member models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *GroupRepositoryMock) RemoveMember(ctx context.Context, groupID, username string) error {
	args := m.Called(ctx, groupID, username)
	return args.Error(0)
}

func (m *GroupRepositoryMock) GetMember(ctx context.Context, groupID, username string) (models.Member, error) {
	args := m.Called(ctx, groupID, username)
	var member models.Member
	if val := args.Get(0); val != nil {
		member = val.(models.Member)
	}
	return member, args.Error(1)
}

func (m *GroupRepositoryMock) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	args := m.Called(ctx, groupID)
	var members []models.Member
	if val := args.Get(0); val != nil {
		members = val.([]models.Member)
	}
	return members, args.Error(1)
}

func (m *GroupRepositoryMock) SetAdmin(ctx context.Context, groupID, username string, isAdmin bool) error {
	args := m.Called(ctx, groupID, username, isAdmin)
	return args.Error(0)
}

func (m *GroupRepositoryMock) UpsertMute(ctx context.Context, mute models.Mute) error {
	args := m.Called(ctx, mute)
	return args.Error(0)
}

func (m *GroupRepositoryMock) GetMute(ctx context.Context, groupID, username string) (models.Mute, error) {
	args := m.Called(ctx, groupID, username)
	var mute models.Mute
	if val := args.Get(0); val != nil {
		mute = val.(models.Mute)
	}
	return mute, args.Error(1)
}

func (m *GroupRepositoryMock) DeleteMute(ctx context.Context, groupID, username string) error {
	args := m.Called(ctx, groupID, username)
	return args.Error(0)
}

func (m *GroupRepositoryMock) Pin(ctx context.Context, username, groupID string) error {
	args := m.Called(ctx, username, groupID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) Unpin(ctx context.Context, username, groupID string) error {
	args := m.Called(ctx, username, groupID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) ListPinned(ctx context.Context, username string) ([]string, error) {
	args := m.Called(ctx, username)
	var pinned []string
	if val := args.Get(0); val != nil {
		pinned = val.([]string)
	}
	return pinned, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListGroupMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	args := m.Called(ctx, groupID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateContent(ctx context.Context, messageID, content string) error {
	args := m.Called(ctx, messageID, content)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkDeleted(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type ReceiptRepositoryMock struct {
	mock.Mock
}

func (m *ReceiptRepositoryMock) InsertSelfReceipt(ctx context.Context, messageID, username string, at time.Time) error {
	args := m.Called(ctx, messageID, username, at)
	return args.Error(0)
}

func (m *ReceiptRepositoryMock) MarkReceived(ctx context.Context, messageID, username string, at time.Time) error {
	args := m.Called(ctx, messageID, username, at)
	return args.Error(0)
}

func (m *ReceiptRepositoryMock) MarkGroupRead(ctx context.Context, groupID, username string, at time.Time) error {
	args := m.Called(ctx, groupID, username, at)
	return args.Error(0)
}

func (m *ReceiptRepositoryMock) ListGroupReceipts(ctx context.Context, groupID string) ([]models.Receipt, error) {
	args := m.Called(ctx, groupID)
	var receipts []models.Receipt
	if val := args.Get(0); val != nil {
		receipts = val.([]models.Receipt)
	}
	return receipts, args.Error(1)
}

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) GetEdge(ctx context.Context, userA, userB string) (models.FriendEdge, error) {
	args := m.Called(ctx, userA, userB)
	var edge models.FriendEdge
	if val := args.Get(0); val != nil {
		edge = val.(models.FriendEdge)
	}
	return edge, args.Error(1)
}

func (m *FriendRepositoryMock) CreateEdge(ctx context.Context, requester, target string, at time.Time) error {
	args := m.Called(ctx, requester, target, at)
	return args.Error(0)
}

func (m *FriendRepositoryMock) AcceptEdge(ctx context.Context, requester, target string) error {
	args := m.Called(ctx, requester, target)
	return args.Error(0)
}

func (m *FriendRepositoryMock) DeleteEdge(ctx context.Context, userA, userB string) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

func (m *FriendRepositoryMock) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) ListFriends(ctx context.Context, username string) ([]models.UserProfile, error) {
	args := m.Called(ctx, username)
	var friends []models.UserProfile
	if val := args.Get(0); val != nil {
		friends = val.([]models.UserProfile)
	}
	return friends, args.Error(1)
}

func (m *FriendRepositoryMock) ListPending(ctx context.Context, username string) ([]models.FriendEdge, error) {
	args := m.Called(ctx, username)
	var pending []models.FriendEdge
	if val := args.Get(0); val != nil {
		pending = val.([]models.FriendEdge)
	}
	return pending, args.Error(1)
}
