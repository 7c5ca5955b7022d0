package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

func newMessageFixture(online ...string) (*MessageService, *mocks.GroupRepositoryMock, *mocks.MessageRepositoryMock, *mocks.ReceiptRepositoryMock, *mocks.GatewayMock) {
	groups := new(mocks.GroupRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	receipts := new(mocks.ReceiptRepositoryMock)
	gateway := mocks.NewGatewayMock(online...)
	return NewMessageService(groups, messages, receipts, gateway), groups, messages, receipts, gateway
}

func TestSendPersistsSelfReceiptAndFansOut(t *testing.T) {
	svc, groups, messages, receipts, gateway := newMessageFixture("alice", "bob")

	groups.On("GetMember", mock.Anything, "g1", "alice").Return(models.Member{GroupID: "g1", Username: "alice"}, nil).Once()
	groups.On("GetMute", mock.Anything, "g1", "alice").Return(models.Mute{}, repositories.ErrMuteNotFound).Once()
	messages.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.GroupID == "g1" && m.Sender == "alice" && m.Content == "hi" && m.Kind == models.MessageKindText && m.ID != ""
	})).Return(nil).Once()
	receipts.On("InsertSelfReceipt", mock.Anything, mock.Anything, "alice", mock.Anything).Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{
		{GroupID: "g1", Username: "alice"},
		{GroupID: "g1", Username: "bob"},
	}, nil).Once()

	view, err := svc.Send(context.Background(), "alice", SendInput{GroupID: "g1", Text: "hi"})
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, view.ReceivedBy)
	require.Equal(t, []string{"alice"}, view.ReadBy)

	for _, member := range []string{"alice", "bob"} {
		events := gateway.EventsFor(member)
		require.Len(t, events, 1)
		ev := events[0].(models.NewMessageEvent)
		require.Equal(t, models.EventNewMessage, ev.Type)
		require.Equal(t, "g1", ev.GroupID)
		require.Equal(t, "hi", ev.Message.Content)
	}

	groups.AssertExpectations(t)
	messages.AssertExpectations(t)
	receipts.AssertExpectations(t)
}

func TestSendRejectsNonMember(t *testing.T) {
	svc, groups, _, _, _ := newMessageFixture()
	groups.On("GetMember", mock.Anything, "g1", "mallory").Return(models.Member{}, repositories.ErrMemberNotFound).Once()

	_, err := svc.Send(context.Background(), "mallory", SendInput{GroupID: "g1", Text: "hi"})
	require.ErrorIs(t, err, ErrNotMember)
}

func TestSendRejectsActiveMute(t *testing.T) {
	svc, groups, _, _, _ := newMessageFixture()
	groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{}, nil).Once()
	groups.On("GetMute", mock.Anything, "g1", "bob").Return(models.Mute{GroupID: "g1", Username: "bob", MutedUntil: models.MutePermanent}, nil).Once()

	_, err := svc.Send(context.Background(), "bob", SendInput{GroupID: "g1", Text: "hi"})
	require.ErrorIs(t, err, ErrMuted)
}

func TestSendPrunesExpiredMuteAndProceeds(t *testing.T) {
	svc, groups, messages, receipts, _ := newMessageFixture()
	expired := time.Now().Add(-time.Hour).UnixMilli()

	groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{}, nil).Once()
	groups.On("GetMute", mock.Anything, "g1", "bob").Return(models.Mute{GroupID: "g1", Username: "bob", MutedUntil: expired}, nil).Once()
	groups.On("DeleteMute", mock.Anything, "g1", "bob").Return(nil).Once()
	messages.On("CreateMessage", mock.Anything, mock.Anything).Return(nil).Once()
	receipts.On("InsertSelfReceipt", mock.Anything, mock.Anything, "bob", mock.Anything).Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{}, nil).Once()

	_, err := svc.Send(context.Background(), "bob", SendInput{GroupID: "g1", Text: "back"})
	require.NoError(t, err)
	groups.AssertExpectations(t)
}

func TestSendDerivesAttachmentKind(t *testing.T) {
	svc, groups, messages, receipts, _ := newMessageFixture()

	groups.On("GetMember", mock.Anything, "g1", "alice").Return(models.Member{}, nil).Once()
	groups.On("GetMute", mock.Anything, "g1", "alice").Return(models.Mute{}, repositories.ErrMuteNotFound).Once()
	messages.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.Kind == models.MessageKind("image") && m.AttachmentURL == "https://cdn/x.png"
	})).Return(nil).Once()
	receipts.On("InsertSelfReceipt", mock.Anything, mock.Anything, "alice", mock.Anything).Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{}, nil).Once()

	_, err := svc.Send(context.Background(), "alice", SendInput{GroupID: "g1", AttachmentURL: "https://cdn/x.png", AttachmentType: "image"})
	require.NoError(t, err)
	messages.AssertExpectations(t)
}

func TestEditRejectsForeignMessage(t *testing.T) {
	svc, _, messages, _, _ := newMessageFixture()
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{ID: "m1", GroupID: "g1", Sender: "bob", CreatedAt: time.Now()}, nil).Once()

	err := svc.Edit(context.Background(), "alice", "g1", "m1", "new")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEditRejectsOutsideWindow(t *testing.T) {
	svc, _, messages, _, _ := newMessageFixture()
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{
		ID: "m1", GroupID: "g1", Sender: "alice", CreatedAt: time.Now().Add(-EditWindow - time.Minute),
	}, nil).Once()

	err := svc.Edit(context.Background(), "alice", "g1", "m1", "new")
	require.ErrorIs(t, err, ErrEditWindowExpired)
}

func TestEditRejectsDeletedMessage(t *testing.T) {
	svc, _, messages, _, _ := newMessageFixture()
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{
		ID: "m1", GroupID: "g1", Sender: "alice", CreatedAt: time.Now(), Deleted: true,
	}, nil).Once()

	err := svc.Edit(context.Background(), "alice", "g1", "m1", "new")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestEditBroadcastsUpdate(t *testing.T) {
	svc, groups, messages, _, gateway := newMessageFixture("alice", "bob")
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{
		ID: "m1", GroupID: "g1", Sender: "alice", CreatedAt: time.Now(),
	}, nil).Once()
	messages.On("UpdateContent", mock.Anything, "m1", "new").Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{
		{Username: "alice"}, {Username: "bob"},
	}, nil).Once()

	require.NoError(t, svc.Edit(context.Background(), "alice", "g1", "m1", "new"))

	events := gateway.EventsFor("bob")
	require.Len(t, events, 1)
	ev := events[0].(models.MessageUpdatedEvent)
	require.Equal(t, models.EventMessageUpdated, ev.Type)
	require.Equal(t, "new", ev.Text)
}

func TestDeleteTombstonesWithinWindow(t *testing.T) {
	svc, groups, messages, _, gateway := newMessageFixture("bob")
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{
		ID: "m1", GroupID: "g1", Sender: "alice", CreatedAt: time.Now(),
	}, nil).Once()
	messages.On("MarkDeleted", mock.Anything, "m1").Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{{Username: "bob"}}, nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "alice", "g1", "m1"))

	events := gateway.EventsFor("bob")
	require.Len(t, events, 1)
	require.Equal(t, models.EventMessageDeleted, events[0].(models.MessageDeletedEvent).Type)
	messages.AssertExpectations(t)
}

func TestDeleteRejectsWrongGroup(t *testing.T) {
	svc, _, messages, _, _ := newMessageFixture()
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{
		ID: "m1", GroupID: "other", Sender: "alice", CreatedAt: time.Now(),
	}, nil).Once()

	err := svc.Delete(context.Background(), "alice", "g1", "m1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryAggregatesReceipts(t *testing.T) {
	svc, groups, messages, receipts, _ := newMessageFixture()
	now := time.Now().UTC()

	groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1", Kind: models.GroupKindDirect, Owner: "alice"}, nil).Once()
	groups.On("GetMember", mock.Anything, "g1", "alice").Return(models.Member{}, nil).Once()
	messages.On("ListGroupMessages", mock.Anything, "g1").Return([]models.Message{
		{ID: "m1", GroupID: "g1", Sender: "alice", Content: "hi", CreatedAt: now},
		{ID: "m2", GroupID: "g1", Sender: "bob", Content: "yo", CreatedAt: now},
	}, nil).Once()
	receipts.On("ListGroupReceipts", mock.Anything, "g1").Return([]models.Receipt{
		{MessageID: "m1", Username: "alice", ReceivedAt: &now, ReadAt: &now},
		{MessageID: "m1", Username: "bob", ReceivedAt: &now, ReadAt: &now},
		{MessageID: "m2", Username: "bob", ReceivedAt: &now, ReadAt: &now},
	}, nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{
		{Username: "alice"}, {Username: "bob"},
	}, nil).Once()

	views, err := svc.History(context.Background(), "alice", "g1")
	require.NoError(t, err)
	require.Len(t, views, 2)

	require.ElementsMatch(t, []string{"alice", "bob"}, views[0].ReadBy)
	require.True(t, views[0].Read)
	// Only the sender has read m2, so it is unread for a direct chat.
	require.False(t, views[1].Read)
}

func TestHistoryRequiresMembership(t *testing.T) {
	svc, groups, _, _, _ := newMessageFixture()
	groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1"}, nil).Once()
	groups.On("GetMember", mock.Anything, "g1", "mallory").Return(models.Member{}, repositories.ErrMemberNotFound).Once()

	_, err := svc.History(context.Background(), "mallory", "g1")
	require.ErrorIs(t, err, ErrNotMember)
}
