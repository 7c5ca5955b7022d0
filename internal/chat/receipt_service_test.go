package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

func newReceiptFixture(online ...string) (*ReceiptService, *mocks.GroupRepositoryMock, *mocks.MessageRepositoryMock, *mocks.ReceiptRepositoryMock, *mocks.GatewayMock) {
	groups := new(mocks.GroupRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	receipts := new(mocks.ReceiptRepositoryMock)
	gateway := mocks.NewGatewayMock(online...)
	return NewReceiptService(groups, messages, receipts, gateway), groups, messages, receipts, gateway
}

func TestMarkReceivedBroadcastsDeliveryUpdate(t *testing.T) {
	svc, groups, messages, receipts, gateway := newReceiptFixture("alice", "bob")

	groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{}, nil).Once()
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{ID: "m1", GroupID: "g1", Sender: "alice"}, nil).Once()
	receipts.On("MarkReceived", mock.Anything, "m1", "bob", mock.Anything).Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{
		{Username: "alice"}, {Username: "bob"},
	}, nil).Once()

	require.NoError(t, svc.MarkReceived(context.Background(), "bob", "g1", "m1"))

	events := gateway.EventsFor("alice")
	require.Len(t, events, 1)
	ev := events[0].(models.DeliveryUpdateEvent)
	require.Equal(t, models.EventDeliveryUpdate, ev.Type)
	require.Equal(t, "bob", ev.User)
	require.Equal(t, "m1", ev.MessageID)
	receipts.AssertExpectations(t)
}

func TestMarkReceivedRejectsNonMember(t *testing.T) {
	svc, groups, _, _, _ := newReceiptFixture()
	groups.On("GetMember", mock.Anything, "g1", "mallory").Return(models.Member{}, repositories.ErrMemberNotFound).Once()

	err := svc.MarkReceived(context.Background(), "mallory", "g1", "m1")
	require.ErrorIs(t, err, ErrNotMember)
}

func TestMarkReceivedRejectsMessageFromOtherGroup(t *testing.T) {
	svc, groups, messages, _, _ := newReceiptFixture()
	groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{}, nil).Once()
	messages.On("GetMessage", mock.Anything, "m1").Return(models.Message{ID: "m1", GroupID: "other"}, nil).Once()

	err := svc.MarkReceived(context.Background(), "bob", "g1", "m1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadBroadcastsOnce(t *testing.T) {
	svc, groups, _, receipts, gateway := newReceiptFixture("alice", "bob")

	groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{}, nil).Once()
	receipts.On("MarkGroupRead", mock.Anything, "g1", "bob", mock.Anything).Return(nil).Once()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{
		{Username: "alice"}, {Username: "bob"},
	}, nil).Once()

	require.NoError(t, svc.MarkRead(context.Background(), "bob", "g1"))

	events := gateway.EventsFor("alice")
	require.Len(t, events, 1)
	ev := events[0].(models.ReadUpdateEvent)
	require.Equal(t, models.EventReadUpdate, ev.Type)
	require.Equal(t, "bob", ev.User)
}

func TestMarkReadIsRepeatable(t *testing.T) {
	svc, groups, _, receipts, _ := newReceiptFixture()

	groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{}, nil).Twice()
	receipts.On("MarkGroupRead", mock.Anything, "g1", "bob", mock.Anything).Return(nil).Twice()
	groups.On("ListMembers", mock.Anything, "g1").Return([]models.Member{}, nil).Twice()

	require.NoError(t, svc.MarkRead(context.Background(), "bob", "g1"))
	require.NoError(t, svc.MarkRead(context.Background(), "bob", "g1"))
	receipts.AssertExpectations(t)
}

func TestIsFullyReadDirect(t *testing.T) {
	members := []string{"alice", "bob"}

	require.False(t, IsFullyRead("alice", models.GroupKindDirect, members, []string{"alice"}))
	require.True(t, IsFullyRead("alice", models.GroupKindDirect, members, []string{"alice", "bob"}))
	require.True(t, IsFullyRead("alice", models.GroupKindDirect, members, []string{"bob"}))
}

func TestIsFullyReadGroup(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	require.False(t, IsFullyRead("alice", models.GroupKindGroup, members, []string{"alice", "bob"}))
	require.True(t, IsFullyRead("alice", models.GroupKindGroup, members, []string{"alice", "bob", "carol"}))
	// A receipt from a departed member does not satisfy a current member.
	require.False(t, IsFullyRead("alice", models.GroupKindGroup, members, []string{"alice", "bob", "dave"}))
	require.False(t, IsFullyRead("alice", models.GroupKindGroup, nil, []string{"alice"}))
}
