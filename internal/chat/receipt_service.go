package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// ReceiptService tracks the two independent per-(message,user) signals,
// delivered and read, and broadcasts aggregate receipt updates. Every
// acknowledgement is idempotent: re-acknowledging may re-broadcast but never
// regresses a stored timestamp.
type ReceiptService struct {
	groups   repositories.GroupRepository
	messages repositories.MessageRepository
	receipts repositories.ReceiptRepository
	gateway  Gateway
}

// NewReceiptService constructs a ReceiptService.
func NewReceiptService(groups repositories.GroupRepository, messages repositories.MessageRepository, receipts repositories.ReceiptRepository, gateway Gateway) *ReceiptService {
	return &ReceiptService{groups: groups, messages: messages, receipts: receipts, gateway: gateway}
}

// MarkReceived records delivery of one message and broadcasts a
// delivery_update naming the acknowledging user to the group.
func (s *ReceiptService) MarkReceived(ctx context.Context, user, groupID, messageID string) error {
	if _, err := s.groups.GetMember(ctx, groupID, user); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotMember
		}
		return err
	}
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrNotFound
		}
		return err
	}
	if msg.GroupID != groupID {
		return ErrNotFound
	}

	if err := s.receipts.MarkReceived(ctx, messageID, user, time.Now().UTC()); err != nil {
		return err
	}
	s.broadcast(ctx, groupID, models.DeliveryUpdateEvent{Type: models.EventDeliveryUpdate, GroupID: groupID, MessageID: messageID, User: user})
	return nil
}

// MarkRead is the bulk read acknowledgement for a whole group timeline:
// every non-system message the user has not read yet gets a read_at (and a
// received_at, since reading implies having received). A single read_update
// is broadcast, not one per message.
func (s *ReceiptService) MarkRead(ctx context.Context, user, groupID string) error {
	if _, err := s.groups.GetMember(ctx, groupID, user); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotMember
		}
		return err
	}

	if err := s.receipts.MarkGroupRead(ctx, groupID, user, time.Now().UTC()); err != nil {
		return err
	}
	s.broadcast(ctx, groupID, models.ReadUpdateEvent{Type: models.EventReadUpdate, GroupID: groupID, User: user})
	return nil
}

func (s *ReceiptService) broadcast(ctx context.Context, groupID string, event any) {
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		log.Printf("receipt broadcast member lookup failed group=%s: %v", groupID, err)
		return
	}
	for _, m := range members {
		if s.gateway.SendTo(m.Username, event) {
			observability.IncFanoutDelivery()
		}
	}
}

// IsFullyRead derives the aggregate read status of a message from its read
// set and the current membership. A direct chat is read once any member
// other than the sender has read it; a group only once every current member
// appears in the read set. Receipts from users who have since left still
// count, and late joiners keep old messages unread indefinitely; both are
// accepted imprecision of the current-membership denominator.
func IsFullyRead(sender string, kind models.GroupKind, members []string, readBy []string) bool {
	readSet := make(map[string]struct{}, len(readBy))
	for _, user := range readBy {
		readSet[user] = struct{}{}
	}

	if kind == models.GroupKindDirect {
		for user := range readSet {
			if user != sender {
				return true
			}
		}
		return false
	}

	if len(members) == 0 {
		return false
	}
	for _, member := range members {
		if _, ok := readSet[member]; !ok {
			return false
		}
	}
	return true
}
