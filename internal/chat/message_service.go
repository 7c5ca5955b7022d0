package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// EditWindow bounds author edits and deletes, measured from creation.
const EditWindow = 5 * time.Minute

const replyPreviewLen = 80

// MessageService authors, edits, deletes and fans out messages.
type MessageService struct {
	groups   repositories.GroupRepository
	messages repositories.MessageRepository
	receipts repositories.ReceiptRepository
	gateway  Gateway
}

// NewMessageService constructs a MessageService.
func NewMessageService(groups repositories.GroupRepository, messages repositories.MessageRepository, receipts repositories.ReceiptRepository, gateway Gateway) *MessageService {
	return &MessageService{groups: groups, messages: messages, receipts: receipts, gateway: gateway}
}

// SendInput is an authored message before persistence.
type SendInput struct {
	GroupID        string
	Text           string
	ReplyTo        *string
	AttachmentURL  string
	AttachmentType string
}

// Send persists an authored message and fans it out to every current member
// with a live connection. The author must be a member and not muted; an
// expired mute row is pruned here rather than by a background sweep.
func (s *MessageService) Send(ctx context.Context, sender string, in SendInput) (models.MessageView, error) {
	if _, err := s.groups.GetMember(ctx, in.GroupID, sender); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return models.MessageView{}, ErrNotMember
		}
		return models.MessageView{}, err
	}

	if err := s.checkMute(ctx, in.GroupID, sender); err != nil {
		return models.MessageView{}, err
	}

	now := time.Now().UTC()
	msg := models.Message{
		ID:             uuid.NewString(),
		GroupID:        in.GroupID,
		Sender:         sender,
		Content:        in.Text,
		Kind:           deriveKind(in.AttachmentType),
		CreatedAt:      now,
		AttachmentURL:  in.AttachmentURL,
		AttachmentType: in.AttachmentType,
	}

	if in.ReplyTo != nil {
		preview, err := s.replyPreview(ctx, in.GroupID, *in.ReplyTo)
		if err != nil {
			return models.MessageView{}, err
		}
		msg.ReplyTo = in.ReplyTo
		msg.ReplyPreview = &preview
	}

	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return models.MessageView{}, err
	}
	// The author has trivially received and read their own message.
	if err := s.receipts.InsertSelfReceipt(ctx, msg.ID, sender, now); err != nil {
		return models.MessageView{}, err
	}

	view := models.MessageView{Message: msg, ReceivedBy: []string{sender}, ReadBy: []string{sender}}
	s.fanout(ctx, in.GroupID, models.NewMessageEventOf(view))
	return view, nil
}

// SendSystem synthesizes a system message through the same fanout path. No
// membership, mute or receipt handling applies to the synthetic author.
func (s *MessageService) SendSystem(ctx context.Context, groupID, text string) error {
	msg := models.Message{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Sender:    models.SystemSender,
		Content:   text,
		Kind:      models.MessageKindSystem,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return err
	}
	s.fanout(ctx, groupID, models.NewMessageEventOf(models.MessageView{Message: msg}))
	return nil
}

// Edit replaces the body of the actor's own message within the edit window.
func (s *MessageService) Edit(ctx context.Context, actor, groupID, messageID, text string) error {
	msg, err := s.authoredMessage(ctx, actor, groupID, messageID)
	if err != nil {
		return err
	}
	if msg.Deleted {
		return ErrInvalidState
	}
	if time.Since(msg.CreatedAt) > EditWindow {
		return ErrEditWindowExpired
	}
	if err := s.messages.UpdateContent(ctx, messageID, text); err != nil {
		return err
	}
	s.fanout(ctx, groupID, models.MessageUpdatedEvent{Type: models.EventMessageUpdated, GroupID: groupID, MessageID: messageID, Text: text})
	return nil
}

// Delete tombstones the actor's own message within the edit window.
func (s *MessageService) Delete(ctx context.Context, actor, groupID, messageID string) error {
	msg, err := s.authoredMessage(ctx, actor, groupID, messageID)
	if err != nil {
		return err
	}
	if msg.Deleted {
		return ErrInvalidState
	}
	if time.Since(msg.CreatedAt) > EditWindow {
		return ErrEditWindowExpired
	}
	if err := s.messages.MarkDeleted(ctx, messageID); err != nil {
		return err
	}
	s.fanout(ctx, groupID, models.MessageDeletedEvent{Type: models.EventMessageDeleted, GroupID: groupID, MessageID: messageID})
	return nil
}

// History returns the full timeline with aggregate receipt state. This is
// how a reconnecting user picks up messages missed while offline.
func (s *MessageService) History(ctx context.Context, user, groupID string) ([]models.MessageView, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.groups.GetMember(ctx, groupID, user); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}

	msgs, err := s.messages.ListGroupMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}
	receipts, err := s.receipts.ListGroupReceipts(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	receivedBy := make(map[string][]string)
	readBy := make(map[string][]string)
	for _, rc := range receipts {
		if rc.ReceivedAt != nil {
			receivedBy[rc.MessageID] = append(receivedBy[rc.MessageID], rc.Username)
		}
		if rc.ReadAt != nil {
			readBy[rc.MessageID] = append(readBy[rc.MessageID], rc.Username)
		}
	}
	memberNames := make([]string, 0, len(members))
	for _, m := range members {
		memberNames = append(memberNames, m.Username)
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, msg := range msgs {
		view := models.MessageView{
			Message:    msg,
			ReceivedBy: receivedBy[msg.ID],
			ReadBy:     readBy[msg.ID],
		}
		view.Read = IsFullyRead(msg.Sender, group.Kind, memberNames, view.ReadBy)
		views = append(views, view)
	}
	return views, nil
}

func (s *MessageService) checkMute(ctx context.Context, groupID, sender string) error {
	mute, err := s.groups.GetMute(ctx, groupID, sender)
	if err != nil {
		if errors.Is(err, repositories.ErrMuteNotFound) {
			return nil
		}
		return err
	}
	if mute.Active(time.Now()) {
		return ErrMuted
	}
	// Expired: treat as absent and prune lazily.
	if err := s.groups.DeleteMute(ctx, groupID, sender); err != nil {
		log.Printf("prune expired mute failed group=%s user=%s: %v", groupID, sender, err)
	}
	return nil
}

func (s *MessageService) authoredMessage(ctx context.Context, actor, groupID, messageID string) (models.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, err
	}
	if msg.GroupID != groupID {
		return models.Message{}, ErrNotFound
	}
	if msg.Sender != actor {
		return models.Message{}, ErrPermissionDenied
	}
	return msg, nil
}

func (s *MessageService) replyPreview(ctx context.Context, groupID, replyTo string) (string, error) {
	ref, err := s.messages.GetMessage(ctx, replyTo)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if ref.GroupID != groupID {
		return "", ErrNotFound
	}
	preview := ref.Content
	if ref.Deleted {
		preview = ""
	} else if ref.AttachmentURL != "" && preview == "" {
		preview = "[" + ref.AttachmentType + "]"
	}
	if len(preview) > replyPreviewLen {
		preview = preview[:replyPreviewLen]
	}
	return preview, nil
}

// fanout delivers an event to every current member with a live connection.
// Unreachable recipients are skipped, never queued or retried.
func (s *MessageService) fanout(ctx context.Context, groupID string, event any) {
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		log.Printf("fanout member lookup failed group=%s: %v", groupID, err)
		return
	}
	for _, m := range members {
		if s.gateway.SendTo(m.Username, event) {
			observability.IncFanoutDelivery()
		}
	}
}

func deriveKind(attachmentType string) models.MessageKind {
	if attachmentType != "" {
		return models.MessageKind(attachmentType)
	}
	return models.MessageKindText
}
