package ws

import (
	"context"
	"encoding/json"
	"errors"

	"messenger-service/internal/chat"
	"messenger-service/internal/observability"
)

// Inbound event type tags.
const (
	inboundMessage         = "message"
	inboundEditMessage     = "edit_message"
	inboundDeleteMessage   = "delete_message"
	inboundReceivedMessage = "received_message"
	inboundReadMessage     = "read_message"
)

var (
	errMalformedEvent   = errors.New("malformed_event")
	errUnknownEventType = errors.New("unknown_event_type")
)

// inboundEvent is the client-to-server envelope. One operation per frame,
// selected by the type tag; fields irrelevant to the tagged operation are
// ignored.
type inboundEvent struct {
	Type           string  `json:"type"`
	GroupID        string  `json:"groupId"`
	MessageID      string  `json:"messageId"`
	Text           string  `json:"text"`
	ReplyTo        *string `json:"replyTo"`
	AttachmentURL  string  `json:"attachmentUrl"`
	AttachmentType string  `json:"attachmentType"`
}

// Dispatcher routes inbound envelopes to the chat services. The acting user
// is always the authenticated connection identity; identity fields in the
// payload are never trusted. Unknown tags are a protocol error, not a no-op.
type Dispatcher struct {
	messages *chat.MessageService
	receipts *chat.ReceiptService
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(messages *chat.MessageService, receipts *chat.ReceiptService) *Dispatcher {
	return &Dispatcher{messages: messages, receipts: receipts}
}

// Dispatch decodes and executes one inbound frame for the authenticated user.
func (d *Dispatcher) Dispatch(ctx context.Context, user string, data []byte) error {
	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		observability.IncWSEvent("in", "malformed")
		return errMalformedEvent
	}

	switch ev.Type {
	case inboundMessage, inboundEditMessage, inboundDeleteMessage, inboundReceivedMessage, inboundReadMessage:
		observability.IncWSEvent("in", ev.Type)
	default:
		observability.IncWSEvent("in", "unknown")
		return errUnknownEventType
	}

	switch ev.Type {
	case inboundMessage:
		_, err := d.messages.Send(ctx, user, chat.SendInput{
			GroupID:        ev.GroupID,
			Text:           ev.Text,
			ReplyTo:        ev.ReplyTo,
			AttachmentURL:  ev.AttachmentURL,
			AttachmentType: ev.AttachmentType,
		})
		return err
	case inboundEditMessage:
		return d.messages.Edit(ctx, user, ev.GroupID, ev.MessageID, ev.Text)
	case inboundDeleteMessage:
		return d.messages.Delete(ctx, user, ev.GroupID, ev.MessageID)
	case inboundReceivedMessage:
		return d.receipts.MarkReceived(ctx, user, ev.GroupID, ev.MessageID)
	default:
		return d.receipts.MarkRead(ctx, user, ev.GroupID)
	}
}

// WireError reduces a dispatch failure to the message carried by an error
// event. Taxonomy errors pass through under their wire names; anything else
// is masked as internal.
func WireError(err error) string {
	for _, sentinel := range []error{
		chat.ErrUnauthorized,
		chat.ErrNotMember,
		chat.ErrPermissionDenied,
		chat.ErrMuted,
		chat.ErrNotFound,
		chat.ErrEditWindowExpired,
		chat.ErrAlreadyExists,
		chat.ErrInvalidState,
		errMalformedEvent,
		errUnknownEventType,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal"
}
