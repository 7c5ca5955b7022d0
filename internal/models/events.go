package models

import "time"

// EventType tags every envelope exchanged over the per-user connection.
type EventType string

// Outbound event types.
const (
	EventNewMessage     EventType = "new_message"
	EventMessageUpdated EventType = "message_updated"
	EventMessageDeleted EventType = "message_deleted"
	EventDeliveryUpdate EventType = "delivery_update"
	EventReadUpdate     EventType = "read_update"
	EventStatusUpdate   EventType = "status_update"
	EventFriendRequest  EventType = "friend_request"
	EventFriendAccepted EventType = "friend_accepted"
	EventFriendRemoved  EventType = "friend_removed"
	EventGroupAdded     EventType = "group_added"
	EventGroupRemoved   EventType = "group_removed"
	EventGroupDeleted   EventType = "group_deleted"
	EventGroupIDChanged EventType = "group_id_changed"
	EventProfileUpdate  EventType = "profile_update"
	EventError          EventType = "error"
)

// Presence states carried by status_update.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// NewMessageEvent announces a freshly authored message to group members.
type NewMessageEvent struct {
	Type    EventType   `json:"type"`
	GroupID string      `json:"groupId"`
	Message MessageView `json:"message"`
}

// MessageUpdatedEvent announces an in-window edit.
type MessageUpdatedEvent struct {
	Type      EventType `json:"type"`
	GroupID   string    `json:"groupId"`
	MessageID string    `json:"messageId"`
	Text      string    `json:"text"`
}

// MessageDeletedEvent announces an in-window delete.
type MessageDeletedEvent struct {
	Type      EventType `json:"type"`
	GroupID   string    `json:"groupId"`
	MessageID string    `json:"messageId"`
}

// DeliveryUpdateEvent names a user that acknowledged delivery of a message.
type DeliveryUpdateEvent struct {
	Type      EventType `json:"type"`
	GroupID   string    `json:"groupId"`
	MessageID string    `json:"messageId"`
	User      string    `json:"user"`
}

// ReadUpdateEvent names a user that read the group timeline; sent once per
// bulk read, not per message.
type ReadUpdateEvent struct {
	Type    EventType `json:"type"`
	GroupID string    `json:"groupId"`
	User    string    `json:"user"`
}

// StatusUpdateEvent is a presence transition.
type StatusUpdateEvent struct {
	Type     EventType `json:"type"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
}

// FriendRequestEvent notifies the target of a pending request.
type FriendRequestEvent struct {
	Type      EventType `json:"type"`
	From      string    `json:"from"`
	Timestamp time.Time `json:"timestamp"`
}

// FriendAcceptedEvent carries the new friend's public profile to both sides.
type FriendAcceptedEvent struct {
	Type EventType   `json:"type"`
	User UserProfile `json:"user"`
}

// FriendRemovedEvent tells a user to drop cached friendship state.
type FriendRemovedEvent struct {
	Type     EventType `json:"type"`
	Username string    `json:"username"`
}

// GroupAddedEvent tells a user they were added to a group.
type GroupAddedEvent struct {
	Type    EventType `json:"type"`
	GroupID string    `json:"groupId"`
}

// GroupRemovedEvent tells a user to drop a group locally (kick or leave).
type GroupRemovedEvent struct {
	Type    EventType `json:"type"`
	GroupID string    `json:"groupId"`
}

// GroupDeletedEvent is broadcast to members before the group rows disappear.
type GroupDeletedEvent struct {
	Type    EventType `json:"type"`
	GroupID string    `json:"groupId"`
}

// GroupIDChangedEvent invalidates a rotated group identifier.
type GroupIDChangedEvent struct {
	Type  EventType `json:"type"`
	OldID string    `json:"oldId"`
	NewID string    `json:"newId"`
}

// ProfileUpdateEvent pushes a friend's changed public profile.
type ProfileUpdateEvent struct {
	Type     EventType   `json:"type"`
	Username string      `json:"username"`
	User     UserProfile `json:"user"`
}

// ErrorEvent reports a failed inbound operation to the acting connection.
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

func NewMessageEventOf(view MessageView) NewMessageEvent {
	return NewMessageEvent{Type: EventNewMessage, GroupID: view.GroupID, Message: view}
}

func StatusUpdate(username, status string) StatusUpdateEvent {
	return StatusUpdateEvent{Type: EventStatusUpdate, Username: username, Status: status}
}

func ErrorEventOf(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}
