package chat

// Gateway pushes events to a user's live connection. Implemented by the
// websocket hub; a send to a user without a writable connection is a no-op
// and reports false. Send failures are never treated as operation failures.
type Gateway interface {
	SendTo(username string, event any) bool
}

// PresenceNotifier receives visibility changes made through settings so the
// correct presence transition is emitted while the socket stays open.
type PresenceNotifier interface {
	VisibilityChanged(username string, invisible bool)
}
