package chat

import "errors"

// The error taxonomy reported to acting connections. Handlers map these to
// HTTP statuses; the websocket dispatcher maps them to error events. None of
// them are retried by the core.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotMember         = errors.New("not_member")
	ErrPermissionDenied  = errors.New("permission_denied")
	ErrMuted             = errors.New("muted")
	ErrNotFound          = errors.New("not_found")
	ErrEditWindowExpired = errors.New("edit_window_expired")
	ErrAlreadyExists     = errors.New("already_exists")
	ErrInvalidState      = errors.New("invalid_state")
)
