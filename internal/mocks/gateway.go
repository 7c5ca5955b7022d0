package mocks

import "sync"

// GatewayMock records events per user. Send returns true for users marked
// online, mirroring the hub's "delivered to a live connection" result.
type GatewayMock struct {
	mu       sync.Mutex
	online   map[string]bool
	Sent     map[string][]any
	Presence []PresenceCall
}

// PresenceCall records one VisibilityChanged invocation.
type PresenceCall struct {
	Username  string
	Invisible bool
}

// NewGatewayMock constructs a GatewayMock with the given users online.
func NewGatewayMock(online ...string) *GatewayMock {
	g := &GatewayMock{online: make(map[string]bool), Sent: make(map[string][]any)}
	for _, user := range online {
		g.online[user] = true
	}
	return g
}

func (g *GatewayMock) SendTo(username string, event any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sent[username] = append(g.Sent[username], event)
	return g.online[username]
}

func (g *GatewayMock) VisibilityChanged(username string, invisible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Presence = append(g.Presence, PresenceCall{Username: username, Invisible: invisible})
}

// EventsFor returns the events delivered to one user.
func (g *GatewayMock) EventsFor(username string) []any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]any(nil), g.Sent[username]...)
}
