package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
)

func testPeer(hub *Hub, username string, invisible bool) *Peer {
	return NewPeer(hub, nil, ConnInfo{ConnID: newConnID(), Username: username}, invisible, DefaultOptions())
}

func drainEvents(t *testing.T, p *Peer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for {
		select {
		case data := <-p.send:
			var ev map[string]any
			require.NoError(t, json.Unmarshal(data, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSendToOfflineUserReturnsFalse(t *testing.T) {
	hub := NewHub()
	require.False(t, hub.SendTo("nobody", models.ErrorEventOf("x")))
}

func TestSendToDeliversToRegisteredPeer(t *testing.T) {
	hub := NewHub()
	p := testPeer(hub, "alice", false)
	hub.Register(p)

	require.True(t, hub.SendTo("alice", models.StatusUpdate("bob", models.StatusOnline)))

	events := drainEvents(t, p)
	require.Len(t, events, 1)
	require.Equal(t, string(models.EventStatusUpdate), events[0]["type"])
}

func TestRegisterEvictsPreviousConnection(t *testing.T) {
	hub := NewHub()
	first := testPeer(hub, "alice", false)
	second := testPeer(hub, "alice", false)

	hub.Register(first)
	hub.Register(second)

	require.True(t, isClosed(first.done))
	require.False(t, isClosed(second.done))

	// The evicted peer's teardown must not unregister the replacement.
	hub.Unregister(first)
	require.True(t, hub.Online("alice"))

	drainEvents(t, second)
	require.True(t, hub.SendTo("alice", models.ErrorEventOf("ping")))
	require.Len(t, drainEvents(t, second), 1)
	require.Empty(t, drainEvents(t, first))
}

func TestVisibleJoinBroadcastsOnlineAndBackfills(t *testing.T) {
	hub := NewHub()
	alice := testPeer(hub, "alice", false)
	hub.Register(alice)
	drainEvents(t, alice)

	bob := testPeer(hub, "bob", false)
	hub.Register(bob)

	aliceEvents := drainEvents(t, alice)
	require.Len(t, aliceEvents, 1)
	require.Equal(t, "bob", aliceEvents[0]["username"])
	require.Equal(t, models.StatusOnline, aliceEvents[0]["status"])

	bobEvents := drainEvents(t, bob)
	require.Len(t, bobEvents, 1)
	require.Equal(t, "alice", bobEvents[0]["username"])
	require.Equal(t, models.StatusOnline, bobEvents[0]["status"])
}

func TestInvisibleJoinIsSilent(t *testing.T) {
	hub := NewHub()
	alice := testPeer(hub, "alice", false)
	hub.Register(alice)
	drainEvents(t, alice)

	ghost := testPeer(hub, "ghost", true)
	hub.Register(ghost)

	require.Empty(t, drainEvents(t, alice))
	require.Empty(t, drainEvents(t, ghost))
}

func TestInvisiblePeerExcludedFromBackfill(t *testing.T) {
	hub := NewHub()
	ghost := testPeer(hub, "ghost", true)
	hub.Register(ghost)

	bob := testPeer(hub, "bob", false)
	hub.Register(bob)

	require.Empty(t, drainEvents(t, bob))
}

func TestUnregisterBroadcastsOffline(t *testing.T) {
	hub := NewHub()
	alice := testPeer(hub, "alice", false)
	bob := testPeer(hub, "bob", false)
	hub.Register(alice)
	hub.Register(bob)
	drainEvents(t, alice)

	hub.Unregister(bob)

	events := drainEvents(t, alice)
	require.Len(t, events, 1)
	require.Equal(t, "bob", events[0]["username"])
	require.Equal(t, models.StatusOffline, events[0]["status"])
	require.False(t, hub.Online("bob"))
}

func TestUnregisterInvisiblePeerIsSilent(t *testing.T) {
	hub := NewHub()
	alice := testPeer(hub, "alice", false)
	ghost := testPeer(hub, "ghost", true)
	hub.Register(alice)
	hub.Register(ghost)
	drainEvents(t, alice)

	hub.Unregister(ghost)
	require.Empty(t, drainEvents(t, alice))
}

func TestVisibilityChangedWhileConnected(t *testing.T) {
	hub := NewHub()
	alice := testPeer(hub, "alice", false)
	bob := testPeer(hub, "bob", false)
	hub.Register(alice)
	hub.Register(bob)
	drainEvents(t, alice)
	drainEvents(t, bob)

	// Going invisible announces offline even though the socket stays open.
	hub.VisibilityChanged("bob", true)
	events := drainEvents(t, alice)
	require.Len(t, events, 1)
	require.Equal(t, models.StatusOffline, events[0]["status"])
	require.True(t, hub.Online("bob"))

	// Coming back announces online.
	hub.VisibilityChanged("bob", false)
	events = drainEvents(t, alice)
	require.Len(t, events, 1)
	require.Equal(t, models.StatusOnline, events[0]["status"])
}

func TestVisibilityChangedNoopWhenUnchangedOrOffline(t *testing.T) {
	hub := NewHub()
	alice := testPeer(hub, "alice", false)
	hub.Register(alice)
	drainEvents(t, alice)

	hub.VisibilityChanged("alice", false)
	require.Empty(t, drainEvents(t, alice))

	hub.VisibilityChanged("nobody", true)
	require.Empty(t, drainEvents(t, alice))
}
