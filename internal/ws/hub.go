package ws

import (
	"encoding/json"
	"log"
	"sync"

	"messenger-service/internal/observability"
)

// Hub is the process-wide connection registry: at most one live connection
// per user. A reconnect silently replaces the previous connection; the old
// handle is closed without any explicit kick event. The hub implements
// chat.Gateway and chat.PresenceNotifier.
type Hub struct {
	mu    sync.RWMutex
	peers map[string]*Peer
}

// NewHub constructs an empty registry.
func NewHub() *Hub {
	return &Hub{peers: make(map[string]*Peer)}
}

// Register installs the peer as the user's active connection, evicting any
// previous one, then runs the presence protocol: a visible join broadcasts
// online to everyone else and hands the joiner a one-time snapshot of the
// other visible online peers.
func (h *Hub) Register(p *Peer) {
	h.mu.Lock()
	prev := h.peers[p.Info.Username]
	h.peers[p.Info.Username] = p
	var visible []string
	if !p.invisible {
		for name, other := range h.peers {
			if name != p.Info.Username && !other.invisible {
				visible = append(visible, name)
			}
		}
	}
	h.mu.Unlock()

	observability.IncWSActive()
	if prev != nil {
		log.Printf("ws evicting previous connection user=%s conn=%s", prev.Info.Username, prev.Info.ConnID)
		prev.close()
	}

	if !p.invisible {
		h.announce(p.Info.Username, true)
		h.backfill(p, visible)
	}
}

// Unregister removes the peer if it is still the user's active connection. A
// visible departure broadcasts offline; an evicted peer changes nothing
// because its user is still online through the replacement.
func (h *Hub) Unregister(p *Peer) {
	h.mu.Lock()
	current := h.peers[p.Info.Username] == p
	if current {
		delete(h.peers, p.Info.Username)
	}
	h.mu.Unlock()

	if current && !p.invisible {
		h.announce(p.Info.Username, false)
	}
}

// SendTo queues an event for the user's live connection. Returns false when
// the user has no connection or the connection cannot take the event; the
// caller treats that as "currently unreachable" and moves on.
func (h *Hub) SendTo(username string, event any) bool {
	h.mu.RLock()
	p := h.peers[username]
	h.mu.RUnlock()
	if p == nil {
		return false
	}
	return p.enqueue(event)
}

// Online reports whether the user currently has a registered connection,
// regardless of visibility.
func (h *Hub) Online(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.peers[username]
	return ok
}

// broadcast queues a marshaled event for every connected peer except the
// named one.
func (h *Hub) broadcast(event any, except string) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws broadcast marshal failed: %v", err)
		return
	}
	tag := eventTag(data)

	h.mu.RLock()
	targets := make([]*Peer, 0, len(h.peers))
	for name, p := range h.peers {
		if name != except {
			targets = append(targets, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range targets {
		select {
		case <-p.done:
		case p.send <- data:
			observability.IncWSEvent("out", tag)
		default:
		}
	}
}
