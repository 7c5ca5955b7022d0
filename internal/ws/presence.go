package ws

import (
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
)

// announce broadcasts a presence transition for the user to every other
// connected peer.
func (h *Hub) announce(username string, online bool) {
	status := models.StatusOffline
	if online {
		status = models.StatusOnline
	}
	observability.IncPresenceTransition(status)
	h.broadcast(models.StatusUpdate(username, status), username)
}

// backfill hands a freshly registered peer the one-time snapshot of the other
// visible online users. Later changes arrive as individual status updates.
func (h *Hub) backfill(p *Peer, visible []string) {
	for _, name := range visible {
		p.enqueue(models.StatusUpdate(name, models.StatusOnline))
	}
}

// VisibilityChanged applies a runtime visibility flip for a connected user.
// Turning invisible while connected announces offline even though the socket
// stays open; turning visible announces online. Disconnected users need no
// announcement, only the stored flag matters for their next registration.
func (h *Hub) VisibilityChanged(username string, invisible bool) {
	h.mu.Lock()
	p := h.peers[username]
	changed := p != nil && p.invisible != invisible
	if changed {
		p.invisible = invisible
	}
	h.mu.Unlock()

	if !changed {
		return
	}
	h.announce(username, !invisible)
}
