package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger-service/internal/observability"
)

// Options tune the per-connection read/write pumps.
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultOptions returns pump settings suitable for tests.
func DefaultOptions() Options {
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 65536,
		SendBuffer:     256,
	}
}

// Peer is one live connection owned by the hub. Outbound events are queued on
// a buffered channel drained by the write pump; a full buffer drops the event
// rather than blocking the sender.
type Peer struct {
	Info ConnInfo

	// invisible is the visibility snapshot used for presence decisions.
	// Guarded by the hub mutex, like hub membership itself.
	invisible bool

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	opts Options
}

// NewPeer wraps an upgraded connection. conn may be nil in tests that only
// exercise the queueing side.
func NewPeer(hub *Hub, conn *websocket.Conn, info ConnInfo, invisible bool, opts Options) *Peer {
	return &Peer{
		Info:      info,
		invisible: invisible,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, opts.SendBuffer),
		done:      make(chan struct{}),
		opts:      opts,
	}
}

// enqueue marshals the event and queues it for the write pump. Returns false
// when the peer is closing or the buffer is full; the event is dropped, never
// retried.
func (p *Peer) enqueue(event any) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws marshal failed user=%s: %v", p.Info.Username, err)
		return false
	}
	select {
	case <-p.done:
		return false
	case p.send <- data:
		observability.IncWSEvent("out", eventTag(data))
		return true
	default:
		log.Printf("ws send buffer full, dropping user=%s conn=%s", p.Info.Username, p.Info.ConnID)
		return false
	}
}

func (p *Peer) close() {
	p.once.Do(func() {
		close(p.done)
		observability.DecWSActive()
	})
}

func (p *Peer) readPump(handle func(data []byte)) {
	defer func() {
		p.hub.Unregister(p)
		p.close()
		p.conn.Close()
	}()
	p.conn.SetReadLimit(p.opts.MaxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(p.opts.PongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(p.opts.PongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read failed user=%s conn=%s: %v", p.Info.Username, p.Info.ConnID, err)
			}
			return
		}
		handle(data)
	}
}

func (p *Peer) writePump() {
	ticker := time.NewTicker(p.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.opts.WriteWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.opts.WriteWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.done:
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.opts.WriteWait))
			_ = p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// eventTag peeks at the type field of a marshaled envelope for metrics.
func eventTag(data []byte) string {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Type == "" {
		return "unknown"
	}
	return probe.Type
}
