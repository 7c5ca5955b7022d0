package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"messenger-service/internal/auth"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

// Handler upgrades authenticated HTTP requests into hub-registered
// connections and runs their read loop.
type Handler struct {
	hub       *Hub
	validator *auth.Validator
	users     repositories.UserRepository
	dispatch  *Dispatcher
	audit     *telemetry.AuditEmitter
	opts      Options
	upgrader  websocket.Upgrader
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, validator *auth.Validator, users repositories.UserRepository, dispatch *Dispatcher, audit *telemetry.AuditEmitter, opts Options) *Handler {
	return &Handler{
		hub:       hub,
		validator: validator,
		users:     users,
		dispatch:  dispatch,
		audit:     audit,
		opts:      opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced upstream at the edge proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve is the GET /ws endpoint. The session credential comes from the
// Authorization header or, for browser websocket clients that cannot set
// headers, the token query parameter. The resolved identity is fixed for the
// connection's lifetime.
func (h *Handler) Serve(c *gin.Context) {
	ctx := c.Request.Context()
	tracer := otel.Tracer("messenger-service/ws")
	ctx, span := tracer.Start(ctx, "ws.connect")
	defer span.End()

	token := connectionToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	username, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	span.SetAttributes(attribute.String("user.name", username))

	user, err := h.users.EnsureUser(ctx, username)
	if err != nil {
		log.Printf("ws ensure user failed user=%s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed user=%s: %v", username, err)
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		Username:    user.Username,
		DeviceID:    c.GetHeader("X-Device-ID"),
		RemoteIP:    c.ClientIP(),
		ConnectedAt: time.Now().UTC(),
	}
	peer := NewPeer(h.hub, conn, info, user.Invisible, h.opts)
	h.hub.Register(peer)
	h.audit.Emit(context.Background(), "ws_connect", user.Username, map[string]any{
		"connId": info.ConnID, "deviceId": info.DeviceID, "ip": info.RemoteIP,
	})
	log.Printf("ws connected user=%s conn=%s ip=%s", info.Username, info.ConnID, info.RemoteIP)

	go peer.writePump()
	peer.readPump(func(data []byte) {
		if err := h.dispatch.Dispatch(context.Background(), info.Username, data); err != nil {
			peer.enqueue(models.ErrorEventOf(WireError(err)))
		}
	})

	h.audit.Emit(context.Background(), "ws_disconnect", user.Username, map[string]any{"connId": info.ConnID})
	log.Printf("ws disconnected user=%s conn=%s", info.Username, info.ConnID)
}

func connectionToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
