package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/chat"
	"messenger-service/internal/middleware"
	"messenger-service/internal/telemetry"
)

// FriendHandler exposes the friend edge state machine over REST.
type FriendHandler struct {
	friends *chat.FriendService
	audit   *telemetry.AuditEmitter
}

// NewFriendHandler constructs a FriendHandler.
func NewFriendHandler(friends *chat.FriendService, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friends: friends, audit: audit}
}

// List handles GET /friends.
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friends.Friends(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Pending handles GET /friends/requests.
func (h *FriendHandler) Pending(c *gin.Context) {
	pending, err := h.friends.Pending(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": pending})
}

// Request handles POST /friends/requests.
func (h *FriendHandler) Request(c *gin.Context) {
	user := middleware.Username(c)

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.friends.Request(c.Request.Context(), user, req.Username); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "friend_request", user, map[string]any{"target": req.Username})
	c.Status(http.StatusCreated)
}

// Respond handles POST /friends/requests/:username. The path parameter names
// the requester; the body carries accept or deny.
func (h *FriendHandler) Respond(c *gin.Context) {
	user := middleware.Username(c)
	from := c.Param("username")

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Action != "accept" && req.Action != "deny" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be accept or deny"})
		return
	}

	if err := h.friends.Respond(c.Request.Context(), user, from, req.Action == "accept"); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "friend_respond", user, map[string]any{"from": from, "action": req.Action})
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /friends/:username.
func (h *FriendHandler) Remove(c *gin.Context) {
	user := middleware.Username(c)
	target := c.Param("username")

	if err := h.friends.Remove(c.Request.Context(), user, target); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "friend_remove", user, map[string]any{"target": target})
	c.Status(http.StatusNoContent)
}
