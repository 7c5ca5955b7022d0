package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/chat"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
)

// UserHandler exposes the caller's own profile and settings.
type UserHandler struct {
	users *chat.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *chat.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /me.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateSettings handles PATCH /me/settings. Absent fields are untouched; a
// visibility flip triggers the matching presence transition for a connected
// user.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req models.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateSettings(c.Request.Context(), middleware.Username(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
