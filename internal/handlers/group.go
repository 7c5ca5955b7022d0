package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/chat"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/telemetry"
)

// GroupHandler exposes the structural group operations over REST. Every
// mutation goes through the group service; handlers never touch storage.
type GroupHandler struct {
	groups *chat.GroupService
	audit  *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups *chat.GroupService, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groups: groups, audit: audit}
}

// Create handles POST /groups.
func (h *GroupHandler) Create(c *gin.Context) {
	user := middleware.Username(c)

	var req struct {
		Name    string   `json:"name"`
		Kind    string   `json:"kind"`
		Members []string `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := models.GroupKind(req.Kind)
	if kind == "" {
		kind = models.GroupKindGroup
	}

	group, err := h.groups.Create(c.Request.Context(), user, req.Name, kind, req.Members)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "group_create", user, map[string]any{"groupId": group.ID, "kind": string(group.Kind)})
	c.JSON(http.StatusCreated, group)
}

// List handles GET /groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Detail handles GET /groups/:group_id.
func (h *GroupHandler) Detail(c *gin.Context) {
	detail, err := h.groups.Detail(c.Request.Context(), middleware.Username(c), c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Join handles POST /groups/:group_id/join.
func (h *GroupHandler) Join(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")
	if err := h.groups.Join(c.Request.Context(), user, groupID); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_join", user, map[string]any{"groupId": groupID})
	c.Status(http.StatusNoContent)
}

// Invite handles POST /groups/:group_id/invite.
func (h *GroupHandler) Invite(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.Invite(c.Request.Context(), user, req.Username, groupID); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_invite", user, map[string]any{"groupId": groupID, "target": req.Username})
	c.Status(http.StatusNoContent)
}

// Kick handles POST /groups/:group_id/kick.
func (h *GroupHandler) Kick(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.Kick(c.Request.Context(), user, req.Username, groupID); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_kick", user, map[string]any{"groupId": groupID, "target": req.Username})
	c.Status(http.StatusNoContent)
}

// SetAdmin handles PUT /groups/:group_id/admins.
func (h *GroupHandler) SetAdmin(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Username string `json:"username" binding:"required"`
		IsAdmin  *bool  `json:"isAdmin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.SetAdmin(c.Request.Context(), user, req.Username, groupID, *req.IsAdmin); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_set_admin", user, map[string]any{"groupId": groupID, "target": req.Username, "isAdmin": *req.IsAdmin})
	c.Status(http.StatusNoContent)
}

// Leave handles POST /groups/:group_id/leave.
func (h *GroupHandler) Leave(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")
	if err := h.groups.Leave(c.Request.Context(), user, groupID); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_leave", user, map[string]any{"groupId": groupID})
	c.Status(http.StatusNoContent)
}

// Mute handles POST /groups/:group_id/mute.
func (h *GroupHandler) Mute(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Username        string `json:"username" binding:"required"`
		DurationSeconds int64  `json:"durationSeconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.Mute(c.Request.Context(), user, req.Username, groupID, req.DurationSeconds); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_mute", user, map[string]any{"groupId": groupID, "target": req.Username, "durationSeconds": req.DurationSeconds})
	c.Status(http.StatusNoContent)
}

// Unmute handles POST /groups/:group_id/unmute.
func (h *GroupHandler) Unmute(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.Unmute(c.Request.Context(), user, req.Username, groupID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateInfo handles PATCH /groups/:group_id.
func (h *GroupHandler) UpdateInfo(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.UpdateInfo(c.Request.Context(), user, groupID, req.Name, req.Avatar); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetInvitePolicy handles PUT /groups/:group_id/invite-policy.
func (h *GroupHandler) SetInvitePolicy(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	var req struct {
		Policy string `json:"policy" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.SetInvitePolicy(c.Request.Context(), user, groupID, models.InvitePolicy(req.Policy)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pin handles PUT /groups/:group_id/pin.
func (h *GroupHandler) Pin(c *gin.Context) {
	if err := h.groups.Pin(c.Request.Context(), middleware.Username(c), c.Param("group_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unpin handles DELETE /groups/:group_id/pin.
func (h *GroupHandler) Unpin(c *gin.Context) {
	if err := h.groups.Unpin(c.Request.Context(), middleware.Username(c), c.Param("group_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pinned handles GET /me/pins.
func (h *GroupHandler) Pinned(c *gin.Context) {
	pins, err := h.groups.Pinned(c.Request.Context(), middleware.Username(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pins": pins})
}

// Delete handles DELETE /groups/:group_id.
func (h *GroupHandler) Delete(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")
	if err := h.groups.Delete(c.Request.Context(), user, groupID); err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_delete", user, map[string]any{"groupId": groupID})
	c.Status(http.StatusNoContent)
}

// ResetID handles POST /groups/:group_id/reset-id.
func (h *GroupHandler) ResetID(c *gin.Context) {
	user := middleware.Username(c)
	groupID := c.Param("group_id")

	newID, err := h.groups.ResetID(c.Request.Context(), user, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit.Emit(c.Request.Context(), "group_reset_id", user, map[string]any{"oldId": groupID, "newId": newID})
	c.JSON(http.StatusOK, gin.H{"groupId": newID})
}
