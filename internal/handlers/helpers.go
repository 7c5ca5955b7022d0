package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/chat"
)

// respondError maps a taxonomy error onto its HTTP status. Anything outside
// the taxonomy is masked as a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal"

	switch {
	case errors.Is(err, chat.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, chat.ErrNotMember),
		errors.Is(err, chat.ErrPermissionDenied),
		errors.Is(err, chat.ErrMuted),
		errors.Is(err, chat.ErrEditWindowExpired):
		status, message = http.StatusForbidden, wireMessage(err)
	case errors.Is(err, chat.ErrNotFound):
		status, message = http.StatusNotFound, chat.ErrNotFound.Error()
	case errors.Is(err, chat.ErrAlreadyExists),
		errors.Is(err, chat.ErrInvalidState):
		status, message = http.StatusConflict, wireMessage(err)
	}

	c.JSON(status, gin.H{"error": message})
}

func wireMessage(err error) string {
	for _, sentinel := range []error{
		chat.ErrNotMember,
		chat.ErrPermissionDenied,
		chat.ErrMuted,
		chat.ErrEditWindowExpired,
		chat.ErrAlreadyExists,
		chat.ErrInvalidState,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal"
}
