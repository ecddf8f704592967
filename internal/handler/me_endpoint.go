package handler

import (
	"net/http"

	"focus-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getMe returns the identity resolved by the access guard. Email and name
// come from the live user record, not from the token.
func (h *AuthHandler) getMe(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	zap.L().Debug("Handling /me request", zap.String("userID", id.ID.String()))
	c.JSON(http.StatusOK, id)
}

// updateMe changes the display name. Tokens issued before the change keep
// the old name until the next refresh.
func (h *AuthHandler) updateMe(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Name == nil {
		handleServiceError(c, models.NewValidationError("name", "is required"))
		return
	}

	user, err := h.authService.UpdateName(c.Request.Context(), id.ID, *req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	zap.L().Info("User name updated", zap.String("userID", user.ID.String()))
	c.JSON(http.StatusOK, user)
}
