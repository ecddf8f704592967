package handler

import (
	"errors"
	"net/http"

	"focus-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, err error) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    models.ErrCodeValidation,
			Message: "Validation failed",
			Fields:  validationErr.Fields,
		})
	case errors.Is(err, models.ErrEmailAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, models.ErrorResponse{Code: models.ErrCodeConflict, Message: "Email already exists"})
	case models.IsUnauthorized(err), errors.Is(err, models.ErrUserNotFound):
		zap.L().Debug("Request unauthorized", zap.Error(err))
		abortUnauthorized(c)
	case errors.Is(err, models.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid input data"})
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"})
	}
}

func abortBadRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body"})
}
