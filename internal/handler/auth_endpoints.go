package handler

import (
	"errors"
	"net/http"

	"focus-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration data"
// @Success 201 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	h.respondWithTokens(c, http.StatusCreated, result)
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status := "error"
		if errors.Is(err, models.ErrInvalidCredentials) {
			status = "invalid_credentials"
		}
		loginsTotal.WithLabelValues(status).Inc()
		handleServiceError(c, err)
		return
	}

	loginsTotal.WithLabelValues("success").Inc()
	h.respondWithTokens(c, http.StatusOK, result)
}

// @Summary Rotate the token pair
// @Tags auth
// @Produce json
// @Success 200 {object} authResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) refresh(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		h.logger.Error("Refresh reached without an identity in context")
		abortUnauthorized(c)
		return
	}

	result, err := h.authService.RefreshTokens(c.Request.Context(), id.ID, id.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	refreshesTotal.Inc()
	h.respondWithTokens(c, http.StatusOK, result)
}

// logout never fails: it clears both cookies whether or not the caller was authenticated.
func (h *AuthHandler) logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context())
	h.cookies.clear(c)
	c.JSON(http.StatusOK, logoutResponse{Message: "Logged out"})
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, result *models.AuthResult) {
	if result == nil || result.Tokens == nil || result.User == nil {
		h.logger.Error("Auth service returned an empty result", zap.String("path", c.FullPath()))
		handleServiceError(c, models.ErrInternalServer)
		return
	}

	h.cookies.setTokens(c, result.Tokens)
	c.JSON(status, authResponse{User: result.User, AccessToken: result.Tokens.AccessToken})
}
