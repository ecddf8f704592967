package handler

import "focus-server/internal/models"

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required,min=8,max=72,password"`
	Name     string `json:"name" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// updateMeRequest uses a pointer so an absent name can be told apart from an empty one.
type updateMeRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
}

type authResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type logoutResponse struct {
	Message string `json:"message"`
}
