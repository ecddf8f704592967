package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload signed into both access and refresh tokens.
// Subject holds the user id; Email and Name are copies taken at issuance time.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenPayload is what the auth service asks the signer to embed.
type TokenPayload struct {
	Subject string
	Email   string
	Name    string
}

// PayloadFromUser builds a payload from the current user record.
func PayloadFromUser(u *User) TokenPayload {
	return TokenPayload{Subject: u.ID.String(), Email: u.Email, Name: u.Name}
}
