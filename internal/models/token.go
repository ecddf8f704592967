package models

import "time"

// TokenKind distinguishes the two token flavours; each has its own secret and lifetime.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenDetails holds a freshly issued access/refresh pair.
type TokenDetails struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AtExpires    time.Time `json:"at_expires"`
	RtExpires    time.Time `json:"rt_expires"`
}

// AuthResult is returned by login, register and refresh.
type AuthResult struct {
	Tokens *TokenDetails
	User   *User
}
