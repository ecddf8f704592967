package handler

import (
	"net/http"
	"time"

	"focus-server/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// cookieSettings holds the attributes shared by both token cookies.
type cookieSettings struct {
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

// newCookieSettings returns Lax same-site cookies for local development and
// Secure cross-site cookies in production, where the SPA lives on another origin.
func newCookieSettings(production bool) cookieSettings {
	s := cookieSettings{secure: false, sameSite: http.SameSiteLaxMode, now: time.Now}
	if production {
		s.secure = true
		s.sameSite = http.SameSiteNoneMode
	}
	return s
}

func (s cookieSettings) cookie(name, value string, expires time.Time) *http.Cookie {
	maxAge := int(expires.Sub(s.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: s.sameSite,
	}
}

// setTokens writes both token cookies, each expiring with its token.
func (s cookieSettings) setTokens(c *gin.Context, td *models.TokenDetails) {
	http.SetCookie(c.Writer, s.cookie(accessTokenCookie, td.AccessToken, td.AtExpires))
	http.SetCookie(c.Writer, s.cookie(refreshTokenCookie, td.RefreshToken, td.RtExpires))
}

// clear expires both token cookies.
func (s cookieSettings) clear(c *gin.Context) {
	past := time.Unix(0, 0)
	http.SetCookie(c.Writer, s.cookie(accessTokenCookie, "", past))
	http.SetCookie(c.Writer, s.cookie(refreshTokenCookie, "", past))
}
