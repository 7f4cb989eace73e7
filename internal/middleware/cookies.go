package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erbaiy/PediTrack-api/internal/config"
)

// Cookie names shared by the session issuer and the authenticator.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// SetAccessCookie writes the access-token cookie: http-only, SameSite=Strict,
// Secure in production, max-age from the configured access expiry.
func SetAccessCookie(c *gin.Context, cfg *config.Config, accessToken string) {
	setSessionCookie(c, cfg, AccessCookie, accessToken, int(cfg.JWT.AccessExpiry.Seconds()))
}

// SetAuthCookies writes both session cookies and mirrors the access token
// into the Authorization response header.
func SetAuthCookies(c *gin.Context, cfg *config.Config, accessToken, refreshToken string) {
	setSessionCookie(c, cfg, AccessCookie, accessToken, int(cfg.JWT.AccessExpiry.Seconds()))
	setSessionCookie(c, cfg, RefreshCookie, refreshToken, int(cfg.JWT.RefreshExpiry.Seconds()))
	c.Header("Authorization", "Bearer "+accessToken)
}

// ClearAuthCookies expires both session cookies.
func ClearAuthCookies(c *gin.Context, cfg *config.Config) {
	setSessionCookie(c, cfg, AccessCookie, "", -1)
	setSessionCookie(c, cfg, RefreshCookie, "", -1)
}

func setSessionCookie(c *gin.Context, cfg *config.Config, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", cfg.IsProduction(), true)
}
