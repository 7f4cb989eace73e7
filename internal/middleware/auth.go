// Package middleware gates requests on the access token. An expired access
// token is transparently refreshed from the refresh-token cookie, so a client
// with a live session never sees the expiry.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/erbaiy/PediTrack-api/internal/config"
	"github.com/erbaiy/PediTrack-api/internal/token"
)

// TokenLocation selects where the authenticator looks for the access token.
type TokenLocation int

const (
	LocationHeader TokenLocation = iota // Authorization: Bearer <token> (default)
	LocationCookie                      // accessToken cookie
	LocationQuery                       // ?token=
	LocationParam                       // /:token route parameter
)

// Context keys set for downstream handlers.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
	CtxClaims   = "claims"
)

// Options is the per-route policy: where the token lives and which roles may
// pass. Zero value means header extraction with no role restriction.
type Options struct {
	Location TokenLocation
	Roles    []string
}

// Authenticator verifies access tokens and performs refresh-on-expiry.
type Authenticator struct {
	codec *token.Codec
	cfg   *config.Config
	log   *slog.Logger
}

func NewAuthenticator(codec *token.Codec, cfg *config.Config, log *slog.Logger) *Authenticator {
	return &Authenticator{codec: codec, cfg: cfg, log: log}
}

// RequireAuth guards a route with the default policy.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return a.RequireAuthWith(Options{})
}

// RequireRoles guards a route and additionally checks the decoded role
// against the allowed set.
func (a *Authenticator) RequireRoles(roles ...string) gin.HandlerFunc {
	return a.RequireAuthWith(Options{Roles: roles})
}

// RequireAuthWith guards a route with an explicit policy.
//
// The flow is a small state machine: NO_TOKEN and TOKEN_INVALID reject;
// TOKEN_VALID attaches claims and runs the role check; TOKEN_EXPIRED attempts
// a refresh from the refreshToken cookie and, on success, mints and sets a
// new access token before letting the request through.
func (a *Authenticator) RequireAuthWith(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractToken(c, opts.Location)
		if accessToken == "" {
			reject(c, http.StatusUnauthorized, "access token not found")
			return
		}

		claims, err := a.codec.Verify(accessToken, token.Access)
		switch {
		case err == nil:
			if !roleAllowed(claims.Role, opts.Roles) {
				reject(c, http.StatusForbidden, "insufficient permissions")
				return
			}
			attachClaims(c, claims)
			c.Next()

		case errors.Is(err, token.ErrExpired):
			a.handleRefresh(c)

		default:
			reject(c, http.StatusUnauthorized, "invalid token")
		}
	}
}

// handleRefresh mints a new access token from a still-valid refresh cookie.
// The replacement token carries subject and email only; the role claim is not
// re-embedded, matching the issued-token shape relied on by existing clients.
func (a *Authenticator) handleRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refreshToken")
	if err != nil || refreshToken == "" {
		reject(c, http.StatusUnauthorized, "refresh token not found")
		return
	}

	claims, err := a.codec.Verify(refreshToken, token.Refresh)
	if err != nil {
		reject(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	newAccess, err := a.codec.Sign(token.Claims{
		Email:            claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: claims.Subject},
	}, token.Access)
	if err != nil {
		a.log.Error("minting refreshed access token failed", slog.String("error", err.Error()))
		reject(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	c.Header("Authorization", "Bearer "+newAccess)
	SetAccessCookie(c, a.cfg, newAccess)

	a.log.Info("access token refreshed", slog.String("sub", claims.Subject))
	attachClaims(c, claims)
	c.Next()
}

func attachClaims(c *gin.Context, claims *token.Claims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxUserRole, claims.Role)
	c.Set(CtxClaims, claims)
}

func roleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// reject ends the request with a short reason. Every failure path reports the
// same shape, so callers learn nothing about which stage failed beyond the
// message itself.
func reject(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func extractToken(c *gin.Context, loc TokenLocation) string {
	switch loc {
	case LocationCookie:
		tok, _ := c.Cookie("accessToken")
		return tok
	case LocationQuery:
		return c.Query("token")
	case LocationParam:
		return c.Param("token")
	default:
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return ""
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
}
