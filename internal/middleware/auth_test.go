package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erbaiy/PediTrack-api/internal/config"
	"github.com/erbaiy/PediTrack-api/internal/token"
)

const testSecret = "middleware-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "development"},
		JWT: config.JWTConfig{
			Secret:        testSecret,
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 7 * 24 * time.Hour,
		},
	}
}

func newTestAuthenticator(cfg *config.Config) (*Authenticator, *token.Codec) {
	codec := token.NewCodec(cfg.JWT)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthenticator(codec, cfg, log), codec
}

func signAccess(t *testing.T, sub, email, role string, expiry time.Duration) string {
	t.Helper()
	codec := token.NewCodec(config.JWTConfig{Secret: testSecret, AccessExpiry: expiry})
	tok, err := codec.Sign(token.Claims{
		Email:            email,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}, token.Access)
	require.NoError(t, err)
	return tok
}

func signRefresh(t *testing.T, sub, email, role string, expiry time.Duration) string {
	t.Helper()
	codec := token.NewCodec(config.JWTConfig{Secret: testSecret, RefreshExpiry: expiry})
	tok, err := codec.Sign(token.Claims{
		Email:            email,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}, token.Refresh)
	require.NoError(t, err)
	return tok
}

// router with a probe endpoint that echoes the attached identity.
func testRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString(CtxUserID),
			"userRole": c.GetString(CtxUserRole),
		})
	})
	return r
}

func TestRequireAuth_NoToken(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "access token not found")
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestRequireAuth_ValidToken(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, "u1", "a@x.com", "doctor", time.Minute))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"u1"`)
	assert.Contains(t, w.Body.String(), `"userRole":"doctor"`)
}

func TestRequireRoles_Forbidden(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireRoles("admin", "doctor"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, "u1", "a@x.com", "parent", time.Minute))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Wrong role is a permissions failure, not a token failure.
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient permissions")
}

func TestRequireRoles_Allowed(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireRoles("doctor"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, "u1", "a@x.com", "doctor", time.Minute))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_ExpiredWithValidRefresh(t *testing.T) {
	a, codec := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, "u1", "a@x.com", "doctor", -time.Minute))
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: signRefresh(t, "u1", "a@x.com", "doctor", time.Hour)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Request proceeds as if the original token had been valid.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":"u1"`)

	// A replacement access token is surfaced in header and cookie.
	authHeader := w.Header().Get("Authorization")
	require.True(t, len(authHeader) > len("Bearer "))
	newAccess := authHeader[len("Bearer "):]

	claims, err := codec.Verify(newAccess, token.Access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	// The refreshed token drops the role claim.
	assert.Empty(t, claims.Role)

	var accessCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == AccessCookie {
			accessCookie = ck
		}
	}
	require.NotNil(t, accessCookie, "refreshed access token cookie not set")
	assert.Equal(t, newAccess, accessCookie.Value)
	assert.True(t, accessCookie.HttpOnly)
	assert.Equal(t, "/", accessCookie.Path)
}

func TestRequireAuth_ExpiredWithoutRefresh(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, "u1", "a@x.com", "doctor", -time.Minute))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "refresh token not found")
}

func TestRequireAuth_ExpiredWithBadRefresh(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	cases := map[string]string{
		"garbage":         "not.a.jwt",
		"expired refresh": signRefresh(t, "u1", "a@x.com", "doctor", -time.Minute),
		"wrong class":     signAccess(t, "u1", "a@x.com", "doctor", time.Minute),
	}
	for name, refresh := range cases {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signAccess(t, "u1", "a@x.com", "doctor", -time.Minute))
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Contains(t, w.Body.String(), "invalid refresh token", name)
	}
}

func TestRequireAuth_QueryLocation(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuthWith(Options{Location: LocationQuery}))

	req := httptest.NewRequest(http.MethodGet, "/probe?token="+signAccess(t, "u1", "a@x.com", "parent", time.Minute), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_CookieLocation(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuthWith(Options{Location: LocationCookie}))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: signAccess(t, "u1", "a@x.com", "parent", time.Minute)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_MalformedAuthorizationHeader(t *testing.T) {
	a, _ := newTestAuthenticator(testConfig())
	r := testRouter(a.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "access token not found")
}
