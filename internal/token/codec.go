// Package token signs and verifies the JWTs used for sessions, email
// verification and password resets. Each token class carries its own expiry
// and its own key binding, so a token minted for one class never verifies
// under another.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erbaiy/PediTrack-api/internal/config"
)

// Class selects the signing policy for a token.
type Class string

const (
	Access       Class = "access"
	Refresh      Class = "refresh"
	Verification Class = "verification"
	Reset        Class = "reset"
)

var (
	// ErrExpired is returned when a token's signature is fine but its
	// expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers bad signatures, malformed tokens and tokens signed
	// for a different class.
	ErrInvalid = errors.New("invalid token")
)

// Claims is the decoded payload of a signed token. Access and refresh tokens
// carry subject, email and role; verification tokens carry the subject only.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies claims against the process-wide JWT configuration.
// It is safe for concurrent use; the configuration is read-only after
// construction.
type Codec struct {
	cfg config.JWTConfig
}

func NewCodec(cfg config.JWTConfig) *Codec {
	return &Codec{cfg: cfg}
}

// Sign encodes the claims with the expiry and key configured for the class.
func (c *Codec) Sign(claims Claims, class Class) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.Expiry(class)))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.key(class))
}

// Verify decodes a token string minted for the given class. Expired tokens
// are reported as ErrExpired regardless of signature validity on the rest of
// the chain; everything else that fails maps to ErrInvalid.
func (c *Codec) Verify(tokenStr string, class Class) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.key(class), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// Expiry returns the configured lifetime for a token class.
func (c *Codec) Expiry(class Class) time.Duration {
	switch class {
	case Refresh:
		return c.cfg.RefreshExpiry
	case Verification:
		return c.cfg.VerificationExpiry
	case Reset:
		return c.cfg.PasswordResetExpiry
	default:
		return c.cfg.AccessExpiry
	}
}

// key binds the shared secret to a class. A refresh token presented where an
// access token is expected fails signature verification outright.
func (c *Codec) key(class Class) []byte {
	return []byte(c.cfg.Secret + ":" + string(class))
}
