package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erbaiy/PediTrack-api/internal/config"
)

func testCodec() *Codec {
	return NewCodec(config.JWTConfig{
		Secret:              "unit-test-secret",
		AccessExpiry:        15 * time.Minute,
		RefreshExpiry:       7 * 24 * time.Hour,
		VerificationExpiry:  24 * time.Hour,
		PasswordResetExpiry: time.Hour,
	})
}

func TestSignVerify_RoundTrip(t *testing.T) {
	c := testCodec()

	for _, class := range []Class{Access, Refresh, Verification, Reset} {
		claims := Claims{
			Email:            "a@x.com",
			Role:             "doctor",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		}

		tok, err := c.Sign(claims, class)
		require.NoError(t, err, class)

		got, err := c.Verify(tok, class)
		require.NoError(t, err, class)
		assert.Equal(t, "user-1", got.Subject)
		assert.Equal(t, "a@x.com", got.Email)
		assert.Equal(t, "doctor", got.Role)
	}
}

func TestVerify_Expired(t *testing.T) {
	c := NewCodec(config.JWTConfig{
		Secret:       "unit-test-secret",
		AccessExpiry: -time.Second,
	})

	tok, err := c.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, Access)
	require.NoError(t, err)

	_, err = c.Verify(tok, Access)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := testCodec().Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, Access)
	require.NoError(t, err)

	other := NewCodec(config.JWTConfig{Secret: "different", AccessExpiry: time.Hour})
	_, err = other.Verify(tok, Access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_CrossClassRejected(t *testing.T) {
	c := testCodec()

	refresh, err := c.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, Refresh)
	require.NoError(t, err)

	// A long-lived refresh token must never pass as an access token.
	_, err = c.Verify(refresh, Access)
	assert.ErrorIs(t, err, ErrInvalid)

	reset, err := c.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, Reset)
	require.NoError(t, err)
	_, err = c.Verify(reset, Verification)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := testCodec().Verify("not.a.jwt", Access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestExpiry_PerClass(t *testing.T) {
	c := testCodec()
	assert.Equal(t, 15*time.Minute, c.Expiry(Access))
	assert.Equal(t, 7*24*time.Hour, c.Expiry(Refresh))
	assert.Equal(t, 24*time.Hour, c.Expiry(Verification))
	assert.Equal(t, time.Hour, c.Expiry(Reset))
}
