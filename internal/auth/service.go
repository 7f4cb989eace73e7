// Package auth implements the session lifecycle: login, token issuance and
// refresh, email verification and password reset. It owns no HTTP concerns;
// handlers translate its errors into responses.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erbaiy/PediTrack-api/internal/mail"
	"github.com/erbaiy/PediTrack-api/internal/models"
	"github.com/erbaiy/PediTrack-api/internal/token"
	"github.com/erbaiy/PediTrack-api/internal/utils"
)

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput is the payload accepted by Register after HTTP validation.
type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
	Address     string
	Role        string
}

type Service struct {
	users       UserStore
	mailer      mail.Mailer
	codec       *token.Codec
	frontendURL string
	log         *slog.Logger
}

func NewService(users UserStore, mailer mail.Mailer, codec *token.Codec, frontendURL string, log *slog.Logger) *Service {
	return &Service{
		users:       users,
		mailer:      mailer,
		codec:       codec,
		frontendURL: frontendURL,
		log:         log,
	}
}

// Login validates credentials and mints a session pair. Unknown email and
// wrong password are indistinguishable to the caller. An unverified account
// triggers a fresh verification email and fails with ErrEmailNotVerified.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.sendVerificationEmail(user); err != nil {
			s.log.Error("verification email failed", slog.String("email", user.Email), slog.String("error", err.Error()))
			return nil, TokenPair{}, fmt.Errorf("%w: %w", ErrMailDelivery, err)
		}
		return nil, TokenPair{}, ErrEmailNotVerified
	}

	pair, err := s.MintPair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.log.Info("user logged in", slog.String("email", user.Email), slog.String("role", user.Role))
	return user, pair, nil
}

// Refresh verifies a refresh token, re-loads the user and mints a new pair.
// Every failure collapses to token.ErrInvalid so the caller sees a single
// "invalid refresh token" condition.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.User, TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, token.Refresh)
	if err != nil {
		return nil, TokenPair{}, token.ErrInvalid
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, TokenPair{}, token.ErrInvalid
	}

	pair, err := s.MintPair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Register creates an unverified account and emails the verification link.
// A delivery failure is a hard error: the account exists but the caller is
// told the email did not go out.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleParent
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", in.Role)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FullName:    in.FullName,
		Email:       in.Email,
		Password:    hash,
		Role:        role,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		IsVerified:  false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendVerificationEmail(user); err != nil {
		s.log.Error("verification email failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}

	s.log.Info("user registered", slog.String("email", user.Email), slog.String("role", user.Role))
	return user, nil
}

// VerifyEmail consumes a verification link. The isVerified flag flips true at
// most once; a second use fails with ErrAlreadyVerified. Expired links are
// reported distinctly from tampered ones.
func (s *Service) VerifyEmail(ctx context.Context, tokenStr string) error {
	claims, err := s.codec.Verify(tokenStr, token.Verification)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if err := s.users.SetVerified(ctx, user.ID.Hex()); err != nil {
		return err
	}

	s.log.Info("email verified", slog.String("email", user.Email))
	return nil
}

// ForgotPassword emails a reset link. Unknown addresses are reported as such;
// this flow does not hide account existence.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken, err := s.codec.Sign(token.Claims{
		Email:            user.Email,
		Role:             user.Role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.Hex()},
	}, token.Reset)
	if err != nil {
		return err
	}

	subject, body := mail.PasswordResetEmail(s.frontendURL, resetToken)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		s.log.Error("password reset email failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}

	s.log.Info("password reset email sent", slog.String("email", user.Email))
	return nil
}

// ResetPassword replaces the stored hash for the token's subject. The token
// stays valid until its natural expiry; there is no single-use invalidation.
func (s *Service) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	claims, err := s.codec.Verify(tokenStr, token.Reset)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID.Hex(), hash); err != nil {
		return err
	}

	s.log.Info("password reset", slog.String("email", user.Email))
	return nil
}

// GetUserByID backs the /auth/me endpoint.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// MintPair issues an access and refresh token carrying subject, email and
// role.
func (s *Service) MintPair(user *models.User) (TokenPair, error) {
	claims := token.Claims{
		Email:            user.Email,
		Role:             user.Role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.Hex()},
	}

	access, err := s.codec.Sign(claims, token.Access)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.Sign(claims, token.Refresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sendVerificationEmail(user *models.User) error {
	verifyToken, err := s.codec.Sign(token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.Hex()},
	}, token.Verification)
	if err != nil {
		return err
	}

	subject, body := mail.VerificationEmail(s.frontendURL, verifyToken)
	return s.mailer.Send(user.Email, subject, body)
}
