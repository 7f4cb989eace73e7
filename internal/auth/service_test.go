package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erbaiy/PediTrack-api/internal/config"
	"github.com/erbaiy/PediTrack-api/internal/models"
	"github.com/erbaiy/PediTrack-api/internal/token"
	"github.com/erbaiy/PediTrack-api/internal/utils"
)

type mockUserStore struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	verifiedCalls []string
	passwordCalls map[string]string
	createErr     error
}

func newMockStore(users ...*models.User) *mockUserStore {
	s := &mockUserStore{
		byEmail:       map[string]*models.User{},
		byID:          map[string]*models.User{},
		passwordCalls: map[string]string{},
	}
	for _, u := range users {
		s.byEmail[u.Email] = u
		s.byID[u.ID.Hex()] = u
	}
	return s
}

func (s *mockUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, ErrStoreNotFound
}

func (s *mockUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, ErrStoreNotFound
}

func (s *mockUserStore) Create(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.byEmail[NormalizeEmail(user.Email)]; ok {
		return ErrEmailTaken
	}
	user.ID = primitive.NewObjectID()
	user.Email = NormalizeEmail(user.Email)
	s.byEmail[user.Email] = user
	s.byID[user.ID.Hex()] = user
	return nil
}

func (s *mockUserStore) SetVerified(_ context.Context, id string) error {
	u, ok := s.byID[id]
	if !ok {
		return ErrStoreNotFound
	}
	u.IsVerified = true
	s.verifiedCalls = append(s.verifiedCalls, id)
	return nil
}

func (s *mockUserStore) SetPassword(_ context.Context, id, hash string) error {
	u, ok := s.byID[id]
	if !ok {
		return ErrStoreNotFound
	}
	u.Password = hash
	s.passwordCalls[id] = hash
	return nil
}

type mockMailer struct {
	sent []string // recipients
	err  error
}

func (m *mockMailer) Send(to, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:              "service-test-secret",
		AccessExpiry:        15 * time.Minute,
		RefreshExpiry:       7 * 24 * time.Hour,
		VerificationExpiry:  24 * time.Hour,
		PasswordResetExpiry: time.Hour,
	}
}

func newTestService(store *mockUserStore, mailer *mockMailer) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec(testJWTConfig())
	return NewService(store, mailer, codec, "https://app.example", log)
}

func testUser(t *testing.T, email, password, role string, verified bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:         primitive.NewObjectID(),
		FullName:   "Test User",
		Email:      email,
		Password:   hash,
		Role:       role,
		IsVerified: verified,
	}
}

func TestLogin_Success(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleDoctor, true)
	store := newMockStore(user)
	mailer := &mockMailer{}
	svc := newTestService(store, mailer)

	got, pair, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, got.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Empty(t, mailer.sent)

	// The minted access token round-trips with the user's identity.
	claims, err := token.NewCodec(testJWTConfig()).Verify(pair.AccessToken, token.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleDoctor, claims.Role)
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, true)
	svc := newTestService(newMockStore(user), &mockMailer{})

	_, pair, err := svc.Login(context.Background(), "  A@X.COM ", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLogin_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleDoctor, true)
	svc := newTestService(newMockStore(user), &mockMailer{})

	_, _, errWrongPass := svc.Login(context.Background(), "a@x.com", "wrong")
	_, _, errNoUser := svc.Login(context.Background(), "nobody@x.com", "secret123")

	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestLogin_Unverified(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, false)
	store := newMockStore(user)
	mailer := &mockMailer{}
	svc := newTestService(store, mailer)

	_, pair, err := svc.Login(context.Background(), "a@x.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Empty(t, pair.AccessToken)
	// A fresh verification email goes out on every blocked attempt.
	assert.Equal(t, []string{"a@x.com"}, mailer.sent)
}

func TestLogin_Unverified_MailFailureIsDistinct(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, false)
	svc := newTestService(newMockStore(user), &mockMailer{err: fmt.Errorf("smtp down")})

	_, _, err := svc.Login(context.Background(), "a@x.com", "secret123")
	assert.ErrorIs(t, err, ErrMailDelivery)
	assert.NotErrorIs(t, err, ErrEmailNotVerified)
}

func TestRegister_SendsVerificationEmail(t *testing.T) {
	store := newMockStore()
	mailer := &mockMailer{}
	svc := newTestService(store, mailer)

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName: "New Parent",
		Email:    "Parent@X.com",
		Password: "secret123",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)
	assert.Equal(t, "parent@x.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.Equal(t, []string{"parent@x.com"}, mailer.sent)
	// The stored password is a hash, never the plaintext.
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, utils.CheckPasswordHash("secret123", user.Password))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	existing := testUser(t, "a@x.com", "secret123", models.RoleParent, true)
	svc := newTestService(newMockStore(existing), &mockMailer{})

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Dup",
		Email:    "a@x.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := newTestService(newMockStore(), &mockMailer{})

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Bad Role",
		Email:    "b@x.com",
		Password: "secret123",
		Role:     "superuser",
	})
	assert.Error(t, err)
}

func TestVerifyEmail_FlipsOnce(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, false)
	store := newMockStore(user)
	svc := newTestService(store, &mockMailer{})

	codec := token.NewCodec(testJWTConfig())
	verifyToken, err := codec.Sign(token.Claims{
		RegisteredClaims: jwtSubject(user.ID.Hex()),
	}, token.Verification)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(context.Background(), verifyToken))
	assert.True(t, user.IsVerified)

	// Second use of the same link: already verified, never un-verifies.
	err = svc.VerifyEmail(context.Background(), verifyToken)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.True(t, user.IsVerified)
}

func TestVerifyEmail_ExpiredVsInvalid(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, false)
	svc := newTestService(newMockStore(user), &mockMailer{})

	expiredCodec := token.NewCodec(config.JWTConfig{
		Secret:             "service-test-secret",
		VerificationExpiry: -time.Second,
	})
	expired, err := expiredCodec.Sign(token.Claims{RegisteredClaims: jwtSubject(user.ID.Hex())}, token.Verification)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), expired), token.ErrExpired)
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "garbage"), token.ErrInvalid)
}

func TestVerifyEmail_CrossClassTokenRejected(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleDoctor, true)
	svc := newTestService(newMockStore(user), &mockMailer{})

	// An access token must not work as a verification link.
	_, pair, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), pair.AccessToken), token.ErrInvalid)
}

func TestForgotPassword(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, true)
	mailer := &mockMailer{}
	svc := newTestService(newMockStore(user), mailer)

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@x.com"))
	assert.Equal(t, []string{"a@x.com"}, mailer.sent)

	assert.ErrorIs(t, svc.ForgotPassword(context.Background(), "nobody@x.com"), ErrUserNotFound)
}

func TestForgotPassword_MailFailure(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleParent, true)
	svc := newTestService(newMockStore(user), &mockMailer{err: fmt.Errorf("smtp down")})

	err := svc.ForgotPassword(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrMailDelivery)
}

func TestResetPassword_TokenReplayable(t *testing.T) {
	user := testUser(t, "a@x.com", "old-secret", models.RoleParent, true)
	store := newMockStore(user)
	svc := newTestService(store, &mockMailer{})

	codec := token.NewCodec(testJWTConfig())
	resetToken, err := codec.Sign(token.Claims{
		Email:            user.Email,
		Role:             user.Role,
		RegisteredClaims: jwtSubject(user.ID.Hex()),
	}, token.Reset)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), resetToken, "new-secret-1"))
	assert.True(t, utils.CheckPasswordHash("new-secret-1", user.Password))

	// No single-use enforcement: the same token works again until expiry.
	require.NoError(t, svc.ResetPassword(context.Background(), resetToken, "new-secret-2"))
	assert.True(t, utils.CheckPasswordHash("new-secret-2", user.Password))
}

func TestRefresh(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleDoctor, true)
	svc := newTestService(newMockStore(user), &mockMailer{})

	_, pair, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)

	got, newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, newPair.AccessToken)
	assert.NotEmpty(t, newPair.RefreshToken)

	// Access tokens are not refresh tokens.
	_, _, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalid)
}

func jwtSubject(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{Subject: sub}
}

func TestGetUserByID(t *testing.T) {
	user := testUser(t, "a@x.com", "secret123", models.RoleAdmin, true)
	svc := newTestService(newMockStore(user), &mockMailer{})

	got, err := svc.GetUserByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetUserByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
