package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/erbaiy/PediTrack-api/internal/auth"
	"github.com/erbaiy/PediTrack-api/internal/middleware"
	"github.com/erbaiy/PediTrack-api/internal/models"
	"github.com/erbaiy/PediTrack-api/internal/token"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Role        string `json:"role"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// Login validates credentials, sets both session cookies and returns the
// access token in the body. No cookie is set unless the full success path
// completes.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}

	middleware.SetAuthCookies(c, h.Cfg, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// RefreshToken mints a fresh pair from the refreshToken cookie.
func (h *Handler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token not found"})
		return
	}

	_, pair, err := h.Auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	middleware.SetAuthCookies(c, h.Cfg, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Token refreshed successfully",
		"accessToken": pair.AccessToken,
	})
}

// RegisterUser creates an unverified account and sends the verification link.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), auth.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        req.Role,
	})
	if err != nil {
		h.authError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"userId":  user.ID.Hex(),
		"message": "User created successfully. Check your email for verification",
	})
}

// VerifyEmail consumes the emailed verification link.
func (h *Handler) VerifyEmail(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No token provided"})
		return
	}

	if err := h.Auth.VerifyEmail(c.Request.Context(), tokenStr); err != nil {
		h.authError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// ForgotPassword sends a reset link to a known account.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.authError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent successfully"})
}

// ResetPassword replaces the password authorized by a reset token.
func (h *Handler) ResetPassword(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No token provided"})
		return
	}

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Auth.ResetPassword(c.Request.Context(), tokenStr, req.NewPassword); err != nil {
		h.authError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.Auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.authError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout clears both session cookies. The tokens themselves stay valid until
// expiry; there is no revocation list.
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearAuthCookies(c, h.Cfg)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ListUsers returns every account. Admin only.
func (h *Handler) ListUsers(c *gin.Context) {
	cursor, err := h.DB.Collection("users").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	defer cursor.Close(c.Request.Context())

	users := make([]models.User, 0)
	if err := cursor.All(c.Request.Context(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserRole changes an account's role. Admin only.
func (h *Handler) UpdateUserRole(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	res, err := h.DB.Collection("users").UpdateOne(c.Request.Context(),
		bson.M{"_id": userID}, bson.M{"$set": bson.M{"role": req.Role}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
}

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	res, err := h.DB.Collection("users").DeleteOne(c.Request.Context(), bson.M{"_id": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// authError maps the auth service's taxonomy onto HTTP statuses. Genuine
// unexpected faults and mail transport failures are the only 500s.
func (h *Handler) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, auth.ErrMailDelivery):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
	case errors.Is(err, auth.ErrEmailNotVerified):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email not verified. Check your email for verification"})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, auth.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already verified"})
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, token.ErrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Link has expired"})
	case errors.Is(err, token.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		h.Log.Error("auth handler error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
	}
}
