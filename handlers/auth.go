package handlers

import (
	"errors"
	"net/http"
	"strings"

	"food-court-api/middleware"
	"food-court-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenName = "api-token"

type SignupRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Signup creates a new account and returns its first token
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "Admin"
	}

	// Check email uniqueness
	var existing int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		serverError(c, "Failed to create user", err)
		return
	}
	if existing > 0 {
		validationFailed(c, FieldErrors{"email": {"The email has already been taken."}})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(c, "Failed to hash password", err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			validationFailed(c, FieldErrors{"email": {"The email has already been taken."}})
			return
		}
		serverError(c, "Failed to create user", err)
		return
	}

	token, err := h.Tokens.Issue(&user, tokenName)
	if err != nil {
		serverError(c, "Failed to generate token", err)
		return
	}

	h.Logger.Infow("user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered",
		"token":   token,
		"user":    user,
	})
}

// Login authenticates a user and returns a new token; earlier tokens stay valid
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			serverError(c, "Login failed", err)
			return
		}
		invalidCredentials(c)
		return
	}

	if !user.CanAuthenticate() {
		invalidCredentials(c)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		invalidCredentials(c)
		return
	}

	token, err := h.Tokens.Issue(&user, tokenName)
	if err != nil {
		serverError(c, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout revokes only the token used for this request
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Tokens.Revoke(middleware.GetTokenID(c)); err != nil {
		serverError(c, "Logout failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, middleware.GetUserID(c)).Error; err != nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
}
