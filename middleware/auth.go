package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"food-court-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ctxUserID  = "userID"
	ctxTokenID = "tokenID"
)

var ErrTokenRevoked = errors.New("token revoked")

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues signed bearer tokens and keeps a row per token so a single
// token can be revoked without touching the user's other sessions.
type Tokens struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewTokens(db *gorm.DB, secret []byte, ttl time.Duration, logger *zap.SugaredLogger) *Tokens {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Tokens{db: db, secret: secret, ttl: ttl, logger: logger}
}

// Issue creates a signed JWT for a given user
func (t *Tokens) Issue(user *models.User, name string) (string, error) {
	now := time.Now()
	row := models.AccessToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      name,
		ExpiresAt: now.Add(t.ttl),
	}
	if err := t.db.Create(&row).Error; err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        row.ID,
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		if derr := t.db.Delete(&models.AccessToken{}, "id = ?", row.ID).Error; derr != nil {
			t.logger.Errorw("failed to remove unsigned access token", "token_id", row.ID, "error", derr)
		}
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and that the token has not been revoked.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	var row models.AccessToken
	if err := t.db.Where("id = ? AND user_id = ?", claims.ID, claims.UserID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	// a failed usage stamp does not reject an otherwise valid token
	now := time.Now()
	if err := t.db.Model(&row).Update("last_used_at", &now).Error; err != nil {
		t.logger.Warnw("failed to record token use", "token_id", row.ID, "error", err)
	}
	return claims, nil
}

// Revoke deletes a single token.
func (t *Tokens) Revoke(tokenID string) error {
	return t.db.Delete(&models.AccessToken{}, "id = ?", tokenID).Error
}

// AuthRequired validates the bearer token and injects the caller into context
func (t *Tokens) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthenticated(c)
			return
		}
		claims, err := t.Parse(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			unauthenticated(c)
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxTokenID, claims.ID)
		c.Next()
	}
}

// AuthWhen applies AuthRequired only while enabled reports true.
func (t *Tokens) AuthWhen(enabled func() bool) gin.HandlerFunc {
	auth := t.AuthRequired()
	return func(c *gin.Context) {
		if enabled() {
			auth(c)
			return
		}
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetTokenID extracts the id of the token the caller authenticated with
func GetTokenID(c *gin.Context) string {
	return c.GetString(ctxTokenID)
}
