package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Sex   string `json:"sex,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() domain.Identity {
	return domain.Identity{ID: c.ID, Email: c.Email, Role: c.Role, Sex: c.Sex}
}

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *TokenManager) IssueAccess(id domain.Identity) (string, error) {
	return m.issue(id, m.accessSecret, m.accessTTL)
}

func (m *TokenManager) IssueRefresh(id domain.Identity) (string, error) {
	return m.issue(id, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, m.accessSecret)
}

func (m *TokenManager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, m.refreshSecret)
}

func (m *TokenManager) issue(id domain.Identity, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		ID:    id.ID,
		Email: id.Email,
		Role:  id.Role,
		Sex:   id.Sex,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
