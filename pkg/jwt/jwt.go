package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tambo-herd/internal/domain/aggregate"
)

// Claims carries the caller's identity, role and establishment scope.
type Claims struct {
	UserID          string             `json:"user_id"`
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Role            aggregate.UserRole `json:"role"`
	EstablishmentID string             `json:"establishment_id"`
	jwt.RegisteredClaims
}

// Manager issues and validates HMAC-signed tokens.
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewManager(secret string, tokenTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), tokenTTL: tokenTTL}
}

// GenerateToken issues a token for the user.
func (m *Manager) GenerateToken(user *aggregate.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:          user.ID,
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
		EstablishmentID: user.EstablishmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and verifies a token string.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
