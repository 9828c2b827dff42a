package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuskul/crm-console-api/internal/apperrors"
	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// Claims is the JWT payload carried by console tokens.
type Claims struct {
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"org_id"`
	Role           string `json:"role"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies console tokens with a shared HS256 secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user and returns it with its expiry.
func (m *Manager) Issue(user *model.User) (string, time.Time, error) {
	now := utils.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		Name:           user.Name,
		Email:          user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies a token and reconstructs the session it carries.
func (m *Manager) Parse(tokenString string) (*session.Session, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %w", apperrors.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthenticated)
	}
	if claims.Role != session.RoleOwner && claims.Role != session.RoleEmployee {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrUnauthenticated, claims.Role)
	}

	return &session.Session{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
		Name:           claims.Name,
		Email:          claims.Email,
	}, nil
}
