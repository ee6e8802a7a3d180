package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
)

type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	accessTTL time.Duration
	blacklist Blacklist
}

func NewManager(secret string, accessTTL time.Duration, blacklist Blacklist) *Manager {
	if blacklist == nil {
		blacklist = NewMemoryBlacklist()
	}

	return &Manager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		blacklist: blacklist,
	}
}

func (m *Manager) GenerateAccessToken(userID, email string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID: userID,
		Email:  email,
		JTI:    uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parseAndValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// VerifyAccessToken checks the signature and expiry, then the logout
// blacklist. A token that was logged out keeps failing here until its
// natural expiry even though the signature is still valid.

func (m *Manager) VerifyAccessToken(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := m.parseAndValidate(tokenStr)

	if err != nil {
		return nil, err
	}

	if claims.JTI == "" {
		return nil, ErrTokenMalformed
	}

	revoked, err := m.blacklist.IsRevoked(ctx, claims.JTI)

	if err != nil {
		// fail closed: an unreachable blacklist must not admit revoked tokens
		return nil, ErrTokenRevoked
	}

	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// RevokeToken blacklists the token's JTI for the remainder of its lifetime.
// Idempotent: revoking twice is not an error.

func (m *Manager) RevokeToken(ctx context.Context, claims *Claims) error {
	ttl := m.accessTTL

	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}

	if ttl < time.Second {
		ttl = time.Second
	}

	return m.blacklist.Revoke(ctx, claims.JTI, ttl)
}
