package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/chess2earn/backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager provides logic for issuing and parsing signed session tokens.
type TokenManager interface {
	NewJWT(userID uuid.UUID) (string, time.Duration, error)
	Parse(accessToken string) (string, error)
	ParseIgnoringExpiry(accessToken string) (string, error)
}

type Manager struct {
	signingKey string
	tokenTTL   time.Duration
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if cfg.TokenTTL == 0 {
		return nil, errors.New("empty token ttl")
	}

	return &Manager{
		signingKey: cfg.SigningKey,
		tokenTTL:   cfg.TokenTTL,
	}, nil
}

func (m *Manager) NewJWT(userID uuid.UUID) (string, time.Duration, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Subject:   userID.String(),
	})

	signed, err := token.SignedString([]byte(m.signingKey))
	if err != nil {
		return "", 0, fmt.Errorf("sign jwt failed: %w", err)
	}

	return signed, m.tokenTTL, nil
}

// Parse verifies the token signature and expiry and returns its subject.
// An expired token yields an error matching jwt.ErrTokenExpired.
func (m *Manager) Parse(accessToken string) (string, error) {
	token, err := jwt.Parse(accessToken, m.keyFunc)
	if err != nil {
		return "", err
	}

	return subject(token)
}

// ParseIgnoringExpiry verifies the token signature but skips claim
// validation, so an expired token still yields its subject. Used only by the
// refresh flow; a token with a bad signature is still rejected.
func (m *Manager) ParseIgnoringExpiry(accessToken string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.Parse(accessToken, m.keyFunc)
	if err != nil {
		return "", err
	}

	return subject(token)
}

func (m *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(m.signingKey), nil
}

func subject(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("error get user claims from token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token has no subject")
	}

	return sub, nil
}
