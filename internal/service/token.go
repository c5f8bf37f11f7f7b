package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sunflower-post/backend/config"
	"github.com/sunflower-post/backend/internal/repository"
)

// TokenManager issues and verifies HS256 access tokens whose subject is the user id.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &TokenManager{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(userID string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse returns the user id of a valid token.
func (m *TokenManager) Parse(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrUnauthorized)
	}
	return claims.Subject, nil
}

// Authenticator accepts a token only while its account still exists, so a
// deleted account cannot keep writing with a token that has not expired.
type Authenticator struct {
	tokens *TokenManager
	users  repository.UserRepository
}

func NewAuthenticator(tokens *TokenManager, users repository.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := a.tokens.Parse(token)
	if err != nil {
		return "", err
	}
	ok, err := a.users.Exists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("check account: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
	}
	return userID, nil
}
