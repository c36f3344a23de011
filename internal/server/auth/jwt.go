// Package auth issues and validates the bearer tokens handed out by /auth.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultLifetime is how long an issued token stays valid.
const DefaultLifetime = 30 * 24 * time.Hour

// Claims carries the registered aud/iss/exp claims plus the numeric user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// TokenConfig configures a TokenService. An empty Audience is derived from
// the issuer as Issuer + "/resource"; a zero Lifetime means DefaultLifetime.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Lifetime time.Duration
}

// TokenService signs and validates HS256 tokens.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	aud := cfg.Audience
	if aud == "" {
		aud = DefaultAudience(cfg.Issuer)
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: aud,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// DefaultAudience derives the audience from the issuer url. The suffix is
// appended verbatim; a trailing slash on the issuer is kept.
func DefaultAudience(issuer string) string {
	return issuer + "/resource"
}

func (s *TokenService) Audience() string { return s.audience }

// Issue signs a token for userID.
func (s *TokenService) Issue(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.lifetime)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, expiry, issuer and audience and returns
// the user id. All failures wrap common.ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (int64, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
