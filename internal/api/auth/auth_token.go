package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-admin-api/config"
	"github.com/FACorreiaa/go-user-admin-api/internal/api"
)

const defaultAccessTokenTTL = time.Hour

// TokenCodec encodes a user's identity and role into a signed HS256 token and
// validates tokens on the way back in. The signing secret is fixed at
// construction and shared by every request; verification is pure computation.
type TokenCodec struct {
	secretKey      []byte
	ttl            time.Duration
	issuer         string
	buildClaims    ClaimsBuilder
	extractSubject SubjectExtractor
}

// NewTokenCodec creates a codec from the JWT configuration. buildClaims and
// extractSubject may be nil, in which case the defaults (id + role claims,
// numeric id subject) apply.
func NewTokenCodec(cfg config.JWTConfig, buildClaims ClaimsBuilder, extractSubject SubjectExtractor) (*TokenCodec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	if buildClaims == nil {
		buildClaims = DefaultClaimsBuilder
	}
	if extractSubject == nil {
		extractSubject = DefaultSubjectExtractor
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	return &TokenCodec{
		secretKey:      []byte(cfg.SecretKey),
		ttl:            ttl,
		issuer:         cfg.Issuer,
		buildClaims:    buildClaims,
		extractSubject: extractSubject,
	}, nil
}

// Issue mints an access token carrying the user's identity and role.
func (c *TokenCodec) Issue(user *api.User) (string, error) {
	now := time.Now()
	claims := c.buildClaims(user)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   c.extractSubject(user),
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a raw token, returning its claims.
// Failures wrap ErrTokenExpired or ErrTokenInvalid so callers can map them to
// the right response without inspecting strings.
func (c *TokenCodec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: the access token has expired", ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token marked invalid", ErrTokenInvalid)
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}
	return claims, nil
}
