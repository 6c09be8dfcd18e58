package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

// Token scopes. A token is only accepted for the purpose its scope names.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

// Email-verification tokens carry no scope claim and always live 7 days.
const emailTokenTTL = 7 * 24 * time.Hour

type tokenClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the JWTs issued by the service.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec constructs a codec for the given shared secret. Only HS256
// and HS512 are accepted.
func NewTokenCodec(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*TokenCodec, error) {
	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// CreateAccessToken issues a short-lived access token for the subject email.
func (c *TokenCodec) CreateAccessToken(email string) (string, error) {
	return c.create(email, ScopeAccess, c.accessTTL)
}

// CreateRefreshToken issues a long-lived refresh token for the subject email.
func (c *TokenCodec) CreateRefreshToken(email string) (string, error) {
	return c.create(email, ScopeRefresh, c.refreshTTL)
}

// CreateEmailToken issues an email-verification token for the subject email.
func (c *TokenCodec) CreateEmailToken(email string) (string, error) {
	return c.create(email, "", emailTokenTTL)
}

func (c *TokenCodec) create(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// ParseAccessToken validates an access token and returns the subject email.
func (c *TokenCodec) ParseAccessToken(token string) (string, error) {
	return c.parse(token, ScopeAccess)
}

// ParseRefreshToken validates a refresh token and returns the subject email.
func (c *TokenCodec) ParseRefreshToken(token string) (string, error) {
	return c.parse(token, ScopeRefresh)
}

// ParseEmailToken validates an email-verification token and returns the
// subject email.
func (c *TokenCodec) ParseEmailToken(token string) (string, error) {
	return c.parse(token, "")
}

func (c *TokenCodec) parse(token, wantScope string) (string, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}))
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: token rejected", httpx.ErrUnauthorized)
	}
	if claims.Scope != wantScope {
		return "", fmt.Errorf("%w: invalid scope for token", httpx.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", httpx.ErrUnauthorized)
	}
	return claims.Subject, nil
}
