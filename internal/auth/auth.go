// Package auth implements the single-credential login and its session tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "spesa"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authorization header is missing")
)

// Claims is the JWT payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator checks the configured credential and issues HS256 tokens.
type Authenticator struct {
	username []byte
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthenticator(username, password, secret string, ttl time.Duration) (*Authenticator, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("token secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		username: []byte(username),
		password: []byte(password),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Login checks the credential and returns a signed token with its expiry.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	if !a.matches(username, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	now := a.now()
	expires := now.Add(a.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// matches compares digests so neither length nor content leaks timing.
func (a *Authenticator) matches(username, password string) bool {
	u1, u2 := sha256.Sum256([]byte(username)), sha256.Sum256(a.username)
	p1, p2 := sha256.Sum256([]byte(password)), sha256.Sum256(a.password)
	userOK := subtle.ConstantTimeCompare(u1[:], u2[:])
	passOK := subtle.ConstantTimeCompare(p1[:], p2[:])
	return userOK&passOK == 1
}

// Verify parses a token and returns its claims.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type ctxKey struct{}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the claims stored by the middleware, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
