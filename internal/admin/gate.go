package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

var (
	ErrWrongSecret  = fmt.Errorf("%w: wrong admin secret", apperr.ErrAuthDenied)
	ErrGateDisabled = fmt.Errorf("%w: admin access is not configured", apperr.ErrAuthDenied)
	ErrBadToken     = fmt.Errorf("%w: invalid or expired admin token", apperr.ErrAuthDenied)
)

// Verifier checks the secret typed at the admin gate.
type Verifier interface {
	Verify(secret string) error
}

// BcryptVerifier compares against a bcrypt hash. An empty hash locks the gate.
type BcryptVerifier struct {
	Hash string
}

func (v BcryptVerifier) Verify(secret string) error {
	if v.Hash == "" {
		return ErrGateDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.Hash), []byte(secret)); err != nil {
		return ErrWrongSecret
	}
	return nil
}

// HashSecret returns the bcrypt hash to configure as the admin secret.
func HashSecret(secret string) (string, error) {
	if len(secret) < 8 {
		return "", apperr.Validation("admin secret must be at least 8 characters")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

const tokenSubject = "admin"

// Tokens issues and checks the HS256 tokens handed out after the gate.
type Tokens struct {
	Key []byte
	TTL time.Duration
	now func() time.Time
}

func (t *Tokens) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

func (t *Tokens) Issue() (string, time.Time, error) {
	if len(t.Key) == 0 {
		return "", time.Time{}, ErrGateDisabled
	}
	now := t.clock()
	exp := now.Add(t.TTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   tokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, exp, nil
}

func (t *Tokens) Check(raw string) error {
	if len(t.Key) == 0 {
		return ErrGateDisabled
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return t.Key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(tokenSubject),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: expired", ErrBadToken)
		}
		return ErrBadToken
	}
	return nil
}

// Gate opens an admin session when the secret verifies.
type Gate struct {
	Verifier Verifier
	Tokens   *Tokens
}

func (g *Gate) Open(secret string) (string, time.Time, error) {
	if err := g.Verifier.Verify(secret); err != nil {
		return "", time.Time{}, err
	}
	return g.Tokens.Issue()
}

func (g *Gate) Check(token string) error { return g.Tokens.Check(token) }
