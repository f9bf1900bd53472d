package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-streaming-store/internal/redisx"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "session_token"
)

// SessionStore resolves opaque session tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// UserLoader reloads the session's user so deactivated accounts lose access.
type UserLoader interface {
	Active(ctx context.Context, id string) (shop.User, error)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// optionalUser attaches the session user when the request carries a valid
// session token. Anonymous requests pass through untouched.
func optionalUser(sessions SessionStore, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := sessions.Get(r.Context(), token)
			if err != nil {
				if !errors.Is(err, redisx.ErrNoSession) {
					logger.Warn("session lookup failed", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.Active(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, &u)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()) == nil {
			writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, shop.ErrLoginRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFrom returns the session user, or nil for anonymous requests.
func userFrom(ctx context.Context) *shop.User {
	u, _ := ctx.Value(userKey).(*shop.User)
	return u
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// TokenChecker validates admin access tokens.
type TokenChecker interface {
	Check(token string) error
}

func requireAdmin(tokens TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, "missing admin token")
				return
			}
			if err := tokens.Check(token); err != nil {
				writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
