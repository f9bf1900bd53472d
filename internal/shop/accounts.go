package shop

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
)

const (
	MinPasswordLen     = 6
	DefaultCountryCode = "+51"
)

type AccountStore interface {
	// CreateUser returns a StateConflict error when username or email is taken.
	CreateUser(ctx context.Context, u User) error
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
}

type Registration struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func (r *Registration) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.CountryCode = strings.TrimSpace(r.CountryCode)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	if r.CountryCode == "" {
		r.CountryCode = DefaultCountryCode
	}
}

func (r Registration) Validate() error {
	if r.Name == "" || r.Phone == "" || r.Email == "" || r.Username == "" || r.Password == "" {
		return apperr.Validation("name, phone, email, username and password are required")
	}
	if len(r.Password) < MinPasswordLen {
		return apperr.Validation("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

type Accounts struct {
	Store     AccountStore
	Publisher feed.Publisher
	Log       *slog.Logger
}

// HashPassword bcrypt-hashes a customer password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (a *Accounts) Register(ctx context.Context, r Registration) (User, error) {
	r.normalize()
	if err := r.Validate(); err != nil {
		return User{}, err
	}
	hash, err := HashPassword(r.Password)
	if err != nil {
		return User{}, apperr.Validation("password cannot be hashed")
	}
	now := time.Now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         r.Name,
		Phone:        r.Phone,
		CountryCode:  r.CountryCode,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		if !errors.Is(err, apperr.ErrStateConflict) {
			a.Log.Error("register user failed", slog.String("username", u.Username), slog.Any("error", err))
		}
		return User{}, err
	}
	a.Publisher.Publish(ctx, feed.TableUsers, feed.OpInsert, u.ID)
	a.Log.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// Login checks username and password. Unknown, inactive and mismatching
// accounts all yield ErrBadCredentials.
func (a *Accounts) Login(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, apperr.Validation("username and password are required")
	}
	u, err := a.Store.UserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return User{}, ErrBadCredentials
	}
	if err != nil {
		a.Log.Error("login lookup failed", slog.Any("error", err))
		return User{}, err
	}
	if !u.IsActive {
		return User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

// Active returns the user behind a session, rejecting deactivated accounts.
func (a *Accounts) Active(ctx context.Context, id string) (User, error) {
	u, err := a.Store.UserByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return User{}, ErrLoginRequired
	}
	if err != nil {
		return User{}, err
	}
	if !u.IsActive {
		return User{}, ErrLoginRequired
	}
	return u, nil
}
