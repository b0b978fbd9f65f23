package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spendlog/internal/auth"
	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

// Session is returned by signup and login.
type Session struct {
	Token string        `json:"token"`
	User  core.Identity `json:"user"`
}

// AuthService handles credential registration, login and token checks.
type AuthService struct {
	users  sheets.CredentialStore
	tokens *auth.Issuer
	now    func() time.Time
}

func NewAuthService(users sheets.CredentialStore, tokens *auth.Issuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

// Signup registers a new user. The uniqueness check and the append are not
// atomic on sheet-backed stores, so two concurrent signups for one email
// can both succeed.
func (s *AuthService) Signup(ctx context.Context, email, password string) (Session, error) {
	email = core.NormalizeEmail(email)
	if err := core.ValidateEmail(email); err != nil {
		return Session{}, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return Session{}, err
	}
	if !s.tokens.Configured() {
		return Session{}, core.ErrAuthNotConfigured
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, core.ErrEmailTaken
	case !errors.Is(err, core.ErrUserNotFound):
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.CreateUser(ctx, core.User{
		UserID:       sheets.NewUserID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Format(core.TimestampLayout),
	})
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.session(u.Identity())
}

// Login checks credentials. Unknown emails and wrong passwords both yield
// core.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = core.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, core.ErrCredentialsRequired
	}
	if !s.tokens.Configured() {
		return Session{}, core.ErrAuthNotConfigured
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		return Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return Session{}, core.ErrInvalidCredentials
	}
	return s.session(u.Identity())
}

// Authenticate resolves a bearer token to the identity it was issued for.
func (s *AuthService) Authenticate(token string) (core.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return core.Identity{}, core.ErrUnauthorized
	}
	return s.tokens.Verify(token)
}

func (s *AuthService) session(id core.Identity) (Session, error) {
	tok, err := s.tokens.Issue(id)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, User: id}, nil
}
