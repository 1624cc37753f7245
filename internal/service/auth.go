package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/repository"
	"github.com/iliyamo/salon-reservation/internal/utils"
)

// AuthUsers is the user lookup the auth flow needs.
type AuthUsers interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Session is an issued token pair.
type Session struct {
	User    *model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

type AuthConfig struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
}

// AuthService issues, rotates and revokes tokens.
type AuthService struct {
	users  AuthUsers
	tokens TokenStore
	cfg    AuthConfig
}

func NewAuthService(users AuthUsers, tokens TokenStore, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg}
}

// Login checks a username and password.  Unknown users and wrong passwords
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, &ValidationError{Fields: map[string]string{"username": "is required", "password": "is required"}}
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		log.Info().Str("username", u.Username).Msg("login rejected: wrong password")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return s.Issue(ctx, u)
}

// Issue creates a fresh access and refresh token for u.
func (s *AuthService) Issue(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{User: u, Access: access, Refresh: refresh}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalid("refreshToken", "is required")
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: account is no longer active", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	return s.Issue(ctx, u)
}

// Logout revokes one refresh token when raw is given, otherwise every
// session of userID.
func (s *AuthService) Logout(ctx context.Context, userID uint64, raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	}
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// Me returns the active account behind an access token.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: account is no longer active", ErrUnauthorized)
	}
	return u, err
}
