package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"retailbilling-backend/internal/config"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is not active")
)

type AccountStore interface {
	UserStore
	TouchLastLogin(ctx context.Context, id int64) error
}

type AuthService struct {
	Config config.Config
	Users  AccountStore
	Logger *slog.Logger
	Now    func() time.Time
}

type AuthResult struct {
	AccessToken string
	User        domain.User
	ExpiresAt   time.Time
}

type LoginInput struct {
	Username string
	Password string
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.Invalidf("username and password are required")
	}
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Unknown usernames pay the same bcrypt cost as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(in.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		return nil, ErrAccountDisabled
	}

	res, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	if err := s.Users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log().Warn("stamp last login failed", "user_id", user.ID, "err", err)
	} else {
		now := s.now()
		res.User.LastLogin = &now
	}
	return res, nil
}

// Me resolves the caller's account from the identity the token carried.
func (s AuthService) Me(ctx context.Context, caller domain.CurrentUser) (*domain.User, error) {
	user, err := s.Users.GetByUsername(ctx, caller.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("user %s not found", caller.Username)
		}
		return nil, err
	}
	return user, nil
}

// Logout is stateless: tokens simply expire.
func (s AuthService) Logout(ctx context.Context, caller *domain.CurrentUser) {
	if caller != nil {
		s.log().Info("user logged out", "username", caller.Username)
	}
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

// dummyHash is a default-cost hash that no password entered at login matches.
func dummyHash() []byte {
	dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if err != nil {
			panic(fmt.Sprintf("generate dummy hash: %v", err))
		}
		dummy = h
	})
	return dummy
}

// HashPassword wraps bcrypt with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	now := s.now()
	exp := now.Add(s.Config.AccessTokenTTL)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", user.ID),
		"username":   user.Username,
		"role":       string(user.Role),
		"token_type": "access",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
		"jti":        uuid.NewString(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken: token,
		User:        *user,
		ExpiresAt:   exp,
	}, nil
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
