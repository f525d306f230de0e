package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"retailbilling-backend/internal/config"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

type DirectoryStore interface {
	UserStore
	List(ctx context.Context) ([]domain.User, error)
	CreateIfMissing(ctx context.Context, p repository.CreateUserParams) (bool, error)
}

type UserService struct {
	Users  DirectoryStore
	Logger *slog.Logger
}

func (s UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("user %d not found", id)
		}
		return nil, err
	}
	return u, nil
}

func (s UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("user %s not found", username)
		}
		return nil, err
	}
	return u, nil
}

// EnsureOwner creates the bootstrap OWNER account unless its username already exists.
// Nothing happens when no password is configured.
func (s UserService) EnsureOwner(ctx context.Context, owner config.BootstrapOwner) error {
	if owner.Password == "" {
		return nil
	}
	hash, err := HashPassword(owner.Password)
	if err != nil {
		return err
	}
	created, err := s.Users.CreateIfMissing(ctx, repository.CreateUserParams{
		Username:     strings.TrimSpace(owner.Username),
		PasswordHash: hash,
		Email:        strings.TrimSpace(owner.Email),
		FullName:     owner.FullName,
		Role:         domain.RoleOwner,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return domain.Conflictf("bootstrap owner email %s is already used", owner.Email)
		}
		return err
	}
	if created && s.Logger != nil {
		s.Logger.Info("bootstrap owner created", "username", owner.Username)
	}
	return nil
}
