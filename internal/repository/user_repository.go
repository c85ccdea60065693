package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// ErrUserNotFound is returned when no user document matches
var ErrUserNotFound = errors.New("user not found")

// UserRepository implements domain.UserRepository on the document store
type UserRepository struct {
	store  Store
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store Store, logger *slog.Logger) *UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{store: store, logger: logger}
}

// Create stores a user document
func (r *UserRepository) Create(ctx context.Context, scope domain.Scope, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Users(scope).Doc(u.ID), u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user document
func (r *UserRepository) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.User, error) {
	u := &domain.User{}
	if err := r.store.Get(ctx, docstore.Users(scope).Doc(id), u); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns every user document under the client scope
func (r *UserRepository) List(ctx context.Context, scope domain.Scope) ([]*domain.User, error) {
	col := docstore.Users(scope)
	keys, err := r.store.Scan(ctx, col.Pattern())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*domain.User, 0, len(keys))
	for _, key := range keys {
		if !col.Contains(key) {
			continue
		}
		u := &domain.User{}
		if err := r.store.Get(ctx, key, u); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if u.ID == "" {
			u.ID = col.ID(key)
		}
		out = append(out, u)
	}
	return out, nil
}

// Update overwrites a user document
func (r *UserRepository) Update(ctx context.Context, scope domain.Scope, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Users(scope).Doc(u.ID), u); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

// Delete removes a user document
func (r *UserRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if err := r.store.Delete(ctx, docstore.Users(scope).Doc(id)); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
