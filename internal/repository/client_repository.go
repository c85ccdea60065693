package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// ErrClientNotFound is returned when no client document matches
var ErrClientNotFound = errors.New("client not found")

// ClientRepository implements domain.ClientRepository on the document store
type ClientRepository struct {
	store  Store
	logger *slog.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(store Store, logger *slog.Logger) *ClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientRepository{store: store, logger: logger}
}

// Create stores a client document under a tenant
func (r *ClientRepository) Create(ctx context.Context, tenantID string, c *domain.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	key := docstore.Clients(tenantID).Doc(c.ID)
	if err := r.store.Set(ctx, key, c); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// GetByID retrieves the client document for a scope
func (r *ClientRepository) GetByID(ctx context.Context, scope domain.Scope) (*domain.Client, error) {
	c := &domain.Client{}
	key := docstore.Clients(scope.TenantID).Doc(scope.ClientID)
	if err := r.store.Get(ctx, key, c); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByEmail searches every tenant for the client with the given email
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, domain.Scope, error) {
	keys, err := r.store.Scan(ctx, docstore.TenantsPattern())
	if err != nil {
		return nil, domain.Scope{}, fmt.Errorf("scan clients: %w", err)
	}

	for _, key := range keys {
		tenantID := docstore.TenantOf(key)
		if tenantID == "" {
			continue
		}
		col := docstore.Clients(tenantID)
		if !col.Contains(key) {
			continue
		}
		c := &domain.Client{}
		if err := r.store.Get(ctx, key, c); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, domain.Scope{}, err
		}
		if c.Email == email {
			return c, domain.Scope{TenantID: tenantID, ClientID: col.ID(key)}, nil
		}
	}
	return nil, domain.Scope{}, ErrClientNotFound
}

// List returns every client document under a tenant
func (r *ClientRepository) List(ctx context.Context, tenantID string) ([]*domain.Client, error) {
	col := docstore.Clients(tenantID)
	keys, err := r.store.Scan(ctx, col.Pattern())
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	out := make([]*domain.Client, 0, len(keys))
	for _, key := range keys {
		if !col.Contains(key) {
			continue
		}
		c := &domain.Client{}
		if err := r.store.Get(ctx, key, c); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if c.ID == "" {
			c.ID = col.ID(key)
		}
		out = append(out, c)
	}
	return out, nil
}

// Delete removes the client document itself (not its subcollections)
func (r *ClientRepository) Delete(ctx context.Context, scope domain.Scope) error {
	key := docstore.Clients(scope.TenantID).Doc(scope.ClientID)
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete client %s: %w", scope.ClientID, err)
	}
	return nil
}

// Tenants returns every tenant id that owns at least one client document
func (r *ClientRepository) Tenants(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, docstore.TenantsPattern())
	if err != nil {
		return nil, fmt.Errorf("scan tenants: %w", err)
	}

	seen := map[string]bool{}
	var tenants []string
	for _, key := range keys {
		if t := docstore.TenantOf(key); t != "" && !seen[t] {
			seen[t] = true
			tenants = append(tenants, t)
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}
