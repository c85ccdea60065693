package domain

import (
	"context"
	"fmt"
	"time"
)

// Client is a tenant-level administrative account. It owns users and
// their assignments/responses; deleting a client cascades to all of them.
type Client struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields required for a well-formed client
func (c *Client) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("client missing email")
	}
	return nil
}

// User is an individual survey respondent, owned by exactly one client
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	ClientEmail string    `json:"client_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the fields required for a well-formed user
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("user missing email")
	}
	return nil
}

// ClientRepository defines data access for client documents
type ClientRepository interface {
	Create(ctx context.Context, tenantID string, c *Client) error
	GetByID(ctx context.Context, scope Scope) (*Client, error)
	// GetByEmail searches every tenant for the client with the given
	// email and returns it with its resolved scope.
	GetByEmail(ctx context.Context, email string) (*Client, Scope, error)
	List(ctx context.Context, tenantID string) ([]*Client, error)
	Delete(ctx context.Context, scope Scope) error
	Tenants(ctx context.Context) ([]string, error)
}

// UserRepository defines data access for user documents
type UserRepository interface {
	Create(ctx context.Context, scope Scope, u *User) error
	GetByID(ctx context.Context, scope Scope, id string) (*User, error)
	List(ctx context.Context, scope Scope) ([]*User, error)
	Update(ctx context.Context, scope Scope, u *User) error
	Delete(ctx context.Context, scope Scope, id string) error
}
