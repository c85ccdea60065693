package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/KarthikRajS32/vsurvey/pkg/config"
)

// ErrAccountNotFound is returned when no account matches the lookup
var ErrAccountNotFound = errors.New("account not found")

// ErrInvalidCredentials is returned on a failed login
var ErrInvalidCredentials = errors.New("invalid credentials")

// Roles an account can hold
const (
	RoleSuperAdmin = "superadmin"
	RoleClient     = "client"
	RoleUser       = "user"
)

// Account is an identity-provider account. Accounts are the
// authentication counterpart of client/user documents in the store.
type Account struct {
	UID         string
	Email       string
	Role        string
	ClientEmail string // owning client for role "user", empty otherwise
	CreatedAt   time.Time
}

// Claims are the verified contents of a bearer token
type Claims struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	ClientEmail string `json:"client_email,omitempty"`
	jwt.RegisteredClaims
}

// Provider issues and verifies bearer tokens and manages accounts.
// Tokens are verified on every request; nothing is cached.
type Provider struct {
	db         *sql.DB
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// NewProvider creates an identity provider backed by the accounts table
func NewProvider(db *sql.DB, creds config.Credentials, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		db:         db,
		signingKey: []byte(creds.PrivateKey),
		issuer:     creds.ProjectID,
		tokenTTL:   time.Hour,
		logger:     logger,
	}
}

// EnsureSchema creates the accounts table if it does not exist
func (p *Provider) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			uid TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			client_email TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

// CreateAccount registers a new account and returns it
func (p *Provider) CreateAccount(ctx context.Context, email, password, role, clientEmail string) (*Account, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	switch role {
	case RoleSuperAdmin, RoleClient, RoleUser:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		UID:         uuid.NewString(),
		Email:       email,
		Role:        role,
		ClientEmail: clientEmail,
	}

	err = p.db.QueryRowContext(ctx, `
		INSERT INTO accounts (uid, email, password_hash, role, client_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, account.UID, account.Email, string(hash), account.Role, account.ClientEmail).Scan(&account.CreatedAt)
	if err != nil {
		p.logger.Error("failed to create account",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

// GetByEmail retrieves an account by email
func (p *Provider) GetByEmail(ctx context.Context, email string) (*Account, error) {
	account := &Account{}
	err := p.db.QueryRowContext(ctx, `
		SELECT uid, email, role, client_email, created_at
		FROM accounts WHERE email = $1
	`, email).Scan(&account.UID, &account.Email, &account.Role, &account.ClientEmail, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

// GetByUID retrieves an account by uid
func (p *Provider) GetByUID(ctx context.Context, uid string) (*Account, error) {
	account := &Account{}
	err := p.db.QueryRowContext(ctx, `
		SELECT uid, email, role, client_email, created_at
		FROM accounts WHERE uid = $1
	`, uid).Scan(&account.UID, &account.Email, &account.Role, &account.ClientEmail, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by uid: %w", err)
	}
	return account, nil
}

// Login verifies credentials and returns a signed bearer token
func (p *Provider) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	var (
		account Account
		hash    string
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT uid, email, password_hash, role, client_email
		FROM accounts WHERE email = $1
	`, email).Scan(&account.UID, &account.Email, &hash, &account.Role, &account.ClientEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.logger.Info("login attempt for unknown email", slog.String("email", email))
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		p.logger.Info("login failed with wrong password", slog.String("email", email))
		return "", time.Time{}, ErrInvalidCredentials
	}

	return p.MintToken(&account, p.tokenTTL)
}

// MintToken signs a token for an account. Used by Login and by the
// admin CLI for operator tokens.
func (p *Provider) MintToken(account *Account, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UID:         account.UID,
		Email:       account.Email,
		Role:        account.Role,
		ClientEmail: account.ClientEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    p.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken validates a bearer token and returns its claims
func (p *Provider) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// DeleteAccount removes an account by uid
func (p *Provider) DeleteAccount(ctx context.Context, uid string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM accounts WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", uid, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ExtractToken pulls the bearer token out of an Authorization header
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
