package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/repository"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
)

// AccountManager is the slice of the identity provider the user router
// needs: creating accounts alongside user documents and removing them.
type AccountManager interface {
	CreateAccount(ctx context.Context, email, password, role, clientEmail string) (*identity.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// CreateUserRequest carries a new user's document and credentials
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// UserHandler handles /api/users requests
type UserHandler struct {
	users    domain.UserRepository
	clients  ScopeResolver
	accounts AccountManager
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users domain.UserRepository, clients ScopeResolver, accounts AccountManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		clients:  clients,
		accounts: accounts,
		logger:   logger,
	}
}

// Create handles POST /api/users: it registers an identity account and
// writes the user document under the caller's client scope. The
// document ID is the account uid.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	clientEmail := callerClientEmail(middleware.GetClaims(r.Context()))

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.Email, req.Password, identity.RoleUser, clientEmail)
	if err != nil {
		h.logger.Error("failed to create user account",
			slog.String("email", req.Email),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	user := &domain.User{
		ID:          account.UID,
		Email:       req.Email,
		Name:        req.Name,
		ClientEmail: clientEmail,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), scope, user); err != nil {
		// account without a document; the caller can retry or delete auth
		h.logger.Error("failed to create user document",
			slog.String("uid", account.UID),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// List handles GET /api/users requests
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	users, err := h.users.List(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{uid} requests
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), scope, r.PathValue("uid"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{uid} requests
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	uid := r.PathValue("uid")

	existing, err := h.users.GetByID(r.Context(), scope, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var update domain.User
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// identifiers and ownership are immutable
	update.ID = existing.ID
	update.ClientEmail = existing.ClientEmail
	update.CreatedAt = existing.CreatedAt
	if update.Email == "" {
		update.Email = existing.Email
	}

	if err := h.users.Update(r.Context(), scope, &update); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &update)
}

// Delete handles DELETE /api/users/{uid}: document only, the identity
// account stays. Full cascades go through the deletion router.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	uid := r.PathValue("uid")
	if _, err := h.users.GetByID(r.Context(), scope, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.users.Delete(r.Context(), scope, uid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteAuth handles DELETE /api/users/{uid}/auth: identity account
// only, the document stays.
func (h *UserHandler) DeleteAuth(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveScope(w, r, h.clients); !ok {
		return
	}
	uid := r.PathValue("uid")
	if err := h.accounts.DeleteAccount(r.Context(), uid); err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
