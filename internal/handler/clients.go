package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/security/audit"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
)

// CreateClientRequest carries a new client's document and credentials
type CreateClientRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// ClientHandler handles /api/clients requests. The routes are
// superadmin-only: clients are provisioned from the admin dashboard.
type ClientHandler struct {
	clients         domain.ClientRepository
	accounts        AccountManager
	superAdminEmail string
	tenantID        string
	audit           *audit.Logger
	logger          *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	clients domain.ClientRepository,
	accounts AccountManager,
	superAdminEmail, tenantID string,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *ClientHandler {
	return &ClientHandler{
		clients:         clients,
		accounts:        accounts,
		superAdminEmail: superAdminEmail,
		tenantID:        tenantID,
		audit:           auditLog,
		logger:          logger,
	}
}

func (h *ClientHandler) requireSuperAdmin(w http.ResponseWriter, r *http.Request) bool {
	caller := middleware.CallerEmail(r.Context())
	if caller != h.superAdminEmail {
		h.audit.LogDenied(r.Context(), caller, "client management requires superadmin")
		writeError(w, http.StatusForbidden, "only the superadmin can manage clients")
		return false
	}
	return true
}

// Create handles POST /api/clients: registers the identity account and
// writes the client document under the superadmin's tenant. The
// document ID is the account uid.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireSuperAdmin(w, r) {
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.Email, req.Password, identity.RoleClient, "")
	if err != nil {
		h.logger.Error("failed to create client account",
			slog.String("email", req.Email),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	client := &domain.Client{
		ID:        account.UID,
		Email:     req.Email,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.clients.Create(r.Context(), h.tenantID, client); err != nil {
		h.logger.Error("failed to create client document",
			slog.String("uid", account.UID),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// List handles GET /api/clients requests
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireSuperAdmin(w, r) {
		return
	}

	clients, err := h.clients.List(r.Context(), h.tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, clients)
}
