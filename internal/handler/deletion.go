package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/security/audit"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
	"github.com/KarthikRajS32/vsurvey/internal/service"
)

// AccountLookup resolves identity accounts for ownership checks
type AccountLookup interface {
	GetByUID(ctx context.Context, uid string) (*identity.Account, error)
}

// DeleteRequest identifies the entity to cascade-delete
type DeleteRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// DeleteResponse reports the outcome of a cascading deletion
type DeleteResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Details *service.DeletionResult `json:"details"`
}

// DeletionHandler handles the cascading deletion routes. Authorization
// lives here: the deletion service itself checks nothing.
type DeletionHandler struct {
	deletions       *service.DeletionService
	accounts        AccountLookup
	superAdminEmail string
	audit           *audit.Logger
	logger          *slog.Logger
}

// NewDeletionHandler creates a new deletion handler
func NewDeletionHandler(
	deletions *service.DeletionService,
	accounts AccountLookup,
	superAdminEmail string,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *DeletionHandler {
	return &DeletionHandler{
		deletions:       deletions,
		accounts:        accounts,
		superAdminEmail: superAdminEmail,
		audit:           auditLog,
		logger:          logger,
	}
}

// DeleteClient handles DELETE /client: only the configured superadmin
// may remove a client and everything under its scope.
func (h *DeletionHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerEmail(r.Context())
	if caller != h.superAdminEmail {
		h.audit.LogDenied(r.Context(), caller, "client deletion requires superadmin")
		writeError(w, http.StatusForbidden, "only the superadmin can delete clients")
		return
	}

	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "uid and email required")
		return
	}

	result := h.deletions.DeleteClient(r.Context(), req.UID, req.Email)
	h.respond(w, r, caller, "client", req.Email, result)
}

// DeleteUser handles DELETE /user: only the user's owning client may
// remove the user and the documents owned by it.
func (h *DeletionHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerEmail(r.Context())

	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, "uid required")
		return
	}

	// The ownership check runs against the identity account when one
	// still exists. Orphaned documents (account already gone) can only
	// be cleaned up under the caller's own scope.
	clientEmail := caller
	account, err := h.accounts.GetByUID(r.Context(), req.UID)
	switch {
	case err == nil:
		if account.ClientEmail != caller {
			h.audit.LogDenied(r.Context(), caller, "user deletion requires the owning client")
			writeError(w, http.StatusForbidden, "only the owning client can delete this user")
			return
		}
		clientEmail = account.ClientEmail
	case errors.Is(err, identity.ErrAccountNotFound):
		// proceed with store-only cleanup in the caller's scope
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := h.deletions.DeleteUser(r.Context(), req.UID, req.Email, clientEmail)
	h.respond(w, r, caller, "user", req.UID, result)
}

// DeleteUserLegacy handles DELETE /delete-user/{user_id}. The route
// predates the bearer-token surface and is served without one; the
// owning client is resolved from the identity account.
func (h *DeletionHandler) DeleteUserLegacy(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("user_id")
	if uid == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	account, err := h.accounts.GetByUID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := h.deletions.DeleteUser(r.Context(), uid, account.Email, account.ClientEmail)
	h.respond(w, r, "legacy-route", "user", uid, result)
}

func (h *DeletionHandler) respond(w http.ResponseWriter, r *http.Request, caller, entity, target string, result *service.DeletionResult) {
	status := "partial"
	message := fmt.Sprintf("%s deletion finished with %d errors", entity, len(result.Errors))
	if result.Complete() {
		status = "success"
		message = fmt.Sprintf("%s deleted", entity)
	}
	h.audit.LogDeletion(r.Context(), caller, entity, target, status, message)

	writeJSON(w, http.StatusOK, DeleteResponse{
		Success: result.Complete(),
		Message: message,
		Details: result,
	})
}
