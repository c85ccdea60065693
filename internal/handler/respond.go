package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ScopeResolver maps a client email to the store scope its documents
// live under.
type ScopeResolver interface {
	GetByEmail(ctx context.Context, email string) (*domain.Client, domain.Scope, error)
}

// callerClientEmail returns the client email whose scope the caller's
// requests operate on: the owning client for user accounts, the
// caller's own email otherwise.
func callerClientEmail(claims *identity.Claims) string {
	if claims == nil {
		return ""
	}
	if claims.Role == identity.RoleUser && claims.ClientEmail != "" {
		return claims.ClientEmail
	}
	return claims.Email
}

// resolveScope turns the request's verified claims into a store scope.
// Returns false after writing the error response.
func resolveScope(w http.ResponseWriter, r *http.Request, clients ScopeResolver) (domain.Scope, bool) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusForbidden, "authentication required")
		return domain.Scope{}, false
	}
	_, scope, err := clients.GetByEmail(r.Context(), callerClientEmail(claims))
	if err != nil {
		writeError(w, http.StatusNotFound, "client not found")
		return domain.Scope{}, false
	}
	return scope, true
}
