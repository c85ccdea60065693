package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/repository"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
)

// SurveyHandler handles /api/surveys requests
type SurveyHandler struct {
	surveys domain.SurveyRepository
	clients ScopeResolver
	logger  *slog.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveys domain.SurveyRepository, clients ScopeResolver, logger *slog.Logger) *SurveyHandler {
	return &SurveyHandler{surveys: surveys, clients: clients, logger: logger}
}

// Create handles POST /api/surveys requests
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}

	var s domain.Survey
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.ID = uuid.NewString()
	s.CreatedBy = middleware.CallerEmail(r.Context())
	s.CreatedAt = time.Now().UTC()
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.surveys.Create(r.Context(), scope, &s); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &s)
}

// List handles GET /api/surveys requests
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	surveys, err := h.surveys.List(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

// Get handles GET /api/surveys/{id} requests
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	s, err := h.surveys.GetByID(r.Context(), scope, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Update handles PUT /api/surveys/{id} requests
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	id := r.PathValue("id")

	existing, err := h.surveys.GetByID(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, repository.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var update domain.Survey
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	update.ID = existing.ID
	update.CreatedBy = existing.CreatedBy
	update.CreatedAt = existing.CreatedAt
	if err := update.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.surveys.Update(r.Context(), scope, &update); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &update)
}

// Delete handles DELETE /api/surveys/{id} requests
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := h.surveys.GetByID(r.Context(), scope, id); err != nil {
		if errors.Is(err, repository.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.surveys.Delete(r.Context(), scope, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
