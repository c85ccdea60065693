package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KarthikRajS32/vsurvey/internal/repository"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
	"github.com/KarthikRajS32/vsurvey/internal/service"
)

// AssignRequest carries a survey and the users to assign it to
type AssignRequest struct {
	SurveyID string   `json:"survey_id"`
	UserIDs  []string `json:"user_ids"`
}

// AssignmentHandler handles /api/assignments requests
type AssignmentHandler struct {
	assignments *service.AssignmentService
	logger      *slog.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignments *service.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, logger: logger}
}

// Create handles POST /api/assignments: assigns the survey to every
// requested user that does not already have it and returns only the
// newly created records.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusForbidden, "authentication required")
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.assignments.Assign(r.Context(), req.SurveyID, req.UserIDs, callerClientEmail(claims))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySurveyID):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrClientNotFound):
			writeError(w, http.StatusNotFound, "client not found")
		default:
			h.logger.Error("assignment failed",
				slog.String("survey_id", req.SurveyID),
				slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"assigned": created,
		"count":    len(created),
	})
}

// List handles GET /api/assignments?survey_id= requests
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusForbidden, "authentication required")
		return
	}

	surveyID := r.URL.Query().Get("survey_id")
	assignments, err := h.assignments.ListForSurvey(r.Context(), surveyID, callerClientEmail(claims))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySurveyID):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrClientNotFound):
			writeError(w, http.StatusNotFound, "client not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}
