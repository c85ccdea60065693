package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
)

// SubmitResponseRequest carries one user's answers for a survey
type SubmitResponseRequest struct {
	SurveyID  string         `json:"survey_id"`
	Answers   map[string]any `json:"answers"`
	Latitude  float64        `json:"latitude,omitempty"`
	Longitude float64        `json:"longitude,omitempty"`
}

// ResponseHandler handles /api/responses requests
type ResponseHandler struct {
	responses domain.ResponseRepository
	clients   ScopeResolver
	logger    *slog.Logger
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responses domain.ResponseRepository, clients ScopeResolver, logger *slog.Logger) *ResponseHandler {
	return &ResponseHandler{responses: responses, clients: clients, logger: logger}
}

// Create handles POST /api/responses: the submitting user is taken
// from the verified claims, never from the body.
func (h *ResponseHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	claims := middleware.GetClaims(r.Context())

	var req SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := &domain.Response{
		ID:          uuid.NewString(),
		SurveyID:    req.SurveyID,
		UserID:      claims.UID,
		Answers:     req.Answers,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		SubmittedAt: time.Now().UTC(),
	}
	if err := resp.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.responses.Create(r.Context(), scope, resp); err != nil {
		h.logger.Error("failed to store response",
			slog.String("survey_id", req.SurveyID),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/responses?survey_id= requests
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}

	surveyID := r.URL.Query().Get("survey_id")
	if surveyID == "" {
		writeError(w, http.StatusBadRequest, "survey_id is required")
		return
	}

	responses, err := h.responses.ListBySurvey(r.Context(), scope, surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, responses)
}
