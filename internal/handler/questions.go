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
)

// QuestionHandler handles /api/questions requests
type QuestionHandler struct {
	questions domain.QuestionRepository
	clients   ScopeResolver
	logger    *slog.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions domain.QuestionRepository, clients ScopeResolver, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, clients: clients, logger: logger}
}

// Create handles POST /api/questions requests
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}

	var q domain.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q.ID = uuid.NewString()
	q.CreatedAt = time.Now().UTC()
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.questions.Create(r.Context(), scope, &q); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &q)
}

// List handles GET /api/questions requests
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	questions, err := h.questions.List(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// Get handles GET /api/questions/{id} requests
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	q, err := h.questions.GetByID(r.Context(), scope, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Update handles PUT /api/questions/{id} requests
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	id := r.PathValue("id")

	existing, err := h.questions.GetByID(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var update domain.Question
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	update.ID = existing.ID
	update.CreatedAt = existing.CreatedAt
	if err := update.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.questions.Update(r.Context(), scope, &update); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &update)
}

// Delete handles DELETE /api/questions/{id} requests
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := resolveScope(w, r, h.clients)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := h.questions.GetByID(r.Context(), scope, id); err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.questions.Delete(r.Context(), scope, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
