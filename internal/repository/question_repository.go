package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// ErrQuestionNotFound is returned when no question document matches
var ErrQuestionNotFound = errors.New("question not found")

// QuestionRepository implements domain.QuestionRepository on the document store
type QuestionRepository struct {
	store  Store
	logger *slog.Logger
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(store Store, logger *slog.Logger) *QuestionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionRepository{store: store, logger: logger}
}

// Create stores a question document
func (r *QuestionRepository) Create(ctx context.Context, scope domain.Scope, q *domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Questions(scope).Doc(q.ID), q); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// GetByID retrieves a question document
func (r *QuestionRepository) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Question, error) {
	q := &domain.Question{}
	if err := r.store.Get(ctx, docstore.Questions(scope).Doc(id), q); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// List returns every question document under the client scope
func (r *QuestionRepository) List(ctx context.Context, scope domain.Scope) ([]*domain.Question, error) {
	col := docstore.Questions(scope)
	keys, err := r.store.Scan(ctx, col.Pattern())
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]*domain.Question, 0, len(keys))
	for _, key := range keys {
		if !col.Contains(key) {
			continue
		}
		q := &domain.Question{}
		if err := r.store.Get(ctx, key, q); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if q.ID == "" {
			q.ID = col.ID(key)
		}
		out = append(out, q)
	}
	return out, nil
}

// Update overwrites a question document
func (r *QuestionRepository) Update(ctx context.Context, scope domain.Scope, q *domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Questions(scope).Doc(q.ID), q); err != nil {
		return fmt.Errorf("update question %s: %w", q.ID, err)
	}
	return nil
}

// Delete removes a question document
func (r *QuestionRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if err := r.store.Delete(ctx, docstore.Questions(scope).Doc(id)); err != nil {
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	return nil
}
