package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// ErrSurveyNotFound is returned when no survey document matches
var ErrSurveyNotFound = errors.New("survey not found")

// SurveyRepository implements domain.SurveyRepository on the document store
type SurveyRepository struct {
	store  Store
	logger *slog.Logger
}

// NewSurveyRepository creates a new survey repository
func NewSurveyRepository(store Store, logger *slog.Logger) *SurveyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SurveyRepository{store: store, logger: logger}
}

// Create stores a survey document
func (r *SurveyRepository) Create(ctx context.Context, scope domain.Scope, s *domain.Survey) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Surveys(scope).Doc(s.ID), s); err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	return nil
}

// GetByID retrieves a survey document
func (r *SurveyRepository) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Survey, error) {
	s := &domain.Survey{}
	if err := r.store.Get(ctx, docstore.Surveys(scope).Doc(id), s); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns every survey document under the client scope
func (r *SurveyRepository) List(ctx context.Context, scope domain.Scope) ([]*domain.Survey, error) {
	col := docstore.Surveys(scope)
	keys, err := r.store.Scan(ctx, col.Pattern())
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}

	out := make([]*domain.Survey, 0, len(keys))
	for _, key := range keys {
		if !col.Contains(key) {
			continue
		}
		s := &domain.Survey{}
		if err := r.store.Get(ctx, key, s); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if s.ID == "" {
			s.ID = col.ID(key)
		}
		out = append(out, s)
	}
	return out, nil
}

// Update overwrites a survey document
func (r *SurveyRepository) Update(ctx context.Context, scope domain.Scope, s *domain.Survey) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Surveys(scope).Doc(s.ID), s); err != nil {
		return fmt.Errorf("update survey %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes a survey document
func (r *SurveyRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if err := r.store.Delete(ctx, docstore.Surveys(scope).Doc(id)); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	return nil
}
