package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// AssignmentRepository implements domain.AssignmentRepository on the
// document store
type AssignmentRepository struct {
	store  Store
	logger *slog.Logger
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(store Store, logger *slog.Logger) *AssignmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentRepository{store: store, logger: logger}
}

// Create stores an assignment document
func (r *AssignmentRepository) Create(ctx context.Context, scope domain.Scope, a *domain.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	key := docstore.Assignments(scope).Doc(a.ID)
	if err := r.store.Set(ctx, key, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	r.logger.Debug("assignment created",
		slog.String("survey_id", a.SurveyID),
		slog.String("user_id", a.UserID),
	)
	return nil
}

// List returns every assignment under the client scope
func (r *AssignmentRepository) List(ctx context.Context, scope domain.Scope) ([]*domain.Assignment, error) {
	col := docstore.Assignments(scope)
	keys, err := r.store.Scan(ctx, col.Pattern())
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	out := make([]*domain.Assignment, 0, len(keys))
	for _, key := range keys {
		if !col.Contains(key) {
			continue
		}
		a := &domain.Assignment{}
		if err := r.store.Get(ctx, key, a); err != nil {
			if err == docstore.ErrNotFound {
				continue // deleted between scan and read
			}
			return nil, err
		}
		if a.ID == "" {
			a.ID = col.ID(key)
		}
		out = append(out, a)
	}
	return out, nil
}

// ListBySurvey returns all assignments for one survey under the client scope
func (r *AssignmentRepository) ListBySurvey(ctx context.Context, scope domain.Scope, surveyID string) ([]*domain.Assignment, error) {
	all, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, a := range all {
		if a.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListByUser returns all assignments for one user under the client scope
func (r *AssignmentRepository) ListByUser(ctx context.Context, scope domain.Scope, userID string) ([]*domain.Assignment, error) {
	all, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, a := range all {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Delete removes an assignment document
func (r *AssignmentRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if err := r.store.Delete(ctx, docstore.Assignments(scope).Doc(id)); err != nil {
		return fmt.Errorf("delete assignment %s: %w", id, err)
	}
	return nil
}

// Reserve atomically claims the (survey, user) unique-index slot
func (r *AssignmentRepository) Reserve(ctx context.Context, scope domain.Scope, surveyID, userID string) (bool, error) {
	return r.store.SetNX(ctx, docstore.AssignmentIndexKey(scope, surveyID, userID), "1")
}

// Release frees the (survey, user) unique-index slot
func (r *AssignmentRepository) Release(ctx context.Context, scope domain.Scope, surveyID, userID string) error {
	return r.store.Delete(ctx, docstore.AssignmentIndexKey(scope, surveyID, userID))
}
