package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// ResponseRepository implements domain.ResponseRepository on the
// document store. New responses are also published to the survey's
// live feed channel.
type ResponseRepository struct {
	store  Store
	logger *slog.Logger
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(store Store, logger *slog.Logger) *ResponseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseRepository{store: store, logger: logger}
}

// Create stores a response document and publishes it to the live feed
func (r *ResponseRepository) Create(ctx context.Context, scope domain.Scope, resp *domain.Response) error {
	if err := resp.Validate(); err != nil {
		return err
	}
	if err := r.store.Set(ctx, docstore.Responses(scope).Doc(resp.ID), resp); err != nil {
		return fmt.Errorf("create response: %w", err)
	}

	// Feed delivery is best effort; the stored document is the record.
	channel := docstore.ResponsesChannel(scope, resp.SurveyID)
	if err := r.store.Publish(ctx, channel, resp); err != nil {
		r.logger.Warn("failed to publish response to feed",
			slog.String("survey_id", resp.SurveyID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ListBySurvey returns all responses for one survey under the client scope
func (r *ResponseRepository) ListBySurvey(ctx context.Context, scope domain.Scope, surveyID string) ([]*domain.Response, error) {
	all, err := r.list(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, resp := range all {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	return out, nil
}

// ListByUser returns all responses by one user under the client scope
func (r *ResponseRepository) ListByUser(ctx context.Context, scope domain.Scope, userID string) ([]*domain.Response, error) {
	all, err := r.list(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, resp := range all {
		if resp.UserID == userID {
			out = append(out, resp)
		}
	}
	return out, nil
}

// Delete removes a response document
func (r *ResponseRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if err := r.store.Delete(ctx, docstore.Responses(scope).Doc(id)); err != nil {
		return fmt.Errorf("delete response %s: %w", id, err)
	}
	return nil
}

func (r *ResponseRepository) list(ctx context.Context, scope domain.Scope) ([]*domain.Response, error) {
	col := docstore.Responses(scope)
	keys, err := r.store.Scan(ctx, col.Pattern())
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	out := make([]*domain.Response, 0, len(keys))
	for _, key := range keys {
		if !col.Contains(key) {
			continue
		}
		resp := &domain.Response{}
		if err := r.store.Get(ctx, key, resp); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if resp.ID == "" {
			resp.ID = col.ID(key)
		}
		out = append(out, resp)
	}
	return out, nil
}
