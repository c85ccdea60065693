package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/observability/metrics"
)

// ErrEmptySurveyID is returned when an assignment request has no survey
var ErrEmptySurveyID = errors.New("survey_id is required")

// AssignmentService assigns surveys to users, skipping pairs that
// already have an assignment. Without the unique-index option the
// check-then-create sequence is not atomic: two concurrent calls for
// the same pair can both pass the check, and the maintenance sweep
// repairs the resulting duplicates.
type AssignmentService struct {
	assignments domain.AssignmentRepository
	clients     domain.ClientRepository
	// enforceUnique reserves a (survey, user) slot in the secondary
	// index before each write, closing the race at the cost of an
	// extra store round trip per created assignment.
	enforceUnique bool
	logger        *slog.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignments domain.AssignmentRepository,
	clients domain.ClientRepository,
	enforceUnique bool,
	logger *slog.Logger,
) *AssignmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentService{
		assignments:   assignments,
		clients:       clients,
		enforceUnique: enforceUnique,
		logger:        logger,
	}
}

// Assign creates assignments for every requested user that does not
// already have one for the survey, and returns only the newly created
// records. Calling it again with the same arguments creates nothing.
func (s *AssignmentService) Assign(ctx context.Context, surveyID string, userIDs []string, clientEmail string) ([]*domain.Assignment, error) {
	if surveyID == "" {
		return nil, ErrEmptySurveyID
	}

	_, scope, err := s.clients.GetByEmail(ctx, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve client %s: %w", clientEmail, err)
	}

	existing, err := s.assignments.ListBySurvey(ctx, scope, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list existing assignments: %w", err)
	}
	assigned := make(map[string]bool, len(existing))
	for _, a := range existing {
		assigned[a.UserID] = true
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created := []*domain.Assignment{}
	skipped := 0

	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true

		if assigned[userID] {
			skipped++
			continue
		}

		if s.enforceUnique {
			ok, err := s.assignments.Reserve(ctx, scope, surveyID, userID)
			if err != nil {
				return created, fmt.Errorf("reserve assignment slot: %w", err)
			}
			if !ok {
				// lost the race to a concurrent call
				skipped++
				continue
			}
		}

		a := &domain.Assignment{
			ID:         uuid.NewString(),
			SurveyID:   surveyID,
			UserID:     userID,
			AssignedBy: clientEmail,
			AssignedAt: now,
		}
		if err := s.assignments.Create(ctx, scope, a); err != nil {
			if s.enforceUnique {
				_ = s.assignments.Release(ctx, scope, surveyID, userID)
			}
			return created, fmt.Errorf("create assignment for user %s: %w", userID, err)
		}
		created = append(created, a)
	}

	metrics.ObserveAssignments(len(created), skipped)
	s.logger.Info("survey assigned",
		slog.String("survey_id", surveyID),
		slog.String("assigned_by", clientEmail),
		slog.Int("created", len(created)),
		slog.Int("skipped", skipped),
	)
	return created, nil
}

// ListForSurvey returns every assignment for a survey under the
// caller's client scope, unfiltered.
func (s *AssignmentService) ListForSurvey(ctx context.Context, surveyID, clientEmail string) ([]*domain.Assignment, error) {
	if surveyID == "" {
		return nil, ErrEmptySurveyID
	}
	_, scope, err := s.clients.GetByEmail(ctx, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve client %s: %w", clientEmail, err)
	}
	return s.assignments.ListBySurvey(ctx, scope, surveyID)
}
