package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/observability/metrics"
	"github.com/KarthikRajS32/vsurvey/internal/reliability/retry"
)

// AccountDeleter removes an account from the identity provider
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, uid string) error
}

// DeletionResult reports each stage of a cascading deletion
// independently so callers can distinguish partial failure. There is
// no rollback: whatever was deleted stays deleted.
type DeletionResult struct {
	AuthDeleted      bool     `json:"auth_deleted"`
	StoreDeleted     bool     `json:"store_deleted"`
	UsersDeleted     int      `json:"users_deleted,omitempty"`
	DocumentsDeleted int      `json:"documents_deleted"`
	Errors           []string `json:"errors,omitempty"`
}

// Complete reports whether both the identity account and every store
// document were removed.
func (r *DeletionResult) Complete() bool {
	return r.AuthDeleted && r.StoreDeleted
}

// DeletionService walks the document hierarchy removing an entity and
// everything that exists only in its scope. Authorization is the
// caller's responsibility; this service performs no permission checks.
type DeletionService struct {
	accounts    AccountDeleter
	clients     domain.ClientRepository
	users       domain.UserRepository
	assignments domain.AssignmentRepository
	responses   domain.ResponseRepository
	surveys     domain.SurveyRepository
	questions   domain.QuestionRepository
	retryCfg    *retry.Config
	logger      *slog.Logger
}

// NewDeletionService creates a new deletion service
func NewDeletionService(
	accounts AccountDeleter,
	clients domain.ClientRepository,
	users domain.UserRepository,
	assignments domain.AssignmentRepository,
	responses domain.ResponseRepository,
	surveys domain.SurveyRepository,
	questions domain.QuestionRepository,
	logger *slog.Logger,
) *DeletionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeletionService{
		accounts:    accounts,
		clients:     clients,
		users:       users,
		assignments: assignments,
		responses:   responses,
		surveys:     surveys,
		questions:   questions,
		retryCfg:    retry.DefaultConfig(),
		logger:      logger,
	}
}

// DeleteClient removes the client's identity account, every document
// under the client's scope (users, assignments, responses, surveys,
// questions) and finally the client document itself.
func (s *DeletionService) DeleteClient(ctx context.Context, clientUID, clientEmail string) *DeletionResult {
	result := &DeletionResult{}

	if err := s.accounts.DeleteAccount(ctx, clientUID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("auth: %v", err))
	} else {
		result.AuthDeleted = true
	}

	_, scope, err := s.clients.GetByEmail(ctx, clientEmail)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
		s.finish("client", clientEmail, result)
		return result
	}

	storeOK := true

	// Assignments first: releasing their unique-index slots alongside.
	if assignments, err := s.assignments.List(ctx, scope); err != nil {
		storeOK = false
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
	} else {
		for _, a := range assignments {
			if s.deleteAssignment(ctx, scope, a, result) {
				result.DocumentsDeleted++
			} else {
				storeOK = false
			}
		}
	}

	users, err := s.users.List(ctx, scope)
	if err != nil {
		storeOK = false
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
	}
	for _, u := range users {
		if !s.deleteUserResponses(ctx, scope, u.ID, result) {
			storeOK = false
		}
		if s.retryDelete(ctx, "delete user doc", result, func(c context.Context) error {
			return s.users.Delete(c, scope, u.ID)
		}) {
			result.UsersDeleted++
			result.DocumentsDeleted++
		} else {
			storeOK = false
		}
	}

	if surveys, err := s.surveys.List(ctx, scope); err != nil {
		storeOK = false
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
	} else {
		for _, sv := range surveys {
			id := sv.ID
			if s.retryDelete(ctx, "delete survey doc", result, func(c context.Context) error {
				return s.surveys.Delete(c, scope, id)
			}) {
				result.DocumentsDeleted++
			} else {
				storeOK = false
			}
		}
	}

	if questions, err := s.questions.List(ctx, scope); err != nil {
		storeOK = false
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
	} else {
		for _, q := range questions {
			id := q.ID
			if s.retryDelete(ctx, "delete question doc", result, func(c context.Context) error {
				return s.questions.Delete(c, scope, id)
			}) {
				result.DocumentsDeleted++
			} else {
				storeOK = false
			}
		}
	}

	if s.retryDelete(ctx, "delete client doc", result, func(c context.Context) error {
		return s.clients.Delete(c, scope)
	}) {
		result.DocumentsDeleted++
	} else {
		storeOK = false
	}

	result.StoreDeleted = storeOK
	s.finish("client", clientEmail, result)
	return result
}

// DeleteUser removes the user's identity account, the user's
// assignments and responses, and the user document. Sibling users are
// untouched.
func (s *DeletionService) DeleteUser(ctx context.Context, userUID, userEmail, clientEmail string) *DeletionResult {
	result := &DeletionResult{}

	if err := s.accounts.DeleteAccount(ctx, userUID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("auth: %v", err))
	} else {
		result.AuthDeleted = true
	}

	_, scope, err := s.clients.GetByEmail(ctx, clientEmail)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
		s.finish("user", userEmail, result)
		return result
	}

	storeOK := true

	if assignments, err := s.assignments.ListByUser(ctx, scope, userUID); err != nil {
		storeOK = false
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
	} else {
		for _, a := range assignments {
			if s.deleteAssignment(ctx, scope, a, result) {
				result.DocumentsDeleted++
			} else {
				storeOK = false
			}
		}
	}

	if !s.deleteUserResponses(ctx, scope, userUID, result) {
		storeOK = false
	}

	if s.retryDelete(ctx, "delete user doc", result, func(c context.Context) error {
		return s.users.Delete(c, scope, userUID)
	}) {
		result.UsersDeleted++
		result.DocumentsDeleted++
	} else {
		storeOK = false
	}

	result.StoreDeleted = storeOK
	s.finish("user", userEmail, result)
	return result
}

func (s *DeletionService) deleteAssignment(ctx context.Context, scope domain.Scope, a *domain.Assignment, result *DeletionResult) bool {
	ok := s.retryDelete(ctx, "delete assignment doc", result, func(c context.Context) error {
		return s.assignments.Delete(c, scope, a.ID)
	})
	if ok {
		if err := s.assignments.Release(ctx, scope, a.SurveyID, a.UserID); err != nil {
			// stale index slots only block future assigns of the
			// same pair, so record and continue
			result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
		}
	}
	return ok
}

func (s *DeletionService) deleteUserResponses(ctx context.Context, scope domain.Scope, userID string, result *DeletionResult) bool {
	responses, err := s.responses.ListByUser(ctx, scope, userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
		return false
	}
	ok := true
	for _, resp := range responses {
		id := resp.ID
		if s.retryDelete(ctx, "delete response doc", result, func(c context.Context) error {
			return s.responses.Delete(c, scope, id)
		}) {
			result.DocumentsDeleted++
		} else {
			ok = false
		}
	}
	return ok
}

// retryDelete runs a store delete with bounded retry, recording the
// final error in the result. Returns true on success.
func (s *DeletionService) retryDelete(ctx context.Context, op string, result *DeletionResult, fn func(context.Context) error) bool {
	_, err := retry.Do(ctx, s.retryCfg, s.logger, op, func(c context.Context) (struct{}, error) {
		return struct{}{}, fn(c)
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("store: %v", err))
		return false
	}
	return true
}

func (s *DeletionService) finish(entity, target string, result *DeletionResult) {
	outcome := "success"
	if !result.Complete() {
		outcome = "partial"
	}
	metrics.ObserveDeletion(entity, outcome)
	s.logger.Info("cascading deletion finished",
		slog.String("entity", entity),
		slog.String("target", target),
		slog.Bool("auth_deleted", result.AuthDeleted),
		slog.Bool("store_deleted", result.StoreDeleted),
		slog.Int("documents_deleted", result.DocumentsDeleted),
		slog.Int("errors", len(result.Errors)),
	)
}
