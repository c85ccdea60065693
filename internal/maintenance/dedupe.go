package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/observability/metrics"
)

// Sweeper removes duplicate survey assignments left behind by the
// non-transactional assign path. It is run manually, one instance at a
// time, from the admin CLI; nothing enforces mutual exclusion.
type Sweeper struct {
	clients     domain.ClientRepository
	assignments domain.AssignmentRepository
	logger      *slog.Logger
}

// NewSweeper creates a new duplicate-assignment sweeper
func NewSweeper(clients domain.ClientRepository, assignments domain.AssignmentRepository, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{clients: clients, assignments: assignments, logger: logger}
}

// Sweep scans every client under every tenant and removes all but the
// most recent assignment for each (user, survey) pair. Returns the
// number of duplicates removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	tenants, err := s.clients.Tenants(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	total := 0
	var errs []error
	for _, tenantID := range tenants {
		clients, err := s.clients.List(ctx, tenantID)
		if err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		for _, c := range clients {
			scope := domain.Scope{TenantID: tenantID, ClientID: c.ID}
			removed, err := s.sweepClient(ctx, scope)
			if err != nil {
				errs = append(errs, fmt.Errorf("client %s: %w", c.ID, err))
				continue
			}
			if removed > 0 {
				s.logger.Info("removed duplicate assignments",
					slog.String("tenant_id", tenantID),
					slog.String("client_id", c.ID),
					slog.Int("removed", removed),
				)
			}
			total += removed
		}
	}

	metrics.ObserveDuplicatesRemoved(total)
	return total, errors.Join(errs...)
}

func (s *Sweeper) sweepClient(ctx context.Context, scope domain.Scope) (int, error) {
	assignments, err := s.assignments.List(ctx, scope)
	if err != nil {
		return 0, err
	}

	groups := map[string][]*domain.Assignment{}
	for _, a := range assignments {
		if a.UserID == "" || a.SurveyID == "" {
			continue
		}
		key := a.DedupKey()
		groups[key] = append(groups[key], a)
	}

	removed := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		// Most recent first. AssignedAt is an RFC 3339 string, so
		// lexicographic order is chronological; a missing timestamp
		// is the empty string and sorts last.
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].AssignedAt > group[j].AssignedAt
		})

		for _, dup := range group[1:] {
			if err := s.assignments.Delete(ctx, scope, dup.ID); err != nil {
				return removed, fmt.Errorf("delete duplicate %s: %w", dup.ID, err)
			}
			removed++
		}
	}
	return removed, nil
}
