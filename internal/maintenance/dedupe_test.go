package maintenance

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

type memClientRepo struct {
	byScope map[domain.Scope]*domain.Client
}

func (m *memClientRepo) Create(ctx context.Context, tenantID string, c *domain.Client) error {
	m.byScope[domain.Scope{TenantID: tenantID, ClientID: c.ID}] = c
	return nil
}

func (m *memClientRepo) GetByID(ctx context.Context, scope domain.Scope) (*domain.Client, error) {
	if c, ok := m.byScope[scope]; ok {
		return c, nil
	}
	return nil, errors.New("client not found")
}

func (m *memClientRepo) GetByEmail(ctx context.Context, email string) (*domain.Client, domain.Scope, error) {
	for scope, c := range m.byScope {
		if c.Email == email {
			return c, scope, nil
		}
	}
	return nil, domain.Scope{}, errors.New("client not found")
}

func (m *memClientRepo) List(ctx context.Context, tenantID string) ([]*domain.Client, error) {
	var out []*domain.Client
	for scope, c := range m.byScope {
		if scope.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClientRepo) Delete(ctx context.Context, scope domain.Scope) error {
	delete(m.byScope, scope)
	return nil
}

func (m *memClientRepo) Tenants(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for scope := range m.byScope {
		if !seen[scope.TenantID] {
			seen[scope.TenantID] = true
			out = append(out, scope.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memAssignments struct {
	docs map[domain.Scope]map[string]*domain.Assignment
}

func newMemAssignments() *memAssignments {
	return &memAssignments{docs: map[domain.Scope]map[string]*domain.Assignment{}}
}

func (m *memAssignments) Create(ctx context.Context, scope domain.Scope, a *domain.Assignment) error {
	if m.docs[scope] == nil {
		m.docs[scope] = map[string]*domain.Assignment{}
	}
	copied := *a
	m.docs[scope][a.ID] = &copied
	return nil
}

func (m *memAssignments) List(ctx context.Context, scope domain.Scope) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range m.docs[scope] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAssignments) ListBySurvey(ctx context.Context, scope domain.Scope, surveyID string) ([]*domain.Assignment, error) {
	all, _ := m.List(ctx, scope)
	var out []*domain.Assignment
	for _, a := range all {
		if a.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignments) ListByUser(ctx context.Context, scope domain.Scope, userID string) ([]*domain.Assignment, error) {
	all, _ := m.List(ctx, scope)
	var out []*domain.Assignment
	for _, a := range all {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignments) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs[scope], id)
	return nil
}

func (m *memAssignments) Reserve(ctx context.Context, scope domain.Scope, surveyID, userID string) (bool, error) {
	return true, nil
}

func (m *memAssignments) Release(ctx context.Context, scope domain.Scope, surveyID, userID string) error {
	return nil
}

func newSweepFixture(t *testing.T) (*Sweeper, *memAssignments, domain.Scope) {
	t.Helper()
	clients := &memClientRepo{byScope: map[domain.Scope]*domain.Client{}}
	scope := domain.Scope{TenantID: "t1", ClientID: "c1"}
	clients.Create(t.Context(), "t1", &domain.Client{ID: "c1", Email: "client@example.com"})
	assignments := newMemAssignments()
	return NewSweeper(clients, assignments, nil), assignments, scope
}

func seed(t *testing.T, m *memAssignments, scope domain.Scope, id, userID, surveyID, assignedAt string) {
	t.Helper()
	err := m.Create(t.Context(), scope, &domain.Assignment{
		ID: id, UserID: userID, SurveyID: surveyID, AssignedAt: assignedAt,
	})
	if err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
}

func TestSweepKeepsMostRecent(t *testing.T) {
	sweeper, assignments, scope := newSweepFixture(t)
	seed(t, assignments, scope, "a1", "u1", "s1", "2025-01-01T00:00:00Z")
	seed(t, assignments, scope, "a2", "u1", "s1", "2025-03-01T00:00:00Z")
	seed(t, assignments, scope, "a3", "u1", "s1", "2025-02-01T00:00:00Z")

	removed, err := sweeper.Sweep(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	left, _ := assignments.List(t.Context(), scope)
	if len(left) != 1 || left[0].ID != "a2" {
		t.Fatalf("expected only the most recent (a2) to remain, got %+v", left)
	}
}

func TestSweepMissingTimestampRemovedFirst(t *testing.T) {
	sweeper, assignments, scope := newSweepFixture(t)
	seed(t, assignments, scope, "a1", "u1", "s1", "")
	seed(t, assignments, scope, "a2", "u1", "s1", "2024-06-01T00:00:00Z")

	removed, err := sweeper.Sweep(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	left, _ := assignments.List(t.Context(), scope)
	if len(left) != 1 || left[0].ID != "a2" {
		t.Fatalf("record without timestamp should be the one removed, got %+v", left)
	}
}

func TestSweepLeavesDistinctPairsAlone(t *testing.T) {
	sweeper, assignments, scope := newSweepFixture(t)
	seed(t, assignments, scope, "a1", "u1", "s1", "2025-01-01T00:00:00Z")
	seed(t, assignments, scope, "a2", "u2", "s1", "2025-01-01T00:00:00Z")
	seed(t, assignments, scope, "a3", "u1", "s2", "2025-01-01T00:00:00Z")

	removed, err := sweeper.Sweep(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
	left, _ := assignments.List(t.Context(), scope)
	if len(left) != 3 {
		t.Fatalf("expected all 3 records to remain, got %d", len(left))
	}
}

func TestSweepSkipsMalformedRecords(t *testing.T) {
	sweeper, assignments, scope := newSweepFixture(t)
	seed(t, assignments, scope, "a1", "", "s1", "2025-01-01T00:00:00Z")
	seed(t, assignments, scope, "a2", "", "s1", "2025-02-01T00:00:00Z")

	removed, err := sweeper.Sweep(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("records without user ids must not be grouped, got %d removed", removed)
	}
}

func TestSweepCoversAllClients(t *testing.T) {
	clients := &memClientRepo{byScope: map[domain.Scope]*domain.Client{}}
	clients.Create(t.Context(), "t1", &domain.Client{ID: "c1", Email: "one@example.com"})
	clients.Create(t.Context(), "t1", &domain.Client{ID: "c2", Email: "two@example.com"})
	clients.Create(t.Context(), "t2", &domain.Client{ID: "c3", Email: "three@example.com"})
	assignments := newMemAssignments()
	sweeper := NewSweeper(clients, assignments, nil)

	for _, scope := range []domain.Scope{
		{TenantID: "t1", ClientID: "c1"},
		{TenantID: "t1", ClientID: "c2"},
		{TenantID: "t2", ClientID: "c3"},
	} {
		seed(t, assignments, scope, "a1", "u1", "s1", "2025-01-01T00:00:00Z")
		seed(t, assignments, scope, "a2", "u1", "s1", "2025-02-01T00:00:00Z")
	}

	removed, err := sweeper.Sweep(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected one duplicate removed per client, got %d", removed)
	}
}
