package service

import (
	"testing"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

const testClientEmail = "client@example.com"

func newAssignFixture(enforceUnique bool) (*AssignmentService, *memAssignmentRepo, domain.Scope) {
	clients := newMemClientRepo()
	scope := domain.Scope{TenantID: "t1", ClientID: "c1"}
	clients.add(scope, testClientEmail)
	assignments := newMemAssignmentRepo()
	return NewAssignmentService(assignments, clients, enforceUnique, nil), assignments, scope
}

func TestAssignCreatesRecords(t *testing.T) {
	svc, _, _ := newAssignFixture(false)

	created, err := svc.Assign(t.Context(), "s1", []string{"u1", "u2"}, testClientEmail)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created, got %d", len(created))
	}
	for _, a := range created {
		if a.SurveyID != "s1" || a.AssignedBy != testClientEmail || a.AssignedAt == "" || a.ID == "" {
			t.Errorf("incomplete assignment record: %+v", a)
		}
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	svc, _, _ := newAssignFixture(false)

	if _, err := svc.Assign(t.Context(), "s1", []string{"u1", "u2"}, testClientEmail); err != nil {
		t.Fatalf("first assign failed: %v", err)
	}
	created, err := svc.Assign(t.Context(), "s1", []string{"u1", "u2"}, testClientEmail)
	if err != nil {
		t.Fatalf("second assign failed: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected 0 created on repeat call, got %d", len(created))
	}
}

func TestAssignPartialOverlap(t *testing.T) {
	svc, _, _ := newAssignFixture(false)

	if _, err := svc.Assign(t.Context(), "s1", []string{"u1", "u2"}, testClientEmail); err != nil {
		t.Fatalf("initial assign failed: %v", err)
	}
	created, err := svc.Assign(t.Context(), "s1", []string{"u1", "u2", "u3", "u4"}, testClientEmail)
	if err != nil {
		t.Fatalf("overlap assign failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected exactly 2 new records, got %d", len(created))
	}
	got := map[string]bool{}
	for _, a := range created {
		got[a.UserID] = true
	}
	if !got["u3"] || !got["u4"] {
		t.Errorf("expected u3 and u4, got %v", got)
	}

	// end-to-end total after both calls
	all, err := svc.ListForSurvey(t.Context(), "s1", testClientEmail)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 total records for s1, got %d", len(all))
	}
}

func TestAssignDeduplicatesRequestedIDs(t *testing.T) {
	svc, _, _ := newAssignFixture(false)

	created, err := svc.Assign(t.Context(), "s1", []string{"u1", "u1", "", "u1"}, testClientEmail)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 created for duplicated input, got %d", len(created))
	}
}

func TestAssignScopedPerSurvey(t *testing.T) {
	svc, _, _ := newAssignFixture(false)

	if _, err := svc.Assign(t.Context(), "s1", []string{"u1"}, testClientEmail); err != nil {
		t.Fatalf("assign s1 failed: %v", err)
	}
	created, err := svc.Assign(t.Context(), "s2", []string{"u1"}, testClientEmail)
	if err != nil {
		t.Fatalf("assign s2 failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("same user on a different survey should be created, got %d", len(created))
	}
}

func TestAssignEmptySurveyID(t *testing.T) {
	svc, _, _ := newAssignFixture(false)
	if _, err := svc.Assign(t.Context(), "", []string{"u1"}, testClientEmail); err == nil {
		t.Fatal("expected error for empty survey id")
	}
}

func TestAssignUnknownClient(t *testing.T) {
	svc, _, _ := newAssignFixture(false)
	if _, err := svc.Assign(t.Context(), "s1", []string{"u1"}, "nobody@example.com"); err == nil {
		t.Fatal("expected error for unknown client")
	}
}

func TestAssignUniqueIndexBlocksRacedPair(t *testing.T) {
	svc, assignments, scope := newAssignFixture(true)

	// A concurrent call already reserved the slot but its document is
	// not yet visible to the existence check.
	if ok, _ := assignments.Reserve(t.Context(), scope, "s1", "u1"); !ok {
		t.Fatal("setup reservation failed")
	}

	created, err := svc.Assign(t.Context(), "s1", []string{"u1", "u2"}, testClientEmail)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if len(created) != 1 || created[0].UserID != "u2" {
		t.Fatalf("expected only u2 to be created, got %+v", created)
	}
}

func TestAssignReleasesReservationOnCreateFailure(t *testing.T) {
	svc, assignments, scope := newAssignFixture(true)
	assignments.failOn = "u1"

	if _, err := svc.Assign(t.Context(), "s1", []string{"u1"}, testClientEmail); err == nil {
		t.Fatal("expected create failure to surface")
	}

	// slot must be free again for a later retry
	ok, err := assignments.Reserve(t.Context(), scope, "s1", "u1")
	if err != nil || !ok {
		t.Fatalf("reservation should have been released: ok=%v err=%v", ok, err)
	}
}
