package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memClientRepo struct {
	clients map[domain.Scope]*domain.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: map[domain.Scope]*domain.Client{}}
}

func (m *memClientRepo) add(scope domain.Scope, email string) {
	m.clients[scope] = &domain.Client{ID: scope.ClientID, Email: email}
}

func (m *memClientRepo) Create(ctx context.Context, tenantID string, c *domain.Client) error {
	m.clients[domain.Scope{TenantID: tenantID, ClientID: c.ID}] = c
	return nil
}

func (m *memClientRepo) GetByID(ctx context.Context, scope domain.Scope) (*domain.Client, error) {
	if c, ok := m.clients[scope]; ok {
		return c, nil
	}
	return nil, errors.New("client not found")
}

func (m *memClientRepo) GetByEmail(ctx context.Context, email string) (*domain.Client, domain.Scope, error) {
	for scope, c := range m.clients {
		if c.Email == email {
			return c, scope, nil
		}
	}
	return nil, domain.Scope{}, errors.New("client not found")
}

func (m *memClientRepo) List(ctx context.Context, tenantID string) ([]*domain.Client, error) {
	var out []*domain.Client
	for scope, c := range m.clients {
		if scope.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClientRepo) Delete(ctx context.Context, scope domain.Scope) error {
	delete(m.clients, scope)
	return nil
}

func (m *memClientRepo) Tenants(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for scope := range m.clients {
		if !seen[scope.TenantID] {
			seen[scope.TenantID] = true
			out = append(out, scope.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type scopedKey struct {
	scope domain.Scope
	id    string
}

type memAssignmentRepo struct {
	docs     map[scopedKey]*domain.Assignment
	reserved map[string]bool
	failOn   string // user id whose Create fails
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{
		docs:     map[scopedKey]*domain.Assignment{},
		reserved: map[string]bool{},
	}
}

func (m *memAssignmentRepo) Create(ctx context.Context, scope domain.Scope, a *domain.Assignment) error {
	if m.failOn != "" && a.UserID == m.failOn {
		return errors.New("store unavailable")
	}
	copied := *a
	m.docs[scopedKey{scope, a.ID}] = &copied
	return nil
}

func (m *memAssignmentRepo) List(ctx context.Context, scope domain.Scope) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for k, a := range m.docs {
		if k.scope == scope {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAssignmentRepo) ListBySurvey(ctx context.Context, scope domain.Scope, surveyID string) ([]*domain.Assignment, error) {
	all, _ := m.List(ctx, scope)
	var out []*domain.Assignment
	for _, a := range all {
		if a.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignmentRepo) ListByUser(ctx context.Context, scope domain.Scope, userID string) ([]*domain.Assignment, error) {
	all, _ := m.List(ctx, scope)
	var out []*domain.Assignment
	for _, a := range all {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAssignmentRepo) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

func (m *memAssignmentRepo) Reserve(ctx context.Context, scope domain.Scope, surveyID, userID string) (bool, error) {
	key := fmt.Sprintf("%s/%s/%s/%s", scope.TenantID, scope.ClientID, surveyID, userID)
	if m.reserved[key] {
		return false, nil
	}
	m.reserved[key] = true
	return true, nil
}

func (m *memAssignmentRepo) Release(ctx context.Context, scope domain.Scope, surveyID, userID string) error {
	delete(m.reserved, fmt.Sprintf("%s/%s/%s/%s", scope.TenantID, scope.ClientID, surveyID, userID))
	return nil
}

type memUserRepo struct {
	docs map[scopedKey]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{docs: map[scopedKey]*domain.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, scope domain.Scope, u *domain.User) error {
	copied := *u
	m.docs[scopedKey{scope, u.ID}] = &copied
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.User, error) {
	if u, ok := m.docs[scopedKey{scope, id}]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *memUserRepo) List(ctx context.Context, scope domain.Scope) ([]*domain.User, error) {
	var out []*domain.User
	for k, u := range m.docs {
		if k.scope == scope {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) Update(ctx context.Context, scope domain.Scope, u *domain.User) error {
	m.docs[scopedKey{scope, u.ID}] = u
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memResponseRepo struct {
	docs   map[scopedKey]*domain.Response
	failOn string // response id whose Delete fails
}

func newMemResponseRepo() *memResponseRepo {
	return &memResponseRepo{docs: map[scopedKey]*domain.Response{}}
}

func (m *memResponseRepo) Create(ctx context.Context, scope domain.Scope, r *domain.Response) error {
	copied := *r
	m.docs[scopedKey{scope, r.ID}] = &copied
	return nil
}

func (m *memResponseRepo) ListBySurvey(ctx context.Context, scope domain.Scope, surveyID string) ([]*domain.Response, error) {
	var out []*domain.Response
	for k, r := range m.docs {
		if k.scope == scope && r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memResponseRepo) ListByUser(ctx context.Context, scope domain.Scope, userID string) ([]*domain.Response, error) {
	var out []*domain.Response
	for k, r := range m.docs {
		if k.scope == scope && r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memResponseRepo) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if m.failOn != "" && id == m.failOn {
		return errors.New("store unavailable")
	}
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memSurveyRepo struct {
	docs map[scopedKey]*domain.Survey
}

func newMemSurveyRepo() *memSurveyRepo {
	return &memSurveyRepo{docs: map[scopedKey]*domain.Survey{}}
}

func (m *memSurveyRepo) Create(ctx context.Context, scope domain.Scope, s *domain.Survey) error {
	copied := *s
	m.docs[scopedKey{scope, s.ID}] = &copied
	return nil
}

func (m *memSurveyRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Survey, error) {
	if s, ok := m.docs[scopedKey{scope, id}]; ok {
		return s, nil
	}
	return nil, errors.New("survey not found")
}

func (m *memSurveyRepo) List(ctx context.Context, scope domain.Scope) ([]*domain.Survey, error) {
	var out []*domain.Survey
	for k, s := range m.docs {
		if k.scope == scope {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSurveyRepo) Update(ctx context.Context, scope domain.Scope, s *domain.Survey) error {
	m.docs[scopedKey{scope, s.ID}] = s
	return nil
}

func (m *memSurveyRepo) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memQuestionRepo struct {
	docs map[scopedKey]*domain.Question
}

func newMemQuestionRepo() *memQuestionRepo {
	return &memQuestionRepo{docs: map[scopedKey]*domain.Question{}}
}

func (m *memQuestionRepo) Create(ctx context.Context, scope domain.Scope, q *domain.Question) error {
	copied := *q
	m.docs[scopedKey{scope, q.ID}] = &copied
	return nil
}

func (m *memQuestionRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Question, error) {
	if q, ok := m.docs[scopedKey{scope, id}]; ok {
		return q, nil
	}
	return nil, errors.New("question not found")
}

func (m *memQuestionRepo) List(ctx context.Context, scope domain.Scope) ([]*domain.Question, error) {
	var out []*domain.Question
	for k, q := range m.docs {
		if k.scope == scope {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuestionRepo) Update(ctx context.Context, scope domain.Scope, q *domain.Question) error {
	m.docs[scopedKey{scope, q.ID}] = q
	return nil
}

func (m *memQuestionRepo) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type fakeAccounts struct {
	deleted []string
	failUID string
}

func (f *fakeAccounts) DeleteAccount(ctx context.Context, uid string) error {
	if uid == f.failUID {
		return errors.New("identity provider unavailable")
	}
	f.deleted = append(f.deleted, uid)
	return nil
}
