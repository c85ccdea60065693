package handler

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/repository"
)

// In-memory fakes shared by the handler tests. They return the
// repository sentinels so the handlers' status mapping is exercised.

type memClients struct {
	clients map[domain.Scope]*domain.Client
}

func newMemClients() *memClients {
	return &memClients{clients: map[domain.Scope]*domain.Client{}}
}

func (m *memClients) add(scope domain.Scope, email string) {
	m.clients[scope] = &domain.Client{ID: scope.ClientID, Email: email}
}

func (m *memClients) Create(ctx context.Context, tenantID string, c *domain.Client) error {
	m.clients[domain.Scope{TenantID: tenantID, ClientID: c.ID}] = c
	return nil
}

func (m *memClients) GetByID(ctx context.Context, scope domain.Scope) (*domain.Client, error) {
	if c, ok := m.clients[scope]; ok {
		return c, nil
	}
	return nil, repository.ErrClientNotFound
}

func (m *memClients) GetByEmail(ctx context.Context, email string) (*domain.Client, domain.Scope, error) {
	for scope, c := range m.clients {
		if c.Email == email {
			return c, scope, nil
		}
	}
	return nil, domain.Scope{}, repository.ErrClientNotFound
}

func (m *memClients) List(ctx context.Context, tenantID string) ([]*domain.Client, error) {
	var out []*domain.Client
	for scope, c := range m.clients {
		if scope.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClients) Delete(ctx context.Context, scope domain.Scope) error {
	delete(m.clients, scope)
	return nil
}

func (m *memClients) Tenants(ctx context.Context) ([]string, error) {
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

type memUsers struct {
	docs map[scopedKey]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{docs: map[scopedKey]*domain.User{}}
}

func (m *memUsers) Create(ctx context.Context, scope domain.Scope, u *domain.User) error {
	copied := *u
	m.docs[scopedKey{scope, u.ID}] = &copied
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.User, error) {
	if u, ok := m.docs[scopedKey{scope, id}]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) List(ctx context.Context, scope domain.Scope) ([]*domain.User, error) {
	var out []*domain.User
	for k, u := range m.docs {
		if k.scope == scope {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Update(ctx context.Context, scope domain.Scope, u *domain.User) error {
	copied := *u
	m.docs[scopedKey{scope, u.ID}] = &copied
	return nil
}

func (m *memUsers) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memSurveys struct {
	docs map[scopedKey]*domain.Survey
}

func newMemSurveys() *memSurveys {
	return &memSurveys{docs: map[scopedKey]*domain.Survey{}}
}

func (m *memSurveys) Create(ctx context.Context, scope domain.Scope, s *domain.Survey) error {
	copied := *s
	m.docs[scopedKey{scope, s.ID}] = &copied
	return nil
}

func (m *memSurveys) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Survey, error) {
	if s, ok := m.docs[scopedKey{scope, id}]; ok {
		return s, nil
	}
	return nil, repository.ErrSurveyNotFound
}

func (m *memSurveys) List(ctx context.Context, scope domain.Scope) ([]*domain.Survey, error) {
	var out []*domain.Survey
	for k, s := range m.docs {
		if k.scope == scope {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSurveys) Update(ctx context.Context, scope domain.Scope, s *domain.Survey) error {
	copied := *s
	m.docs[scopedKey{scope, s.ID}] = &copied
	return nil
}

func (m *memSurveys) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memQuestions struct {
	docs map[scopedKey]*domain.Question
}

func newMemQuestions() *memQuestions {
	return &memQuestions{docs: map[scopedKey]*domain.Question{}}
}

func (m *memQuestions) Create(ctx context.Context, scope domain.Scope, q *domain.Question) error {
	copied := *q
	m.docs[scopedKey{scope, q.ID}] = &copied
	return nil
}

func (m *memQuestions) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Question, error) {
	if q, ok := m.docs[scopedKey{scope, id}]; ok {
		return q, nil
	}
	return nil, repository.ErrQuestionNotFound
}

func (m *memQuestions) List(ctx context.Context, scope domain.Scope) ([]*domain.Question, error) {
	var out []*domain.Question
	for k, q := range m.docs {
		if k.scope == scope {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuestions) Update(ctx context.Context, scope domain.Scope, q *domain.Question) error {
	copied := *q
	m.docs[scopedKey{scope, q.ID}] = &copied
	return nil
}

func (m *memQuestions) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memResponses struct {
	docs map[scopedKey]*domain.Response
}

func newMemResponses() *memResponses {
	return &memResponses{docs: map[scopedKey]*domain.Response{}}
}

func (m *memResponses) Create(ctx context.Context, scope domain.Scope, r *domain.Response) error {
	copied := *r
	m.docs[scopedKey{scope, r.ID}] = &copied
	return nil
}

func (m *memResponses) ListBySurvey(ctx context.Context, scope domain.Scope, surveyID string) ([]*domain.Response, error) {
	var out []*domain.Response
	for k, r := range m.docs {
		if k.scope == scope && r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memResponses) ListByUser(ctx context.Context, scope domain.Scope, userID string) ([]*domain.Response, error) {
	var out []*domain.Response
	for k, r := range m.docs {
		if k.scope == scope && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memResponses) Delete(ctx context.Context, scope domain.Scope, id string) error {
	delete(m.docs, scopedKey{scope, id})
	return nil
}

type memAssignments struct {
	docs     map[scopedKey]*domain.Assignment
	reserved map[string]bool
}

func newMemAssignments() *memAssignments {
	return &memAssignments{
		docs:     map[scopedKey]*domain.Assignment{},
		reserved: map[string]bool{},
	}
}

func (m *memAssignments) Create(ctx context.Context, scope domain.Scope, a *domain.Assignment) error {
	copied := *a
	m.docs[scopedKey{scope, a.ID}] = &copied
	return nil
}

func (m *memAssignments) List(ctx context.Context, scope domain.Scope) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for k, a := range m.docs {
		if k.scope == scope {
			out = append(out, a)
		}
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
	delete(m.docs, scopedKey{scope, id})
	return nil
}

func (m *memAssignments) Reserve(ctx context.Context, scope domain.Scope, surveyID, userID string) (bool, error) {
	key := scope.TenantID + "/" + scope.ClientID + "/" + surveyID + "/" + userID
	if m.reserved[key] {
		return false, nil
	}
	m.reserved[key] = true
	return true, nil
}

func (m *memAssignments) Release(ctx context.Context, scope domain.Scope, surveyID, userID string) error {
	delete(m.reserved, scope.TenantID+"/"+scope.ClientID+"/"+surveyID+"/"+userID)
	return nil
}

// fakeIdentity stands in for the identity provider: account creation,
// deletion and uid lookup.
type fakeIdentity struct {
	accounts map[string]*identity.Account // keyed by uid
	deleted  []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]*identity.Account{}}
}

func (f *fakeIdentity) addAccount(uid, email, role, clientEmail string) {
	f.accounts[uid] = &identity.Account{
		UID:         uid,
		Email:       email,
		Role:        role,
		ClientEmail: clientEmail,
		CreatedAt:   time.Now(),
	}
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, email, password, role, clientEmail string) (*identity.Account, error) {
	account := &identity.Account{
		UID:         uuid.NewString(),
		Email:       email,
		Role:        role,
		ClientEmail: clientEmail,
		CreatedAt:   time.Now(),
	}
	f.accounts[account.UID] = account
	return account, nil
}

func (f *fakeIdentity) DeleteAccount(ctx context.Context, uid string) error {
	if _, ok := f.accounts[uid]; !ok {
		return identity.ErrAccountNotFound
	}
	delete(f.accounts, uid)
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeIdentity) GetByUID(ctx context.Context, uid string) (*identity.Account, error) {
	if account, ok := f.accounts[uid]; ok {
		return account, nil
	}
	return nil, identity.ErrAccountNotFound
}
