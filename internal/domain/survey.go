package domain

import (
	"context"
	"fmt"
	"time"
)

// Scope identifies the tenant hierarchy a document lives under:
// superadmin -> clients -> {users, surveys, questions, assignments, responses}
type Scope struct {
	TenantID string
	ClientID string
}

// Assignment links one user to one survey within a client's scope.
// At most one live assignment should exist per (survey, user) pair; the
// store has no uniqueness constraint, so this is enforced in the
// assignment service and repaired by the offline duplicate sweep.
type Assignment struct {
	ID         string `json:"id"`
	SurveyID   string `json:"survey_id"`
	UserID     string `json:"user_id"`
	AssignedBy string `json:"assigned_by"`
	// RFC 3339 string, empty on legacy documents written before the
	// field existed. String ordering is the sweep's recency ordering.
	AssignedAt string `json:"assigned_at"`
}

// Validate checks the fields required for a well-formed assignment
func (a *Assignment) Validate() error {
	if a.SurveyID == "" {
		return fmt.Errorf("assignment missing survey_id")
	}
	if a.UserID == "" {
		return fmt.Errorf("assignment missing user_id")
	}
	return nil
}

// DedupKey is the identity key for duplicate detection
func (a *Assignment) DedupKey() string {
	return a.UserID + "_" + a.SurveyID
}

// Survey is a set of questions a client administers to users
type Survey struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	QuestionIDs []string  `json:"question_ids,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the fields required for a well-formed survey
func (s *Survey) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("survey missing title")
	}
	return nil
}

// Question is a single survey question
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Type      string    `json:"type,omitempty"`
	Options   []string  `json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields required for a well-formed question
func (q *Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question missing text")
	}
	return nil
}

// Response is one user's submission for a survey
type Response struct {
	ID          string         `json:"id"`
	SurveyID    string         `json:"survey_id"`
	UserID      string         `json:"user_id"`
	Answers     map[string]any `json:"answers"`
	Latitude    float64        `json:"latitude,omitempty"`
	Longitude   float64        `json:"longitude,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Validate checks the fields required for a well-formed response
func (r *Response) Validate() error {
	if r.SurveyID == "" {
		return fmt.Errorf("response missing survey_id")
	}
	if r.UserID == "" {
		return fmt.Errorf("response missing user_id")
	}
	return nil
}

// AssignmentRepository defines data access for survey assignments
type AssignmentRepository interface {
	Create(ctx context.Context, scope Scope, a *Assignment) error
	List(ctx context.Context, scope Scope) ([]*Assignment, error)
	ListBySurvey(ctx context.Context, scope Scope, surveyID string) ([]*Assignment, error)
	ListByUser(ctx context.Context, scope Scope, userID string) ([]*Assignment, error)
	Delete(ctx context.Context, scope Scope, id string) error
	// Reserve atomically claims the (survey, user) slot in the secondary
	// unique index. Returns false if the slot is already claimed.
	Reserve(ctx context.Context, scope Scope, surveyID, userID string) (bool, error)
	Release(ctx context.Context, scope Scope, surveyID, userID string) error
}

// SurveyRepository defines data access for surveys
type SurveyRepository interface {
	Create(ctx context.Context, scope Scope, s *Survey) error
	GetByID(ctx context.Context, scope Scope, id string) (*Survey, error)
	List(ctx context.Context, scope Scope) ([]*Survey, error)
	Update(ctx context.Context, scope Scope, s *Survey) error
	Delete(ctx context.Context, scope Scope, id string) error
}

// QuestionRepository defines data access for questions
type QuestionRepository interface {
	Create(ctx context.Context, scope Scope, q *Question) error
	GetByID(ctx context.Context, scope Scope, id string) (*Question, error)
	List(ctx context.Context, scope Scope) ([]*Question, error)
	Update(ctx context.Context, scope Scope, q *Question) error
	Delete(ctx context.Context, scope Scope, id string) error
}

// ResponseRepository defines data access for survey responses
type ResponseRepository interface {
	Create(ctx context.Context, scope Scope, r *Response) error
	ListBySurvey(ctx context.Context, scope Scope, surveyID string) ([]*Response, error)
	ListByUser(ctx context.Context, scope Scope, userID string) ([]*Response, error)
	Delete(ctx context.Context, scope Scope, id string) error
}
