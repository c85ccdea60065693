package docstore

import (
	"strings"

	"github.com/KarthikRajS32/vsurvey/internal/domain"
)

// Key layout mirrors the hierarchical collection tree:
//
//	sa:{tenant}:clients:{client}
//	sa:{tenant}:clients:{client}:users:{user}
//	sa:{tenant}:clients:{client}:survey_assignments:{assignment}
//	...
//
// A Collection addresses one level of that tree.
type Collection struct {
	prefix string
}

// Doc returns the key of a document in the collection
func (c Collection) Doc(id string) string {
	return c.prefix + ":" + id
}

// Pattern returns the scan pattern matching the collection's documents
// (and, for nested collections, their descendants — filter with Contains)
func (c Collection) Pattern() string {
	return c.prefix + ":*"
}

// Contains reports whether key is a direct child of the collection
func (c Collection) Contains(key string) bool {
	rest, ok := strings.CutPrefix(key, c.prefix+":")
	return ok && rest != "" && !strings.Contains(rest, ":")
}

// ID extracts the document id from a key within the collection
func (c Collection) ID(key string) string {
	return strings.TrimPrefix(key, c.prefix+":")
}

// Clients addresses the client documents of a tenant
func Clients(tenantID string) Collection {
	return Collection{prefix: "sa:" + tenantID + ":clients"}
}

// Users addresses the user documents of a client
func Users(s domain.Scope) Collection {
	return sub(s, "users")
}

// Surveys addresses the survey documents of a client
func Surveys(s domain.Scope) Collection {
	return sub(s, "surveys")
}

// Questions addresses the question documents of a client
func Questions(s domain.Scope) Collection {
	return sub(s, "questions")
}

// Assignments addresses the survey_assignments documents of a client
func Assignments(s domain.Scope) Collection {
	return sub(s, "survey_assignments")
}

// Responses addresses the survey_responses documents of a client
func Responses(s domain.Scope) Collection {
	return sub(s, "survey_responses")
}

// AssignmentIndexKey is the secondary unique-index slot for one
// (survey, user) pair. Written with SetNX when duplicate prevention is
// enforced at write time.
func AssignmentIndexKey(s domain.Scope, surveyID, userID string) string {
	return sub(s, "assignment_index").prefix + ":" + surveyID + ":" + userID
}

// ResponsesChannel is the pub/sub channel carrying newly submitted
// responses for one survey.
func ResponsesChannel(s domain.Scope, surveyID string) string {
	return "feed:" + s.TenantID + ":" + s.ClientID + ":" + surveyID
}

// TenantsPattern matches every client document across all tenants
func TenantsPattern() string {
	return "sa:*:clients:*"
}

// TenantOf extracts the tenant id from any document key, or "" if the
// key is not part of the tenant tree.
func TenantOf(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 4 || parts[0] != "sa" || parts[2] != "clients" {
		return ""
	}
	return parts[1]
}

func sub(s domain.Scope, collection string) Collection {
	return Collection{prefix: Clients(s.TenantID).Doc(s.ClientID) + ":" + collection}
}
