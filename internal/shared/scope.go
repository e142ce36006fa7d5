package shared

import "github.com/google/uuid"

// Scope carries the tenant boundary for data access. Its fields are
// unexported so a scope cannot be assembled from request input; repositories
// take a Scope parameter and filter every query through it.
type Scope struct {
	institutionID uuid.UUID
	all           bool
}

// AllInstitutions reports whether the scope spans every tenant. Only
// SUPER_ADMIN principals produce such a scope, and routes must opt into
// honouring it.
func (s Scope) AllInstitutions() bool {
	return s.all
}

// InstitutionID returns the institution the scope is bound to. Zero when the
// scope is unrestricted.
func (s Scope) InstitutionID() uuid.UUID {
	return s.institutionID
}

// Covers reports whether an entity owned by the given institution is visible
// under this scope.
func (s Scope) Covers(institutionID uuid.UUID) bool {
	if s.all {
		return true
	}
	return s.institutionID == institutionID
}

// ScopeForTesting builds a scope directly. Test helper only.
func ScopeForTesting(institutionID uuid.UUID) Scope {
	return Scope{institutionID: institutionID}
}
