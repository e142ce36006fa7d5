package shared

import "github.com/google/uuid"

// Principal is the authenticated identity attached to a request. It is
// built from a verified token and immutable for the request lifetime.
type Principal struct {
	UserID        uuid.UUID
	Role          Role
	InstitutionID *uuid.UUID
}

// RequiresInstitution reports whether this principal must carry an
// institution. Only SUPER_ADMIN may operate without one.
func (p Principal) RequiresInstitution() bool {
	return p.Role != RoleSuperAdmin
}

// Scope derives the tenant scope from the verified principal. This is the
// only constructor for Scope outside tests; the effective institution id is
// never read from client-supplied values.
func (p Principal) Scope() (Scope, error) {
	if p.InstitutionID != nil {
		return Scope{institutionID: *p.InstitutionID}, nil
	}
	if p.Role == RoleSuperAdmin {
		return Scope{all: true}, nil
	}
	return Scope{}, ErrInstitutionRequired
}
