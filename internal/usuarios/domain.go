// Package usuarios administers platform accounts: creation, role
// assignment, activation, and resets performed by staff.
package usuarios

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// CreateInput carries fields for a new account.
type CreateInput struct {
	Email         string
	Name          string
	Password      string
	Role          shared.Role
	InstitutionID *uuid.UUID
}

// Validate ensures the input is coherent. SUPER_ADMIN is the only role
// allowed to live without an institution.
func (in CreateInput) Validate() error {
	if in.Email == "" {
		return errors.New("usuarios: email required")
	}
	if len(in.Password) < 8 {
		return errors.New("usuarios: password must have at least 8 characters")
	}
	if _, err := shared.ParseRole(string(in.Role)); err != nil {
		return err
	}
	if in.Role != shared.RoleSuperAdmin && in.InstitutionID == nil {
		return errors.New("usuarios: institution required for this role")
	}
	return nil
}

// UpdateInput carries mutable account fields.
type UpdateInput struct {
	Name     *string
	Role     *shared.Role
	IsActive *bool
}

// ErrEmailDuplicado indicates the email is already registered.
var ErrEmailDuplicado = errors.New("usuarios: email already registered")

// ErrUltimoAdmin blocks removing the last active admin of an institution.
var ErrUltimoAdmin = errors.New("usuarios: cannot deactivate the last active admin")
