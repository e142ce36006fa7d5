package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// User represents an authenticated user account.
type User struct {
	ID               uuid.UUID
	Email            string
	Name             string
	PasswordHash     string
	Role             shared.Role
	InstitutionID    *uuid.UUID
	IsActive         bool
	TwoFactorEnabled bool
	TwoFactorSecret  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Principal builds the request principal for this user.
func (u User) Principal() shared.Principal {
	return shared.Principal{
		UserID:        u.ID,
		Role:          u.Role,
		InstitutionID: u.InstitutionID,
	}
}
