// Package professores resolves the domain professor record behind an
// authenticated PROFESSOR user.
package professores

import (
	"time"

	"github.com/google/uuid"
)

// Professor is the domain record tied to a user account.
type Professor struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	InstitutionID uuid.UUID
	Nome          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
