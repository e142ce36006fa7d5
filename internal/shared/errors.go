package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInstitutionRequired occurs when a non-SUPER_ADMIN principal lacks an institution.
	ErrInstitutionRequired = errors.New("institution required")
	// ErrInstitutionMismatch occurs when a record exists but belongs to an
	// institution outside the caller's scope.
	ErrInstitutionMismatch = errors.New("institution out of scope")
	// ErrTermoNaoAceite occurs when a gated action runs without a current term acceptance.
	ErrTermoNaoAceite = errors.New("termo de responsabilidade not accepted")
)
