package shared

import (
	"fmt"
	"strings"
)

// Role is one of the closed set of access roles. There is no hierarchy
// between roles; every route declares its own allow-list.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleProfessor   Role = "PROFESSOR"
	RoleAluno       Role = "ALUNO"
	RoleSecretaria  Role = "SECRETARIA"
	RoleRH          Role = "RH"
	RoleFinanceiro  Role = "FINANCEIRO"
	RoleCoordenador Role = "COORDENADOR"
	RoleDirecao     Role = "DIRECAO"
	RoleAuditor     Role = "AUDITOR"
	RoleComercial   Role = "COMERCIAL"
	RolePOS         Role = "POS"
)

// AllRoles lists every valid role tag.
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleAdmin,
		RoleProfessor,
		RoleAluno,
		RoleSecretaria,
		RoleRH,
		RoleFinanceiro,
		RoleCoordenador,
		RoleDirecao,
		RoleAuditor,
		RoleComercial,
		RolePOS,
	}
}

// ParseRole validates a role tag read from storage or a token.
func ParseRole(raw string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, role := range AllRoles() {
		if role == candidate {
			return role, nil
		}
	}
	return "", fmt.Errorf("shared: unknown role %q", raw)
}

// In reports whether the role appears in the given allow-list. Exact
// membership only; absence means deny.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
