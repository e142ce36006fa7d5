package usuarios

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

func TestCreateInputValidate(t *testing.T) {
	inst := uuid.New()
	valid := CreateInput{
		Email:         "secretaria@escola.ao",
		Name:          "Ana Secretária",
		Password:      "s3nh4-forte",
		Role:          shared.RoleSecretaria,
		InstitutionID: &inst,
	}
	assert.NoError(t, valid.Validate())

	in := valid
	in.Email = ""
	assert.Error(t, in.Validate())

	in = valid
	in.Password = "curta"
	assert.Error(t, in.Validate())

	in = valid
	in.Role = "OVERLORD"
	assert.Error(t, in.Validate())
}

func TestCreateInputInstitutionRule(t *testing.T) {
	// SUPER_ADMIN is the only role that may omit the institution.
	in := CreateInput{
		Email:    "root@dsicola.ao",
		Password: "s3nh4-forte",
		Role:     shared.RoleSuperAdmin,
	}
	assert.NoError(t, in.Validate())

	for _, role := range shared.AllRoles() {
		if role == shared.RoleSuperAdmin {
			continue
		}
		in := CreateInput{Email: "u@escola.ao", Password: "s3nh4-forte", Role: role}
		assert.Error(t, in.Validate(), "role %s", role)
	}
}
