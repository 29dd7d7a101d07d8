package user

import (
	"strings"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/pkg/constants"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// CreateDTO provisions a tenant user. super_admin is never assignable here.
type CreateDTO struct {
	Name     string    `json:"name" validate:"required,max=255"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=8,max=72"`
	Role     role.Type `json:"role" validate:"required,oneof=admin_general admin_branch operator"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = NormalizeEmail(d.Email)
}

func (d *CreateDTO) Validate() error {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.FromValidator(err)
	}
	return nil
}
