package role

import (
	"strings"

	"github.com/iota-uz/consentia/pkg/constants"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// UpdateDTO changes a role. Nil fields are left untouched; a non-nil
// Permissions replaces the whole set.
type UpdateDTO struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

func (d *UpdateDTO) Normalize() {
	if d.Name != nil {
		*d.Name = strings.TrimSpace(*d.Name)
	}
	if d.Description != nil {
		*d.Description = strings.TrimSpace(*d.Description)
	}
	for i, p := range d.Permissions {
		d.Permissions[i] = strings.TrimSpace(p)
	}
}

func (d *UpdateDTO) Validate() error {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.FromValidator(err)
	}
	return nil
}
