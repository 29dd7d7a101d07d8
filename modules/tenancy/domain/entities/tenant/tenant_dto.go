package tenant

import (
	"strings"
	"time"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/pkg/constants"
	"github.com/iota-uz/consentia/pkg/serrors"
)

type CreateDTO struct {
	Name          string             `json:"name" validate:"required,max=255"`
	Slug          string             `json:"slug" validate:"omitempty,max=63"`
	Plan          plan.ID            `json:"plan" validate:"omitempty,oneof=free basic professional enterprise custom"`
	BillingCycle  plan.BillingCycle  `json:"billingCycle" validate:"omitempty,oneof=monthly annual"`
	Status        Status             `json:"status" validate:"omitempty,oneof=trial active suspended expired"`
	BillingDay    int                `json:"billingDay" validate:"omitempty,min=1,max=28"`
	AutoRenew     *bool              `json:"autoRenew"`
	TrialEndsAt   *time.Time         `json:"trialEndsAt"`
	ContactName   string             `json:"contactName" validate:"max=255"`
	ContactEmail  string             `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone  string             `json:"contactPhone" validate:"max=50"`
	Limits        plan.PartialLimits `json:"limits"`
	AdminName     string             `json:"adminName" validate:"required,max=255"`
	AdminEmail    string             `json:"adminEmail" validate:"required,email"`
	AdminPassword string             `json:"adminPassword" validate:"required,min=8,max=72"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Slug = strings.ToLower(strings.TrimSpace(d.Slug))
	d.ContactName = strings.TrimSpace(d.ContactName)
	d.ContactEmail = strings.ToLower(strings.TrimSpace(d.ContactEmail))
	d.ContactPhone = strings.TrimSpace(d.ContactPhone)
	d.AdminName = strings.TrimSpace(d.AdminName)
	d.AdminEmail = strings.ToLower(strings.TrimSpace(d.AdminEmail))
}

// Validate normalizes the DTO and reports field errors as one validation error.
func (d *CreateDTO) Validate() error {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.FromValidator(err)
	}
	return nil
}

// Spec returns the creation input for slug; plan defaults are not applied yet.
func (d *CreateDTO) Spec(slug string) Spec {
	return Spec{
		Name:         d.Name,
		Slug:         slug,
		Status:       d.Status,
		PlanID:       d.Plan,
		BillingCycle: d.BillingCycle,
		Contact: Contact{
			Name:  d.ContactName,
			Email: d.ContactEmail,
			Phone: d.ContactPhone,
		},
		Requested:   d.Limits,
		BillingDay:  d.BillingDay,
		AutoRenew:   d.AutoRenew,
		TrialEndsAt: d.TrialEndsAt,
	}
}

// LimitPatch sets (Value != nil) or clears (Value == nil) one override.
type LimitPatch struct {
	Resource plan.Resource
	Value    *int
}

// UpdateDTO carries a partial update. Nil fields are left untouched.
type UpdateDTO struct {
	Name         *string         `json:"name" validate:"omitempty,min=1,max=255"`
	Slug         *string         `json:"slug" validate:"omitempty,min=1,max=63"`
	ContactName  *string         `json:"contactName" validate:"omitempty,max=255"`
	ContactEmail *string         `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone *string         `json:"contactPhone" validate:"omitempty,max=50"`
	BillingDay   *int            `json:"billingDay" validate:"omitempty,min=1,max=28"`
	AutoRenew    *bool           `json:"autoRenew"`
	Limits       map[string]*int `json:"limits"`
}

func (d *UpdateDTO) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(d.Name)
	trim(d.ContactName)
	trim(d.ContactPhone)
	if d.Slug != nil {
		*d.Slug = strings.ToLower(strings.TrimSpace(*d.Slug))
	}
	if d.ContactEmail != nil {
		*d.ContactEmail = strings.ToLower(strings.TrimSpace(*d.ContactEmail))
	}
}

func (d *UpdateDTO) Validate() error {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.FromValidator(err)
	}
	fields := serrors.ValidationErrors{}
	for key, v := range d.Limits {
		r, ok := plan.ParseResource(key)
		if !ok {
			fields["limits."+key] = "unknown resource"
			continue
		}
		if v == nil {
			continue
		}
		if *v < plan.Unlimited || (r == plan.ResourceStorage && *v == 0) {
			fields["limits."+key] = "gte=-1"
		}
	}
	if len(fields) > 0 {
		return serrors.NewValidationError(fields)
	}
	return nil
}

// LimitPatches returns the limit changes in reporting order. Call Validate first.
func (d *UpdateDTO) LimitPatches() []LimitPatch {
	var out []LimitPatch
	for _, r := range plan.Resources {
		if v, ok := d.Limits[string(r)]; ok {
			out = append(out, LimitPatch{Resource: r, Value: v})
		}
	}
	return out
}
