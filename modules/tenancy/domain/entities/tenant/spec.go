package tenant

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
)

// Spec is the creation input for a tenant before and after plan defaults
// are applied. After defaults, Limits is fully populated and Overrides names
// the kinds the caller set explicitly.
type Spec struct {
	Name          string
	Slug          string
	Status        Status
	PlanID        plan.ID
	BillingCycle  plan.BillingCycle
	Contact       Contact
	Requested     plan.PartialLimits
	Limits        plan.Limits
	Overrides     []plan.Resource
	PlanPrice     decimal.Decimal
	PlanStartedAt time.Time
	PlanExpiresAt time.Time
	BillingDay    int
	AutoRenew     *bool
	TrialEndsAt   *time.Time
}

// Build materializes the tenant described by a defaulted spec.
func (s Spec) Build(opts ...Option) *Tenant {
	autoRenew := true
	if s.AutoRenew != nil {
		autoRenew = *s.AutoRenew
	}
	base := []Option{
		WithStatus(s.Status),
		WithPlan(s.PlanID, s.BillingCycle, s.PlanPrice),
		WithPlanPeriod(s.PlanStartedAt, s.PlanExpiresAt),
		WithBilling(s.BillingDay, autoRenew),
		WithContact(s.Contact),
		WithLimits(s.Limits, s.Overrides),
		WithTrialEndsAt(s.TrialEndsAt),
		WithCreatedAt(s.PlanStartedAt),
		WithUpdatedAt(s.PlanStartedAt),
	}
	return New(s.Name, s.Slug, append(base, opts...)...)
}
