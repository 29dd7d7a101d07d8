package tenant

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
)

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Tenant struct {
	id                 uuid.UUID
	name               string
	slug               string
	status             Status
	planID             plan.ID
	planPrice          decimal.Decimal
	billingCycle       plan.BillingCycle
	planStartedAt      time.Time
	planExpiresAt      time.Time
	billingDay         int
	autoRenew          bool
	contact            Contact
	limits             plan.Limits
	overrides          []plan.Resource
	trialEndsAt        *time.Time
	subscriptionEndsAt *time.Time
	createdAt          time.Time
	updatedAt          time.Time
	deletedAt          *time.Time
}

type Option func(*Tenant)

func WithID(id uuid.UUID) Option {
	return func(t *Tenant) {
		t.id = id
	}
}

func WithStatus(s Status) Option {
	return func(t *Tenant) {
		t.status = s
	}
}

func WithPlan(id plan.ID, cycle plan.BillingCycle, price decimal.Decimal) Option {
	return func(t *Tenant) {
		t.planID = id
		t.billingCycle = cycle
		t.planPrice = price
	}
}

func WithPlanPeriod(startedAt, expiresAt time.Time) Option {
	return func(t *Tenant) {
		t.planStartedAt = startedAt
		t.planExpiresAt = expiresAt
	}
}

func WithBilling(day int, autoRenew bool) Option {
	return func(t *Tenant) {
		t.billingDay = day
		t.autoRenew = autoRenew
	}
}

func WithContact(c Contact) Option {
	return func(t *Tenant) {
		t.contact = c
	}
}

// WithLimits sets the stored limits and the kinds among them that are
// tenant-specific overrides.
func WithLimits(l plan.Limits, overrides []plan.Resource) Option {
	return func(t *Tenant) {
		t.limits = l
		t.overrides = slices.Clone(overrides)
	}
}

func WithTrialEndsAt(at *time.Time) Option {
	return func(t *Tenant) {
		t.trialEndsAt = at
	}
}

func WithSubscriptionEndsAt(at *time.Time) Option {
	return func(t *Tenant) {
		t.subscriptionEndsAt = at
	}
}

func WithCreatedAt(at time.Time) Option {
	return func(t *Tenant) {
		t.createdAt = at
	}
}

func WithUpdatedAt(at time.Time) Option {
	return func(t *Tenant) {
		t.updatedAt = at
	}
}

func WithDeletedAt(at *time.Time) Option {
	return func(t *Tenant) {
		t.deletedAt = at
	}
}

func New(name, slug string, opts ...Option) *Tenant {
	now := time.Now()
	t := &Tenant{
		id:           uuid.New(),
		name:         name,
		slug:         slug,
		status:       StatusTrial,
		planID:       plan.Free,
		billingCycle: plan.Monthly,
		planPrice:    decimal.Zero,
		autoRenew:    true,
		billingDay:   1,
		createdAt:    now,
		updatedAt:    now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tenant) ID() uuid.UUID {
	return t.id
}

func (t *Tenant) Name() string {
	return t.name
}

func (t *Tenant) Slug() string {
	return t.slug
}

func (t *Tenant) Status() Status {
	return t.status
}

func (t *Tenant) PlanID() plan.ID {
	return t.planID
}

func (t *Tenant) PlanPrice() decimal.Decimal {
	return t.planPrice
}

func (t *Tenant) BillingCycle() plan.BillingCycle {
	return t.billingCycle
}

func (t *Tenant) PlanStartedAt() time.Time {
	return t.planStartedAt
}

func (t *Tenant) PlanExpiresAt() time.Time {
	return t.planExpiresAt
}

func (t *Tenant) BillingDay() int {
	return t.billingDay
}

func (t *Tenant) AutoRenew() bool {
	return t.autoRenew
}

func (t *Tenant) Contact() Contact {
	return t.contact
}

func (t *Tenant) Limits() plan.Limits {
	return t.limits
}

func (t *Tenant) Overrides() []plan.Resource {
	return slices.Clone(t.overrides)
}

func (t *Tenant) TrialEndsAt() *time.Time {
	return t.trialEndsAt
}

func (t *Tenant) SubscriptionEndsAt() *time.Time {
	return t.subscriptionEndsAt
}

func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Tenant) DeletedAt() *time.Time {
	return t.deletedAt
}

func (t *Tenant) IsDeleted() bool {
	return t.deletedAt != nil
}

func (t *Tenant) IsOverridden(r plan.Resource) bool {
	return slices.Contains(t.overrides, r)
}

// EffectiveLimit is the tenant override for r when one exists, otherwise the
// live limit of p.
func (t *Tenant) EffectiveLimit(p plan.Plan, r plan.Resource) int {
	if t.IsOverridden(r) {
		return t.limits.Get(r)
	}
	return p.Limits.Get(r)
}

func (t *Tenant) EffectiveLimits(p plan.Plan) plan.Limits {
	out := p.Limits
	for _, r := range t.overrides {
		out = out.With(r, t.limits.Get(r))
	}
	return out
}

func (t *Tenant) Rename(name string) {
	t.name = name
	t.updatedAt = time.Now()
}

func (t *Tenant) SetSlug(slug string) {
	t.slug = slug
	t.updatedAt = time.Now()
}

func (t *Tenant) SetContact(c Contact) {
	t.contact = c
	t.updatedAt = time.Now()
}

func (t *Tenant) SetBilling(day int, autoRenew bool) {
	t.billingDay = day
	t.autoRenew = autoRenew
	t.updatedAt = time.Now()
}

// SetStatus returns false when the tenant already had status s.
func (t *Tenant) SetStatus(s Status) bool {
	if t.status == s {
		return false
	}
	t.status = s
	t.updatedAt = time.Now()
	return true
}

func (t *Tenant) OverrideLimit(r plan.Resource, v int) {
	t.limits = t.limits.With(r, v)
	if !t.IsOverridden(r) {
		t.overrides = append(t.overrides, r)
	}
	t.updatedAt = time.Now()
}

func (t *Tenant) ClearOverride(r plan.Resource) {
	t.overrides = slices.DeleteFunc(t.overrides, func(o plan.Resource) bool { return o == r })
	t.updatedAt = time.Now()
}

// ChangePlan moves the tenant to p starting at now and drops all overrides.
func (t *Tenant) ChangePlan(p plan.Plan, cycle plan.BillingCycle, now time.Time) {
	t.planID = p.ID
	t.billingCycle = cycle
	t.planPrice = p.Price(cycle)
	t.planStartedAt = now
	t.planExpiresAt = cycle.Renewal(now)
	t.limits = p.Limits
	t.overrides = nil
	t.updatedAt = now
}

func (t *Tenant) MarkDeleted(at time.Time) {
	t.deletedAt = &at
	t.updatedAt = at
}
