package tenant_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
)

func findPlan(t *testing.T, id plan.ID) plan.Plan {
	t.Helper()
	for _, p := range plan.Defaults() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("plan %s not in defaults", id)
	return plan.Plan{}
}

func TestEffectiveLimit_FollowsLivePlanUnlessOverridden(t *testing.T) {
	enterprise := findPlan(t, plan.Enterprise)
	tn := tenant.New("Acme", "acme",
		tenant.WithPlan(plan.Enterprise, plan.Monthly, enterprise.PriceMonthly),
		tenant.WithLimits(enterprise.Limits.With(plan.ResourceBranches, 9), []plan.Resource{plan.ResourceBranches}),
	)

	edited := enterprise
	edited.Limits.Users = 12

	assert.Equal(t, 12, tn.EffectiveLimit(edited, plan.ResourceUsers))
	assert.Equal(t, 9, tn.EffectiveLimit(edited, plan.ResourceBranches))

	limits := tn.EffectiveLimits(edited)
	assert.Equal(t, 12, limits.Users)
	assert.Equal(t, 9, limits.Branches)
}

func TestOverrideLimit_AndClear(t *testing.T) {
	basic := findPlan(t, plan.Basic)
	tn := tenant.New("Acme", "acme", tenant.WithLimits(basic.Limits, nil))

	tn.OverrideLimit(plan.ResourceConsents, plan.Unlimited)
	tn.OverrideLimit(plan.ResourceConsents, 500)
	assert.Equal(t, []plan.Resource{plan.ResourceConsents}, tn.Overrides())
	assert.Equal(t, 500, tn.EffectiveLimit(basic, plan.ResourceConsents))

	tn.ClearOverride(plan.ResourceConsents)
	assert.False(t, tn.IsOverridden(plan.ResourceConsents))
	assert.Equal(t, basic.Limits.Consents, tn.EffectiveLimit(basic, plan.ResourceConsents))
}

func TestChangePlan_ResetsOverridesAndPeriod(t *testing.T) {
	professional := findPlan(t, plan.Professional)
	tn := tenant.New("Acme", "acme")
	tn.OverrideLimit(plan.ResourceUsers, 1)

	now := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	tn.ChangePlan(professional, plan.Annual, now)

	assert.Equal(t, plan.Professional, tn.PlanID())
	assert.Empty(t, tn.Overrides())
	assert.True(t, tn.PlanPrice().Equal(professional.PriceAnnual))
	assert.Equal(t, now, tn.PlanStartedAt())
	assert.Equal(t, now.AddDate(1, 0, 0), tn.PlanExpiresAt())
	assert.Equal(t, 5, tn.EffectiveLimit(professional, plan.ResourceUsers))
}

func TestSetStatus_ReportsChange(t *testing.T) {
	tn := tenant.New("Acme", "acme", tenant.WithStatus(tenant.StatusActive))

	require.False(t, tn.SetStatus(tenant.StatusActive))
	require.True(t, tn.SetStatus(tenant.StatusSuspended))
	assert.False(t, tn.Status().IsOperational())
	assert.True(t, tenant.StatusTrial.IsOperational())
	assert.False(t, tenant.Status("paused").IsValid())
}

func TestSpecBuild(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	autoRenew := false
	spec := tenant.Spec{
		Name:          "Clinic",
		Slug:          "clinic",
		Status:        tenant.StatusActive,
		PlanID:        plan.Basic,
		BillingCycle:  plan.Monthly,
		Limits:        findPlan(t, plan.Basic).Limits,
		PlanStartedAt: now,
		PlanExpiresAt: now.AddDate(0, 1, 0),
		BillingDay:    1,
		AutoRenew:     &autoRenew,
	}

	tn := spec.Build()
	assert.Equal(t, "clinic", tn.Slug())
	assert.Equal(t, tenant.StatusActive, tn.Status())
	assert.False(t, tn.AutoRenew())
	assert.Equal(t, now, tn.CreatedAt())
}
