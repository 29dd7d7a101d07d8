package plan_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func intPtr(v int) *int { return &v }

func TestDefaults_AreValid(t *testing.T) {
	plans := plan.Defaults()
	require.Len(t, plans, 5)
	for _, p := range plans {
		t.Run(string(p.ID), func(t *testing.T) {
			require.NoError(t, p.Validate())
		})
	}

	custom := plans[4]
	assert.True(t, plan.IsUnbounded(custom.Limits.Get(plan.ResourceUsers)))
	assert.Equal(t, 10000, custom.Limits.Get(plan.ResourceStorage))
}

func TestPlan_Price(t *testing.T) {
	p := plan.Plan{PriceMonthly: decimal.NewFromInt(89900), PriceAnnual: decimal.NewFromInt(895404)}

	assert.True(t, p.Price(plan.Monthly).Equal(decimal.NewFromInt(89900)))
	assert.True(t, p.Price(plan.Annual).Equal(decimal.NewFromInt(895404)))
}

func TestPlan_ValidateRejectsBadDefinitions(t *testing.T) {
	base := plan.Defaults()[1]

	cases := []struct {
		name   string
		mutate func(p *plan.Plan)
	}{
		{"limit below unlimited", func(p *plan.Plan) { p.Limits.Users = -2 }},
		{"zero storage", func(p *plan.Plan) { p.Limits.StorageMB = 0 }},
		{"negative price", func(p *plan.Plan) { p.PriceAnnual = decimal.NewFromInt(-1) }},
		{"unknown backup", func(p *plan.Plan) { p.Features.Backup = "hourly" }},
		{"empty name", func(p *plan.Plan) { p.Name = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), serrors.ErrValidationFailed)
		})
	}
}

func TestPartialLimits_ApplyAndOverrides(t *testing.T) {
	base := plan.Defaults()[1].Limits
	partial := plan.PartialLimits{Users: intPtr(7), StorageMB: intPtr(plan.Unlimited)}

	got := partial.Apply(base)

	assert.Equal(t, 7, got.Users)
	assert.Equal(t, plan.Unlimited, got.StorageMB)
	assert.Equal(t, base.Consents, got.Consents)
	assert.Equal(t, []plan.Resource{plan.ResourceUsers, plan.ResourceStorage}, partial.Overrides())
	assert.Empty(t, plan.PartialLimits{}.Overrides())
}

func TestLimits_GetWithRoundTrip(t *testing.T) {
	var l plan.Limits
	for i, r := range plan.Resources {
		l = l.With(r, i+1)
	}
	for i, r := range plan.Resources {
		assert.Equal(t, i+1, l.Get(r), r)
	}
}

func TestParseResource(t *testing.T) {
	r, ok := plan.ParseResource("medical_records")
	assert.True(t, ok)
	assert.Equal(t, plan.ResourceMedicalRecords, r)

	_, ok = plan.ParseResource("invoices")
	assert.False(t, ok)
	assert.Equal(t, "MB", plan.ResourceStorage.Unit())
}
