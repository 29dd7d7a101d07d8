package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/pkg/authz"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	svc, err := authz.NewService(AuthzConfig("", "", nil))
	require.NoError(t, err)
	return NewCatalog(svc)
}

func TestEmbeddedPolicyIsValid(t *testing.T) {
	rules, err := authz.ParsePolicy(Policy)
	require.NoError(t, err)
	require.NoError(t, ValidatePolicy(rules))
}

func TestCatalog_Defaults(t *testing.T) {
	c := newCatalog(t)

	superAdmin, err := c.Defaults(role.TypeSuperAdmin)
	require.NoError(t, err)
	adminGeneral, err := c.Defaults(role.TypeAdminGeneral)
	require.NoError(t, err)
	adminBranch, err := c.Defaults(role.TypeAdminBranch)
	require.NoError(t, err)
	operator, err := c.Defaults(role.TypeOperator)
	require.NoError(t, err)

	t.Run("manage_tenants only on super_admin", func(t *testing.T) {
		assert.Contains(t, superAdmin, ManageTenants)
		assert.NotContains(t, adminGeneral, ManageTenants)
		assert.NotContains(t, adminBranch, ManageTenants)
		assert.NotContains(t, operator, ManageTenants)
	})

	t.Run("bundles nest", func(t *testing.T) {
		assert.Subset(t, adminBranch, operator)
		assert.Subset(t, adminGeneral, adminBranch)
	})

	t.Run("billing belongs to tenant admins", func(t *testing.T) {
		assert.Contains(t, adminGeneral, ViewInvoices)
		assert.Contains(t, adminGeneral, ConfigureEmail)
		assert.NotContains(t, superAdmin, ViewInvoices)
		assert.NotContains(t, adminBranch, ViewInvoices)
	})

	t.Run("operator", func(t *testing.T) {
		assert.ElementsMatch(t, []string{
			ViewDashboard, ViewConsents, CreateConsents, SignConsents, ResendConsentEmail,
			ViewServices, ViewBranches, ViewClients, CreateClients,
			ViewMedicalRecords, CreateMedicalRecords, SignMedicalRecords,
		}, operator)
	})

	t.Run("sizes", func(t *testing.T) {
		assert.Len(t, superAdmin, len(All)-3)
		assert.Len(t, adminGeneral, len(All)-2)
		assert.Len(t, adminBranch, 21)
	})

	_, err = c.Defaults(role.Type("janitor"))
	assert.Error(t, err)
}

func TestValidatePolicy(t *testing.T) {
	cases := []struct {
		name    string
		policy  string
		wantErr string
	}{
		{name: "direct grant", policy: "p, admin_general, manage_tenants", wantErr: "manage_tenants"},
		{
			name:    "inherited grant",
			policy:  "g, operator, super_admin\np, super_admin, manage_tenants",
			wantErr: "manage_tenants",
		},
		{name: "unknown permission", policy: "p, operator, fly", wantErr: "unknown permission"},
		{name: "unknown role", policy: "p, janitor, view_dashboard", wantErr: "unknown role type"},
		{name: "unknown parent", policy: "g, operator, janitor", wantErr: "unknown role type"},
		{name: "ok", policy: "p, super_admin, manage_tenants\np, operator, view_dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules, err := authz.ParsePolicy(tc.policy)
			require.NoError(t, err)
			err = ValidatePolicy(rules)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCatalogLookups(t *testing.T) {
	assert.True(t, IsKnown(ViewRoles))
	assert.False(t, IsKnown("view_everything"))
	assert.Equal(t, []string{"x"}, Unknown([]string{ViewRoles, "x"}))

	p, ok := Describe(ManageTenants)
	require.True(t, ok)
	assert.Equal(t, CategoryTenants, p.Category)

	groups := Groups()
	require.NotEmpty(t, groups)
	assert.Equal(t, CategoryDashboard, groups[0].Category)
	total := 0
	for _, g := range groups {
		total += len(g.Permissions)
	}
	assert.Equal(t, len(All), total)
	assert.Len(t, Keys(), len(All))
}
