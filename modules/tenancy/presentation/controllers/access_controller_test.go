package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/domain/usage"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func TestAuthController(t *testing.T) {
	h := newHarness(t)
	created, adminToken := h.createTenant(t, "Clínica Este", "este", plan.Basic)

	t.Run("me", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: "/api/auth/me", host: "este.consentia.test", token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var me dtos.CallerResponse
		decode(t, rec, &me)
		assert.Equal(t, "admin@este.test", me.Email)
		assert.False(t, me.SuperAdmin)
		require.NotNil(t, me.TenantID)
		assert.Equal(t, created.ID, *me.TenantID)
		assert.Contains(t, me.Permissions, permissions.EditSettings)
	})

	t.Run("me without token", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: "/api/auth/me"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPost, path: "/api/auth/login", host: "este.consentia.test",
			body: dtos.LoginRequest{Email: "admin@este.test", Password: "wrong-horse"},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, serrors.CodeUnauthenticated, errorCode(t, rec))
	})

	t.Run("foreign host", func(t *testing.T) {
		h.createTenant(t, "Clínica Oeste", "oeste", plan.Basic)

		rec := h.do(t, call{
			method: http.MethodPost, path: "/api/auth/login", host: "oeste.consentia.test",
			body: dtos.LoginRequest{Email: "admin@este.test", Password: "correct-horse"},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = h.do(t, call{method: http.MethodGet, path: "/api/auth/me", host: "oeste.consentia.test", token: adminToken})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, serrors.CodeForbidden, errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: "/api/auth/me", token: "not.a.jwt"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRoleController(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.createTenant(t, "Roles Clinic", "roles", plan.Professional)
	host := "roles.consentia.test"

	rec := h.do(t, call{method: http.MethodGet, path: "/api/roles", host: host, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var roles []dtos.RoleResponse
	decode(t, rec, &roles)
	require.Len(t, roles, 3)

	var operator dtos.RoleResponse
	for _, r := range roles {
		assert.NotEqual(t, role.TypeSuperAdmin, r.Type)
		if r.Type == role.TypeOperator {
			operator = r
		}
	}
	require.NotEqual(t, "", operator.Name)
	path := "/api/roles/" + operator.ID.String()

	t.Run("catalog", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: "/api/permissions", host: host, token: adminToken})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("grant manage_tenants is refused", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPut, path: path, host: host, token: adminToken,
			body: map[string]any{"permissions": []string{permissions.ViewDashboard, permissions.ManageTenants}},
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, serrors.CodeForbidden, errorCode(t, rec))
	})

	t.Run("unknown permission", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPut, path: path, host: host, token: adminToken,
			body: map[string]any{"permissions": []string{"launch_rockets"}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("narrow then reset", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPut, path: path, host: host, token: adminToken,
			body: map[string]any{"permissions": []string{permissions.ViewDashboard}},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got dtos.RoleResponse
		decode(t, rec, &got)
		assert.Equal(t, []string{permissions.ViewDashboard}, got.Permissions)

		rec = h.do(t, call{method: http.MethodPost, path: path + "/reset", host: host, token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &got)
		assert.Equal(t, operator.Permissions, got.Permissions)
	})

	t.Run("super admin role is hidden from tenants", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: "/api/roles", token: h.root(t)})
		require.Equal(t, http.StatusOK, rec.Code)
		var all []dtos.RoleResponse
		decode(t, rec, &all)
		require.Len(t, all, 4)

		var super dtos.RoleResponse
		for _, r := range all {
			if r.Type == role.TypeSuperAdmin {
				super = r
			}
		}
		rec = h.do(t, call{method: http.MethodGet, path: "/api/roles/" + super.ID.String(), host: host, token: adminToken})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserController_EnforcesQuota(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.createTenant(t, "Small Clinic", "small", plan.Basic)
	host := "small.consentia.test"

	newUser := func(email string) map[string]any {
		return map[string]any{
			"name": "Operator", "email": email, "password": "operator-pass", "role": role.TypeOperator,
		}
	}

	rec := h.do(t, call{method: http.MethodPost, path: "/api/users", host: host, token: adminToken, body: newUser("op1@small.test")})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dtos.UserResponse
	decode(t, rec, &created)
	assert.Equal(t, "op1@small.test", created.Email)
	require.NotNil(t, created.TenantID)

	rec = h.do(t, call{method: http.MethodPost, path: "/api/users", host: host, token: adminToken, body: newUser("op2@small.test")})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, serrors.CodeQuotaExceeded, errorCode(t, rec))

	rec = h.do(t, call{method: http.MethodGet, path: "/api/users", host: host, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dtos.UserResponse
	decode(t, rec, &list)
	assert.Len(t, list, 2)

	opToken := h.login(t, host, "op1@small.test", "operator-pass")
	rec = h.do(t, call{method: http.MethodPost, path: "/api/users", host: host, token: opToken, body: newUser("op3@small.test")})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, serrors.CodeForbidden, errorCode(t, rec))

	rec = h.do(t, call{method: http.MethodGet, path: "/api/users", token: h.root(t)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUserController_SuperAdminOnTenantHostIsLimited(t *testing.T) {
	h := newHarness(t)
	h.createTenant(t, "Free Clinic", "free-clinic", plan.Free)
	host := "free-clinic.consentia.test"

	rec := h.do(t, call{
		method: http.MethodPost, path: "/api/users", host: host, token: h.root(t),
		body: map[string]any{
			"name": "Extra", "email": "extra@free-clinic.test", "password": "operator-pass", "role": role.TypeOperator,
		},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, serrors.CodeQuotaExceeded, errorCode(t, rec))

	rec = h.do(t, call{method: http.MethodGet, path: "/api/usage/users", host: host, token: h.root(t)})
	require.Equal(t, http.StatusOK, rec.Code)
	var users usage.Resource
	decode(t, rec, &users)
	assert.Equal(t, 1, users.Current)
}

func TestUsageController(t *testing.T) {
	h := newHarness(t)
	created, adminToken := h.createTenant(t, "Usage Clinic", "usage", plan.Basic)
	host := "usage.consentia.test"
	h.db.SetUsage(created.ID, plan.ResourceConsents, 40)

	rec := h.do(t, call{method: http.MethodGet, path: "/api/usage", host: host, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snap usage.Snapshot
	decode(t, rec, &snap)
	assert.Equal(t, created.ID, snap.TenantID)
	assert.Equal(t, 1, snap.Resources[plan.ResourceUsers].Current)
	assert.Equal(t, 2, snap.Resources[plan.ResourceUsers].Max)
	assert.Equal(t, 40, snap.Resources[plan.ResourceConsents].Current)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/usage/users", host: host, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var users usage.Resource
	decode(t, rec, &users)
	assert.Equal(t, 50, users.Percentage)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/usage/bogus", host: host, token: adminToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/usage", host: host})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlanController(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.createTenant(t, "Plan Clinic", "plans", plan.Basic)

	rec := h.do(t, call{method: http.MethodGet, path: "/api/plans"})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []plan.Plan
	decode(t, rec, &list)
	assert.Len(t, list, len(plan.Defaults()))

	rec = h.do(t, call{method: http.MethodGet, path: "/api/plans/platinum"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, call{
		method: http.MethodPatch, path: "/api/plans/basic", host: "plans.consentia.test", token: adminToken,
		body: `{"limits":{"users":3}}`,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, call{
		method: http.MethodPatch, path: "/api/plans/basic", token: h.root(t),
		body: `{"limits":{"users":3}}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched plan.Plan
	decode(t, rec, &patched)
	assert.Equal(t, 3, patched.Limits.Users)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/plans/basic"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &patched)
	assert.Equal(t, 3, patched.Limits.Users)

	rec = h.do(t, call{method: http.MethodPatch, path: "/api/plans/basic", token: h.root(t)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSettingsController(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.createTenant(t, "Mail Clinic", "mail", plan.Professional)
	host := "mail.consentia.test"

	rec := h.do(t, call{
		method: http.MethodPut, path: "/api/settings/email", host: host, token: adminToken,
		body: setting.EmailConfig{
			UseCustomEmail: true,
			SMTPHost:       "smtp.mail.test",
			SMTPPort:       587,
			SMTPUser:       "mailer",
			SMTPPassword:   "s3cret",
			SMTPFrom:       "no-reply@mail.test",
			UseEncryption:  true,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "s3cret")

	rec = h.do(t, call{method: http.MethodGet, path: "/api/settings/email", host: host, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "s3cret")
	var cfg setting.EmailConfig
	decode(t, rec, &cfg)
	assert.True(t, cfg.UseCustomEmail)
	assert.True(t, cfg.PasswordSet)
	assert.Equal(t, "smtp.mail.test", cfg.SMTPHost)

	rec = h.do(t, call{
		method: http.MethodPut, path: "/api/settings/email", host: host, token: adminToken,
		body: setting.EmailConfig{UseCustomEmail: true},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/settings", host: host, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var view map[string]string
	decode(t, rec, &view)
	assert.Equal(t, "Mail Clinic", view["companyName"])
}
