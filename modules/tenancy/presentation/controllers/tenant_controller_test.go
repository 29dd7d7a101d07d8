package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func TestTenantController_Lifecycle(t *testing.T) {
	h := newHarness(t)
	rootToken := h.root(t)

	created, _ := h.createTenant(t, "Clínica Norte", "clinica-norte", plan.Basic)
	assert.Equal(t, "clinica-norte", created.Slug)
	assert.Equal(t, tenant.StatusTrial, created.Status)
	assert.Equal(t, 2, created.Limits.Users)
	assert.NotNil(t, created.TrialEndsAt)

	base := "/api/tenants/" + created.ID.String()

	t.Run("get", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: base, token: rootToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var got dtos.TenantResponse
		decode(t, rec, &got)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPost, path: "/api/tenants", token: rootToken,
			body: map[string]any{
				"name": "Other", "slug": "clinica-norte",
				"adminName": "A", "adminEmail": "a@other.test", "adminPassword": "correct-horse",
			},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, serrors.CodeConflict, errorCode(t, rec))
	})

	t.Run("override a limit", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPut, path: base, token: rootToken,
			body: map[string]any{"limits": map[string]any{"users": 10}},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got dtos.TenantResponse
		decode(t, rec, &got)
		assert.Equal(t, 10, got.Limits.Users)
		assert.Contains(t, got.Overrides, plan.ResourceUsers)
	})

	t.Run("change plan drops overrides", func(t *testing.T) {
		rec := h.do(t, call{
			method: http.MethodPut, path: base + "/plan", token: rootToken,
			body: dtos.ChangePlanRequest{Plan: plan.Professional},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got dtos.TenantResponse
		decode(t, rec, &got)
		assert.Equal(t, plan.Professional, got.Plan)
		assert.Empty(t, got.Overrides)
	})

	t.Run("suspend and activate", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodPost, path: base + "/suspend", token: rootToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var got dtos.TenantResponse
		decode(t, rec, &got)
		assert.Equal(t, tenant.StatusSuspended, got.Status)

		rec = h.do(t, call{method: http.MethodPost, path: base + "/activate", token: rootToken})
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &got)
		assert.Equal(t, tenant.StatusActive, got.Status)
	})

	t.Run("usage", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodGet, path: base + "/usage", token: rootToken})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("list with search", func(t *testing.T) {
		h.createTenant(t, "Dental Sur", "dental-sur", plan.Free)
		rec := h.do(t, call{method: http.MethodGet, path: "/api/tenants?search=norte", token: rootToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var list []dtos.TenantResponse
		decode(t, rec, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "clinica-norte", list[0].Slug)

		rec = h.do(t, call{method: http.MethodGet, path: "/api/tenants?status=bogus", token: rootToken})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := h.do(t, call{method: http.MethodDelete, path: base, token: rootToken})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = h.do(t, call{method: http.MethodGet, path: base, token: rootToken})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTenantController_RequiresManageTenants(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.createTenant(t, "Guarded Clinic", "guarded", plan.Basic)

	rec := h.do(t, call{method: http.MethodGet, path: "/api/tenants"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/tenants", host: "guarded.consentia.test", token: adminToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, serrors.CodeForbidden, errorCode(t, rec))

	rec = h.do(t, call{method: http.MethodGet, path: "/api/tenants/not-a-uuid", token: h.root(t)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPublicController(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.createTenant(t, "Bright Smile", "bright", plan.Professional)

	rec := h.do(t, call{method: http.MethodGet, path: "/api/public/tenants/bright"})
	require.Equal(t, http.StatusOK, rec.Code)
	var pub dtos.PublicTenantResponse
	decode(t, rec, &pub)
	assert.Equal(t, "Bright Smile", pub.Name)
	assert.True(t, pub.Active)

	rec = h.do(t, call{method: http.MethodGet, path: "/api/public/tenants/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, call{
		method: http.MethodPut, path: "/api/settings", host: "bright.consentia.test", token: adminToken,
		body: map[string]string{"primaryColor": "#FF0000"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var theme map[string]string
	rec = h.do(t, call{method: http.MethodGet, path: "/api/public/settings", host: "bright.consentia.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &theme)
	assert.Equal(t, "#FF0000", theme["primaryColor"])
	assert.Equal(t, "Bright Smile", theme["companyName"])

	rec = h.do(t, call{method: http.MethodGet, path: "/api/public/settings?tenant=bright"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &theme)
	assert.Equal(t, "#FF0000", theme["primaryColor"])

	rec = h.do(t, call{method: http.MethodGet, path: "/api/public/settings"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &theme)
	assert.Equal(t, "#3B82F6", theme["primaryColor"])

	rec = h.do(t, call{method: http.MethodGet, path: "/api/public/settings", host: "unknown.consentia.test"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
