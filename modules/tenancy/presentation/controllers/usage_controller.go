package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/middleware"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// UsageController reports the acting tenant's consumption against its plan.
type UsageController struct {
	quota    *services.QuotaService
	guard    *services.AuthzGuard
	basePath string
}

func NewUsageController(app application.Application) application.Controller {
	return &UsageController{
		quota:    app.Service(services.QuotaService{}).(*services.QuotaService),
		guard:    app.Service(services.AuthzGuard{}).(*services.AuthzGuard),
		basePath: "/api/usage",
	}
}

func (c *UsageController) Key() string {
	return c.basePath
}

func (c *UsageController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.Use(middleware.RequirePermissions(c.guard, permissions.ViewDashboard))
	api.HandleFunc("", c.Report).Methods(http.MethodGet)
	api.HandleFunc("/{resource}", c.Resource).Methods(http.MethodGet)
}

func (c *UsageController) Report(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	tenantID, err := requireActingTenant(r, current)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	report, err := c.quota.UsageReport(r.Context(), tenantID)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, report)
}

func (c *UsageController) Resource(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	tenantID, err := requireActingTenant(r, current)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	kind, ok := plan.ParseResource(mux.Vars(r)["resource"])
	if !ok {
		httpapi.WriteServiceError(w, r, serrors.NotFound("unknown resource %q", mux.Vars(r)["resource"]))
		return
	}
	res, err := c.quota.ResourceUsage(r.Context(), tenantID, kind)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, res)
}
