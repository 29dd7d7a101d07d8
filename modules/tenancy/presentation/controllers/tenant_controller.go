package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/middleware"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// TenantController is the platform operator's tenant directory. Every route
// requires manage_tenants.
type TenantController struct {
	tenants  *services.TenantService
	plans    *services.PlanService
	quota    *services.QuotaService
	guard    *services.AuthzGuard
	basePath string
}

func NewTenantController(app application.Application) application.Controller {
	return &TenantController{
		tenants:  app.Service(services.TenantService{}).(*services.TenantService),
		plans:    app.Service(services.PlanService{}).(*services.PlanService),
		quota:    app.Service(services.QuotaService{}).(*services.QuotaService),
		guard:    app.Service(services.AuthzGuard{}).(*services.AuthzGuard),
		basePath: "/api/tenants",
	}
}

func (c *TenantController) Key() string {
	return c.basePath
}

func (c *TenantController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.Use(middleware.RequirePermissions(c.guard, permissions.ManageTenants))

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/expire-trials", c.ExpireTrials).Methods(http.MethodPost)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	api.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/plan", c.ChangePlan).Methods(http.MethodPut)
	api.HandleFunc("/{id}/suspend", c.Suspend).Methods(http.MethodPost)
	api.HandleFunc("/{id}/activate", c.Activate).Methods(http.MethodPost)
	api.HandleFunc("/{id}/welcome", c.ResendWelcome).Methods(http.MethodPost)
	api.HandleFunc("/{id}/usage", c.Usage).Methods(http.MethodGet)
}

func (c *TenantController) respond(w http.ResponseWriter, r *http.Request, status int, t *tenant.Tenant) {
	p, _ := c.plans.Get(r.Context(), t.PlanID())
	_ = httpapi.WriteJSON(w, status, dtos.TenantToResponse(t, p))
}

func (c *TenantController) List(w http.ResponseWriter, r *http.Request) {
	q := services.TenantQuery{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := tenant.Status(strings.TrimSpace(s))
			if !status.IsValid() {
				httpapi.WriteServiceError(w, r, serrors.NewValidationError(serrors.ValidationErrors{
					"status": "oneof=trial active suspended expired",
				}))
				return
			}
			q.Statuses = append(q.Statuses, status)
		}
	}

	list, err := c.tenants.List(r.Context(), q)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	out := make([]dtos.TenantResponse, 0, len(list))
	for _, t := range list {
		p, _ := c.plans.Get(r.Context(), t.PlanID())
		out = append(out, dtos.TenantToResponse(t, p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *TenantController) Create(w http.ResponseWriter, r *http.Request) {
	var dto tenant.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	created, err := c.tenants.Create(r.Context(), &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusCreated, created)
}

func (c *TenantController) ExpireTrials(w http.ResponseWriter, r *http.Request) {
	n, err := c.tenants.ExpireTrials(r.Context())
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.ExpireTrialsResponse{Expired: n})
}

func (c *TenantController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	t, err := c.tenants.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, t)
}

func (c *TenantController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto tenant.UpdateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	updated, err := c.tenants.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, updated)
}

func (c *TenantController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if err := c.tenants.Remove(r.Context(), id); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *TenantController) ChangePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var req dtos.ChangePlanRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if req.Plan == "" {
		httpapi.WriteServiceError(w, r, serrors.NewValidationError(serrors.ValidationErrors{"plan": "required"}))
		return
	}
	updated, err := c.tenants.ChangePlan(r.Context(), id, req.Plan, req.BillingCycle)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, updated)
}

func (c *TenantController) Suspend(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.tenants.Suspend)
}

func (c *TenantController) Activate(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.tenants.Activate)
}

func (c *TenantController) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error),
) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	updated, err := apply(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, updated)
}

func (c *TenantController) ResendWelcome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	to, err := c.tenants.ResendWelcome(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.WelcomeResponse{SentTo: to})
}

func (c *TenantController) Usage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	report, err := c.quota.UsageReport(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, report)
}
