package controllers

import (
	"io"
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

const maxPatchBytes = 64 << 10

type PlanController struct {
	plans    *services.PlanService
	guard    *services.AuthzGuard
	basePath string
}

func NewPlanController(app application.Application) application.Controller {
	return &PlanController{
		plans:    app.Service(services.PlanService{}).(*services.PlanService),
		guard:    app.Service(services.AuthzGuard{}).(*services.AuthzGuard),
		basePath: "/api/plans",
	}
}

func (c *PlanController) Key() string {
	return c.basePath
}

func (c *PlanController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	api.Handle("/{id}", guarded(c.Update, middleware.RequirePermissions(c.guard, permissions.ManageTenants))).
		Methods(http.MethodPatch)
}

func (c *PlanController) List(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, c.plans.List(r.Context()))
}

func (c *PlanController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.plans.Find(r.Context(), plan.ID(mux.Vars(r)["id"]))
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, p)
}

// Update applies an RFC 7386 merge patch to the plan.
func (c *PlanController) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(io.LimitReader(r.Body, maxPatchBytes))
	if err != nil {
		httpapi.WriteServiceError(w, r, serrors.NewValidationError(serrors.ValidationErrors{"body": err.Error()}))
		return
	}
	if len(patch) == 0 {
		httpapi.WriteServiceError(w, r, serrors.NewValidationError(serrors.ValidationErrors{"body": "required"}))
		return
	}

	p, err := c.plans.UpdatePlan(r.Context(), plan.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, p)
}
