package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/middleware"
)

type UserController struct {
	users    *services.UserService
	quota    *services.QuotaService
	guard    *services.AuthzGuard
	basePath string
}

func NewUserController(app application.Application) application.Controller {
	return &UserController{
		users:    app.Service(services.UserService{}).(*services.UserService),
		quota:    app.Service(services.QuotaService{}).(*services.QuotaService),
		guard:    app.Service(services.AuthzGuard{}).(*services.AuthzGuard),
		basePath: "/api/users",
	}
}

func (c *UserController) Key() string {
	return c.basePath
}

func (c *UserController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.Handle("", guarded(c.List,
		middleware.RequirePermissions(c.guard, permissions.ViewUsers),
	)).Methods(http.MethodGet)
	api.Handle("", guarded(c.Create,
		middleware.RequirePermissions(c.guard, permissions.CreateUsers),
		middleware.RequireCapacity(c.quota, plan.ResourceUsers),
	)).Methods(http.MethodPost)
}

func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
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
	list, err := c.users.List(r.Context(), tenantID)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.UsersToResponse(list))
}

func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
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
	var dto user.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	created, err := c.users.Create(r.Context(), current, tenantID, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, dtos.UserToResponse(created))
}
