package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/middleware"
)

type RoleController struct {
	roles    *services.RoleService
	guard    *services.AuthzGuard
	basePath string
}

func NewRoleController(app application.Application) application.Controller {
	return &RoleController{
		roles:    app.Service(services.RoleService{}).(*services.RoleService),
		guard:    app.Service(services.AuthzGuard{}).(*services.AuthzGuard),
		basePath: "/api/roles",
	}
}

func (c *RoleController) Key() string {
	return c.basePath
}

func (c *RoleController) Register(r *mux.Router) {
	view := middleware.RequirePermissions(c.guard, permissions.ViewRoles)
	edit := middleware.RequirePermissions(c.guard, permissions.EditRoles)

	r.Handle("/api/permissions", guarded(c.Catalog, view)).Methods(http.MethodGet)

	api := r.PathPrefix(c.basePath).Subrouter()
	api.Handle("", guarded(c.List, view)).Methods(http.MethodGet)
	api.Handle("/{id}", guarded(c.Get, view)).Methods(http.MethodGet)
	api.Handle("/{id}", guarded(c.Update, edit)).Methods(http.MethodPut)
	api.Handle("/{id}/reset", guarded(c.Reset, edit)).Methods(http.MethodPost)
}

// Catalog lists the permission universe grouped by category.
func (c *RoleController) Catalog(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, permissions.Groups())
}

func (c *RoleController) List(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	roles, err := c.roles.List(r.Context(), current)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.RolesToResponse(roles))
}

func (c *RoleController) Get(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	found, err := c.roles.GetByID(r.Context(), current, id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.RoleToResponse(found))
}

func (c *RoleController) Update(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto role.UpdateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	updated, err := c.roles.Update(r.Context(), current, id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.RoleToResponse(updated))
}

func (c *RoleController) Reset(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	reset, err := c.roles.ResetDefaults(r.Context(), current, id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.RoleToResponse(reset))
}
