package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/middleware"
)

// SettingsController edits the theming and SMTP settings of the acting
// tenant. A super admin outside any tenant host edits the platform scope.
type SettingsController struct {
	settings *services.SettingsService
	guard    *services.AuthzGuard
	basePath string
}

func NewSettingsController(app application.Application) application.Controller {
	return &SettingsController{
		settings: app.Service(services.SettingsService{}).(*services.SettingsService),
		guard:    app.Service(services.AuthzGuard{}).(*services.AuthzGuard),
		basePath: "/api/settings",
	}
}

func (c *SettingsController) Key() string {
	return c.basePath
}

func (c *SettingsController) Register(r *mux.Router) {
	email := middleware.RequirePermissions(c.guard, permissions.ConfigureEmail)

	api := r.PathPrefix(c.basePath).Subrouter()
	api.Handle("", guarded(c.Get, middleware.RequirePermissions(c.guard, permissions.ViewSettings))).
		Methods(http.MethodGet)
	api.Handle("", guarded(c.Update, middleware.RequirePermissions(c.guard, permissions.EditSettings))).
		Methods(http.MethodPut)
	api.Handle("/email", guarded(c.GetEmail, email)).Methods(http.MethodGet)
	api.Handle("/email", guarded(c.UpdateEmail, email)).Methods(http.MethodPut)
}

func (c *SettingsController) Get(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	view, err := c.settings.Resolve(r.Context(), actingTenant(r, current))
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view.Map())
}

func (c *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var patch map[string]string
	if err := httpapi.DecodeJSON(r, &patch); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	view, err := c.settings.Upsert(r.Context(), actingTenant(r, current), patch)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view.Map())
}

func (c *SettingsController) GetEmail(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	cfg, err := c.settings.EmailConfig(r.Context(), actingTenant(r, current))
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, cfg)
}

func (c *SettingsController) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var cfg setting.EmailConfig
	if err := httpapi.DecodeJSON(r, &cfg); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	updated, err := c.settings.UpdateEmailConfig(r.Context(), actingTenant(r, current), cfg)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}
