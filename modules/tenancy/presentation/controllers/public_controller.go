package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/httpapi"
)

// PublicController serves what a login page needs before anyone signs in.
type PublicController struct {
	tenants  *services.TenantService
	settings *services.SettingsService
	basePath string
}

func NewPublicController(app application.Application) application.Controller {
	return &PublicController{
		tenants:  app.Service(services.TenantService{}).(*services.TenantService),
		settings: app.Service(services.SettingsService{}).(*services.SettingsService),
		basePath: "/api/public",
	}
}

func (c *PublicController) Key() string {
	return c.basePath
}

func (c *PublicController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.HandleFunc("/tenants/{slug}", c.Tenant).Methods(http.MethodGet)
	api.HandleFunc("/settings", c.Settings).Methods(http.MethodGet)
}

func (c *PublicController) Tenant(w http.ResponseWriter, r *http.Request) {
	t, err := c.tenants.ResolveBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.TenantToPublicResponse(t))
}

// Settings returns the theming keys of the host tenant, of ?tenant=<slug>,
// or of the platform when neither names one.
func (c *PublicController) Settings(w http.ResponseWriter, r *http.Request) {
	var scope *uuid.UUID
	if id, err := composables.UseTenantID(r.Context()); err == nil {
		scope = &id
	} else if slug := strings.TrimSpace(r.URL.Query().Get("tenant")); slug != "" {
		t, err := c.tenants.ResolveBySlug(r.Context(), slug)
		if err != nil {
			httpapi.WriteServiceError(w, r, err)
			return
		}
		id := t.ID()
		scope = &id
	}

	view, err := c.settings.Resolve(r.Context(), scope)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, themeOnly(view))
}

func themeOnly(v setting.View) map[string]string {
	out := v.Map()
	for k := range out {
		if !setting.IsThemeKey(k) {
			delete(out, k)
		}
	}
	return out
}
