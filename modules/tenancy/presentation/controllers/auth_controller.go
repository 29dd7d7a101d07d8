package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/serrors"
)

type AuthController struct {
	auth     *services.AuthService
	basePath string
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		auth:     app.Service(services.AuthService{}).(*services.AuthService),
		basePath: "/api/auth",
	}
}

func (c *AuthController) Key() string {
	return c.basePath
}

func (c *AuthController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.HandleFunc("/login", c.Login).Methods(http.MethodPost)
	api.HandleFunc("/me", c.Me).Methods(http.MethodGet)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpapi.WriteServiceError(w, r, serrors.NewValidationError(serrors.ValidationErrors{
			"email":    "required",
			"password": "required",
		}))
		return
	}

	session, err := c.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Caller:    dtos.CallerToResponse(session.Caller),
	})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	current, err := requireCaller(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.CallerToResponse(current))
}
