package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers/dtos"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/authz"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/middleware"
	"github.com/iota-uz/consentia/pkg/server"
	"github.com/iota-uz/consentia/pkg/token"
)

const (
	rootEmail    = "root@platform.test"
	rootPassword = "platform-pass"
)

type harness struct {
	db      *persistence.InMemory
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := persistence.NewInMemory()
	policy, err := authz.NewService(permissions.AuthzConfig("", "", logger))
	require.NoError(t, err)

	opts := []services.Option{services.WithTxRunner(db.InTx), services.WithLogger(logger)}
	app := application.New(&application.ApplicationOptions{Logger: logger})
	plans := services.NewPlanService(persistence.NewMemoryPlanStore(plan.Defaults()), 30, opts...)
	settings := services.NewSettingsService(db.Settings(), opts...)
	quota := services.NewQuotaService(db.Tenants(), plans, db.Usage(), opts...)
	roles := services.NewRoleService(db.Roles(), permissions.NewCatalog(policy), opts...)
	issuer := token.New(token.Config{Secret: "controller-test-secret", Issuer: "consentia-test", TTL: time.Hour})
	tenants := services.NewTenantService(
		db.Tenants(), db.Users(), db.Roles(), plans, settings,
		services.NewNotificationService("https://consentia.test", "consentia.test", opts...),
		app.EventPublisher(), opts...,
	)
	auth := services.NewAuthService(db.Users(), db.Roles(), db.Tenants(), issuer, opts...)
	app.RegisterServices(
		plans, settings, quota, roles, issuer, tenants, auth,
		services.NewAuthzGuard(opts...),
		services.NewUserService(db.Users(), db.Roles(), quota, opts...),
	)
	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewPlanController(app),
		controllers.NewTenantController(app),
		controllers.NewPublicController(app),
		controllers.NewRoleController(app),
		controllers.NewUserController(app),
		controllers.NewUsageController(app),
		controllers.NewSettingsController(app),
	)
	app.RegisterMiddleware(
		middleware.RequireTenantFromHost(tenants, middleware.TenantFromHostOptions{}),
		middleware.Authenticate(issuer, auth),
	)

	ctx := context.Background()
	_, err = roles.Seed(ctx)
	require.NoError(t, err)
	superRole, err := db.Roles().GetByType(ctx, role.TypeSuperAdmin)
	require.NoError(t, err)
	root := user.New("Root", rootEmail, superRole.ID())
	require.NoError(t, root.SetPassword(rootPassword))
	_, err = db.Users().Create(ctx, root)
	require.NoError(t, err)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	})
	srv := server.NewHTTPServer(app, notFound, notFound)
	return &harness{db: db, handler: srv.Router()}
}

type call struct {
	method string
	path   string
	host   string
	token  string
	body   any
}

func (h *harness) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := c.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.host != "" {
		req.Host = c.host
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T, host, email, password string) string {
	t.Helper()
	rec := h.do(t, call{
		method: http.MethodPost, path: "/api/auth/login", host: host,
		body: dtos.LoginRequest{Email: email, Password: password},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session dtos.SessionResponse
	decode(t, rec, &session)
	return session.Token
}

func (h *harness) root(t *testing.T) string {
	t.Helper()
	return h.login(t, "consentia.test", rootEmail, rootPassword)
}

// createTenant provisions a tenant as the platform operator and returns it
// with a token for its administrator.
func (h *harness) createTenant(t *testing.T, name, slug string, planID plan.ID) (dtos.TenantResponse, string) {
	t.Helper()
	email := "admin@" + slug + ".test"
	rec := h.do(t, call{
		method: http.MethodPost, path: "/api/tenants", token: h.root(t),
		body: map[string]any{
			"name":          name,
			"slug":          slug,
			"plan":          planID,
			"adminName":     "Admin",
			"adminEmail":    email,
			"adminPassword": "correct-horse",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dtos.TenantResponse
	decode(t, rec, &created)
	return created, h.login(t, slug+".consentia.test", email, "correct-horse")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env httpapi.ErrorEnvelope
	decode(t, rec, &env)
	return env.Code
}
