package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/configuration"
	"github.com/iota-uz/consentia/pkg/constants"
	"github.com/iota-uz/consentia/pkg/httpapi"
	"github.com/iota-uz/consentia/pkg/metrics"
	"github.com/iota-uz/consentia/pkg/middleware"
	"github.com/iota-uz/consentia/pkg/serrors"
	"github.com/iota-uz/consentia/pkg/server"
	"github.com/iota-uz/consentia/pkg/token"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the middleware stack in request order: logging and
// tracing, pool injection, CORS, rate limiting, request params, the ops
// guard, tenant binding by host and bearer authentication.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	metricsPath := ""
	if conf.Prometheus.Enabled {
		metricsPath = conf.Prometheus.Path
	}
	var db metrics.Pinger
	if options.Pool != nil {
		db = options.Pool
	}
	app.RegisterControllers(metrics.NewOpsController(metricsPath, db))

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),

		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.AllowedOrigins()...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		switch conf.RateLimit.Storage {
		case "redis":
			var err error
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}
		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
				ClientIPFrom:      conf.RealIPHeader,
			}),
		)
	}

	opsPaths := []string{metrics.HealthPath}
	if metricsPath != "" {
		opsPaths = append(opsPaths, metricsPath)
	}
	middlewares = append(middlewares,
		middleware.TracedMiddleware("requestParams"),
		middleware.RequestParams(conf.RealIPHeader),
		middleware.OpsGuard(middleware.OpsGuardOptions{
			Enabled:      conf.OpsGuard.Enabled,
			Paths:        opsPaths,
			CIDRs:        conf.OpsGuard.CIDRs,
			Token:        conf.OpsGuard.Token,
			RealIPHeader: conf.RealIPHeader,
		}),

		middleware.TracedMiddleware("tenant"),
		middleware.RequireTenantFromHost(
			app.Service(services.TenantService{}).(*services.TenantService),
			middleware.TenantFromHostOptions{AllowSlugHeader: conf.Tenancy.AllowSlugHeader},
		),
		middleware.TracedMiddleware("authenticate"),
		middleware.Authenticate(
			app.Service(token.Issuer{}).(*token.Issuer),
			app.Service(services.AuthService{}).(*services.AuthService),
		),
	)

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, http.HandlerFunc(notFound), http.HandlerFunc(methodNotAllowed)), nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteServiceError(w, r, serrors.NotFound("no route for %s %s", r.Method, r.URL.Path))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
}
