package tenancy

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/handlers"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/presentation/controllers"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/authz"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/configuration"
	"github.com/iota-uz/consentia/pkg/token"
)

type ModuleOptions struct {
	// Configuration defaults to configuration.Use().
	Configuration *configuration.Configuration
	// PlanStore replaces the YAML file named by PLANS_FILE.
	PlanStore plan.Store
	// Notifier replaces the logging welcome notifier.
	Notifier services.Notifier
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Name() string {
	return "tenancy"
}

func (m *Module) Register(app application.Application) error {
	conf := m.options.Configuration
	if conf == nil {
		conf = configuration.Use()
	}
	logger := app.Logger()

	app.Migrations().RegisterSchema(persistence.MigrationsFS, persistence.MigrationsDir)

	store := m.options.PlanStore
	if store == nil {
		fileStore, err := persistence.OpenPlanFileStore(conf.Tenancy.PlansFile, plan.Defaults())
		if err != nil {
			return errors.Wrap(err, "failed to open plan file")
		}
		store = fileStore
	}

	policy, err := authz.NewService(permissions.AuthzConfig(conf.Authz.ModelPath, conf.Authz.PolicyPath, logger))
	if err != nil {
		return errors.Wrap(err, "failed to load role policy")
	}
	catalog := permissions.NewCatalog(policy)

	tenantRepo := persistence.NewTenantRepository()
	userRepo := persistence.NewUserRepository()
	roleRepo := persistence.NewRoleRepository()
	settingRepo := persistence.NewSettingRepository()

	opts := []services.Option{
		services.WithTxRunner(composables.InTx),
		services.WithLogger(logger),
	}
	notifier := m.options.Notifier
	if notifier == nil {
		notifier = services.NewNotificationService(conf.Origin, conf.Domain, opts...)
	}

	planService := services.NewPlanService(store, conf.Tenancy.TrialDays, opts...)
	settingsService := services.NewSettingsService(settingRepo, opts...)
	quotaService := services.NewQuotaService(tenantRepo, planService, persistence.NewUsageCounter(), opts...)
	issuer := token.New(token.Config{
		Secret: conf.Auth.JWTSecret,
		Issuer: conf.Auth.Issuer,
		TTL:    conf.Auth.TokenTTL,
	})

	app.RegisterServices(
		planService,
		settingsService,
		quotaService,
		issuer,
		services.NewTenantService(
			tenantRepo, userRepo, roleRepo, planService, settingsService, notifier, app.EventPublisher(), opts...,
		),
		services.NewAuthzGuard(opts...),
		services.NewRoleService(roleRepo, catalog, opts...),
		services.NewUserService(userRepo, roleRepo, quotaService, opts...),
		services.NewAuthService(userRepo, roleRepo, tenantRepo, issuer, opts...),
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
	handlers.RegisterTenantEventHandlers(app)
	return nil
}

// SeedRoles creates the four role types that are missing.
func SeedRoles(ctx context.Context, app application.Application) error {
	roles := app.Service(services.RoleService{}).(*services.RoleService)
	n, err := roles.Seed(ctx)
	if err != nil {
		return err
	}
	app.Logger().WithField("created", n).Info("roles seeded")
	return nil
}
