package services_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/authz"
	"github.com/iota-uz/consentia/pkg/eventbus"
)

var fixedNow = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []services.WelcomeMessage
	err  error
}

func (n *recordingNotifier) Welcome(_ context.Context, msg services.WelcomeMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []services.WelcomeMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]services.WelcomeMessage(nil), n.sent...)
}

type fixture struct {
	db       *persistence.InMemory
	store    *persistence.MemoryPlanStore
	bus      eventbus.EventBus
	notifier *recordingNotifier
	catalog  *permissions.Catalog
	plans    *services.PlanService
	settings *services.SettingsService
	tenants  *services.TenantService
	quota    *services.QuotaService
	roles    *services.RoleService
	users    *services.UserService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := authz.NewService(permissions.AuthzConfig("", "", logger))
	require.NoError(t, err)

	f := &fixture{
		db:       persistence.NewInMemory(),
		store:    persistence.NewMemoryPlanStore(plan.Defaults()),
		bus:      eventbus.NewEventPublisher(logger),
		notifier: &recordingNotifier{},
		catalog:  permissions.NewCatalog(svc),
		now:      fixedNow,
	}
	opts := []services.Option{
		services.WithTxRunner(f.db.InTx),
		services.WithClock(func() time.Time { return f.now }),
		services.WithLogger(logger),
	}
	f.plans = services.NewPlanService(f.store, 30, opts...)
	f.settings = services.NewSettingsService(f.db.Settings(), opts...)
	f.tenants = services.NewTenantService(
		f.db.Tenants(), f.db.Users(), f.db.Roles(), f.plans, f.settings, f.notifier, f.bus, opts...,
	)
	f.quota = services.NewQuotaService(f.db.Tenants(), f.plans, f.db.Usage(), opts...)
	f.roles = services.NewRoleService(f.db.Roles(), f.catalog, opts...)
	f.users = services.NewUserService(f.db.Users(), f.db.Roles(), f.quota, opts...)

	_, err = f.roles.Seed(context.Background())
	require.NoError(t, err)
	return f
}

func (f *fixture) role(t *testing.T, rt role.Type) *role.Role {
	t.Helper()
	r, err := f.db.Roles().GetByType(context.Background(), rt)
	require.NoError(t, err)
	return r
}

func (f *fixture) createTenant(t *testing.T, name string, planID plan.ID) *tenant.Tenant {
	t.Helper()
	created, err := f.tenants.Create(context.Background(), &tenant.CreateDTO{
		Name:          name,
		Plan:          planID,
		AdminName:     "Admin " + name,
		AdminEmail:    uuid.NewString()[:8] + "@clinic.test",
		AdminPassword: "correct-horse",
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) tenantCaller(t *testing.T, tenantID uuid.UUID, rt role.Type) *caller.Caller {
	t.Helper()
	tn, err := f.db.Tenants().GetByID(context.Background(), tenantID)
	require.NoError(t, err)
	return &caller.Caller{
		UserID:       uuid.New(),
		Scope:        caller.TenantScoped{TenantID: tenantID},
		Role:         f.role(t, rt),
		TenantStatus: tn.Status(),
	}
}

func (f *fixture) superAdmin(t *testing.T) *caller.Caller {
	t.Helper()
	return &caller.Caller{
		UserID: uuid.New(),
		Scope:  caller.SuperAdmin{},
		Role:   f.role(t, role.TypeSuperAdmin),
	}
}
