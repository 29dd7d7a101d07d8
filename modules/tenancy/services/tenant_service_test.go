package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/setting"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func TestTenantService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		events []tenant.CreatedEvent
	)
	unsubscribe := f.bus.Subscribe(func(e tenant.CreatedEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	defer unsubscribe()

	created, err := f.tenants.Create(ctx, &tenant.CreateDTO{
		Name:          "Clínica Dos 2024!",
		Plan:          plan.Basic,
		ContactPhone:  "+57 300 000 0000",
		AdminName:     "Ana",
		AdminEmail:    "  Ana@Clinic.TEST ",
		AdminPassword: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "clinica-dos-2024", created.Slug())
	assert.Equal(t, tenant.StatusTrial, created.Status())
	assert.Equal(t, plan.Basic, created.PlanID())
	require.NotNil(t, created.TrialEndsAt())

	resolved, err := f.tenants.ResolveBySlug(ctx, "clinica-dos-2024")
	require.NoError(t, err)
	assert.Equal(t, created.ID(), resolved.ID())

	admin, err := f.db.Users().GetByEmail(ctx, "ana@clinic.test")
	require.NoError(t, err)
	require.NotNil(t, admin.TenantID())
	assert.Equal(t, created.ID(), *admin.TenantID())
	assert.Equal(t, f.role(t, role.TypeAdminGeneral).ID(), admin.RoleID())
	assert.True(t, admin.CheckPassword("correct-horse"))

	id := created.ID()
	view, err := f.settings.Resolve(ctx, &id)
	require.NoError(t, err)
	assert.Equal(t, "Clínica Dos 2024!", view.Get(setting.KeyCompanyName))
	assert.Equal(t, "+57 300 000 0000", view.Get(setting.KeyCompanyPhone))

	sent := f.notifier.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@clinic.test", sent[0].AdminEmail)
	assert.Equal(t, "correct-horse", sent[0].Password)
	assert.False(t, sent[0].Generated)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, created.ID(), events[0].Tenant.ID())
	assert.Equal(t, admin.ID(), events[0].AdminID)
}

func TestTenantService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tenants.Create(ctx, &tenant.CreateDTO{Name: "Clinic", AdminName: "A", AdminEmail: "not-an-email", AdminPassword: "short"})
		require.ErrorIs(t, err, serrors.ErrValidationFailed)
	})

	t.Run("explicit slug is normalized", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Whatever", Slug: "Clínica Dos 2024!", AdminName: "A", AdminEmail: "a@clinic.test", AdminPassword: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, "clinica-dos-2024", created.Slug())

		_, err = f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Other", Slug: " WWW ", AdminName: "B", AdminEmail: "b@clinic.test", AdminPassword: "correct-horse",
		})
		require.ErrorIs(t, err, serrors.ErrValidationFailed)

		_, err = f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Third", Slug: "clinica dos 2024", AdminName: "C", AdminEmail: "c@clinic.test", AdminPassword: "correct-horse",
		})
		require.ErrorIs(t, err, serrors.ErrConflict)
		assert.Equal(t, "slug", serrors.ConflictField(err))
	})

	t.Run("reserved slug", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Admin", AdminName: "A", AdminEmail: "a@clinic.test", AdminPassword: "correct-horse",
		})
		require.ErrorIs(t, err, serrors.ErrValidationFailed)
	})

	t.Run("name without slug characters", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "!!!", AdminName: "A", AdminEmail: "a@clinic.test", AdminPassword: "correct-horse",
		})
		require.ErrorIs(t, err, serrors.ErrValidationFailed)
	})

	t.Run("slug taken", func(t *testing.T) {
		f := newFixture(t)
		f.createTenant(t, "Clinic One", plan.Basic)

		_, err := f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Another", Slug: "clinic-one", AdminName: "A", AdminEmail: "a@clinic.test", AdminPassword: "correct-horse",
		})
		require.ErrorIs(t, err, serrors.ErrConflict)
		assert.Equal(t, "slug", serrors.ConflictField(err))
	})

	t.Run("admin email taken", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Clinic One", AdminName: "A", AdminEmail: "a@clinic.test", AdminPassword: "correct-horse",
		})
		require.NoError(t, err)

		_, err = f.tenants.Create(ctx, &tenant.CreateDTO{
			Name: "Clinic Two", AdminName: "B", AdminEmail: "A@clinic.test", AdminPassword: "correct-horse",
		})
		require.ErrorIs(t, err, serrors.ErrConflict)
		assert.Equal(t, "email", serrors.ConflictField(err))

		_, err = f.tenants.ResolveBySlug(ctx, "clinic-two")
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})
}

func TestTenantService_Create_HookFailuresDoNotFailCreate(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	ran := false
	f.tenants.AddPostCommitHook(services.PostCommitHook{
		Name: "explodes",
		Run: func(context.Context, services.TenantCreation) error {
			panic("boom")
		},
	})
	f.tenants.AddPostCommitHook(services.PostCommitHook{
		Name: "after",
		Run: func(context.Context, services.TenantCreation) error {
			ran = true
			return nil
		},
	})

	created := f.createTenant(t, "Resilient Clinic", plan.Free)
	assert.True(t, ran)

	_, err := f.tenants.GetByID(context.Background(), created.ID())
	require.NoError(t, err)

	names := make([]string, 0, len(f.tenants.PostCommitHooks()))
	for _, h := range f.tenants.PostCommitHooks() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"settings", "welcome", "event", "explodes", "after"}, names)
}

func TestTenantService_SuspendActivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createTenant(t, "Status Clinic", plan.Basic)

	var (
		mu      sync.Mutex
		changes []tenant.StatusChangedEvent
	)
	f.bus.Subscribe(func(e tenant.StatusChangedEvent) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, e)
	})

	suspended, err := f.tenants.Suspend(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, suspended.Status())

	again, err := f.tenants.Suspend(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, again.Status())

	active, err := f.tenants.Activate(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, active.Status())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 2)
	assert.Equal(t, tenant.StatusTrial, changes[0].From)
	assert.Equal(t, tenant.StatusSuspended, changes[0].To)
	assert.Equal(t, tenant.StatusActive, changes[1].To)

	_, err = f.tenants.Suspend(ctx, uuid.New())
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestTenantService_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createTenant(t, "Doomed Clinic", plan.Professional)

	_, err := f.users.Create(ctx, f.superAdmin(t), created.ID(), &user.CreateDTO{
		Name: "Op", Email: "op@doomed.test", Password: "correct-horse", Role: role.TypeOperator,
	})
	require.NoError(t, err)

	require.NoError(t, f.tenants.Remove(ctx, created.ID()))

	_, err = f.tenants.ResolveBySlug(ctx, "doomed-clinic")
	require.ErrorIs(t, err, serrors.ErrNotFound)

	users, err := f.users.List(ctx, created.ID())
	require.NoError(t, err)
	assert.Empty(t, users)

	require.ErrorIs(t, f.tenants.Remove(ctx, created.ID()), serrors.ErrNotFound)

	// the slug is free again once the tenant is gone
	f.createTenant(t, "Doomed Clinic", plan.Free)
}

func TestTenantService_ExpireTrials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expiring := f.createTenant(t, "Old Trial", plan.Free)
	active := f.createTenant(t, "Paying", plan.Basic)
	_, err := f.tenants.Activate(ctx, active.ID())
	require.NoError(t, err)

	f.now = fixedNow.AddDate(0, 0, 10)
	fresh := f.createTenant(t, "New Trial", plan.Free)

	f.now = fixedNow.AddDate(0, 0, 30)
	n, err := f.tenants.ExpireTrials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.tenants.GetByID(ctx, expiring.ID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusExpired, got.Status())

	got, err = f.tenants.GetByID(ctx, fresh.ID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusTrial, got.Status())

	got, err = f.tenants.GetByID(ctx, active.ID())
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, got.Status())

	n, err = f.tenants.ExpireTrials(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTenantService_ResendWelcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.tenants.Create(ctx, &tenant.CreateDTO{
		Name: "Welcome Clinic", AdminName: "Bo", AdminEmail: "bo@clinic.test", AdminPassword: "correct-horse",
	})
	require.NoError(t, err)

	email, err := f.tenants.ResendWelcome(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, "bo@clinic.test", email)

	sent := f.notifier.messages()
	require.Len(t, sent, 2)
	last := sent[1]
	assert.True(t, last.Generated)
	assert.Len(t, last.Password, 12)
	assert.NotEqual(t, "correct-horse", last.Password)

	admin, err := f.db.Users().GetByEmail(ctx, "bo@clinic.test")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword(last.Password))
	assert.False(t, admin.CheckPassword("correct-horse"))

	_, err = f.tenants.ResendWelcome(ctx, uuid.New())
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestTenantService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createTenant(t, "Editable", plan.Basic)
	f.createTenant(t, "Taken", plan.Basic)

	name := "Edited Clinic"
	users := 9
	day := 5
	updated, err := f.tenants.Update(ctx, created.ID(), &tenant.UpdateDTO{
		Name:       &name,
		BillingDay: &day,
		Limits:     map[string]*int{"users": &users},
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited Clinic", updated.Name())
	assert.Equal(t, 5, updated.BillingDay())
	assert.True(t, updated.IsOverridden(plan.ResourceUsers))

	basic, _ := f.plans.Get(ctx, plan.Basic)
	assert.Equal(t, 9, updated.EffectiveLimit(basic, plan.ResourceUsers))

	cleared, err := f.tenants.Update(ctx, created.ID(), &tenant.UpdateDTO{Limits: map[string]*int{"users": nil}})
	require.NoError(t, err)
	assert.False(t, cleared.IsOverridden(plan.ResourceUsers))
	assert.Equal(t, basic.Limits.Users, cleared.EffectiveLimit(basic, plan.ResourceUsers))

	taken := "taken"
	_, err = f.tenants.Update(ctx, created.ID(), &tenant.UpdateDTO{Slug: &taken})
	require.ErrorIs(t, err, serrors.ErrConflict)

	bogus := 1
	_, err = f.tenants.Update(ctx, created.ID(), &tenant.UpdateDTO{Limits: map[string]*int{"rockets": &bogus}})
	require.ErrorIs(t, err, serrors.ErrValidationFailed)
}

func TestTenantService_ChangePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createTenant(t, "Growing", plan.Basic)

	users := 4
	_, err := f.tenants.Update(ctx, created.ID(), &tenant.UpdateDTO{Limits: map[string]*int{"users": &users}})
	require.NoError(t, err)

	changed, err := f.tenants.ChangePlan(ctx, created.ID(), plan.Professional, plan.Annual)
	require.NoError(t, err)
	assert.Equal(t, plan.Professional, changed.PlanID())
	assert.Equal(t, plan.Annual, changed.BillingCycle())
	assert.Empty(t, changed.Overrides())

	pro, _ := f.plans.Get(ctx, plan.Professional)
	assert.True(t, changed.PlanPrice().Equal(pro.PriceAnnual))

	_, err = f.tenants.ChangePlan(ctx, created.ID(), "platinum", "")
	require.ErrorIs(t, err, serrors.ErrNotFound)

	_, err = f.tenants.ChangePlan(ctx, created.ID(), plan.Basic, "weekly")
	require.ErrorIs(t, err, serrors.ErrValidationFailed)
}

func TestTenantService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createTenant(t, "Sunrise Dental", plan.Basic)
	f.createTenant(t, "Moonlight Aesthetics", plan.Basic)
	suspended := f.createTenant(t, "Sunset Clinic", plan.Basic)
	_, err := f.tenants.Suspend(ctx, suspended.ID())
	require.NoError(t, err)

	all, err := f.tenants.List(ctx, services.TenantQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := f.tenants.List(ctx, services.TenantQuery{Search: "dental"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "sunrise-dental", found[0].Slug())

	onlySuspended, err := f.tenants.List(ctx, services.TenantQuery{Statuses: []tenant.Status{tenant.StatusSuspended}})
	require.NoError(t, err)
	require.Len(t, onlySuspended, 1)
	assert.Equal(t, suspended.ID(), onlySuspended[0].ID())
}
