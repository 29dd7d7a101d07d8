package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createTenant(t, "Staff Clinic", plan.Professional)
	admin := f.tenantCaller(t, created.ID(), role.TypeAdminGeneral)

	u, err := f.users.Create(ctx, admin, created.ID(), &user.CreateDTO{
		Name: " Eve ", Email: "Eve@Staff.test", Password: "correct-horse", Role: role.TypeAdminBranch,
	})
	require.NoError(t, err)
	assert.Equal(t, "eve@staff.test", u.Email())
	assert.Equal(t, f.role(t, role.TypeAdminBranch).ID(), u.RoleID())
	require.NotNil(t, u.TenantID())
	assert.Equal(t, created.ID(), *u.TenantID())

	users, err := f.users.List(ctx, created.ID())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.users.Create(ctx, admin, created.ID(), &user.CreateDTO{
		Name: "Eve again", Email: "eve@staff.test", Password: "correct-horse", Role: role.TypeOperator,
	})
	require.ErrorIs(t, err, serrors.ErrConflict)
	assert.Equal(t, "email", serrors.ConflictField(err))

	_, err = f.users.Create(ctx, admin, created.ID(), &user.CreateDTO{
		Name: "Mallory", Email: "mallory@staff.test", Password: "correct-horse", Role: role.TypeSuperAdmin,
	})
	require.ErrorIs(t, err, serrors.ErrValidationFailed)
}

func TestNotificationService_LoginURL(t *testing.T) {
	n := services.NewNotificationService("https://app.consentia.test", "consentia.test")
	assert.Equal(t, "https://clinic.consentia.test/login", n.LoginURL("clinic"))
	assert.Equal(t, "https://app.consentia.test/login", n.LoginURL(""))

	bare := services.NewNotificationService("http://localhost:3200", "")
	assert.Equal(t, "http://localhost:3200/login", bare.LoginURL("clinic"))

	require.Error(t, n.Welcome(context.Background(), services.WelcomeMessage{TenantSlug: "clinic"}))
	require.NoError(t, n.Welcome(context.Background(), services.WelcomeMessage{TenantSlug: "clinic", AdminEmail: "a@clinic.test"}))
}

func TestUserService_Create_SuperAdminRespectsTargetQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createTenant(t, "Free Clinic", plan.Free)

	_, err := f.users.Create(ctx, f.superAdmin(t), created.ID(), &user.CreateDTO{
		Name: "Extra", Email: "extra@free.test", Password: "correct-horse", Role: role.TypeOperator,
	})
	require.ErrorIs(t, err, serrors.ErrQuotaExceeded)

	users, err := f.users.List(ctx, created.ID())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
