package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/pkg/serrors"
)

type UserService struct {
	options
	users user.Repository
	roles role.Repository
	quota *QuotaService
}

func NewUserService(users user.Repository, roles role.Repository, quota *QuotaService, opts ...Option) *UserService {
	return &UserService{
		options: newOptions(opts),
		users:   users,
		roles:   roles,
		quota:   quota,
	}
}

func (s *UserService) List(ctx context.Context, tenantID uuid.UUID) ([]*user.User, error) {
	users, err := s.users.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

// Create adds a user to tenantID after the caller's users quota is checked.
func (s *UserService) Create(ctx context.Context, c *caller.Caller, tenantID uuid.UUID, dto *user.CreateDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.quota.EnsureCapacity(ctx, c, tenantID, plan.ResourceUsers); err != nil {
		return nil, err
	}

	r, err := s.roles.GetByType(ctx, dto.Role)
	if errors.Is(err, role.ErrNotFound) {
		return nil, serrors.Configuration("role %s is not seeded", dto.Role)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load role")
	}
	taken, err := s.users.EmailExists(ctx, dto.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check email")
	}
	if taken {
		return nil, serrors.Conflict("email", "email is already registered")
	}

	u := user.New(dto.Name, dto.Email, r.ID(), user.WithTenantID(tenantID))
	if err := u.SetPassword(dto.Password); err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	var created *user.User
	err = s.runInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.users.Create(txCtx, u)
		return err
	})
	if errors.Is(err, serrors.ErrConflict) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	s.log(ctx).WithField("tenant_id", tenantID).WithField("user_id", created.ID()).Info("user created")
	return created, nil
}
