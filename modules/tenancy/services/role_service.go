package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// DefaultBundles resolves the default permission set of a role type.
// permissions.Catalog is the production implementation.
type DefaultBundles interface {
	Defaults(t role.Type) ([]string, error)
}

// RoleService applies the role policy before any role is returned or accepted
// as an update target. Hidden roles are reported as not found.
type RoleService struct {
	options
	repo     role.Repository
	defaults DefaultBundles
}

func NewRoleService(repo role.Repository, defaults DefaultBundles, opts ...Option) *RoleService {
	return &RoleService{
		options:  newOptions(opts),
		repo:     repo,
		defaults: defaults,
	}
}

func (s *RoleService) List(ctx context.Context, c *caller.Caller) ([]*role.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list roles")
	}
	return caller.VisibleRoles(c, roles), nil
}

func (s *RoleService) GetByID(ctx context.Context, c *caller.Caller, id uuid.UUID) (*role.Role, error) {
	r, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, role.ErrNotFound) {
		return nil, serrors.NotFound("role %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load role")
	}
	if !caller.CanSeeRole(c, r) {
		s.hidden(ctx, c, r, "read")
		return nil, serrors.NotFound("role %s not found", id)
	}
	return r, nil
}

// Update renames the role and/or replaces its permission set.
func (s *RoleService) Update(ctx context.Context, c *caller.Caller, id uuid.UUID, dto *role.UpdateDTO) (*role.Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	r, err := s.mutable(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if dto.Permissions != nil {
		if err := s.checkGrant(ctx, c, r, dto.Permissions); err != nil {
			return nil, err
		}
		r.SetPermissions(dto.Permissions)
	}
	if dto.Name != nil || dto.Description != nil {
		name, description := r.Name(), r.Description()
		if dto.Name != nil {
			name = *dto.Name
		}
		if dto.Description != nil {
			description = *dto.Description
		}
		r.Rename(name, description)
	}
	return s.save(ctx, r)
}

// ResetDefaults restores the role's default permission bundle.
func (s *RoleService) ResetDefaults(ctx context.Context, c *caller.Caller, id uuid.UUID) (*role.Role, error) {
	r, err := s.mutable(ctx, c, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.defaults.Defaults(r.Type())
	if err != nil {
		return nil, serrors.Configuration("no default permissions for %s: %v", r.Type(), err)
	}
	r.SetPermissions(perms)
	return s.save(ctx, r)
}

// Seed creates every built-in role that does not exist yet with its default
// bundle and returns how many were created. Existing roles are left alone.
func (s *RoleService) Seed(ctx context.Context) (int, error) {
	created := 0
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		for _, t := range role.Types {
			_, err := s.repo.GetByType(txCtx, t)
			if err == nil {
				continue
			}
			if !errors.Is(err, role.ErrNotFound) {
				return errors.Wrapf(err, "failed to load role %s", t)
			}
			perms, err := s.defaults.Defaults(t)
			if err != nil {
				return errors.Wrapf(err, "failed to resolve defaults for %s", t)
			}
			if _, err := s.repo.Create(txCtx, role.New(t.DisplayName(), t, role.WithPermissions(perms))); err != nil {
				return errors.Wrapf(err, "failed to create role %s", t)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *RoleService) mutable(ctx context.Context, c *caller.Caller, id uuid.UUID) (*role.Role, error) {
	r, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, role.ErrNotFound) {
		return nil, serrors.NotFound("role %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load role")
	}
	if !caller.CanMutateRole(c, r) {
		s.hidden(ctx, c, r, "update")
		return nil, serrors.NotFound("role %s not found", id)
	}
	return r, nil
}

func (s *RoleService) checkGrant(ctx context.Context, c *caller.Caller, r *role.Role, perms []string) error {
	if unknown := permissions.Unknown(perms); len(unknown) > 0 {
		fields := serrors.ValidationErrors{}
		for _, p := range unknown {
			fields["permissions."+p] = "unknown permission"
		}
		return serrors.NewValidationError(fields)
	}
	if !caller.CanGrant(r, perms) {
		s.log(ctx).WithFields(logrus.Fields{
			"role_id":   r.ID(),
			"role_type": r.Type(),
			"user_id":   callerID(c),
		}).Warn("rejected grant of manage_tenants")
		return serrors.Forbidden(permissions.ManageTenants + " can only be granted to " + string(role.TypeSuperAdmin))
	}
	return nil
}

func (s *RoleService) save(ctx context.Context, r *role.Role) (*role.Role, error) {
	var updated *role.Role
	err := s.runInTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, r)
		return err
	})
	if errors.Is(err, role.ErrNotFound) {
		return nil, serrors.NotFound("role %s not found", r.ID())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to update role")
	}
	return updated, nil
}

func (s *RoleService) hidden(ctx context.Context, c *caller.Caller, r *role.Role, action string) {
	fields := logrus.Fields{
		"action":    action,
		"role_id":   r.ID(),
		"role_type": r.Type(),
		"user_id":   callerID(c),
	}
	if tenantID, ok := c.TenantID(); ok {
		fields["tenant_id"] = tenantID
	}
	s.log(ctx).WithFields(fields).Warn("tenant-scoped caller attempted to access a platform role")
}

func callerID(c *caller.Caller) uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.UserID
}
