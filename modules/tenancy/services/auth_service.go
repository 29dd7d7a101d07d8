package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/pkg/composables"
	"github.com/iota-uz/consentia/pkg/serrors"
	"github.com/iota-uz/consentia/pkg/token"
)

const invalidCredentials = "invalid email or password"

type TokenIssuer interface {
	Issue(userID, tenantID uuid.UUID) (string, time.Time, error)
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	Caller    *caller.Caller
}

// AuthService exchanges credentials for bearer tokens and rebuilds callers
// from verified tokens. Role and tenant status always come from storage.
type AuthService struct {
	options
	users   user.Repository
	roles   role.Repository
	tenants tenant.Repository
	tokens  TokenIssuer
}

func NewAuthService(users user.Repository, roles role.Repository, tenants tenant.Repository, tokens TokenIssuer, opts ...Option) *AuthService {
	return &AuthService{
		options: newOptions(opts),
		users:   users,
		roles:   roles,
		tenants: tenants,
		tokens:  tokens,
	}
}

// Login checks the credentials. On a tenant host, users of other tenants are
// rejected with the same error as a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if errors.Is(err, user.ErrNotFound) {
		return Session{}, serrors.Unauthenticated(invalidCredentials)
	}
	if err != nil {
		return Session{}, errors.Wrap(err, "failed to load user")
	}
	if !u.CheckPassword(password) {
		s.log(ctx).WithField("user_id", u.ID()).Info("login rejected: wrong password")
		return Session{}, serrors.Unauthenticated(invalidCredentials)
	}
	if hostTenant, err := composables.UseTenantID(ctx); err == nil {
		if own := u.TenantID(); own != nil && *own != hostTenant {
			s.log(ctx).WithField("user_id", u.ID()).WithField("host_tenant", hostTenant).Info("login rejected: foreign tenant host")
			return Session{}, serrors.Unauthenticated(invalidCredentials)
		}
	}

	c, err := s.callerFor(ctx, u)
	if err != nil {
		return Session{}, err
	}
	tenantID, _ := c.TenantID()
	raw, expiresAt, err := s.tokens.Issue(u.ID(), tenantID)
	if err != nil {
		return Session{}, errors.Wrap(err, "failed to issue token")
	}
	return Session{Token: raw, ExpiresAt: expiresAt, Caller: c}, nil
}

func (s *AuthService) LoadCaller(ctx context.Context, claims token.Claims) (*caller.Caller, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, serrors.Unauthenticated("invalid token subject")
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		return nil, serrors.Unauthenticated("user no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}
	return s.callerFor(ctx, u)
}

// callerFor leaves Role nil when the user's role was removed.
func (s *AuthService) callerFor(ctx context.Context, u *user.User) (*caller.Caller, error) {
	c := &caller.Caller{UserID: u.ID(), Email: u.Email(), Scope: caller.SuperAdmin{}}

	r, err := s.roles.GetByID(ctx, u.RoleID())
	switch {
	case err == nil:
		c.Role = r
	case errors.Is(err, role.ErrNotFound):
		s.log(ctx).WithField("user_id", u.ID()).Warn("user has no role")
	default:
		return nil, errors.Wrap(err, "failed to load role")
	}

	if tenantID := u.TenantID(); tenantID != nil {
		t, err := s.tenants.GetByID(ctx, *tenantID)
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, serrors.Unauthenticated("tenant no longer exists")
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to load tenant")
		}
		c.Scope = caller.TenantScoped{TenantID: t.ID()}
		c.TenantStatus = t.Status()
	}
	return c, nil
}
