package caller

import (
	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
)

// Scope is either SuperAdmin or TenantScoped.
type Scope interface {
	isScope()
}

// SuperAdmin callers operate the platform and are not bound to a tenant.
type SuperAdmin struct{}

func (SuperAdmin) isScope() {}

type TenantScoped struct {
	TenantID uuid.UUID
}

func (TenantScoped) isScope() {}

// Caller is the authenticated principal of a request. A nil *Caller means the
// request is unauthenticated; a nil Role means no role is assigned.
type Caller struct {
	UserID       uuid.UUID
	Email        string
	Scope        Scope
	Role         *role.Role
	TenantStatus tenant.Status
}

// TenantID returns the bound tenant for tenant-scoped callers.
func (c *Caller) TenantID() (uuid.UUID, bool) {
	if c == nil {
		return uuid.Nil, false
	}
	if s, ok := c.Scope.(TenantScoped); ok {
		return s.TenantID, true
	}
	return uuid.Nil, false
}

func (c *Caller) IsSuperAdmin() bool {
	if c == nil {
		return false
	}
	_, ok := c.Scope.(SuperAdmin)
	return ok
}

// Permissions returns the held permission set, empty without a role.
func (c *Caller) Permissions() []string {
	if c == nil || c.Role == nil {
		return nil
	}
	return c.Role.Permissions()
}
