package caller

import (
	"slices"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/role"
)

// ManageTenants is the platform-level permission only super_admin may hold.
const ManageTenants = "manage_tenants"

// VisibleRoles filters roles down to those c may see. Tenant-scoped callers
// never see super_admin.
func VisibleRoles(c *Caller, roles []*role.Role) []*role.Role {
	out := make([]*role.Role, 0, len(roles))
	for _, r := range roles {
		if CanSeeRole(c, r) {
			out = append(out, r)
		}
	}
	return out
}

func CanSeeRole(c *Caller, r *role.Role) bool {
	if c == nil || r == nil {
		return false
	}
	switch c.Scope.(type) {
	case SuperAdmin:
		return true
	case TenantScoped:
		return !r.IsSuperAdmin()
	}
	return false
}

// CanMutateRole applies the same visibility rule to writes.
func CanMutateRole(c *Caller, r *role.Role) bool {
	return CanSeeRole(c, r)
}

// CanGrant reports whether perms may be assigned to r. ManageTenants is
// reserved for super_admin regardless of who asks.
func CanGrant(r *role.Role, perms []string) bool {
	if r.IsSuperAdmin() {
		return true
	}
	return !slices.Contains(perms, ManageTenants)
}
