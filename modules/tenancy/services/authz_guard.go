package services

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/permissions"
	"github.com/iota-uz/consentia/pkg/authz"
	"github.com/iota-uz/consentia/pkg/serrors"
)

const (
	ReasonNotAuthenticated = "not authenticated"
	ReasonNoRole           = "no role assigned"
	ReasonTenantInactive   = "tenant is not active"
)

// Rule labels which step of the guard produced a decision.
type Rule string

const (
	RuleNoRequirement     Rule = "no_requirement"
	RuleUnauthenticated   Rule = "unauthenticated"
	RuleNoRole            Rule = "no_role"
	RuleTenantInactive    Rule = "tenant_inactive"
	RuleGranted           Rule = "granted"
	RuleMissingPermission Rule = "missing_permission"
)

type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
}

// readOnlyBilling stays reachable for suspended and expired tenants so they
// can still see what they owe.
var readOnlyBilling = []string{permissions.ViewInvoices}

// Check decides whether c may perform an action requiring any one of required.
func Check(c *caller.Caller, required ...string) Decision {
	if len(required) == 0 {
		return Decision{Allowed: true, Rule: RuleNoRequirement}
	}
	if c == nil {
		return Decision{Rule: RuleUnauthenticated, Reason: ReasonNotAuthenticated}
	}
	if c.Role == nil {
		return Decision{Rule: RuleNoRole, Reason: ReasonNoRole}
	}
	if _, scoped := c.TenantID(); scoped && !c.TenantStatus.IsOperational() && !onlyReadOnlyBilling(required) {
		return Decision{Rule: RuleTenantInactive, Reason: ReasonTenantInactive}
	}
	if c.Role.HasAny(required...) {
		return Decision{Allowed: true, Rule: RuleGranted}
	}
	return Decision{Rule: RuleMissingPermission, Reason: authz.MissingPermissionReason(required)}
}

func onlyReadOnlyBilling(required []string) bool {
	for _, p := range required {
		if !slices.Contains(readOnlyBilling, p) {
			return false
		}
	}
	return true
}

// AuthzGuard turns Check decisions into errors. Denials are logged with the
// held permissions; the returned error discloses only the required set.
type AuthzGuard struct {
	options
}

func NewAuthzGuard(opts ...Option) *AuthzGuard {
	return &AuthzGuard{options: newOptions(opts)}
}

func (g *AuthzGuard) Check(c *caller.Caller, required ...string) Decision {
	return Check(c, required...)
}

func (g *AuthzGuard) Authorize(ctx context.Context, c *caller.Caller, required ...string) error {
	d := Check(c, required...)
	authz.RecordDecision(d.Allowed, string(d.Rule))
	if d.Allowed {
		return nil
	}

	fields := logrus.Fields{
		"rule":     d.Rule,
		"required": required,
		"held":     c.Permissions(),
	}
	if c != nil {
		fields["user_id"] = c.UserID
		if c.Role != nil {
			fields["role"] = c.Role.Type()
		}
		if tenantID, ok := c.TenantID(); ok {
			fields["tenant_id"] = tenantID
			fields["tenant_status"] = c.TenantStatus
		}
	}
	g.log(ctx).WithFields(fields).Warn("authorization denied")

	switch d.Rule {
	case RuleUnauthenticated:
		return serrors.Unauthenticated(d.Reason)
	case RuleMissingPermission:
		return authz.Denied(required)
	default:
		return serrors.Forbidden(d.Reason)
	}
}
