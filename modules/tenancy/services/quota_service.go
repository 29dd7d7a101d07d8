package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iota-uz/consentia/modules/tenancy/domain/caller"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/modules/tenancy/domain/usage"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// TrialWarningDays is how far ahead of the trial end the usage report warns.
const TrialWarningDays = 7

type Capacity struct {
	Resource  plan.Resource `json:"resource"`
	Allowed   bool          `json:"allowed"`
	Current   int           `json:"current"`
	Max       int           `json:"max"`
	Unlimited bool          `json:"unlimited"`
}

// QuotaService compares live usage with effective limits. Checks are advisory:
// two concurrent creates may both pass at U = L-1 and overshoot by one.
type QuotaService struct {
	options
	tenants tenant.Repository
	plans   *PlanService
	counter usage.Counter
}

func NewQuotaService(tenants tenant.Repository, plans *PlanService, counter usage.Counter, opts ...Option) *QuotaService {
	return &QuotaService{
		options: newOptions(opts),
		tenants: tenants,
		plans:   plans,
		counter: counter,
	}
}

// CheckCapacity reports whether the tenant can create one more r. Unbounded
// limits are allowed without counting.
func (s *QuotaService) CheckCapacity(ctx context.Context, tenantID uuid.UUID, r plan.Resource) (Capacity, error) {
	t, p, err := s.load(ctx, tenantID)
	if err != nil {
		return Capacity{}, err
	}
	limit := t.EffectiveLimit(p, r)
	if plan.IsUnbounded(limit) {
		quotaChecks.WithLabelValues(string(r), "unlimited").Inc()
		return Capacity{Resource: r, Allowed: true, Max: limit, Unlimited: true}, nil
	}
	n, err := s.counter.Count(ctx, tenantID, r)
	if err != nil {
		return Capacity{}, errors.Wrapf(err, "failed to count %s", r)
	}
	c := Capacity{Resource: r, Allowed: n < limit, Current: n, Max: limit}
	if c.Allowed {
		quotaChecks.WithLabelValues(string(r), "allowed").Inc()
	} else {
		quotaChecks.WithLabelValues(string(r), "exceeded").Inc()
	}
	return c, nil
}

// EnsureCapacity guards a create path that adds one r to tenantID. A
// tenant-scoped caller may only create inside its own tenant; super admins
// are limited by the target tenant's plan like everyone else.
func (s *QuotaService) EnsureCapacity(ctx context.Context, c *caller.Caller, tenantID uuid.UUID, r plan.Resource) error {
	if c == nil {
		return serrors.Unauthenticated(ReasonNotAuthenticated)
	}
	if own, ok := c.TenantID(); ok && own != tenantID {
		s.log(ctx).WithField("caller_tenant", own).WithField("tenant_id", tenantID).
			Warn("capacity check for a foreign tenant")
		return serrors.Forbidden("cannot create resources in another tenant")
	}
	capacity, err := s.CheckCapacity(ctx, tenantID, r)
	if err != nil {
		return err
	}
	if !capacity.Allowed {
		s.log(ctx).WithField("tenant_id", tenantID).WithField("resource", r).
			Infof("quota reached (%d/%d)", capacity.Current, capacity.Max)
		return serrors.QuotaExceeded(string(r), capacity.Current, capacity.Max)
	}
	return nil
}

// ResourceUsage reports a single tracked resource.
func (s *QuotaService) ResourceUsage(ctx context.Context, tenantID uuid.UUID, r plan.Resource) (usage.Resource, error) {
	t, p, err := s.load(ctx, tenantID)
	if err != nil {
		return usage.Resource{}, err
	}
	n, err := s.counter.Count(ctx, tenantID, r)
	if err != nil {
		return usage.Resource{}, errors.Wrapf(err, "failed to count %s", r)
	}
	return usage.NewResource(r, n, t.EffectiveLimit(p, r)), nil
}

// UsageReport covers every tracked resource plus resource and trial alerts.
func (s *QuotaService) UsageReport(ctx context.Context, tenantID uuid.UUID) (usage.Snapshot, error) {
	t, p, err := s.load(ctx, tenantID)
	if err != nil {
		return usage.Snapshot{}, err
	}
	snap := usage.Snapshot{
		TenantID:  tenantID,
		PlanID:    p.ID,
		Resources: make(map[plan.Resource]usage.Resource, len(plan.Resources)),
		Alerts:    []usage.Alert{},
	}
	for _, r := range plan.Resources {
		n, err := s.counter.Count(ctx, tenantID, r)
		if err != nil {
			return usage.Snapshot{}, errors.Wrapf(err, "failed to count %s", r)
		}
		res := usage.NewResource(r, n, t.EffectiveLimit(p, r))
		snap.Resources[r] = res
		if alert, ok := resourceAlert(r, res); ok {
			snap.Alerts = append(snap.Alerts, alert)
		}
	}
	if alert, ok := trialAlert(t, s.now()); ok {
		snap.Alerts = append(snap.Alerts, alert)
	}
	return snap, nil
}

func (s *QuotaService) load(ctx context.Context, tenantID uuid.UUID) (*tenant.Tenant, plan.Plan, error) {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, plan.Plan{}, serrors.NotFound("tenant %s not found", tenantID)
	}
	if err != nil {
		return nil, plan.Plan{}, errors.Wrap(err, "failed to load tenant")
	}
	p, ok := s.plans.Get(ctx, t.PlanID())
	if !ok {
		return nil, plan.Plan{}, serrors.Configuration("tenant %s references unknown plan %q", tenantID, t.PlanID())
	}
	return t, p, nil
}

func resourceAlert(r plan.Resource, res usage.Resource) (usage.Alert, bool) {
	amount := fmt.Sprintf("%d/%d", res.Current, res.Max)
	if unit := r.Unit(); unit != "" {
		amount += " " + unit
	}
	switch res.Status {
	case usage.StatusCritical:
		return usage.Alert{
			Kind:     usage.AlertResource,
			Severity: usage.StatusCritical,
			Resource: r,
			Message:  fmt.Sprintf("%s limit reached (%s)", r, amount),
		}, true
	case usage.StatusWarning:
		return usage.Alert{
			Kind:     usage.AlertResource,
			Severity: usage.StatusWarning,
			Resource: r,
			Message:  fmt.Sprintf("%s close to limit (%s)", r, amount),
		}, true
	}
	return usage.Alert{}, false
}

func trialAlert(t *tenant.Tenant, now time.Time) (usage.Alert, bool) {
	end := t.TrialEndsAt()
	if t.Status() != tenant.StatusTrial || end == nil {
		return usage.Alert{}, false
	}
	days := trialDaysLeft(*end, now)
	switch {
	case days <= 0:
		return usage.Alert{Kind: usage.AlertTrial, Severity: usage.StatusCritical, Message: "trial has expired"}, true
	case days <= TrialWarningDays:
		return usage.Alert{
			Kind:     usage.AlertTrial,
			Severity: usage.StatusWarning,
			Message:  fmt.Sprintf("trial ends in %d days", days),
		}, true
	}
	return usage.Alert{}, false
}

// trialDaysLeft rounds partial days up, so anything still ahead counts as at
// least one day.
func trialDaysLeft(end, now time.Time) int {
	const day = 24 * time.Hour
	d := end.Sub(now)
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}
