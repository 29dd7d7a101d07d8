package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wI2L/jsondiff"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/tenant"
	"github.com/iota-uz/consentia/pkg/serrors"
)

// DefaultTrialDays applies when the service is built without a trial length.
const DefaultTrialDays = 30

const maxBillingDay = 28

type PlanService struct {
	options
	store     plan.Store
	trialDays int
}

func NewPlanService(store plan.Store, trialDays int, opts ...Option) *PlanService {
	if trialDays < 1 {
		trialDays = DefaultTrialDays
	}
	return &PlanService{
		options:   newOptions(opts),
		store:     store,
		trialDays: trialDays,
	}
}

func (s *PlanService) Get(ctx context.Context, id plan.ID) (plan.Plan, bool) {
	return s.store.Get(ctx, id)
}

// Find is Get with a NotFound error for unknown ids.
func (s *PlanService) Find(ctx context.Context, id plan.ID) (plan.Plan, error) {
	p, ok := s.store.Get(ctx, id)
	if !ok {
		return plan.Plan{}, serrors.NotFound("plan %q not found", id)
	}
	return p, nil
}

func (s *PlanService) List(ctx context.Context) []plan.Plan {
	return s.store.List(ctx)
}

// ApplyDefaults completes spec from its plan: limits not requested come from
// the plan and requested ones become overrides. Price, period, billing day,
// renewal and status get their defaults; trial tenants also get a trial end.
func (s *PlanService) ApplyDefaults(ctx context.Context, spec tenant.Spec, now time.Time) (tenant.Spec, error) {
	if spec.PlanID == "" {
		spec.PlanID = plan.Free
	}
	p, ok := s.store.Get(ctx, spec.PlanID)
	if !ok {
		return spec, serrors.Configuration("unknown plan %q", spec.PlanID)
	}
	if spec.BillingCycle == "" {
		spec.BillingCycle = plan.Monthly
	}

	spec.Limits = spec.Requested.Apply(p.Limits)
	spec.Overrides = spec.Requested.Overrides()
	spec.PlanPrice = p.Price(spec.BillingCycle)
	spec.PlanStartedAt = now
	spec.PlanExpiresAt = spec.BillingCycle.Renewal(now)
	if spec.AutoRenew == nil {
		autoRenew := true
		spec.AutoRenew = &autoRenew
	}
	if spec.Status == "" {
		spec.Status = tenant.StatusTrial
	}
	if spec.TrialEndsAt == nil && spec.Status == tenant.StatusTrial {
		end := now.AddDate(0, 0, s.trialDays)
		spec.TrialEndsAt = &end
	}
	if spec.BillingDay == 0 {
		spec.BillingDay = min(now.Day(), maxBillingDay)
	}
	return spec, nil
}

// UpdatePlan applies an RFC 7386 merge patch to the plan id. The merge,
// validation and swap happen under the store's write lock.
func (s *PlanService) UpdatePlan(ctx context.Context, id plan.ID, patch []byte) (plan.Plan, error) {
	var before plan.Plan
	updated, err := s.store.Update(ctx, id, func(current plan.Plan) (plan.Plan, error) {
		before = current
		return mergePlan(current, patch)
	})
	planUpdates.WithLabelValues(outcome(err == nil)).Inc()
	if errors.Is(err, plan.ErrPlanNotFound) {
		return plan.Plan{}, serrors.NotFound("plan %q not found", id)
	}
	if err != nil {
		return plan.Plan{}, err
	}

	logger := s.log(ctx).WithField("plan", id)
	if diff, diffErr := planDiff(before, updated); diffErr != nil {
		logger.WithError(diffErr).Warn("failed to compute plan diff")
	} else {
		logger.WithFields(logrus.Fields{"diff": diff}).Info("plan updated")
	}
	return updated, nil
}

func mergePlan(current plan.Plan, patch []byte) (plan.Plan, error) {
	doc, err := json.Marshal(current)
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "failed to encode plan")
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return plan.Plan{}, serrors.NewValidationError(serrors.ValidationErrors{"patch": "invalid merge patch"})
	}

	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	var next plan.Plan
	if err := dec.Decode(&next); err != nil {
		return plan.Plan{}, serrors.NewValidationError(serrors.ValidationErrors{"patch": err.Error()})
	}
	if next.ID != current.ID {
		return plan.Plan{}, serrors.NewValidationError(serrors.ValidationErrors{"id": "cannot change"})
	}
	if err := next.Validate(); err != nil {
		return plan.Plan{}, err
	}
	return next, nil
}

func planDiff(before, after plan.Plan) (string, error) {
	from, err := json.Marshal(before)
	if err != nil {
		return "", err
	}
	to, err := json.Marshal(after)
	if err != nil {
		return "", err
	}
	patch, err := jsondiff.CompareJSON(from, to)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(patch)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
