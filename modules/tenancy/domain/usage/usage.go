package usage

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
)

// Counter returns the live, non-deleted count of a resource for a tenant.
// Storage is reported in megabytes.
type Counter interface {
	Count(ctx context.Context, tenantID uuid.UUID, r plan.Resource) (int, error)
}

type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

const (
	WarningThreshold  = 80
	CriticalThreshold = 100
)

type Resource struct {
	Current    int    `json:"current"`
	Max        int    `json:"max"`
	Percentage int    `json:"percentage"`
	Status     Status `json:"status"`
	Unit       string `json:"unit,omitempty"`
}

type AlertKind string

const (
	AlertResource AlertKind = "resource"
	AlertTrial    AlertKind = "trial"
)

type Alert struct {
	Kind     AlertKind     `json:"kind"`
	Severity Status        `json:"severity"`
	Resource plan.Resource `json:"resource,omitempty"`
	Message  string        `json:"message"`
}

type Snapshot struct {
	TenantID  uuid.UUID                  `json:"tenantId"`
	PlanID    plan.ID                    `json:"plan"`
	Resources map[plan.Resource]Resource `json:"resources"`
	Alerts    []Alert                    `json:"alerts"`
}

// Percentage is min(100, round(current/max*100)). Unbounded limits report 0
// and a bounded zero limit reports 100.
func Percentage(current, max int) int {
	if plan.IsUnbounded(max) {
		return 0
	}
	if max <= 0 {
		return CriticalThreshold
	}
	p := int(math.Round(float64(current) / float64(max) * 100))
	return min(p, CriticalThreshold)
}

func StatusFor(percentage int) Status {
	switch {
	case percentage >= CriticalThreshold:
		return StatusCritical
	case percentage >= WarningThreshold:
		return StatusWarning
	}
	return StatusNormal
}

func NewResource(r plan.Resource, current, max int) Resource {
	p := Percentage(current, max)
	return Resource{
		Current:    current,
		Max:        max,
		Percentage: p,
		Status:     StatusFor(p),
		Unit:       r.Unit(),
	}
}
