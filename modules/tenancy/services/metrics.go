package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotaChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "quota",
		Name:      "checks_total",
		Help:      "Capacity checks broken down by resource and result.",
	}, []string{"resource", "result"})

	planUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "plans",
		Name:      "updates_total",
		Help:      "Plan definition updates broken down by result.",
	}, []string{"result"})

	tenantLifecycle = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "tenants",
		Name:      "lifecycle_events_total",
		Help:      "Tenant lifecycle transitions by kind.",
	}, []string{"event"})

	postCommitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "tenants",
		Name:      "post_commit_failures_total",
		Help:      "Failed or panicked post-commit hooks by hook name.",
	}, []string{"hook"})
)

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
