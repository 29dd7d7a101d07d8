package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authz",
		Name:      "decisions_total",
		Help:      "Total number of authorization guard decisions broken down by result and reason.",
	}, []string{"result", "reason"})

	enforceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "authz",
		Subsystem: "casbin",
		Name:      "enforce_latency_seconds",
		Help:      "Latency distribution for casbin role bundle lookups.",
		Buckets: []float64{
			0.00001, 0.00005, 0.0001, 0.0005,
			0.001, 0.005, 0.01, 0.05,
		},
	}, []string{"result"})

	policyReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "authz",
		Name:      "policy_reloads_total",
		Help:      "Number of successful policy reloads.",
	})
)

func result(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

func recordEnforce(allowed bool, latency time.Duration) {
	enforceLatency.WithLabelValues(result(allowed)).Observe(latency.Seconds())
}

// RecordDecision counts a guard decision. reason is a short stable label such
// as "unauthenticated", "no_role", "tenant_inactive" or "missing_permission".
func RecordDecision(allowed bool, reason string) {
	decisions.WithLabelValues(result(allowed), reason).Inc()
}
