// Package metrics serves the operational endpoints: prometheus scraping and
// a readiness probe.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/consentia/pkg/application"
	"github.com/iota-uz/consentia/pkg/httpapi"
)

const (
	DefaultMetricsPath = "/debug/prometheus"
	HealthPath         = "/health"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type OpsController struct {
	metricsPath string
	db          Pinger
}

// NewOpsController serves metrics at metricsPath when non-empty and /health
// always. A nil db reports healthy without a database check.
func NewOpsController(metricsPath string, db Pinger) application.Controller {
	return &OpsController{metricsPath: metricsPath, db: db}
}

func (c *OpsController) Key() string {
	return HealthPath
}

func (c *OpsController) Register(r *mux.Router) {
	if c.metricsPath != "" {
		r.Handle(c.metricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc(HealthPath, c.health).Methods(http.MethodGet)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (c *OpsController) health(w http.ResponseWriter, r *http.Request) {
	if c.db == nil {
		_ = httpapi.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.db.Ping(ctx); err != nil {
		_ = httpapi.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
