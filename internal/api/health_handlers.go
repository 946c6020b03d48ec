package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yusefzzz/connectly-spark-82/internal/health"
)

const readinessTimeout = 5 * time.Second

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	checkers map[string]health.Checker
}

// NewHealthHandlers creates a new HealthHandlers instance. The map keys name
// each dependency in the readiness response.
func NewHealthHandlers(checkers map[string]health.Checker) *HealthHandlers {
	return &HealthHandlers{checkers: checkers}
}

// Health handles GET /health - liveness. Always OK while the process runs.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready - readiness. Checks every registered dependency
// and reports 503 if any is unreachable.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			slog.ErrorContext(r.Context(), "readiness check failed", "dependency", name, "error", err)
			deps[name] = "unreachable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{
		"status":       "ok",
		"dependencies": deps,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, r.Context(), status, body)
}
