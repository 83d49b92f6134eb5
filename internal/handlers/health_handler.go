package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger is a dependency whose reachability is reported by the health check
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	BaseHandler
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler creates a health handler over named dependencies
func NewHealthHandler(checks map[string]Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{logger: logger},
		checks:      checks,
		timeout:     2 * time.Second,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
}

// Health handles GET /healthz
// @Summary Health check
// @Description Report whether the service and its dependencies are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			body[name] = "unavailable"
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}

	h.respondJSON(w, status, body)
}
