package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/flowgen/internal/observability"
)

// MetricsHandler exposes intake counters to operators.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// IntakeStats reports accumulated intake counters.
func (h *MetricsHandler) IntakeStats(c *fiber.Ctx) error {
	submissions, fallbacks, routing := h.metrics.IntakeSnapshot()
	return c.JSON(fiber.Map{
		"submissions":       submissions,
		"fallbacks":         fallbacks,
		"routing_decisions": routing,
	})
}
