package handlers

import (
	"github.com/gofiber/fiber/v3"

	"sentinel/internal/models"
)

// ModelState reports whether the sentiment model is loaded.
type ModelState interface {
	Ready() bool
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	model ModelState
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(model ModelState) *ProbeHandler {
	return &ProbeHandler{model: model}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(models.ProbeResponse{Status: "ok"})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK once the sentiment model is loaded.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if !h.model.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ProbeResponse{
			Status: "error",
			Error:  "model not loaded",
		})
	}

	return c.JSON(models.ProbeResponse{Status: "ok"})
}
