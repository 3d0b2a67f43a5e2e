// Package status provides the REST handlers for the regulatory status card and health probe.
package status

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qeme/sentinel-lite/internal/metrics"
	"github.com/qeme/sentinel-lite/model"
)

// Checker runs or serves a regulatory check.
type Checker interface {
	Check(ctx context.Context, refresh bool) ([]model.RegulatoryUpdate, error)
}

// GetRegulatoryStatus handles GET /api/regulatory-status. The cached result is
// served unless the query carries refresh=1.
func GetRegulatoryStatus(checker Checker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refresh := c.Query("refresh") == "1"

		updates, err := checker.Check(c.UserContext(), refresh)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(model.NewRegulatoryStatus(updates, time.Now(), model.DefaultStatusLimit))
	}
}

// Health handles GET /health.
func Health(c *fiber.Ctx) error {
	metrics.HealthOK.Set(1)
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
