package scan

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/qeme/sentinel-lite/model"
	"github.com/qeme/sentinel-lite/restapi/modules/reports"
	"github.com/qeme/sentinel-lite/util"
	"go.uber.org/zap"
)

// ReportFileField is added to a full scan result naming the stored report.
const ReportFileField = "rapport_bestand"

func notConfigured(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "compliance scanner not configured",
	})
}

// QuickScan handles POST /api/quick-scan.
func QuickScan(scanner Scanner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if scanner == nil {
			return notConfigured(c)
		}

		var req model.QuickScanRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad Request"})
		}

		result, err := scanner.QuickScan(c.UserContext(), NormalizeQuickScan(req))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(result)
	}
}

// FullScan handles POST /api/full-scan. The report is stored and its file name
// returned in the rapport_bestand field.
func FullScan(scanner Scanner, store *reports.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if scanner == nil {
			return notConfigured(c)
		}

		var req model.FullScanRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad Request"})
		}
		req = NormalizeFullScan(req)

		result, err := scanner.FullScan(c.UserContext(), req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if result == nil {
			result = map[string]interface{}{}
		}

		name, err := store.Save(req.CompanyName, result)
		if errors.Is(err, util.ErrPathEscape) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid path"})
		}
		if err != nil {
			logger.Error("failed to store compliance report", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		result[ReportFileField] = name
		return c.JSON(result)
	}
}

// GetSectors handles GET /api/sectors.
func GetSectors(c *fiber.Ctx) error {
	return c.JSON(SectorOptions())
}

// GetComplianceLevels handles GET /api/compliance-levels.
func GetComplianceLevels(c *fiber.Ctx) error {
	return c.JSON(ComplianceLevels)
}
