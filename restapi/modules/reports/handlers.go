package reports

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/qeme/sentinel-lite/util"
)

// DownloadReport handles GET /api/download-report/:filename.
func DownloadReport(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := store.Path(c.Params("filename"))
		switch {
		case errors.Is(err, ErrInvalidName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ongeldige bestandsnaam"})
		case errors.Is(err, util.ErrPathEscape):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid path"})
		case errors.Is(err, os.ErrNotExist):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bestand niet gevonden"})
		case err != nil:
			return err
		}

		return c.Download(path, filepath.Base(path))
	}
}
