package middleware

import (
	"catalogbench/internal/logging"
	"catalogbench/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SeedStatus reports whether the catalog is ready to be queried.
type SeedStatus interface {
	Seeded() bool
	Progress() int
}

// SeededRequired is a Fiber middleware that rejects catalog queries until
// seeding has completed.
func SeededRequired(status SeedStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !status.Seeded() {
			logging.Logger().Debug().
				Str("path", c.Path()).
				Int("progress", status.Progress()).
				Msg("rejected query before seeding completed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message":  "Catalog is not ready for queries",
				"error":    services.ErrNotSeeded.Error(),
				"progress": status.Progress(),
			})
		}

		return c.Next()
	}
}
