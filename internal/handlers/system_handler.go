package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSystemRoutes registers the health check and the Prometheus scrape
// endpoint for gatherer.
func RegisterSystemRoutes(app fiber.Router, gatherer prometheus.Gatherer, brokerConnected bool) {
	app.Get("/health", func(c *fiber.Ctx) error {
		broker := "disabled"
		if brokerConnected {
			broker = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": broker,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
