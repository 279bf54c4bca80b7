package handlers

import (
	"fmt"

	"catalogbench/internal/logging"
	"catalogbench/internal/middleware"
	"catalogbench/internal/models"
	"catalogbench/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query" validate:"max=256"`
}

// CatalogHandler handles HTTP requests for seeding status and catalog queries.
type CatalogHandler struct {
	seeder      *services.SeedService
	coordinator *services.SearchCoordinator
	validate    *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(seeder *services.SeedService, coordinator *services.SearchCoordinator) *CatalogHandler {
	return &CatalogHandler{
		seeder:      seeder,
		coordinator: coordinator,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app. Query
// routes answer 503 until seeding has completed.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/seed", h.HandleSeedStatus)

	queries := router.Group("", middleware.SeededRequired(h.seeder))
	queries.Post("/search", h.HandleSubmitSearch)
	queries.Get("/search/latest", h.HandleLatestSearch)
	queries.Get("/products", h.HandleSearchProducts)
	queries.Get("/products/barcode/:barcode", h.HandleScanBarcode)
}

// HandleSeedStatus reports seeding progress.
func (h *CatalogHandler) HandleSeedStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"progress": h.seeder.Progress(),
		"seeded":   h.seeder.Seeded(),
	})
}

// HandleSubmitSearch feeds a query edit into the debounced search pipeline.
// The result is picked up later from /search/latest.
func (h *CatalogHandler) HandleSubmitSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		logging.Logger().Warn().Err(err).Msg("error parsing search request body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		errorMessages := make(map[string]string)
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			}
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.coordinator.Submit(req.Query); err != nil {
		logging.Logger().Warn().Err(err).Msg("search submitted after shutdown")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Search is not available",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Query accepted",
		"query":   req.Query,
	})
}

// HandleLatestSearch returns the most recently published debounced result.
func (h *CatalogHandler) HandleLatestSearch(c *fiber.Ctx) error {
	r, ok := h.coordinator.Latest()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No search has completed yet",
			"state":   h.coordinator.State().String(),
		})
	}

	body := fiber.Map{
		"request_id": r.RequestID,
		"query":      r.Query,
		"products":   r.Products,
		"elapsed_ms": r.ElapsedMs,
		"state":      h.coordinator.State().String(),
	}
	if r.Err != nil {
		body["error"] = r.Err.Error()
	}
	return c.JSON(body)
}

// HandleSearchProducts runs an immediate timed substring search.
func (h *CatalogHandler) HandleSearchProducts(c *fiber.Ctx) error {
	field, err := models.ParseSearchField(c.Query("field"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid search field",
			"error":   err.Error(),
		})
	}

	r, err := h.coordinator.SearchNow(c.UserContext(), field, c.Query("q"))
	if err != nil {
		logging.Logger().Error().Err(err).Str("field", string(field)).Msg("error searching products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not search products",
			"error":   err.Error(),
		})
	}
	return c.JSON(r)
}

// HandleScanBarcode looks up a single product by its exact barcode.
func (h *CatalogHandler) HandleScanBarcode(c *fiber.Ctx) error {
	barcode := c.Params("barcode")
	r, err := h.coordinator.ScanBarcode(c.UserContext(), barcode)
	if err != nil {
		logging.Logger().Error().Err(err).Str("barcode", barcode).Msg("error scanning barcode")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not look up barcode",
			"error":   err.Error(),
		})
	}
	if r.Product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message":    fmt.Sprintf("Product with barcode %s not found", barcode),
			"elapsed_ms": r.ElapsedMs,
		})
	}
	return c.JSON(r)
}
