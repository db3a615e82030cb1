package handlers

import (
	"log/slog"

	"dropzone/internal/models"
	"dropzone/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	log     *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:slug", h.HandleGetProduct)
	router.Post("/seed-products", h.HandleSeedProducts)
}

// HandleListProducts lists products, optionally filtered by ?category=.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("category"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(fiber.Map{"items": products})
}

// HandleGetProduct retrieves a single product by slug.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, h.log, "Not found", err)
	}
	return c.JSON(product)
}

// HandleSeedProducts inserts the demo catalog into an empty store.
func (h *ProductHandler) HandleSeedProducts(c *fiber.Ctx) error {
	res, err := h.service.Seed(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not seed products", err)
	}

	message := "Products already seeded"
	if res.Seeded {
		message = "Seeded"
		h.log.Info("catalog seeded", "count", res.Count)
	}
	return c.JSON(fiber.Map{
		"ok":      true,
		"message": message,
		"count":   res.Count,
	})
}
