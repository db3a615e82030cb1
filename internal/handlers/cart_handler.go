package handlers

import (
	"log/slog"

	"dropzone/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *slog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/:cartId", h.HandleGetCart)
	cartRoutes.Post("/:cartId/add", h.HandleAddItem)
	cartRoutes.Post("/:cartId/update", h.HandleUpdateItem)
}

// HandleGetCart returns the cart with current product details and subtotal.
// Unknown cart ids get a new empty cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.Present(c.UserContext(), c.Params("cartId"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve cart", err)
	}
	return c.JSON(view)
}

// AddItemRequest is the body of POST /cart/:cartId/add.
type AddItemRequest struct {
	Slug string `json:"slug" validate:"required,max=100"`
	Size string `json:"size" validate:"max=16"`
	// Qty defaults to 1 when omitted.
	Qty *int `json:"qty"`
}

// HandleAddItem adds units of a product to a cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}
	err := h.service.AddItem(c.UserContext(), c.Params("cartId"), services.AddItemInput{
		Slug: req.Slug,
		Size: req.Size,
		Qty:  qty,
	})
	if err != nil {
		return respondError(c, h.log, "Could not add item", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// UpdateItemRequest is the body of POST /cart/:cartId/update.
type UpdateItemRequest struct {
	Slug   string `json:"slug" validate:"required,max=100"`
	Size   string `json:"size" validate:"required,max=16"`
	Qty    *int   `json:"qty"`
	Remove bool   `json:"remove"`
}

// HandleUpdateItem sets the quantity of, or removes, one cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	err := h.service.UpdateItem(c.UserContext(), c.Params("cartId"), services.UpdateItemInput{
		Slug:   req.Slug,
		Size:   req.Size,
		Qty:    req.Qty,
		Remove: req.Remove,
	})
	if err != nil {
		return respondError(c, h.log, "Could not update cart", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
