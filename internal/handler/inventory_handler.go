package handler

import (
	"errors"

	"go-stock-ledger/internal/ledger"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// getActor pulls the acting user out of the JWT context (set by RequireAuth).
func getActor(c *fiber.Ctx) ledger.Actor {
	actor := ledger.Actor{ID: "system", Name: "Unknown"}
	if id, ok := c.Locals("user_id").(string); ok && id != "" {
		actor.ID = id
	}
	if name, ok := c.Locals("user_name").(string); ok && name != "" {
		actor.Name = name
	}
	return actor
}

// writeOpError maps domain errors onto HTTP statuses: bad input is 400,
// a stock shortfall is 409, a missing product is 404.
func writeOpError(c *fiber.Ctx, err error) error {
	var validationErr *ledger.ValidationError
	var stockErr *ledger.InsufficientStockError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(400).JSON(fiber.Map{"error": validationErr.Error()})
	case errors.As(err, &stockErr):
		return c.Status(409).JSON(fiber.Map{
			"error":     stockErr.Error(),
			"scope":     string(stockErr.Scope),
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.Is(err, service.ErrProductNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(&req, getActor(c))
	if err != nil {
		return writeOpError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProductByID(productID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	return c.JSON(product)
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.EditProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.EditProduct(productID, &req, getActor(c))
	if err != nil {
		return writeOpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// AddStock handles additive restocks of one or both pools.
// PUT /api/v1/products/:id/stock
func (h *InventoryHandler) AddStock(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.AddStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.AddStock(productID, &req, getActor(c))
	if err != nil {
		return writeOpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock added", "data": updated})
}

// TransferStock moves units between backup and front stock.
// PUT /api/v1/products/:id/transfer
func (h *InventoryHandler) TransferStock(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.TransferStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.TransferStock(productID, &req, getActor(c))
	if err != nil {
		return writeOpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock transferred", "data": updated})
}

// RecordSale deducts sold units and appends the SALE audit entry.
// POST /api/v1/sales
func (h *InventoryHandler) RecordSale(c *fiber.Ctx) error {
	var req service.RecordSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, entry, err := h.service.RecordSale(&req, getActor(c))
	if err != nil {
		return writeOpError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Sale recorded",
		"data": fiber.Map{
			"product": product,
			"entry":   entry,
		},
	})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.service.DeleteProduct(productID, getActor(c)); err != nil {
		return writeOpError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}
