package handler

import (
	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetProducts lists the catalog ordered by id.
// GET /api/productos
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// GET /api/productos/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// GET /api/productos/barcode/:codigo
func (h *InventoryHandler) GetProductByBarcode(c *fiber.Ctx) error {
	product, err := h.service.GetProductByBarcode(c.UserContext(), c.Params("codigo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// POST /api/productos
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var in service.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	product, err := h.service.CreateProduct(c.UserContext(), in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// PUT /api/productos/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}
	var in service.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, in, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// DELETE /api/productos/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "ID de producto inválido")
	}
	if err := h.service.DeleteProduct(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Producto eliminado"})
}
