package handler

import (
	"strings"
	"time"

	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	service service.InventoryService
	loc     *time.Location
}

func NewPurchaseHandler(s service.InventoryService, loc *time.Location) *PurchaseHandler {
	return &PurchaseHandler{service: s, loc: loc}
}

// purchasePayload accepts cantidad and costo_unitario as JSON numbers or
// numeric strings.
type purchasePayload struct {
	ProductID   *uint               `json:"producto_id"`
	ProductName string              `json:"nombre_producto"`
	Barcode     string              `json:"codigo_barras"`
	Quantity    decimal.NullDecimal `json:"cantidad"`
	UnitCost    decimal.NullDecimal `json:"costo_unitario"`
	SalePrice   *decimal.Decimal    `json:"precio_venta"`
}

func (p purchasePayload) toRequest() (service.PurchaseRequest, error) {
	if !p.Quantity.Valid {
		return service.PurchaseRequest{}, &service.ValidationError{Message: "cantidad es requerida"}
	}
	if !p.UnitCost.Valid {
		return service.PurchaseRequest{}, &service.ValidationError{Message: "costo_unitario es requerido"}
	}

	req := service.PurchaseRequest{
		Quantity: p.Quantity.Decimal,
		UnitCost: p.UnitCost.Decimal,
	}
	switch {
	case p.ProductID != nil:
		req.Target = service.PurchaseTarget{Kind: service.PurchaseByID, ProductID: *p.ProductID}
	case strings.TrimSpace(p.ProductName) != "":
		req.Target = service.PurchaseTarget{
			Kind:      service.PurchaseByName,
			Name:      p.ProductName,
			Barcode:   p.Barcode,
			SalePrice: p.SalePrice,
		}
	}
	return req, nil
}

// GET /api/compras?fecha=&mes=&año=
func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	period, err := periodFrom(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}
	purchases, err := h.service.ListPurchases(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(purchases)
}

// GET /api/compras/:id
func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "ID de compra inválido")
	}
	purchase, err := h.service.GetPurchase(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchase)
}

// POST /api/compras
func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var payload purchasePayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	req, err := payload.toRequest()
	if err != nil {
		return respondError(c, err)
	}

	purchase, err := h.service.RecordPurchase(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(purchase)
}
