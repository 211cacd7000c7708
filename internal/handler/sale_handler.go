package handler

import (
	"fmt"
	"strings"
	"time"

	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SaleHandler struct {
	service service.InventoryService
	loc     *time.Location
}

func NewSaleHandler(s service.InventoryService, loc *time.Location) *SaleHandler {
	return &SaleHandler{service: s, loc: loc}
}

type saleItemPayload struct {
	ProductID *uint           `json:"producto_id"`
	Kind      string          `json:"tipo"`
	Name      string          `json:"nombre"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

type salePayload struct {
	Items          []saleItemPayload `json:"items"`
	PaymentMethod  string            `json:"metodo_pago"`
	AmountTendered *decimal.Decimal  `json:"monto_pagado"`
}

// toRequest picks each item's variant: an explicit tipo wins, otherwise the
// presence of producto_id makes it a catalog item. Items are checked in order,
// so the first invalid one is the one reported.
func (p salePayload) toRequest() (service.SaleRequest, error) {
	req := service.SaleRequest{
		Items:          make([]service.SaleLine, 0, len(p.Items)),
		PaymentMethod:  p.PaymentMethod,
		AmountTendered: p.AmountTendered,
	}
	for i, item := range p.Items {
		line := service.SaleLine{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
		}

		switch strings.ToLower(strings.TrimSpace(item.Kind)) {
		case "manual":
			line.Kind = service.SaleItemManual
		case "catalogo", "producto":
			line.Kind = service.SaleItemCatalog
		case "":
			line.Kind = service.SaleItemManual
			if item.ProductID != nil {
				line.Kind = service.SaleItemCatalog
			}
		default:
			return req, itemInvalid(i+1, "Artículo %d: tipo '%s' desconocido", i+1, item.Kind)
		}
		if line.Kind == service.SaleItemCatalog && item.ProductID != nil {
			line.ProductID = *item.ProductID
		}

		if !item.Quantity.IsInteger() || !item.Quantity.IsPositive() || item.Quantity.IntPart() > 1<<31-1 {
			return req, itemInvalid(i+1, "Artículo %d: la cantidad debe ser un entero positivo", i+1)
		}
		line.Quantity = int(item.Quantity.IntPart())
		if err := line.Check(i + 1); err != nil {
			return req, err
		}
		req.Items = append(req.Items, line)
	}
	return req, nil
}

func itemInvalid(index int, format string, args ...any) error {
	return &service.ItemError{
		Index: index,
		Err:   &service.ValidationError{Message: fmt.Sprintf(format, args...)},
	}
}

// GET /api/ventas?fecha=&mes=&año=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	period, err := periodFrom(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}
	sales, err := h.service.ListSales(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(sales)
}

// GET /api/ventas/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "ID de venta inválido")
	}
	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// POST /api/ventas
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var payload salePayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}

	req, err := payload.toRequest()
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.service.RecordSale(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
