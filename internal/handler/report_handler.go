package handler

import (
	"fmt"
	"time"

	"verokai-pos/internal/export"
	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
	loc     *time.Location
}

func NewReportHandler(s service.ReportService, loc *time.Location) *ReportHandler {
	return &ReportHandler{service: s, loc: loc}
}

// GetSummary returns sales, purchases and catalog totals for the period.
// GET /api/reportes/resumen?fecha=&mes=&año=
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	period, err := periodFrom(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := h.service.Summary(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GET /api/reportes/top-productos?limite=
func (h *ReportHandler) GetTopProducts(c *fiber.Ctx) error {
	period, err := periodFrom(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}
	rows, err := h.service.TopProducts(c.UserContext(), period, c.QueryInt("limite", 0))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GetStockMovement returns daily inbound/outbound units for charts.
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	period, err := periodFrom(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}
	days, err := h.service.StockMovement(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": days})
}

// GET /api/reportes/exportar?tipo=ventas|compras
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	period, err := periodFrom(c, h.loc)
	if err != nil {
		return respondError(c, err)
	}
	wb, err := h.service.Export(c.UserContext(), c.Query("tipo", service.ExportSales), period)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, wb.Filename))
	return c.Send(wb.Data)
}
