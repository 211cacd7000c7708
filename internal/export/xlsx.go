// Package export renders sales and purchases as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"verokai-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SalesSheet     = "Ventas"
	PurchasesSheet = "Compras"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02 15:04"
)

var (
	salesHeader     = []any{"ID", "Fecha", "Producto", "Cantidad", "Precio unitario", "Total", "Método de pago"}
	purchasesHeader = []any{"ID", "Fecha", "Producto", "Cantidad", "Costo unitario", "Total"}
)

// Sales writes one row per sale, newest first as given, with a closing total row.
func Sales(sales []model.Sale, loc *time.Location) ([]byte, error) {
	rows := make([][]any, 0, len(sales))
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
		rows = append(rows, []any{
			s.ID,
			s.Date.In(loc).Format(dateLayout),
			s.ProductName,
			s.Quantity,
			s.UnitPrice.InexactFloat64(),
			s.Total.InexactFloat64(),
			s.PaymentMethod,
		})
	}
	return write(SalesSheet, salesHeader, rows, 6, total.InexactFloat64())
}

func Purchases(purchases []model.Purchase, loc *time.Location) ([]byte, error) {
	rows := make([][]any, 0, len(purchases))
	total := decimal.Zero
	for _, p := range purchases {
		amount := p.Total()
		total = total.Add(amount)
		rows = append(rows, []any{
			p.ID,
			p.Date.In(loc).Format(dateLayout),
			p.ProductName,
			p.Quantity,
			p.UnitCost.InexactFloat64(),
			amount.InexactFloat64(),
		})
	}
	return write(PurchasesSheet, purchasesHeader, rows, 6, total.InexactFloat64())
}

// write fills sheet and puts the grand total under the 1-based column totalCol.
func write(sheet string, header []any, rows [][]any, totalCol int, total float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	totalRow := len(rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(totalCol-1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(totalCol, totalRow)
	if err := f.SetCellValue(sheet, labelCell, "TOTAL"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, valueCell, total); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, labelCell, valueCell, bold); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
