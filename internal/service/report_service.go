package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"verokai-pos/internal/export"
	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	ExportSales     = "ventas"
	ExportPurchases = "compras"

	defaultTopLimit = 10
	maxTopLimit     = 100
)

type ReportService interface {
	Summary(ctx context.Context, period model.Period) (*Summary, error)
	TopProducts(ctx context.Context, period model.Period, limit int) ([]repository.TopProduct, error)
	StockMovement(ctx context.Context, period model.Period) ([]MovementDay, error)
	Export(ctx context.Context, kind string, period model.Period) (*Workbook, error)
}

type Summary struct {
	TotalSales     decimal.Decimal `json:"total_ventas"`
	TotalPurchases decimal.Decimal `json:"total_compras"`
	GrossProfit    decimal.Decimal `json:"ganancia_bruta"`
	SalesCount     int64           `json:"cantidad_ventas"`
	PurchasesCount int64           `json:"cantidad_compras"`
	repository.CatalogStats
}

// MovementDay is the stock that came in and went out on one local day.
type MovementDay struct {
	Date     string `json:"fecha"`
	Inbound  int    `json:"entradas"`
	Outbound int    `json:"salidas"`
}

type Workbook struct {
	Filename string
	Data     []byte
}

type reportService struct {
	reports  repository.ReportRepository
	sales    repository.SaleRepository
	purchase repository.PurchaseRepository
	loc      *time.Location
	lowStock int
}

func NewReportService(
	reports repository.ReportRepository,
	sales repository.SaleRepository,
	purchases repository.PurchaseRepository,
	loc *time.Location,
	lowStockThreshold int,
) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		reports:  reports,
		sales:    sales,
		purchase: purchases,
		loc:      loc,
		lowStock: lowStockThreshold,
	}
}

func (s *reportService) Summary(ctx context.Context, period model.Period) (*Summary, error) {
	sales, err := s.reports.SalesTotals(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}
	purchases, err := s.reports.PurchaseTotals(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("purchase totals: %w", err)
	}
	catalog, err := s.reports.CatalogStats(ctx, s.lowStock)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}

	return &Summary{
		TotalSales:     sales.Total.Round(2),
		TotalPurchases: purchases.Total.Round(2),
		GrossProfit:    sales.Total.Sub(purchases.Total).Round(2),
		SalesCount:     sales.Count,
		PurchasesCount: purchases.Count,
		CatalogStats: repository.CatalogStats{
			Products:       catalog.Products,
			LowStock:       catalog.LowStock,
			InventoryValue: catalog.InventoryValue.Round(2),
		},
	}, nil
}

func (s *reportService) TopProducts(ctx context.Context, period model.Period, limit int) ([]repository.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	rows, err := s.reports.TopProducts(ctx, period, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	for i := range rows {
		rows[i].Amount = rows[i].Amount.Round(2)
	}
	return rows, nil
}

// StockMovement groups movements by day in the configured time zone, oldest first.
func (s *reportService) StockMovement(ctx context.Context, period model.Period) ([]MovementDay, error) {
	moves, err := s.reports.Movements(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("stock movements: %w", err)
	}

	byDay := make(map[string]*MovementDay)
	for _, m := range moves {
		key := m.Date.In(s.loc).Format("2006-01-02")
		day, ok := byDay[key]
		if !ok {
			day = &MovementDay{Date: key}
			byDay[key] = day
		}
		if m.Quantity >= 0 {
			day.Inbound += m.Quantity
		} else {
			day.Outbound -= m.Quantity
		}
	}

	days := make([]MovementDay, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (s *reportService) Export(ctx context.Context, kind string, period model.Period) (*Workbook, error) {
	var (
		data []byte
		err  error
	)
	switch kind {
	case ExportSales, "":
		kind = ExportSales
		var sales []model.Sale
		if sales, err = s.sales.FindAll(ctx, period); err != nil {
			return nil, fmt.Errorf("load sales: %w", err)
		}
		data, err = export.Sales(sales, s.loc)
	case ExportPurchases:
		var purchases []model.Purchase
		if purchases, err = s.purchase.FindAll(ctx, period); err != nil {
			return nil, fmt.Errorf("load purchases: %w", err)
		}
		data, err = export.Purchases(purchases, s.loc)
	default:
		return nil, invalid("tipo debe ser '%s' o '%s'", ExportSales, ExportPurchases)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s workbook: %w", kind, err)
	}

	return &Workbook{
		Filename: fmt.Sprintf("%s_%s.xlsx", kind, periodLabel(period, s.loc)),
		Data:     data,
	}, nil
}

// periodLabel names the period by its calendar span: a day, a month or a
// year. Other ranges are labelled by their first and last day.
func periodLabel(p model.Period, loc *time.Location) string {
	if p.From == nil {
		return "todo"
	}
	from := p.From.In(loc)
	if p.To == nil {
		return from.Format("2006-01-02")
	}
	to := p.To.In(loc)
	switch {
	case from.AddDate(0, 0, 1).Equal(to):
		return from.Format("2006-01-02")
	case from.AddDate(0, 1, 0).Equal(to):
		return from.Format("2006-01")
	case from.AddDate(1, 0, 0).Equal(to):
		return from.Format("2006")
	default:
		return from.Format("2006-01-02") + "_" + to.AddDate(0, 0, -1).Format("2006-01-02")
	}
}
