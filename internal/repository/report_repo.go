package repository

import (
	"context"
	"time"

	"verokai-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepository interface {
	SalesTotals(ctx context.Context, period model.Period) (Totals, error)
	PurchaseTotals(ctx context.Context, period model.Period) (Totals, error)
	CatalogStats(ctx context.Context, lowStockThreshold int) (*CatalogStats, error)
	TopProducts(ctx context.Context, period model.Period, limit int) ([]TopProduct, error)
	Movements(ctx context.Context, period model.Period) ([]Movement, error)
}

// Totals is the money sum and row count of a set of sales or purchases.
type Totals struct {
	Total decimal.Decimal
	Count int64
}

// CatalogStats summarizes the product table as it is now.
type CatalogStats struct {
	Products       int64           `json:"productos"`
	LowStock       int64           `json:"stock_bajo"`
	InventoryValue decimal.Decimal `json:"valor_inventario"`
}

// TopProduct is one best-seller row. Manual sale lines are not counted.
type TopProduct struct {
	ProductID uint            `json:"producto_id"`
	Name      string          `json:"nombre"`
	Units     int64           `json:"unidades"`
	Amount    decimal.Decimal `json:"importe"`
}

// Movement is one stock-affecting row; Quantity is negative for sales.
type Movement struct {
	Date     time.Time
	Quantity int
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) SalesTotals(ctx context.Context, period model.Period) (Totals, error) {
	var row Totals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Scopes(period.Scope("fecha")).
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS count").
		Scan(&row).Error
	return row, err
}

func (r *reportRepo) PurchaseTotals(ctx context.Context, period model.Period) (Totals, error) {
	var row Totals
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Scopes(period.Scope("fecha")).
		Select("COALESCE(SUM(cantidad * costo_unitario), 0) AS total, COUNT(*) AS count").
		Scan(&row).Error
	return row, err
}

func (r *reportRepo) CatalogStats(ctx context.Context, lowStockThreshold int) (*CatalogStats, error) {
	var stats CatalogStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock <= ?", lowStockThreshold).Count(&stats.LowStock).Error; err != nil {
		return nil, err
	}

	var value struct{ Total decimal.Decimal }
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(stock * precio), 0) AS total").Scan(&value).Error; err != nil {
		return nil, err
	}
	stats.InventoryValue = value.Total
	return &stats, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, period model.Period, limit int) ([]TopProduct, error) {
	rows := []TopProduct{}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Scopes(period.Scope("ventas.fecha")).
		Select("ventas.producto_id AS product_id, productos.nombre AS name, SUM(ventas.cantidad) AS units, SUM(ventas.total) AS amount").
		Joins("JOIN productos ON productos.id = ventas.producto_id").
		Group("ventas.producto_id, productos.nombre").
		Order("units DESC").Order("ventas.producto_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Movements lists purchases (positive) and catalog sales (negative) in the period.
func (r *reportRepo) Movements(ctx context.Context, period model.Period) ([]Movement, error) {
	var in, out []Movement
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Purchase{}).
		Scopes(period.Scope("fecha")).
		Select("fecha AS date, cantidad AS quantity").
		Scan(&in).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Sale{}).
		Scopes(period.Scope("fecha")).
		Where("producto_id IS NOT NULL").
		Select("fecha AS date, -cantidad AS quantity").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return append(in, out...), nil
}
