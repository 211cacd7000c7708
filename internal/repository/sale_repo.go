package repository

import (
	"context"

	"verokai-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindAll(ctx context.Context, period model.Period) ([]model.Sale, error)
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Omit(clause.Associations).Create(sale).Error
}

// FindAll returns sales in the period, newest first, with producto_nombre resolved.
func (r *saleRepo) FindAll(ctx context.Context, period model.Period) ([]model.Sale, error) {
	sales := []model.Sale{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Scopes(period.Scope("fecha")).
		Order("fecha DESC").Order("id DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].ResolveProductName()
	}
	return sales, nil
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var sale model.Sale
	if err := r.db.WithContext(ctx).Preload("Product").First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	sale.ResolveProductName()
	return &sale, nil
}
