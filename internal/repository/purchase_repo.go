package repository

import (
	"context"

	"verokai-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Create(tx *gorm.DB, purchase *model.Purchase) error
	FindAll(ctx context.Context, period model.Period) ([]model.Purchase, error)
	FindByID(ctx context.Context, id uint) (*model.Purchase, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(tx *gorm.DB, purchase *model.Purchase) error {
	return tx.Omit(clause.Associations).Create(purchase).Error
}

func (r *purchaseRepo) FindAll(ctx context.Context, period model.Period) ([]model.Purchase, error) {
	purchases := []model.Purchase{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Scopes(period.Scope("fecha")).
		Order("fecha DESC").Order("id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	for i := range purchases {
		purchases[i].ResolveProductName()
	}
	return purchases, nil
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uint) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).Preload("Product").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	purchase.ResolveProductName()
	return &purchase, nil
}
