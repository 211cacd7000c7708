package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Barcode is NULL when absent so the unique index
// only constrains products that actually carry one.
type Product struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	Barcode *string         `gorm:"column:codigo_barras;type:varchar(64);uniqueIndex" json:"codigo_barras"`
	Name    string          `gorm:"column:nombre;type:varchar(255);not null;index" json:"nombre"`
	Price   decimal.Decimal `gorm:"column:precio;type:numeric(12,2);not null" json:"precio"`
	Stock   int             `gorm:"column:stock;not null" json:"stock"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"-"`
	UpdatedBy string    `gorm:"type:varchar(255)" json:"-"`
}

func (Product) TableName() string { return "productos" }

// BarcodeValue returns the barcode or "" when the product has none.
func (p *Product) BarcodeValue() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}
