package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one recorded stock intake.
type Purchase struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"column:producto_id;not null;index" json:"producto_id"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity  int             `gorm:"column:cantidad;not null" json:"cantidad"`
	UnitCost  decimal.Decimal `gorm:"column:costo_unitario;type:numeric(12,2);not null" json:"costo_unitario"`
	Date      time.Time       `gorm:"column:fecha;autoCreateTime;index" json:"fecha"`
	CreatedBy string          `gorm:"type:varchar(255)" json:"-"`

	ProductName string `gorm:"-" json:"producto_nombre"`
}

func (Purchase) TableName() string { return "compras" }

// Total is quantity times unit cost.
func (p *Purchase) Total() decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p *Purchase) ResolveProductName() {
	if p.Product != nil {
		p.ProductName = p.Product.Name
	}
}
