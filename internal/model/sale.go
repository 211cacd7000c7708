package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is used when a sale does not name one.
const DefaultPaymentMethod = "cash"

// Sale is one recorded sale line. ProductID is nil for manual items, whose
// display name lives in Note.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     *uint           `gorm:"column:producto_id;index" json:"producto_id"`
	Product       *Product        `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity      int             `gorm:"column:cantidad;not null" json:"cantidad"`
	UnitPrice     decimal.Decimal `gorm:"column:precio_unitario;type:numeric(12,2);not null" json:"precio_unitario"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	PaymentMethod string          `gorm:"column:metodo_pago;type:varchar(30);not null" json:"metodo_pago"`
	Date          time.Time       `gorm:"column:fecha;autoCreateTime;index" json:"fecha"`
	Note          *string         `gorm:"column:nota;type:text" json:"nota"`
	CreatedBy     string          `gorm:"type:varchar(255)" json:"-"`

	ProductName string `gorm:"-" json:"producto_nombre"`
}

func (Sale) TableName() string { return "ventas" }

// IsManual reports whether the line is not backed by a catalog product.
func (s *Sale) IsManual() bool {
	return s.ProductID == nil
}

// ResolveProductName fills ProductName from the preloaded product, or from the
// note for manual items.
func (s *Sale) ResolveProductName() {
	switch {
	case s.Product != nil:
		s.ProductName = s.Product.Name
	case s.Note != nil:
		s.ProductName = *s.Note
	}
}
