package service

import (
	"context"
	"fmt"
	"strings"

	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultManualItemName names a manual item sent without a name.
const DefaultManualItemName = "Artículo manual"

type SaleItemKind int

const (
	SaleItemCatalog SaleItemKind = iota
	SaleItemManual
)

func (k SaleItemKind) String() string {
	if k == SaleItemManual {
		return "manual"
	}
	return "catalogo"
}

// SaleLine is one item of a sale. ProductID is used by catalog items, Name by
// manual ones.
type SaleLine struct {
	Kind      SaleItemKind
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Check validates the line as item number index (1-based) of a sale.
func (l SaleLine) Check(index int) error {
	switch {
	case l.Quantity <= 0:
		return &ItemError{Index: index, Err: invalid("Artículo %d: la cantidad debe ser mayor que cero", index)}
	case l.UnitPrice.IsNegative():
		return &ItemError{Index: index, Err: invalid("Artículo %d: el precio unitario no puede ser negativo", index)}
	case l.Kind == SaleItemCatalog && l.ProductID == 0:
		return &ItemError{Index: index, Err: invalid("Artículo %d: falta producto_id", index)}
	case l.Kind != SaleItemCatalog && l.Kind != SaleItemManual:
		return &ItemError{Index: index, Err: invalid("Artículo %d: tipo desconocido", index)}
	}
	return nil
}

type SaleRequest struct {
	Items          []SaleLine
	PaymentMethod  string
	AmountTendered *decimal.Decimal
}

type SaleResult struct {
	Success    bool             `json:"success"`
	Sales      []model.Sale     `json:"ventas"`
	Total      decimal.Decimal  `json:"total"`
	AmountPaid *decimal.Decimal `json:"monto_pagado"`
	Change     decimal.Decimal  `json:"vuelto"`
}

func (r *SaleRequest) validate() error {
	if len(r.Items) == 0 {
		return invalid("La venta debe tener al menos un artículo")
	}
	for i := range r.Items {
		item := &r.Items[i]
		if err := item.Check(i + 1); err != nil {
			return err
		}
		item.UnitPrice = item.UnitPrice.Round(2)
		if item.Kind == SaleItemManual {
			item.Name = strings.TrimSpace(item.Name)
			if item.Name == "" {
				item.Name = DefaultManualItemName
			}
		}
	}
	if r.AmountTendered != nil && r.AmountTendered.IsNegative() {
		return invalid("El monto pagado no puede ser negativo")
	}
	r.PaymentMethod = strings.TrimSpace(r.PaymentMethod)
	if r.PaymentMethod == "" {
		r.PaymentMethod = model.DefaultPaymentMethod
	}
	return nil
}

// RecordSale records every item in order, each in its own transaction. The
// first failing item stops the sale; items before it stay committed.
func (s *inventoryService) RecordSale(ctx context.Context, req SaleRequest, actor Actor) (*SaleResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	result := &SaleResult{
		Sales:      make([]model.Sale, 0, len(req.Items)),
		Total:      decimal.Zero,
		AmountPaid: req.AmountTendered,
		Change:     decimal.Zero,
	}

	for i, line := range req.Items {
		sale, product, err := s.recordSaleLine(ctx, line, req.PaymentMethod, actor)
		if err != nil {
			if i > 0 {
				s.log.Warn("sale stopped after partial commit",
					zap.Int("committed_items", i), zap.Int("failed_item", i+1), zap.Error(err))
			}
			return nil, &ItemError{Index: i + 1, Err: err}
		}
		result.Sales = append(result.Sales, *sale)
		result.Total = result.Total.Add(sale.Total)

		event := StockEvent{
			Type:     EventStockUpdate,
			Action:   ActionSaleRecorded,
			Quantity: sale.Quantity,
			Total:    &sale.Total,
			User:     eventUser(actor),
			Message:  fmt.Sprintf("%s vendió %d x '%s'", actor.Name, sale.Quantity, sale.ProductName),
		}
		if product != nil {
			event.Product = eventProduct(product)
		}
		s.publish(event)
	}

	if req.AmountTendered != nil {
		if change := req.AmountTendered.Sub(result.Total); change.IsPositive() {
			result.Change = change
		}
	}
	result.Success = true
	return result, nil
}

// recordSaleLine locks, checks and decrements the product, then inserts the
// sale row, all in one transaction. Manual items only insert the row. The
// returned product carries the stock after the sale.
func (s *inventoryService) recordSaleLine(ctx context.Context, line SaleLine, method string, actor Actor) (*model.Sale, *model.Product, error) {
	sale := &model.Sale{
		Quantity:      line.Quantity,
		UnitPrice:     line.UnitPrice,
		Total:         line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		PaymentMethod: method,
		CreatedBy:     actor.ID,
	}

	if line.Kind == SaleItemManual {
		name := line.Name
		sale.Note = &name
		if err := s.saleRepo.Create(s.db.WithContext(ctx), sale); err != nil {
			return nil, nil, fmt.Errorf("insert manual sale: %w", err)
		}
		sale.ProductName = name
		return sale, nil, nil
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.productRepo.LockByID(tx, line.ProductID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("lock product %d: %w", line.ProductID, err)
		}
		if line.Quantity > p.Stock {
			return &StockError{ProductID: p.ID, Available: p.Stock, Requested: line.Quantity}
		}
		if err := s.productRepo.AdjustStock(tx, p.ID, -line.Quantity, actor.ID); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		p.Stock -= line.Quantity

		sale.ProductID = &p.ID
		if err := s.saleRepo.Create(tx, sale); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("insert sale: %w", err)
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sale.ProductName = product.Name
	return sale, product, nil
}
