package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultMarkup prices a product created by a purchase when no sale price is given.
var DefaultMarkup = decimal.RequireFromString("1.5")

type PurchaseTargetKind int

const (
	PurchaseByID PurchaseTargetKind = iota + 1
	PurchaseByName
)

// PurchaseTarget identifies the purchased product either by id or by name,
// the latter optionally narrowed by barcode.
type PurchaseTarget struct {
	Kind      PurchaseTargetKind
	ProductID uint
	Name      string
	Barcode   string
	SalePrice *decimal.Decimal
}

// PurchaseRequest carries quantity and cost as decimals so that non-integer
// or negative input can be rejected with a clear message.
type PurchaseRequest struct {
	Target   PurchaseTarget
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

func (r *PurchaseRequest) validate() (int, error) {
	if !r.Quantity.IsInteger() || !r.Quantity.IsPositive() || r.Quantity.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, invalid("La cantidad debe ser un entero positivo")
	}
	if r.UnitCost.IsNegative() {
		return 0, invalid("El costo unitario no puede ser negativo")
	}
	r.UnitCost = r.UnitCost.Round(2)

	switch r.Target.Kind {
	case PurchaseByID:
		if r.Target.ProductID == 0 {
			return 0, invalid("producto_id inválido")
		}
	case PurchaseByName:
		r.Target.Name = strings.TrimSpace(r.Target.Name)
		r.Target.Barcode = strings.TrimSpace(r.Target.Barcode)
		if r.Target.Name == "" {
			return 0, invalid("nombre_producto es requerido")
		}
	default:
		return 0, invalid("Debe indicar producto_id o nombre_producto")
	}
	return int(r.Quantity.IntPart()), nil
}

// RecordPurchase resolves (or creates) the product, adds the quantity to its
// stock and inserts the purchase row in one transaction.
func (s *inventoryService) RecordPurchase(ctx context.Context, req PurchaseRequest, actor Actor) (*model.Purchase, error) {
	qty, err := req.validate()
	if err != nil {
		return nil, err
	}

	var (
		product *model.Product
		created bool
	)
	purchase := &model.Purchase{
		Quantity:  qty,
		UnitCost:  req.UnitCost,
		CreatedBy: actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, isNew, err := s.resolvePurchaseProduct(tx, req.Target, qty, req.UnitCost, actor)
		if err != nil {
			return err
		}
		if !isNew {
			if err := s.productRepo.AdjustStock(tx, p.ID, qty, actor.ID); err != nil {
				return fmt.Errorf("increment stock: %w", err)
			}
			p.Stock += qty
		}

		purchase.ProductID = p.ID
		if err := s.purchaseRepo.Create(tx, purchase); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("insert purchase: %w", err)
		}
		product, created = p, isNew
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}

	purchase.ProductName = product.Name
	total := purchase.Total()
	s.publish(StockEvent{
		Type:     EventStockUpdate,
		Action:   ActionPurchase,
		Product:  eventProduct(product),
		Quantity: qty,
		Total:    &total,
		User:     eventUser(actor),
		Message:  purchaseMessage(actor, product, qty, created),
	})
	return purchase, nil
}

// resolvePurchaseProduct finds the locked product the purchase refers to. By
// name, an unknown product is created with the purchase quantity as its stock
// and isNew is true.
func (s *inventoryService) resolvePurchaseProduct(tx *gorm.DB, target PurchaseTarget, qty int, cost decimal.Decimal, actor Actor) (*model.Product, bool, error) {
	if target.Kind == PurchaseByID {
		p, err := s.productRepo.LockByID(tx, target.ProductID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, false, ErrProductNotFound
			}
			return nil, false, fmt.Errorf("lock product %d: %w", target.ProductID, err)
		}
		return p, false, nil
	}

	var (
		p   *model.Product
		err error
	)
	if target.Barcode != "" {
		p, err = s.productRepo.LockByBarcode(tx, target.Barcode)
	} else {
		p, err = s.productRepo.LockByName(tx, target.Name)
	}
	switch {
	case err == nil:
		return p, false, nil
	case !repository.IsNotFound(err):
		return nil, false, fmt.Errorf("find product %q: %w", target.Name, err)
	}

	price := cost.Mul(DefaultMarkup).Round(2)
	if target.SalePrice != nil && target.SalePrice.IsPositive() {
		price = target.SalePrice.Round(2)
	}
	barcode := target.Barcode
	if barcode == "" {
		barcode = fmt.Sprintf("AUTO-%d", time.Now().UnixNano())
	}

	p = &model.Product{
		Barcode:   &barcode,
		Name:      target.Name,
		Price:     price,
		Stock:     qty,
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
	}
	if err := s.productRepo.Create(tx, p); err != nil {
		return nil, false, fmt.Errorf("create product %q: %w", target.Name, err)
	}
	return p, true, nil
}

func purchaseMessage(actor Actor, p *model.Product, qty int, created bool) string {
	if created {
		return fmt.Sprintf("%s registró el producto nuevo '%s' con %d unidades", actor.Name, p.Name, qty)
	}
	return fmt.Sprintf("%s agregó %d unidades a '%s'", actor.Name, qty, p.Name)
}
