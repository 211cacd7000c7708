package service

import (
	"context"
	"fmt"
	"strings"

	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"
	"verokai-pos/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated user behind a write.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// EventPublisher receives stock events after they commit.
type EventPublisher interface {
	Publish(event any)
}

type InventoryService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	CreateProduct(ctx context.Context, in ProductInput, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint, actor Actor) error

	RecordSale(ctx context.Context, req SaleRequest, actor Actor) (*SaleResult, error)
	ListSales(ctx context.Context, period model.Period) ([]model.Sale, error)
	GetSale(ctx context.Context, id uint) (*model.Sale, error)

	RecordPurchase(ctx context.Context, req PurchaseRequest, actor Actor) (*model.Purchase, error)
	ListPurchases(ctx context.Context, period model.Period) ([]model.Purchase, error)
	GetPurchase(ctx context.Context, id uint) (*model.Purchase, error)
}

// ProductInput is the body of product create and update.
type ProductInput struct {
	Barcode *string         `json:"codigo_barras"`
	Name    string          `json:"nombre" validate:"required,max=255"`
	Price   decimal.Decimal `json:"precio"`
	Stock   *int            `json:"stock"`
}

type inventoryService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	events       EventPublisher
	log          *zap.Logger
}

func NewInventoryService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	events EventPublisher,
) InventoryService {
	return &inventoryService{
		db:           db,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		purchaseRepo: purchaseRepo,
		events:       events,
		log:          zap.L().Named("inventory"),
	}
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *inventoryService) GetProductByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	product, err := s.productRepo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if repository.IsNotFound(err) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if msg := validator.FirstError(in); msg != "" {
		return invalid("%s", msg)
	}
	if in.Price.IsNegative() {
		return invalid("El precio no puede ser negativo")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return invalid("El stock no puede ser negativo")
	}
	in.Price = in.Price.Round(2)
	if in.Barcode != nil {
		code := strings.TrimSpace(*in.Barcode)
		if code == "" {
			in.Barcode = nil
		} else {
			in.Barcode = &code
		}
	}
	return nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, in ProductInput, actor Actor) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	product := &model.Product{
		Barcode:   in.Barcode,
		Name:      in.Name,
		Price:     in.Price,
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if product.Barcode != nil {
			taken, err := s.productRepo.BarcodeTaken(tx, *product.Barcode, 0)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateBarcode
			}
		}
		return s.productRepo.Create(tx, product)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}

	s.publish(productEvent(ActionProductCreated, product, actor))
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uint, in ProductInput, actor Actor) (*model.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		if in.Barcode != nil {
			taken, err := s.productRepo.BarcodeTaken(tx, *in.Barcode, existing.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateBarcode
			}
		}

		existing.Barcode = in.Barcode
		existing.Name = in.Name
		existing.Price = in.Price
		if in.Stock != nil {
			existing.Stock = *in.Stock
		}
		existing.UpdatedBy = actor.ID
		if err := s.productRepo.Save(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}

	s.publish(productEvent(ActionProductUpdated, updated, actor))
	return updated, nil
}

// DeleteProduct removes a product that no sale or purchase references.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uint, actor Actor) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	refs, err := s.productRepo.CountReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count product references: %w", err)
	}
	if refs > 0 {
		return ErrProductInUse
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		switch {
		case repository.IsNotFound(err):
			return ErrProductNotFound
		case repository.IsForeignKeyViolation(err):
			return ErrProductInUse
		}
		return err
	}

	s.publish(productEvent(ActionProductDeleted, product, actor))
	return nil
}

func (s *inventoryService) ListSales(ctx context.Context, period model.Period) ([]model.Sale, error) {
	return s.saleRepo.FindAll(ctx, period)
}

func (s *inventoryService) GetSale(ctx context.Context, id uint) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, ErrSaleNotFound
	}
	return sale, err
}

func (s *inventoryService) ListPurchases(ctx context.Context, period model.Period) ([]model.Purchase, error) {
	return s.purchaseRepo.FindAll(ctx, period)
}

func (s *inventoryService) GetPurchase(ctx context.Context, id uint) (*model.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, ErrPurchaseNotFound
	}
	return purchase, err
}

func (s *inventoryService) publish(event StockEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(event)
}
