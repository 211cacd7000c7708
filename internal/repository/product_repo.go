package repository

import (
	"context"

	"verokai-pos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository reads and writes productos. Methods taking tx run inside
// the caller's transaction; the Lock* variants take a row lock (FOR UPDATE).
type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	CountReferences(ctx context.Context, id uint) (int64, error)
	Delete(ctx context.Context, id uint) error

	Create(tx *gorm.DB, product *model.Product) error
	Save(tx *gorm.DB, product *model.Product) error
	BarcodeTaken(tx *gorm.DB, barcode string, exceptID uint) (bool, error)
	LockByID(tx *gorm.DB, id uint) (*model.Product, error)
	LockByBarcode(tx *gorm.DB, barcode string) (*model.Product, error)
	LockByName(tx *gorm.DB, name string) (*model.Product, error)
	AdjustStock(tx *gorm.DB, id uint, delta int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "codigo_barras = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CountReferences counts sales and purchases pointing at the product.
func (r *productRepo) CountReferences(ctx context.Context, id uint) (int64, error) {
	var sales, purchases int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Sale{}).Where("producto_id = ?", id).Count(&sales).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.Purchase{}).Where("producto_id = ?", id).Count(&purchases).Error; err != nil {
		return 0, err
	}
	return sales + purchases, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return tx.Save(product).Error
}

func (r *productRepo) BarcodeTaken(tx *gorm.DB, barcode string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&model.Product{}).
		Where("codigo_barras = ? AND id <> ?", barcode, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepo) LockByID(tx *gorm.DB, id uint) (*model.Product, error) {
	return lockFirst(tx.Where("id = ?", id))
}

func (r *productRepo) LockByBarcode(tx *gorm.DB, barcode string) (*model.Product, error) {
	return lockFirst(tx.Where("codigo_barras = ?", barcode))
}

// LockByName matches the name case-insensitively; the oldest product wins on duplicates.
func (r *productRepo) LockByName(tx *gorm.DB, name string) (*model.Product, error) {
	return lockFirst(tx.Where("LOWER(nombre) = LOWER(?)", name))
}

// AdjustStock adds delta (negative for sales) to the stock counter in place.
func (r *productRepo) AdjustStock(tx *gorm.DB, id uint, delta int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func lockFirst(q *gorm.DB) (*model.Product, error) {
	var product model.Product
	err := q.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id ASC").First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
