package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"
	"verokai-pos/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) stockEvents() []StockEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []StockEvent
	for _, e := range p.events {
		if se, ok := e.(StockEvent); ok {
			out = append(out, se)
		}
	}
	return out
}

var cashier = Actor{ID: "u-1", Name: "Caja 1", Email: "caja@verokai.local"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newInventory(t *testing.T) (InventoryService, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db := testutil.NewDB(t)
	events := &recordingPublisher{}
	svc := NewInventoryService(db,
		repository.NewProductRepo(db),
		repository.NewSaleRepo(db),
		repository.NewPurchaseRepo(db),
		events,
	)
	return svc, db, events
}

func mustProduct(t *testing.T, svc InventoryService, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), ProductInput{Name: name, Price: dec(price), Stock: &stock}, cashier)
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, svc InventoryService, id uint) int {
	t.Helper()
	p, err := svc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestCreateProductThenList(t *testing.T) {
	svc, _, events := newInventory(t)
	ctx := context.Background()
	code := " 750100 "

	created, err := svc.CreateProduct(ctx, ProductInput{Barcode: &code, Name: "Agua", Price: dec("1.50"), Stock: intPtr(10)}, cashier)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "750100", created.BarcodeValue())

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Agua", list[0].Name)
	assert.True(t, dec("1.50").Equal(list[0].Price))
	assert.Equal(t, 10, list[0].Stock)

	byCode, err := svc.GetProductByBarcode(ctx, "750100")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	require.Len(t, events.stockEvents(), 1)
	assert.Equal(t, ActionProductCreated, events.stockEvents()[0].Action)
}

func intPtr(v int) *int { return &v }

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newInventory(t)
	ctx := context.Background()
	code := "111"
	_, err := svc.CreateProduct(ctx, ProductInput{Barcode: &code, Name: "A", Price: dec("1")}, cashier)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input ProductInput
		want  error
	}{
		{"missing name", ProductInput{Name: "  ", Price: dec("1")}, nil},
		{"negative price", ProductInput{Name: "B", Price: dec("-0.01")}, nil},
		{"negative stock", ProductInput{Name: "B", Price: dec("1"), Stock: intPtr(-1)}, nil},
		{"duplicate barcode", ProductInput{Name: "B", Price: dec("1"), Barcode: &code}, ErrDuplicateBarcode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.input, cashier)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.True(t, IsValidation(err), err.Error())
			}
		})
	}
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	svc, _, _ := newInventory(t)
	ctx := context.Background()
	a := mustProduct(t, svc, "Agua", "1.50", 10)
	b := mustProduct(t, svc, "Pan", "0.80", 3)
	code := "999"

	updated, err := svc.UpdateProduct(ctx, a.ID, ProductInput{Barcode: &code, Name: "Agua 600ml", Price: dec("1.75")}, cashier)
	require.NoError(t, err)
	assert.Equal(t, "Agua 600ml", updated.Name)
	assert.Equal(t, 10, updated.Stock)

	_, err = svc.UpdateProduct(ctx, b.ID, ProductInput{Barcode: &code, Name: "Pan", Price: dec("1")}, cashier)
	assert.ErrorIs(t, err, ErrDuplicateBarcode)

	_, err = svc.UpdateProduct(ctx, 999, ProductInput{Name: "X", Price: dec("1")}, cashier)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.RecordSale(ctx, SaleRequest{Items: []SaleLine{{ProductID: a.ID, Quantity: 1, UnitPrice: dec("1.75")}}}, cashier)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, a.ID, cashier), ErrProductInUse)

	require.NoError(t, svc.DeleteProduct(ctx, b.ID, cashier))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, b.ID, cashier), ErrProductNotFound)
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	svc, db, events := newInventory(t)
	ctx := context.Background()
	agua := mustProduct(t, svc, "Agua", "1.50", 10)

	res, err := svc.RecordSale(ctx, SaleRequest{
		Items: []SaleLine{{Kind: SaleItemCatalog, ProductID: agua.ID, Quantity: 3, UnitPrice: dec("1.50")}},
	}, cashier)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, dec("4.50").Equal(res.Total))
	assert.Nil(t, res.AmountPaid)
	assert.True(t, res.Change.IsZero())
	require.Len(t, res.Sales, 1)
	sale := res.Sales[0]
	assert.Equal(t, "Agua", sale.ProductName)
	assert.Equal(t, model.DefaultPaymentMethod, sale.PaymentMethod)
	assert.Equal(t, "cash", sale.PaymentMethod)
	assert.True(t, dec("4.50").Equal(sale.Total))
	assert.False(t, sale.Date.IsZero())

	assert.Equal(t, 7, stockOf(t, svc, agua.ID))
	assert.Equal(t, int64(1), countRows(t, db, &model.Sale{}))

	last := events.stockEvents()[len(events.stockEvents())-1]
	assert.Equal(t, ActionSaleRecorded, last.Action)
	require.NotNil(t, last.Product)
	assert.Equal(t, 7, last.Product.Stock)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	svc, db, _ := newInventory(t)
	agua := mustProduct(t, svc, "Agua", "1.50", 10)

	_, err := svc.RecordSale(context.Background(), SaleRequest{
		Items: []SaleLine{{ProductID: agua.ID, Quantity: 11, UnitPrice: dec("1.50")}},
	}, cashier)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "Stock insuficiente", errors.Unwrap(err).Error())

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 11, stockErr.Requested)

	assert.Equal(t, 10, stockOf(t, svc, agua.ID))
	assert.Zero(t, countRows(t, db, &model.Sale{}))
}

func TestRecordSaleKeepsEarlierItemsWhenLaterFails(t *testing.T) {
	svc, db, _ := newInventory(t)
	agua := mustProduct(t, svc, "Agua", "1.50", 10)

	_, err := svc.RecordSale(context.Background(), SaleRequest{
		Items: []SaleLine{
			{ProductID: agua.ID, Quantity: 2, UnitPrice: dec("1.50")},
			{ProductID: 9999, Quantity: 1, UnitPrice: dec("1.00")},
		},
	}, cashier)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 2, itemErr.Index)

	assert.Equal(t, 8, stockOf(t, svc, agua.ID))
	assert.Equal(t, int64(1), countRows(t, db, &model.Sale{}))
}

func TestRecordSaleManualItems(t *testing.T) {
	svc, _, _ := newInventory(t)
	ctx := context.Background()
	pan := mustProduct(t, svc, "Pan", "0.80", 5)
	tendered := dec("10")

	res, err := svc.RecordSale(ctx, SaleRequest{
		Items: []SaleLine{
			{Kind: SaleItemManual, Name: "Bolsa", Quantity: 2, UnitPrice: dec("0.25")},
			{Kind: SaleItemManual, Quantity: 1, UnitPrice: dec("1")},
			{Kind: SaleItemCatalog, ProductID: pan.ID, Quantity: 5, UnitPrice: dec("0.80")},
		},
		PaymentMethod:  "tarjeta",
		AmountTendered: &tendered,
	}, cashier)
	require.NoError(t, err)

	require.Len(t, res.Sales, 3)
	assert.Nil(t, res.Sales[0].ProductID)
	assert.Equal(t, "Bolsa", *res.Sales[0].Note)
	assert.Equal(t, "Bolsa", res.Sales[0].ProductName)
	assert.Equal(t, DefaultManualItemName, res.Sales[1].ProductName)
	assert.Equal(t, "tarjeta", res.Sales[2].PaymentMethod)

	assert.True(t, dec("5.50").Equal(res.Total), res.Total.String())
	assert.True(t, dec("4.50").Equal(res.Change), res.Change.String())
	assert.Equal(t, 0, stockOf(t, svc, pan.ID))

	listed, err := svc.ListSales(ctx, model.Period{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	names := []string{listed[0].ProductName, listed[1].ProductName, listed[2].ProductName}
	assert.ElementsMatch(t, []string{"Bolsa", DefaultManualItemName, "Pan"}, names)
}

func TestRecordSaleChangeNeverNegative(t *testing.T) {
	svc, _, _ := newInventory(t)
	short := dec("1")
	res, err := svc.RecordSale(context.Background(), SaleRequest{
		Items:          []SaleLine{{Kind: SaleItemManual, Name: "X", Quantity: 1, UnitPrice: dec("3")}},
		AmountTendered: &short,
	}, cashier)
	require.NoError(t, err)
	assert.True(t, res.Change.IsZero())
	require.NotNil(t, res.AmountPaid)
	assert.True(t, short.Equal(*res.AmountPaid))
}

func TestRecordSaleValidation(t *testing.T) {
	svc, db, _ := newInventory(t)
	agua := mustProduct(t, svc, "Agua", "1.50", 10)

	tests := []struct {
		name  string
		items []SaleLine
		index int
	}{
		{"empty", nil, 0},
		{"zero quantity", []SaleLine{{ProductID: agua.ID, Quantity: 1, UnitPrice: dec("1")}, {ProductID: agua.ID, Quantity: 0, UnitPrice: dec("1")}}, 2},
		{"negative price", []SaleLine{{Kind: SaleItemManual, Quantity: 1, UnitPrice: dec("-1")}}, 1},
		{"catalog without product", []SaleLine{{Kind: SaleItemCatalog, Quantity: 1, UnitPrice: dec("1")}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSale(context.Background(), SaleRequest{Items: tt.items}, cashier)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			if tt.index > 0 {
				var itemErr *ItemError
				require.ErrorAs(t, err, &itemErr)
				assert.Equal(t, tt.index, itemErr.Index)
			}
		})
	}

	assert.Equal(t, 10, stockOf(t, svc, agua.ID))
	assert.Zero(t, countRows(t, db, &model.Sale{}))
}

func TestRecordPurchaseByID(t *testing.T) {
	svc, _, _ := newInventory(t)
	ctx := context.Background()
	agua := mustProduct(t, svc, "Agua", "1.50", 10)

	purchase, err := svc.RecordPurchase(ctx, PurchaseRequest{
		Target:   PurchaseTarget{Kind: PurchaseByID, ProductID: agua.ID},
		Quantity: dec("5"),
		UnitCost: dec("1.00"),
	}, cashier)
	require.NoError(t, err)
	assert.Equal(t, "Agua", purchase.ProductName)
	assert.Equal(t, 5, purchase.Quantity)

	p, err := svc.GetProduct(ctx, agua.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Stock)
	assert.True(t, dec("1.50").Equal(p.Price))
}

func TestRecordPurchaseCreatesUnknownProduct(t *testing.T) {
	svc, _, events := newInventory(t)
	ctx := context.Background()

	purchase, err := svc.RecordPurchase(ctx, PurchaseRequest{
		Target:   PurchaseTarget{Kind: PurchaseByName, Name: "Nuevo"},
		Quantity: dec("5"),
		UnitCost: dec("2.00"),
	}, cashier)
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", purchase.ProductName)

	p, err := svc.GetProduct(ctx, purchase.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	assert.True(t, dec("3.00").Equal(p.Price), p.Price.String())
	assert.True(t, strings.HasPrefix(p.BarcodeValue(), "AUTO-"))

	last := events.stockEvents()[len(events.stockEvents())-1]
	assert.Equal(t, ActionPurchase, last.Action)
	assert.Equal(t, 5, last.Quantity)
}

func TestRecordPurchaseResolution(t *testing.T) {
	svc, _, _ := newInventory(t)
	ctx := context.Background()
	code := "750200"
	leche, err := svc.CreateProduct(ctx, ProductInput{Barcode: &code, Name: "Leche", Price: dec("2.10"), Stock: intPtr(1)}, cashier)
	require.NoError(t, err)

	t.Run("name is case-insensitive", func(t *testing.T) {
		p, err := svc.RecordPurchase(ctx, PurchaseRequest{
			Target:   PurchaseTarget{Kind: PurchaseByName, Name: "LECHE"},
			Quantity: dec("2"), UnitCost: dec("1.20"),
		}, cashier)
		require.NoError(t, err)
		assert.Equal(t, leche.ID, p.ProductID)
		assert.Equal(t, 3, stockOf(t, svc, leche.ID))
	})

	t.Run("barcode wins over name", func(t *testing.T) {
		p, err := svc.RecordPurchase(ctx, PurchaseRequest{
			Target:   PurchaseTarget{Kind: PurchaseByName, Name: "Otro nombre", Barcode: code},
			Quantity: dec("1"), UnitCost: dec("1.20"),
		}, cashier)
		require.NoError(t, err)
		assert.Equal(t, leche.ID, p.ProductID)
		assert.Equal(t, 4, stockOf(t, svc, leche.ID))
	})

	t.Run("unknown barcode creates with given sale price", func(t *testing.T) {
		price := dec("9.99")
		p, err := svc.RecordPurchase(ctx, PurchaseRequest{
			Target:   PurchaseTarget{Kind: PurchaseByName, Name: "Leche", Barcode: "750300", SalePrice: &price},
			Quantity: dec("3"), UnitCost: dec("5"),
		}, cashier)
		require.NoError(t, err)
		assert.NotEqual(t, leche.ID, p.ProductID)

		created, err := svc.GetProduct(ctx, p.ProductID)
		require.NoError(t, err)
		assert.Equal(t, "750300", created.BarcodeValue())
		assert.True(t, price.Equal(created.Price))
		assert.Equal(t, 3, created.Stock)
	})

	t.Run("zero sale price falls back to markup", func(t *testing.T) {
		zero := decimal.Zero
		p, err := svc.RecordPurchase(ctx, PurchaseRequest{
			Target:   PurchaseTarget{Kind: PurchaseByName, Name: "Queso", SalePrice: &zero},
			Quantity: dec("1"), UnitCost: dec("3.33"),
		}, cashier)
		require.NoError(t, err)
		created, err := svc.GetProduct(ctx, p.ProductID)
		require.NoError(t, err)
		assert.True(t, dec("5.00").Equal(created.Price), created.Price.String())
	})

	t.Run("negative sale price falls back to markup", func(t *testing.T) {
		negative := dec("-1")
		p, err := svc.RecordPurchase(ctx, PurchaseRequest{
			Target:   PurchaseTarget{Kind: PurchaseByName, Name: "Nuevo", SalePrice: &negative},
			Quantity: dec("5"), UnitCost: dec("2.00"),
		}, cashier)
		require.NoError(t, err)
		created, err := svc.GetProduct(ctx, p.ProductID)
		require.NoError(t, err)
		assert.True(t, dec("3.00").Equal(created.Price), created.Price.String())
		assert.Equal(t, 5, created.Stock)
	})
}

func TestRecordPurchaseRejects(t *testing.T) {
	svc, db, _ := newInventory(t)
	agua := mustProduct(t, svc, "Agua", "1.50", 10)
	byID := PurchaseTarget{Kind: PurchaseByID, ProductID: agua.ID}

	tests := []struct {
		name string
		req  PurchaseRequest
		want error
	}{
		{"fractional quantity", PurchaseRequest{Target: byID, Quantity: dec("2.5"), UnitCost: dec("1")}, nil},
		{"zero quantity", PurchaseRequest{Target: byID, Quantity: dec("0"), UnitCost: dec("1")}, nil},
		{"negative cost", PurchaseRequest{Target: byID, Quantity: dec("1"), UnitCost: dec("-1")}, nil},
		{"no target", PurchaseRequest{Quantity: dec("1"), UnitCost: dec("1")}, nil},
		{"blank name", PurchaseRequest{Target: PurchaseTarget{Kind: PurchaseByName, Name: " "}, Quantity: dec("1"), UnitCost: dec("1")}, nil},
		{"unknown id", PurchaseRequest{Target: PurchaseTarget{Kind: PurchaseByID, ProductID: 9999}, Quantity: dec("1"), UnitCost: dec("1")}, ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPurchase(context.Background(), tt.req, cashier)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.True(t, IsValidation(err), err.Error())
			}
		})
	}

	assert.Equal(t, 10, stockOf(t, svc, agua.ID))
	assert.Zero(t, countRows(t, db, &model.Purchase{}))
}

func TestRecordPurchaseAcceptsZeroCost(t *testing.T) {
	svc, _, _ := newInventory(t)
	p, err := svc.RecordPurchase(context.Background(), PurchaseRequest{
		Target:   PurchaseTarget{Kind: PurchaseByName, Name: "Muestra"},
		Quantity: dec("4"),
		UnitCost: decimal.Zero,
	}, cashier)
	require.NoError(t, err)
	created, err := svc.GetProduct(context.Background(), p.ProductID)
	require.NoError(t, err)
	assert.True(t, created.Price.IsZero())
	assert.Equal(t, 4, created.Stock)
}

// The test database serializes connections, so this checks the stock
// invariant under concurrent callers; the FOR UPDATE lock itself is only
// exercised on PostgreSQL.
func TestRecordSaleConcurrentCallersNeverOversell(t *testing.T) {
	svc, db, _ := newInventory(t)
	agua := mustProduct(t, svc, "Agua", "1.50", 5)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sold    int
		refused int
		other   []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordSale(context.Background(), SaleRequest{
				Items: []SaleLine{{Kind: SaleItemCatalog, ProductID: agua.ID, Quantity: 1, UnitPrice: dec("1.50")}},
			}, cashier)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, ErrInsufficientStock):
				refused++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 5, sold)
	assert.Equal(t, callers-5, refused)
	assert.Equal(t, 0, stockOf(t, svc, agua.ID))
	assert.Equal(t, int64(5), countRows(t, db, &model.Sale{}))
}
