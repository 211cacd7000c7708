package handler

import (
	"errors"
	"testing"

	"verokai-pos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func num(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSalePayloadToRequest(t *testing.T) {
	payload := salePayload{
		Items: []saleItemPayload{
			{ProductID: uintPtr(4), Quantity: num("3"), UnitPrice: num("1.50")},
			{Kind: "manual", Name: "Bolsa", Quantity: num("1"), UnitPrice: num("0.25")},
			{Kind: "Catalogo", ProductID: uintPtr(7), Quantity: num("2"), UnitPrice: num("2")},
		},
		PaymentMethod: "tarjeta",
	}

	req, err := payload.toRequest()
	require.NoError(t, err)
	require.Len(t, req.Items, 3)
	assert.Equal(t, service.SaleItemCatalog, req.Items[0].Kind)
	assert.Equal(t, uint(4), req.Items[0].ProductID)
	assert.Equal(t, 3, req.Items[0].Quantity)
	assert.Equal(t, service.SaleItemManual, req.Items[1].Kind)
	assert.Equal(t, "Bolsa", req.Items[1].Name)
	assert.Equal(t, service.SaleItemCatalog, req.Items[2].Kind)
	assert.Equal(t, "tarjeta", req.PaymentMethod)
}

func TestSalePayloadReportsFirstInvalidItem(t *testing.T) {
	tests := []struct {
		name  string
		items []saleItemPayload
		index int
	}{
		{
			name: "negative price before zero quantity",
			items: []saleItemPayload{
				{ProductID: uintPtr(1), Quantity: num("1"), UnitPrice: num("-1")},
				{ProductID: uintPtr(1), Quantity: num("0"), UnitPrice: num("1")},
			},
			index: 1,
		},
		{
			name: "missing product before fractional quantity",
			items: []saleItemPayload{
				{Kind: "catalogo", Quantity: num("1"), UnitPrice: num("1")},
				{ProductID: uintPtr(1), Quantity: num("1.5"), UnitPrice: num("1")},
			},
			index: 1,
		},
		{
			name: "fractional quantity on second item",
			items: []saleItemPayload{
				{ProductID: uintPtr(1), Quantity: num("1"), UnitPrice: num("1")},
				{ProductID: uintPtr(1), Quantity: num("1.5"), UnitPrice: num("1")},
			},
			index: 2,
		},
		{
			name: "unknown kind",
			items: []saleItemPayload{
				{Kind: "regalo", Quantity: num("1"), UnitPrice: num("1")},
			},
			index: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := salePayload{Items: tt.items}.toRequest()
			require.Error(t, err)

			var itemErr *service.ItemError
			require.True(t, errors.As(err, &itemErr), err.Error())
			assert.Equal(t, tt.index, itemErr.Index)
			assert.True(t, service.IsValidation(err))
		})
	}
}
