package service

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("Producto no encontrado")
	ErrInsufficientStock = errors.New("Stock insuficiente")
	ErrDuplicateBarcode  = errors.New("El código de barras ya existe")
	ErrProductInUse      = errors.New("El producto tiene ventas o compras registradas")
	ErrSaleNotFound      = errors.New("Venta no encontrada")
	ErrPurchaseNotFound  = errors.New("Compra no encontrada")
)

// ValidationError is a rejected request; Message is safe to show the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StockError reports how much stock was available when a sale asked for more.
type StockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *StockError) Error() string { return ErrInsufficientStock.Error() }

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// ItemError ties a failure to the 1-based position of a sale item.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError anywhere in its chain.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
