package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrFrozenDocument    = errors.New("documento congelado: la venta ya tiene factura")
	ErrAlreadyInvoiced   = errors.New("la venta ya fue facturada")
	ErrSaleNotFound      = errors.New("venta no encontrada")
	ErrInvoiceNotFound   = errors.New("factura no encontrada")
	ErrAlreadyCancelled  = errors.New("la factura ya está anulada")
	ErrStorageFailure    = errors.New("falla de almacenamiento")
)

// InsufficientStockError detalla el medicamento que quedaría con stock negativo.
// Requested es la cantidad que se intentó descontar; Available el stock bloqueado al momento del chequeo.
type InsufficientStockError struct {
	MedicineID string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d",
		e.MedicineID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// FrozenDocumentError se devuelve al editar o eliminar una venta que ya tiene factura.
type FrozenDocumentError struct {
	SaleID    string
	InvoiceID string
}

func (e *FrozenDocumentError) Error() string {
	return fmt.Sprintf("la venta %s está congelada por la factura %s", e.SaleID, e.InvoiceID)
}

func (e *FrozenDocumentError) Unwrap() error { return ErrFrozenDocument }

// AlreadyInvoicedError se devuelve al intentar facturar dos veces la misma venta.
type AlreadyInvoicedError struct {
	SaleID    string
	InvoiceID string
}

func (e *AlreadyInvoicedError) Error() string {
	return fmt.Sprintf("la venta %s ya tiene la factura %s", e.SaleID, e.InvoiceID)
}

func (e *AlreadyInvoicedError) Unwrap() error { return ErrAlreadyInvoiced }

// SaleNotFoundError venta inexistente al facturar.
type SaleNotFoundError struct {
	SaleID string
}

func (e *SaleNotFoundError) Error() string {
	return fmt.Sprintf("venta %s no encontrada", e.SaleID)
}

func (e *SaleNotFoundError) Unwrap() error { return ErrSaleNotFound }

// AlreadyCancelledError factura que ya estaba en estado anulada.
type AlreadyCancelledError struct {
	InvoiceID string
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("la factura %s ya está anulada", e.InvoiceID)
}

func (e *AlreadyCancelledError) Unwrap() error { return ErrAlreadyCancelled }

// StorageError envuelve una falla transitoria de la unidad de trabajo
// (conexión, deadlock, conflicto de serialización, commit fallido).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorageFailure, e.Err)
}

// Unwrap expone tanto el sentinel como la causa original para errors.Is/As.
func (e *StorageError) Unwrap() []error { return []error{ErrStorageFailure, e.Err} }

// IsRetryable indica si la operación completa puede reintentarse.
// Solo las fallas de almacenamiento califican: nunca dejan estado parcial.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// IsClientError indica si el error se debe a la entrada o al estado del documento.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrFrozenDocument) ||
		errors.Is(err, ErrAlreadyInvoiced) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrDuplicate)
}

// IsNotFound indica recursos inexistentes.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrInvoiceNotFound)
}
