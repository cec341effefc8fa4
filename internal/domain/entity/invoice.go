package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura. Una factura nunca se elimina: se anula (pista de auditoría).
const (
	InvoiceStatusIssued    = "emitida"
	InvoiceStatusCancelled = "anulada"
)

// Invoice factura fiscal de una venta (relación uno a uno con Sale).
type Invoice struct {
	ID           string
	SaleID       string
	CustomerID   string
	Prefix       string
	Number       int64
	NCF          string // Número de Comprobante Fiscal: prefijo + número con ceros
	Status       string
	Date         time.Time
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	GrandTotal   decimal.Decimal
	CancelReason string
	CancelledAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsCancelled indica si la factura ya fue anulada.
func (i *Invoice) IsCancelled() bool {
	return i.Status == InvoiceStatusCancelled
}
