package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest body para POST /api/sales/:id/invoice.
type CreateInvoiceRequest struct {
	Prefix string `json:"prefix" validate:"required,max=10"`
}

// CancelInvoiceRequest body para POST /api/invoices/:id/cancel.
type CancelInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// InvoiceResponse factura emitida o anulada.
// RangeWarning acompaña la emisión cuando el número cae fuera del rango o queda poca capacidad.
type InvoiceResponse struct {
	ID           string          `json:"id"`
	SaleID       string          `json:"sale_id"`
	CustomerID   string          `json:"customer_id,omitempty"`
	Prefix       string          `json:"prefix"`
	Number       int64           `json:"number"`
	NCF          string          `json:"ncf"`
	Status       string          `json:"status"`
	Date         string          `json:"date"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxTotal     decimal.Decimal `json:"tax_total"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	CancelledAt  string          `json:"cancelled_at,omitempty"`
	Range        *RangeReport    `json:"range,omitempty"`
}

// RangeReport reporte no bloqueante del número frente al rango autorizado del prefijo.
type RangeReport struct {
	InRange     bool  `json:"in_range"`
	Remaining   int64 `json:"remaining"`
	LowCapacity bool  `json:"low_capacity"`
}

// ConfigureSequenceRequest body para PUT /api/ncf-sequences/:prefix.
// NextNumber opcional (0 = conservar); solo puede avanzar el contador, nunca retrocederlo.
type ConfigureSequenceRequest struct {
	RangeStart int64 `json:"range_start" validate:"min=0"`
	RangeEnd   int64 `json:"range_end" validate:"min=0,gtefield=RangeStart"`
	NextNumber int64 `json:"next_number,omitempty" validate:"min=0"`
}

// SequenceResponse contador de un prefijo. Remaining -1 = sin rango configurado.
type SequenceResponse struct {
	Prefix     string `json:"prefix"`
	NextNumber int64  `json:"next_number"`
	NextNCF    string `json:"next_ncf"`
	RangeStart int64  `json:"range_start,omitempty"`
	RangeEnd   int64  `json:"range_end,omitempty"`
	Remaining  int64  `json:"remaining"`
}
