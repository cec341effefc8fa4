package dto

import "github.com/shopspring/decimal"

// ReceiptItemRequest línea de una entrada.
type ReceiptItemRequest struct {
	MedicineID string          `json:"medicine_id" validate:"required"`
	Quantity   int64           `json:"quantity" validate:"gt=0,lte=1000000000"`
	UnitCost   decimal.Decimal `json:"unit_cost" validate:"min=0"`
}

// ReceiptRequest body para POST /api/receipts y PUT /api/receipts/:id.
// Date en formato YYYY-MM-DD; vacío = hoy.
type ReceiptRequest struct {
	SupplierID    string               `json:"supplier_id" validate:"required"`
	Date          string               `json:"date,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Currency      string               `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	Items         []ReceiptItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReceiptItemResponse línea en la respuesta.
type ReceiptItemResponse struct {
	ID         string          `json:"id"`
	MedicineID string          `json:"medicine_id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// ReceiptResponse entrada con sus líneas.
type ReceiptResponse struct {
	ID            string                `json:"id"`
	SupplierID    string                `json:"supplier_id"`
	Date          string                `json:"date"`
	Notes         string                `json:"notes,omitempty"`
	Currency      string                `json:"currency,omitempty"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Items         []ReceiptItemResponse `json:"items"`
}

// SaleItemRequest línea de una venta.
type SaleItemRequest struct {
	MedicineID string          `json:"medicine_id" validate:"required"`
	Quantity   int64           `json:"quantity" validate:"gt=0,lte=1000000000"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"min=0"`
	TaxRate    decimal.Decimal `json:"tax_rate" validate:"min=0"`
}

// SaleRequest body para POST /api/sales y PUT /api/sales/:id.
// CustomerID vacío = consumidor final.
type SaleRequest struct {
	CustomerID    string            `json:"customer_id,omitempty"`
	Date          string            `json:"date,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Currency      string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemResponse línea en la respuesta.
type SaleItemResponse struct {
	ID         string          `json:"id"`
	MedicineID string          `json:"medicine_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
}

// SaleResponse venta con sus líneas. Invoiced indica que está congelada.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    string             `json:"customer_id,omitempty"`
	Date          string             `json:"date"`
	Notes         string             `json:"notes,omitempty"`
	Currency      string             `json:"currency,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Invoiced      bool               `json:"invoiced"`
	InvoiceID     string             `json:"invoice_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
}
