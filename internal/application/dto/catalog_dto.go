package dto

import "github.com/shopspring/decimal"

// CreateMedicineRequest body para POST /api/medicines.
// OpeningStock registra la existencia inicial como movimiento OPENING del kardex.
type CreateMedicineRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price" validate:"min=0"`
	Cost         decimal.Decimal `json:"cost" validate:"min=0"`
	TaxRate      decimal.Decimal `json:"tax_rate" validate:"min=0"`
	OpeningStock int64           `json:"opening_stock" validate:"min=0,max=1000000000"`
}

// MedicineResponse medicamento con su existencia actual.
type MedicineResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Stock       int64           `json:"stock"`
}

// MedicineListResponse listado paginado.
type MedicineListResponse struct {
	Items []MedicineResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockMovementResponse entrada del kardex.
type StockMovementResponse struct {
	ID           string `json:"id"`
	MedicineID   string `json:"medicine_id"`
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`
	Kind         string `json:"kind"`
	Quantity     int64  `json:"quantity"`
	StockAfter   int64  `json:"stock_after"`
	CreatedAt    string `json:"created_at"`
}

// KardexResponse movimientos de un medicamento más su stock y el balance del kardex.
type KardexResponse struct {
	MedicineID string                  `json:"medicine_id"`
	Stock      int64                   `json:"stock"`
	Balance    int64                   `json:"balance"`
	Movements  []StockMovementResponse `json:"movements"`
	Page       PageResponse            `json:"page"`
}

// StockResponse existencia actual de un medicamento.
type StockResponse struct {
	MedicineID string `json:"medicine_id"`
	Stock      int64  `json:"stock"`
}

// CreateSupplierRequest body para POST /api/suppliers.
type CreateSupplierRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	TaxID string `json:"tax_id,omitempty" validate:"max=20"`
	Phone string `json:"phone,omitempty"`
}

// SupplierResponse proveedor en respuestas.
type SupplierResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	TaxID string `json:"tax_id" validate:"required,max=20"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
