package entity

import "time"

// Tipos de documento que originan movimientos de stock.
const (
	DocumentTypeReceipt = "RECEIPT"
	DocumentTypeSale    = "SALE"
	DocumentTypeOpening = "OPENING" // existencia inicial al registrar el medicamento
)

// Clases de movimiento: aplicación inicial, reconciliación por edición o reverso por eliminación.
const (
	MovementKindApply    = "APPLY"
	MovementKindEdit     = "EDIT"
	MovementKindReversal = "REVERSAL"
)

// StockMovement registro del kardex: un delta firmado aplicado a un medicamento.
// La suma de Quantity por medicamento coincide con su Stock.
type StockMovement struct {
	ID           string
	MedicineID   string
	DocumentType string
	DocumentID   string
	Kind         string
	Quantity     int64 // positivo entrada, negativo salida
	StockAfter   int64
	CreatedAt    time.Time
}
