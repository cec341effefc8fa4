package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de una venta (documento de salida: resta stock).
// Una vez facturada queda congelada: no admite edición ni eliminación.
type Sale struct {
	ID            string
	CustomerID    string // vacío = consumidor final
	Date          time.Time
	Notes         string
	Currency      string
	PaymentMethod string
	Items         []SaleItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem línea de una venta.
type SaleItem struct {
	ID         string
	SaleID     string
	MedicineID string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TaxRate    decimal.Decimal
}

// Lines devuelve las líneas en la forma que consume el ledger.
func (s *Sale) Lines() []Line {
	lines := make([]Line, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, Line{MedicineID: it.MedicineID, Quantity: it.Quantity})
	}
	return lines
}
