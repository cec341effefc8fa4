package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt cabecera de una entrada de mercancía (documento de entrada: suma stock).
type Receipt struct {
	ID            string
	SupplierID    string
	Date          time.Time
	Notes         string
	Currency      string // metadato, sin conversión
	PaymentMethod string
	Items         []ReceiptItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReceiptItem línea de una entrada. Solo existe como parte de su Receipt.
type ReceiptItem struct {
	ID         string
	ReceiptID  string
	MedicineID string
	Quantity   int64
	UnitCost   decimal.Decimal
}

// Lines devuelve las líneas en la forma que consume el ledger.
func (r *Receipt) Lines() []Line {
	lines := make([]Line, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, Line{MedicineID: it.MedicineID, Quantity: it.Quantity})
	}
	return lines
}
