package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medicine representa un medicamento del catálogo con su existencia actual.
// Stock solo lo modifica el libro de stock (ledger) y nunca queda negativo tras un commit.
type Medicine struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta sugerido (opaco para el ledger)
	Cost        decimal.Decimal // último costo de compra (opaco para el ledger)
	TaxRate     decimal.Decimal // ITBIS: 0, 0.18 ...
	Stock       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
