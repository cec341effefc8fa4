package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// normalizeRate acepta la tasa como fracción (0.18) o como porcentaje (18).
func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// lineSubtotal cantidad × precio unitario.
func lineSubtotal(it entity.SaleItem) decimal.Decimal {
	return decimal.NewFromInt(it.Quantity).Mul(it.UnitPrice)
}

// computeTotals subtotal, impuesto y total de la venta, redondeados a 2 decimales.
func computeTotals(items []entity.SaleItem) (subtotal, tax, total decimal.Decimal) {
	for _, it := range items {
		st := lineSubtotal(it)
		subtotal = subtotal.Add(st)
		tax = tax.Add(st.Mul(normalizeRate(it.TaxRate)))
	}
	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	return subtotal, tax, subtotal.Add(tax)
}
