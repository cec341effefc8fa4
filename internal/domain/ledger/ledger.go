// Package ledger contiene la lógica del libro de stock: calcula deltas por medicamento
// y los valida y aplica contra el catálogo sin dejar ninguna existencia negativa.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// MaxLineQuantity tope de unidades por línea de documento.
const MaxLineQuantity int64 = 1_000_000_000

// Direction sentido del documento: las entradas suman stock, las salidas restan.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Sign devuelve +1 para entradas y -1 para salidas.
func (d Direction) Sign() int64 {
	if d == Outbound {
		return -1
	}
	return 1
}

// Reverse devuelve el sentido opuesto (el de un reverso por eliminación).
func (d Direction) Reverse() Direction {
	if d == Outbound {
		return Inbound
	}
	return Outbound
}

// Deltas cambio firmado de stock por medicamento. Nunca contiene entradas en cero.
type Deltas map[string]int64

// IDs devuelve los medicamentos afectados en orden ascendente (orden de bloqueo).
func (d Deltas) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Totals suma la cantidad por medicamento; un documento puede repetir el mismo medicamento en varias líneas.
// Rechaza con ErrInvalidInput cantidades fuera de (0, MaxLineQuantity] y sumas que desbordan int64.
func Totals(lines []entity.Line) (map[string]int64, error) {
	out := make(map[string]int64, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 || l.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("cantidad %d para %s: %w", l.Quantity, l.MedicineID, domain.ErrInvalidInput)
		}
		if out[l.MedicineID] > math.MaxInt64-l.Quantity {
			return nil, fmt.Errorf("la suma de cantidades de %s desborda: %w", l.MedicineID, domain.ErrInvalidInput)
		}
		out[l.MedicineID] += l.Quantity
	}
	return out, nil
}

// FullDelta efecto completo de un documento nuevo (no hay estado previo).
func FullDelta(dir Direction, lines []entity.Line) (Deltas, error) {
	return ComputeDelta(dir, nil, lines)
}

// Reversal efecto que deshace por completo un documento al eliminarlo.
func Reversal(dir Direction, lines []entity.Line) (Deltas, error) {
	return ComputeDelta(dir, lines, nil)
}

// ComputeDelta calcula, por medicamento, (total nuevo - total previo) con el signo del sentido.
// Editar una entrada de 5 a 3 da -2; editar una venta de 5 a 8 da -3.
func ComputeDelta(dir Direction, previous, next []entity.Line) (Deltas, error) {
	prev, err := Totals(previous)
	if err != nil {
		return nil, err
	}
	nxt, err := Totals(next)
	if err != nil {
		return nil, err
	}
	// Ambos totales son >= 0: la resta no desborda.
	out := make(Deltas, len(prev)+len(nxt))
	for id, q := range nxt {
		out[id] += q
	}
	for id, q := range prev {
		out[id] -= q
	}
	sign := dir.Sign()
	for id, q := range out {
		if q == 0 {
			delete(out, id)
			continue
		}
		out[id] = q * sign
	}
	return out, nil
}

// Catalog es el contrato que el ledger necesita del catálogo, atado a la unidad de trabajo en curso.
type Catalog interface {
	LockStock(ctx context.Context, ids []string) (map[string]int64, error)
	AdjustStock(ctx context.Context, id string, delta int64) (stockAfter int64, ok bool, err error)
}

// Adjustment resultado de aplicar un delta a un medicamento.
type Adjustment struct {
	MedicineID string
	Delta      int64
	StockAfter int64
}

// ValidateAndApply bloquea los medicamentos afectados en orden ascendente, verifica que ningún
// delta negativo deje stock < 0 y solo entonces aplica todos. Si alguno falla no se aplica ninguno.
// Los deltas negativos se verifican en cualquier sentido (una edición de entrada también puede restar).
func ValidateAndApply(ctx context.Context, cat Catalog, deltas Deltas) ([]Adjustment, error) {
	if len(deltas) == 0 {
		return nil, nil
	}
	ids := deltas.IDs()
	current, err := cat.LockStock(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		stock, found := current[id]
		if !found {
			return nil, fmt.Errorf("medicamento %s: %w", id, domain.ErrNotFound)
		}
		d := deltas[id]
		if d < 0 && stock+d < 0 {
			return nil, &domain.InsufficientStockError{MedicineID: id, Requested: -d, Available: stock}
		}
		if d > 0 && stock > math.MaxInt64-d {
			return nil, fmt.Errorf("stock de %s desborda con %d: %w", id, d, domain.ErrInvalidInput)
		}
	}

	applied := make([]Adjustment, 0, len(ids))
	for _, id := range ids {
		d := deltas[id]
		after, ok, err := cat.AdjustStock(ctx, id, d)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Con las filas bloqueadas no debería ocurrir; la unidad de trabajo se descarta igual.
			return nil, &domain.InsufficientStockError{MedicineID: id, Requested: -d, Available: current[id]}
		}
		applied = append(applied, Adjustment{MedicineID: id, Delta: d, StockAfter: after})
	}
	return applied, nil
}
