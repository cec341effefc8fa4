package ledger_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo en memoria que registra el orden de bloqueo y las escrituras
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	stock     map[string]int64
	lockOrder []string
	writes    int
	lockErr   error
}

func (f *fakeCatalog) LockStock(_ context.Context, ids []string) (map[string]int64, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	f.lockOrder = append(f.lockOrder, ids...)
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		if q, ok := f.stock[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (f *fakeCatalog) AdjustStock(_ context.Context, id string, delta int64) (int64, bool, error) {
	next := f.stock[id] + delta
	if next < 0 {
		return f.stock[id], false, nil
	}
	f.writes++
	f.stock[id] = next
	return next, true, nil
}

func lines(pairs ...any) []entity.Line {
	out := make([]entity.Line, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, entity.Line{MedicineID: pairs[i].(string), Quantity: int64(pairs[i+1].(int))})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeDelta
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDelta_EdicionEntradaDe5a3RestaDos(t *testing.T) {
	d, err := ledger.ComputeDelta(ledger.Inbound, lines("A", 5), lines("A", 3))
	require.NoError(t, err)
	assert.Equal(t, ledger.Deltas{"A": -2}, d)
}

func TestComputeDelta_EdicionVentaDe5a8RestaTres(t *testing.T) {
	d, err := ledger.ComputeDelta(ledger.Outbound, lines("A", 5), lines("A", 8))
	require.NoError(t, err)
	assert.Equal(t, ledger.Deltas{"A": -3}, d)
}

func TestComputeDelta_AgrupaLineasRepetidasYOmiteCeros(t *testing.T) {
	prev := lines("A", 2, "A", 3, "B", 4)
	next := lines("A", 5, "C", 1)
	d, err := ledger.ComputeDelta(ledger.Inbound, prev, next)
	require.NoError(t, err)
	assert.Equal(t, ledger.Deltas{"B": -4, "C": 1}, d)
}

func TestFullDeltaYReversal_SonOpuestos(t *testing.T) {
	l := lines("A", 5, "B", 2)
	full, err := ledger.FullDelta(ledger.Outbound, l)
	require.NoError(t, err)
	rev, err := ledger.Reversal(ledger.Outbound, l)
	require.NoError(t, err)
	assert.Equal(t, ledger.Deltas{"A": -5, "B": -2}, full)
	assert.Equal(t, ledger.Deltas{"A": 5, "B": 2}, rev)
}

func TestComputeDelta_RechazaCantidadesFueraDeRango(t *testing.T) {
	huge := []entity.Line{{MedicineID: "A", Quantity: math.MaxInt64}, {MedicineID: "A", Quantity: math.MaxInt64}}

	_, err := ledger.FullDelta(ledger.Inbound, huge)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.FullDelta(ledger.Outbound, huge)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.ComputeDelta(ledger.Inbound, lines("A", 1), huge)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Reversal(ledger.Outbound, lines("A", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tope := []entity.Line{{MedicineID: "A", Quantity: ledger.MaxLineQuantity}, {MedicineID: "A", Quantity: ledger.MaxLineQuantity}}
	d, err := ledger.FullDelta(ledger.Outbound, tope)
	require.NoError(t, err)
	assert.Equal(t, ledger.Deltas{"A": -2 * ledger.MaxLineQuantity}, d)

	_, err = ledger.FullDelta(ledger.Inbound, []entity.Line{{MedicineID: "A", Quantity: ledger.MaxLineQuantity + 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateAndApply_RechazaDesbordeDeStock(t *testing.T) {
	cat := &fakeCatalog{stock: map[string]int64{"A": math.MaxInt64 - 1, "B": 0}}
	_, err := ledger.ValidateAndApply(context.Background(), cat, ledger.Deltas{"A": 2, "B": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, cat.writes)
}

func TestDirection_Reverse(t *testing.T) {
	assert.Equal(t, ledger.Outbound, ledger.Inbound.Reverse())
	assert.Equal(t, ledger.Inbound, ledger.Outbound.Reverse())
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateAndApply
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateAndApply_AplicaTodosLosDeltas(t *testing.T) {
	cat := &fakeCatalog{stock: map[string]int64{"A": 10, "B": 3}}
	adj, err := ledger.ValidateAndApply(context.Background(), cat, ledger.Deltas{"B": -3, "A": 4})
	require.NoError(t, err)
	require.Len(t, adj, 2)
	assert.Equal(t, ledger.Adjustment{MedicineID: "A", Delta: 4, StockAfter: 14}, adj[0])
	assert.Equal(t, ledger.Adjustment{MedicineID: "B", Delta: -3, StockAfter: 0}, adj[1])
	assert.Equal(t, []string{"A", "B"}, cat.lockOrder, "bloqueo en orden ascendente")
}

func TestValidateAndApply_TodoONadaSiUnoQuedaNegativo(t *testing.T) {
	cat := &fakeCatalog{stock: map[string]int64{"A": 10, "B": 1}}
	_, err := ledger.ValidateAndApply(context.Background(), cat, ledger.Deltas{"A": -5, "B": -2})

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "B", ise.MedicineID)
	assert.Equal(t, int64(2), ise.Requested)
	assert.Equal(t, int64(1), ise.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Zero(t, cat.writes, "ningún medicamento debe mutarse")
	assert.Equal(t, int64(10), cat.stock["A"])
	assert.Equal(t, int64(1), cat.stock["B"])
}

func TestValidateAndApply_MedicamentoInexistente(t *testing.T) {
	cat := &fakeCatalog{stock: map[string]int64{"A": 1}}
	_, err := ledger.ValidateAndApply(context.Background(), cat, ledger.Deltas{"A": 1, "Z": 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, cat.writes)
}

func TestValidateAndApply_SinDeltasNoBloquea(t *testing.T) {
	cat := &fakeCatalog{stock: map[string]int64{}}
	adj, err := ledger.ValidateAndApply(context.Background(), cat, ledger.Deltas{})
	require.NoError(t, err)
	assert.Empty(t, adj)
	assert.Empty(t, cat.lockOrder)
}

func TestValidateAndApply_PropagaErrorDelCatalogo(t *testing.T) {
	boom := errors.New("conexión perdida")
	cat := &fakeCatalog{lockErr: boom}
	_, err := ledger.ValidateAndApply(context.Background(), cat, ledger.Deltas{"A": -1})
	assert.ErrorIs(t, err, boom)
}
