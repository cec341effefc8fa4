package ncf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ncf"
)

func TestFormat_RellenaConCeros(t *testing.T) {
	got, err := ncf.Format("B01", 1, 8)
	require.NoError(t, err)
	assert.Equal(t, "B0100000001", got)

	got, err = ncf.Format("B02", 12345, 0)
	require.NoError(t, err)
	assert.Equal(t, "B0200012345", got, "ancho 0 usa el ancho por defecto")
}

func TestFormat_NumeroQueNoCabe(t *testing.T) {
	_, err := ncf.Format("B01", 1000, 3)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = ncf.Format("B01", 0, 8)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalizeYValidatePrefix(t *testing.T) {
	assert.Equal(t, "B01", ncf.NormalizePrefix(" b01 "))
	assert.NoError(t, ncf.ValidatePrefix("B01"))
	assert.ErrorIs(t, ncf.ValidatePrefix(""), domain.ErrInvalidInput)
	assert.ErrorIs(t, ncf.ValidatePrefix("B-01"), domain.ErrInvalidInput)
}

func TestEvaluate_SinRango(t *testing.T) {
	st := ncf.Evaluate(&entity.NCFSequence{Prefix: "B01", NextNumber: 1}, 1, 10)
	assert.False(t, st.HasRange)
	assert.True(t, st.InRange)
	assert.False(t, st.LowCapacity)
}

func TestEvaluate_CapacidadBaja(t *testing.T) {
	seq := &entity.NCFSequence{Prefix: "B01", RangeStart: 1, RangeEnd: 100}

	st := ncf.Evaluate(seq, 90, 10)
	assert.True(t, st.InRange)
	assert.Equal(t, int64(10), st.Remaining)
	assert.False(t, st.LowCapacity)

	st = ncf.Evaluate(seq, 91, 10)
	assert.Equal(t, int64(9), st.Remaining)
	assert.True(t, st.LowCapacity)
}

func TestEvaluate_FueraDeRangoNoBloquea(t *testing.T) {
	seq := &entity.NCFSequence{Prefix: "B01", RangeStart: 50, RangeEnd: 100}

	st := ncf.Evaluate(seq, 101, 10)
	assert.True(t, st.HasRange)
	assert.False(t, st.InRange)
	assert.True(t, st.LowCapacity)

	st = ncf.Evaluate(seq, 10, 10)
	assert.False(t, st.InRange)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, int64(-1), ncf.Remaining(&entity.NCFSequence{NextNumber: 5}))
	assert.Equal(t, int64(100), ncf.Remaining(&entity.NCFSequence{NextNumber: 1, RangeStart: 1, RangeEnd: 100}))
	assert.Equal(t, int64(6), ncf.Remaining(&entity.NCFSequence{NextNumber: 95, RangeStart: 1, RangeEnd: 100}))
	assert.Equal(t, int64(0), ncf.Remaining(&entity.NCFSequence{NextNumber: 101, RangeStart: 1, RangeEnd: 100}))
}
