package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
)

func seedMedicine(t *testing.T, s *memory.Store, id string, stock int64) {
	t.Helper()
	err := s.Run(context.Background(), func(uow repository.UnitOfWork) error {
		if err := uow.Medicines().Create(context.Background(), &entity.Medicine{
			ID: id, SKU: "SKU-" + id, Name: id, Price: decimal.NewFromInt(1),
		}); err != nil {
			return err
		}
		if stock == 0 {
			return nil
		}
		_, _, err := uow.Medicines().AdjustStock(context.Background(), id, stock)
		return err
	})
	require.NoError(t, err)
}

func TestRun_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedMedicine(t, s, "m1", 5)

	boom := errors.New("boom")
	err := s.Run(ctx, func(uow repository.UnitOfWork) error {
		if _, ok, err := uow.Medicines().AdjustStock(ctx, "m1", -5); err != nil || !ok {
			return errors.New("ajuste inesperado")
		}
		if _, err := uow.Sequences().GetForUpdate(ctx, "B01"); err != nil {
			return err
		}
		if err := uow.Sequences().Advance(ctx, "B01", 2); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.Run(ctx, func(uow repository.UnitOfWork) error {
		qty, err := uow.Medicines().GetStock(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), qty)
		seq, err := uow.Sequences().GetByPrefix(ctx, "B01")
		require.NoError(t, err)
		assert.Nil(t, seq)
		return nil
	})
	require.NoError(t, err)
}

func TestAdjustStock_NoQuedaNegativo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedMedicine(t, s, "m1", 2)

	err := s.Run(ctx, func(uow repository.UnitOfWork) error {
		after, ok, err := uow.Medicines().AdjustStock(ctx, "m1", -3)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(2), after)

		after, ok, err = uow.Medicines().AdjustStock(ctx, "m1", -2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(0), after)
		return nil
	})
	require.NoError(t, err)
}

func TestGetStock_Inexistente(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	err := s.Run(ctx, func(uow repository.UnitOfWork) error {
		_, err := uow.Medicines().GetStock(ctx, "nada")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		m, err := uow.Medicines().GetByID(ctx, "nada")
		assert.NoError(t, err)
		assert.Nil(t, m)
		return nil
	})
	require.NoError(t, err)
}

func TestRun_CopiasAisladas(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Now()
	sale := &entity.Sale{
		ID: "s1", Date: now, CreatedAt: now, UpdatedAt: now,
		Items: []entity.SaleItem{{ID: "i1", SaleID: "s1", MedicineID: "m1", Quantity: 2}},
	}
	require.NoError(t, s.Run(ctx, func(uow repository.UnitOfWork) error {
		return uow.Sales().Create(ctx, sale)
	}))

	// Modificar lo devuelto no altera lo almacenado.
	require.NoError(t, s.Run(ctx, func(uow repository.UnitOfWork) error {
		got, err := uow.Sales().GetByID(ctx, "s1")
		require.NoError(t, err)
		got.Items[0].Quantity = 99
		return nil
	}))
	sale.Items[0].Quantity = 77

	require.NoError(t, s.Run(ctx, func(uow repository.UnitOfWork) error {
		got, err := uow.Sales().GetByID(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, int64(2), got.Items[0].Quantity)
		return nil
	}))
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(uow repository.UnitOfWork) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, domain.IsRetryable(err))
	assert.NoError(t, s.Ping(context.Background()))
}
