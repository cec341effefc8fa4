package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/retry"
)

// flakyRunner falla con StorageError las primeras `failures` veces y luego delega en el store.
type flakyRunner struct {
	inner    *memory.Store
	failures int
	calls    int
}

func (f *flakyRunner) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	f.calls++
	if f.calls <= f.failures {
		return &domain.StorageError{Op: "commit", Err: errors.New("could not serialize access")}
	}
	return f.inner.Run(ctx, fn)
}

func fastConfig(attempts int) retry.Config {
	return retry.Config{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestRunner_ReintentaFallasDeAlmacenamiento(t *testing.T) {
	inner := &flakyRunner{inner: memory.NewStore(), failures: 2}
	r := retry.NewRunner(inner, fastConfig(3), nil)

	executed := 0
	err := r.Run(context.Background(), func(uow repository.UnitOfWork) error {
		executed++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 1, executed, "solo el intento que llega al store ejecuta fn")
}

func TestRunner_AgotaIntentosYDevuelveStorageFailure(t *testing.T) {
	inner := &flakyRunner{inner: memory.NewStore(), failures: 10}
	r := retry.NewRunner(inner, fastConfig(3), nil)

	err := r.Run(context.Background(), func(uow repository.UnitOfWork) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, 3, inner.calls)
}

func TestRunner_NoReintentaErroresDeNegocio(t *testing.T) {
	inner := &flakyRunner{inner: memory.NewStore()}
	r := retry.NewRunner(inner, fastConfig(5), nil)

	rejection := &domain.InsufficientStockError{MedicineID: "m1", Requested: 2, Available: 1}
	err := r.Run(context.Background(), func(uow repository.UnitOfWork) error { return rejection })

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 1, inner.calls)
}

func TestRunner_ContextoCanceladoCorta(t *testing.T) {
	inner := &flakyRunner{inner: memory.NewStore(), failures: 100}
	r := retry.NewRunner(inner, retry.Config{MaxAttempts: 50, InitialInterval: 20 * time.Millisecond, MaxInterval: 20 * time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := r.Run(ctx, func(uow repository.UnitOfWork) error { return nil })
	require.Error(t, err)
	assert.Less(t, inner.calls, 50)
}
