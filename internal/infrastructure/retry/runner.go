// Package retry reintenta unidades de trabajo que fallaron por causas transitorias de almacenamiento.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

var _ ports.TxRunner = (*Runner)(nil)

// Config backoff exponencial con tope de intentos (incluye el primero).
type Config struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Runner decora un TxRunner: solo los errores domain.ErrStorageFailure se reintentan.
// Los rechazos de negocio (stock insuficiente, documento congelado...) se devuelven al primer intento.
type Runner struct {
	inner ports.TxRunner
	cfg   Config
	log   *logger.Logger
}

// NewRunner construye el decorador.
func NewRunner(inner ports.TxRunner, cfg Config, log *logger.Logger) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 50 * time.Millisecond
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = cfg.InitialInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{inner: inner, cfg: cfg, log: log}
}

// Run ejecuta la unidad de trabajo completa en cada intento.
func (r *Runner) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := r.inner.Run(ctx, fn)
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("falla de almacenamiento, reintentando")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(r.newBackOff(), ctx), notify)
	if err != nil && domain.IsRetryable(err) {
		r.log.Error().Err(err).Int("attempts", attempt).Msg("unidad de trabajo abortada tras reintentos")
	}
	return err
}

func (r *Runner) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(r.cfg.MaxAttempts-1))
}

// Ping delega en el runner interno si sabe responder.
func (r *Runner) Ping(ctx context.Context) error {
	if p, ok := r.inner.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
