package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ncf"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// SequenceUseCase administra los contadores NCF (rango autorizado y número inicial).
type SequenceUseCase struct {
	txRunner  ports.TxRunner
	allocator *SequenceAllocator
	log       *logger.Logger
}

// NewSequenceUseCase construye el caso de uso.
func NewSequenceUseCase(txRunner ports.TxRunner, allocator *SequenceAllocator, log *logger.Logger) *SequenceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SequenceUseCase{txRunner: txRunner, allocator: allocator, log: log}
}

// ConfigureSequence fija el rango del prefijo. El contador solo puede avanzar: un NextNumber menor
// al actual se rechaza con ErrConflict para no reutilizar números ya emitidos.
func (uc *SequenceUseCase) ConfigureSequence(ctx context.Context, prefix string, in dto.ConfigureSequenceRequest) (*dto.SequenceResponse, error) {
	prefix = ncf.NormalizePrefix(prefix)
	if err := ncf.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	if in.RangeStart < 0 || in.RangeEnd < 0 || in.NextNumber < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.RangeEnd > 0 && (in.RangeStart < 1 || in.RangeEnd < in.RangeStart) {
		return nil, domain.ErrInvalidInput
	}

	var saved *entity.NCFSequence
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		seq, err := uow.Sequences().GetForUpdate(ctx, prefix)
		if err != nil {
			return err
		}
		next := seq.NextNumber
		if in.NextNumber > 0 {
			if in.NextNumber < seq.NextNumber {
				return fmt.Errorf("next_number %d menor al actual %d: %w", in.NextNumber, seq.NextNumber, domain.ErrConflict)
			}
			next = in.NextNumber
		}
		if in.RangeStart > next {
			next = in.RangeStart
		}
		seq.NextNumber = next
		seq.RangeStart = in.RangeStart
		seq.RangeEnd = in.RangeEnd
		seq.UpdatedAt = time.Now()
		if err := uow.Sequences().Upsert(ctx, seq); err != nil {
			return err
		}
		saved = seq
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("prefix", prefix).Int64("next_number", saved.NextNumber).
		Int64("range_start", saved.RangeStart).Int64("range_end", saved.RangeEnd).Msg("secuencia NCF configurada")
	return uc.toResponse(saved), nil
}

// ListSequences lista los contadores con su capacidad restante.
func (uc *SequenceUseCase) ListSequences(ctx context.Context) ([]dto.SequenceResponse, error) {
	var list []*entity.NCFSequence
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		var err error
		list, err = uow.Sequences().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.SequenceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *uc.toResponse(s))
	}
	return out, nil
}

func (uc *SequenceUseCase) toResponse(s *entity.NCFSequence) *dto.SequenceResponse {
	next, err := ncf.Format(s.Prefix, s.NextNumber, uc.allocator.Width())
	if err != nil {
		next = ""
	}
	return &dto.SequenceResponse{
		Prefix:     s.Prefix,
		NextNumber: s.NextNumber,
		NextNCF:    next,
		RangeStart: s.RangeStart,
		RangeEnd:   s.RangeEnd,
		Remaining:  ncf.Remaining(s),
	}
}
