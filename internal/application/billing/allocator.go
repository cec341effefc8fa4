package billing

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/ncf"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// Allocation número emitido para un prefijo junto con el reporte de rango.
type Allocation struct {
	Prefix string
	Number int64
	NCF    string
	Range  ncf.RangeStatus
}

// SequenceAllocator emite el próximo NCF de un prefijo dentro de la unidad de trabajo de la factura.
// El contador se bloquea (FOR UPDATE) y se avanza en la misma transacción: si la factura no se
// confirma, el contador tampoco avanza.
type SequenceAllocator struct {
	width     int
	threshold int64
	log       *logger.Logger
}

// NewSequenceAllocator construye el asignador. width<=0 y threshold<=0 toman los valores por defecto.
func NewSequenceAllocator(width int, threshold int64, log *logger.Logger) *SequenceAllocator {
	if width <= 0 {
		width = ncf.DefaultWidth
	}
	if threshold <= 0 {
		threshold = ncf.DefaultLowThreshold
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SequenceAllocator{width: width, threshold: threshold, log: log}
}

// Width dígitos de la parte numérica.
func (a *SequenceAllocator) Width() int { return a.width }

// Allocate lee y bloquea el contador del prefijo, formatea el número y deja el contador avanzado
// en la unidad de trabajo. El rango se reporta pero no bloquea.
func (a *SequenceAllocator) Allocate(ctx context.Context, uow repository.UnitOfWork, prefix string) (*Allocation, error) {
	seq, err := uow.Sequences().GetForUpdate(ctx, prefix)
	if err != nil {
		return nil, err
	}
	number := seq.NextNumber
	formatted, err := ncf.Format(prefix, number, a.width)
	if err != nil {
		return nil, err
	}
	if err := uow.Sequences().Advance(ctx, prefix, number+1); err != nil {
		return nil, err
	}
	return &Allocation{
		Prefix: prefix,
		Number: number,
		NCF:    formatted,
		Range:  ncf.Evaluate(seq, number, a.threshold),
	}, nil
}

// Report registra las advertencias de rango de un número ya confirmado.
func (a *SequenceAllocator) Report(alloc *Allocation) {
	if !alloc.Range.HasRange {
		return
	}
	switch {
	case !alloc.Range.InRange:
		a.log.Error().Str("prefix", alloc.Prefix).Str("ncf", alloc.NCF).Msg("NCF emitido fuera del rango autorizado")
	case alloc.Range.LowCapacity:
		a.log.Warn().Str("prefix", alloc.Prefix).Int64("remaining", alloc.Range.Remaining).Msg("quedan pocos NCF en el rango autorizado")
	}
}
