package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// NCFSequenceRepository define el puerto de los contadores de comprobantes fiscales.
type NCFSequenceRepository interface {
	// GetForUpdate bloquea el contador del prefijo hasta el commit.
	// Si el prefijo no existe lo crea con NextNumber=1 y sin rango.
	GetForUpdate(ctx context.Context, prefix string) (*entity.NCFSequence, error)
	GetByPrefix(ctx context.Context, prefix string) (*entity.NCFSequence, error)
	// Advance fija el próximo número a emitir.
	Advance(ctx context.Context, prefix string, nextNumber int64) error
	// Upsert configura rango y número inicial del prefijo.
	Upsert(ctx context.Context, seq *entity.NCFSequence) error
	List(ctx context.Context) ([]*entity.NCFSequence, error)
}
