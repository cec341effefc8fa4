package ports

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una unidad de trabajo, pasando repositorios atados a ella.
// Si fn devuelve error todo se descarta (Rollback); si no, se confirma (Commit).
// fn puede ejecutarse más de una vez (reintentos ante fallas de almacenamiento): no debe
// tener efectos fuera de la unidad de trabajo.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error
}

// Pinger verifica que el almacenamiento responda (health check).
type Pinger interface {
	Ping(ctx context.Context) error
}
