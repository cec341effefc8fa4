package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// MedicineRepository define el puerto del catálogo de medicamentos (DIP).
// Dentro de una unidad de trabajo, LockStock y AdjustStock son el contrato que consume el ledger.
type MedicineRepository interface {
	Create(ctx context.Context, m *entity.Medicine) error
	GetByID(ctx context.Context, id string) (*entity.Medicine, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Medicine, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Medicine, error)

	// GetStock devuelve la existencia actual sin bloquear la fila.
	GetStock(ctx context.Context, id string) (int64, error)
	// LockStock bloquea las filas (SELECT ... FOR UPDATE, orden ascendente por id) hasta el commit
	// y devuelve el stock de cada id encontrado. Los ids ausentes no aparecen en el mapa.
	LockStock(ctx context.Context, ids []string) (map[string]int64, error)
	// AdjustStock aplica delta de forma condicional: ok=false si el resultado sería negativo.
	AdjustStock(ctx context.Context, id string, delta int64) (stockAfter int64, ok bool, err error)
}
