package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del kardex (solo inserción y consulta).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByMedicine(ctx context.Context, medicineID string, limit, offset int) ([]*entity.StockMovement, error)
	// Balance suma las cantidades firmadas del medicamento; debe coincidir con su stock.
	Balance(ctx context.Context, medicineID string) (int64, error)
}
