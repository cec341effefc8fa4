package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo kardex en stock_movements (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, medicine_id, document_type, document_id, kind, quantity, stock_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MedicineID, m.DocumentType, m.DocumentID, m.Kind, m.Quantity, m.StockAfter, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByMedicine movimientos del medicamento, más recientes primero.
func (r *StockMovementRepo) ListByMedicine(ctx context.Context, medicineID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, medicine_id, document_type, document_id, kind, quantity, stock_after, created_at
		FROM stock_movements WHERE medicine_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, medicineID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.MedicineID, &m.DocumentType, &m.DocumentID, &m.Kind,
			&m.Quantity, &m.StockAfter, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Balance suma firmada de los movimientos del medicamento.
func (r *StockMovementRepo) Balance(ctx context.Context, medicineID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::bigint FROM stock_movements WHERE medicine_id = $1`,
		medicineID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("stock movement balance: %w", err)
	}
	return sum, nil
}
