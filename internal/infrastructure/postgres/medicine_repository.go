package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

// MedicineRepo implementación de MedicineRepository (usable con pool o tx).
type MedicineRepo struct {
	q Querier
}

// NewMedicineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMedicineRepository(q Querier) *MedicineRepo {
	return &MedicineRepo{q: q}
}

const medicineColumns = `id, sku, name, description, price, cost, tax_rate, stock, created_at, updated_at`

func scanMedicine(row pgxScanner) (*entity.Medicine, error) {
	var m entity.Medicine
	var description *string
	if err := row.Scan(
		&m.ID, &m.SKU, &m.Name, &description, &m.Price, &m.Cost, &m.TaxRate, &m.Stock,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Description = derefStr(description)
	return &m, nil
}

// Create persiste un medicamento nuevo.
func (r *MedicineRepo) Create(ctx context.Context, m *entity.Medicine) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.SKU, m.Name, nullIfEmpty(m.Description), m.Price, m.Cost, m.TaxRate, m.Stock,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

// GetByID obtiene un medicamento por ID.
func (r *MedicineRepo) GetByID(ctx context.Context, id string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`
	m, err := scanMedicine(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

// GetBySKU obtiene un medicamento por código.
func (r *MedicineRepo) GetBySKU(ctx context.Context, sku string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE sku = $1`
	m, err := scanMedicine(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine by sku: %w", err)
	}
	return m, nil
}

// List lista medicamentos por nombre con paginación.
func (r *MedicineRepo) List(ctx context.Context, limit, offset int) ([]*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Medicine, 0, limit)
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetStock devuelve la existencia sin bloquear.
func (r *MedicineRepo) GetStock(ctx context.Context, id string) (int64, error) {
	var stock int64
	err := r.q.QueryRow(ctx, `SELECT stock FROM medicines WHERE id = $1`, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("medicamento %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("get stock: %w", err)
	}
	return stock, nil
}

// LockStock bloquea las filas de los medicamentos (SELECT FOR UPDATE) en orden ascendente de id.
// Dos unidades de trabajo que tocan los mismos medicamentos los bloquean en el mismo orden.
func (r *MedicineRepo) LockStock(ctx context.Context, ids []string) (map[string]int64, error) {
	query := `SELECT id, stock FROM medicines WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock medicines: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64, len(ids))
	for rows.Next() {
		var id string
		var stock int64
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, fmt.Errorf("scan locked stock: %w", err)
		}
		out[id] = stock
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock medicines: %w", err)
	}
	return out, nil
}

// AdjustStock incremento/decremento condicional en una sola sentencia: si el resultado
// fuera negativo no se actualiza ninguna fila y se devuelve ok=false.
func (r *MedicineRepo) AdjustStock(ctx context.Context, id string, delta int64) (int64, bool, error) {
	query := `
		UPDATE medicines SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock`
	var after int64
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		if isCheckViolation(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("adjust stock: %w", err)
	}
	return after, true, nil
}
