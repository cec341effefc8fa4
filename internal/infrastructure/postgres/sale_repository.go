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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository: cabecera en sales, líneas en sale_items.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y líneas.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, date, notes, currency, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, nullIfEmpty(s.CustomerID), s.Date, nullIfEmpty(s.Notes), nullIfEmpty(s.Currency), nullIfEmpty(s.PaymentMethod),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return r.insertItems(ctx, s.Items)
}

func (r *SaleRepo) insertItems(ctx context.Context, items []entity.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	const query = `
		INSERT INTO sale_items (id, sale_id, medicine_id, quantity, unit_price, tax_rate, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(query, it.ID, it.SaleID, it.MedicineID, it.Quantity, it.UnitPrice, it.TaxRate, i)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Sale, error) {
	query := `
		SELECT id, customer_id, date, notes, currency, payment_method, created_at, updated_at
		FROM sales WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.Sale
	var customerID, notes, currency, payment *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &customerID, &s.Date, &notes, &currency, &payment, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.CustomerID = derefStr(customerID)
	s.Notes, s.Currency, s.PaymentMethod = derefStr(notes), derefStr(currency), derefStr(payment)

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, medicine_id, quantity, unit_price, tax_rate
		FROM sale_items WHERE sale_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.MedicineID, &it.Quantity, &it.UnitPrice, &it.TaxRate); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	return &s, nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera: edición, eliminación y facturación de la misma venta se serializan.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, true)
}

// UpdateHeader actualiza los campos de la cabecera.
func (r *SaleRepo) UpdateHeader(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales
		SET customer_id = $2, date = $3, notes = $4, currency = $5, payment_method = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, nullIfEmpty(s.CustomerID), s.Date, nullIfEmpty(s.Notes), nullIfEmpty(s.Currency), nullIfEmpty(s.PaymentMethod),
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra todas las líneas e inserta las nuevas.
func (r *SaleRepo) ReplaceItems(ctx context.Context, saleID string, items []entity.SaleItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return r.insertItems(ctx, items)
}

// Delete elimina la cabecera; las líneas caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
