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

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de ReceiptRepository: cabecera en receipts, líneas en receipt_items.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador.
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create inserta cabecera y líneas.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	query := `
		INSERT INTO receipts (id, supplier_id, date, notes, currency, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		rc.ID, rc.SupplierID, rc.Date, nullIfEmpty(rc.Notes), nullIfEmpty(rc.Currency), nullIfEmpty(rc.PaymentMethod),
		rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return r.insertItems(ctx, rc.Items)
}

func (r *ReceiptRepo) insertItems(ctx context.Context, items []entity.ReceiptItem) error {
	if len(items) == 0 {
		return nil
	}
	const query = `
		INSERT INTO receipt_items (id, receipt_id, medicine_id, quantity, unit_cost, position)
		VALUES ($1, $2, $3, $4, $5, $6)`
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(query, it.ID, it.ReceiptID, it.MedicineID, it.Quantity, it.UnitCost, i)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert receipt item: %w", err)
		}
	}
	return nil
}

func (r *ReceiptRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Receipt, error) {
	query := `
		SELECT id, supplier_id, date, notes, currency, payment_method, created_at, updated_at
		FROM receipts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var rc entity.Receipt
	var notes, currency, payment *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&rc.ID, &rc.SupplierID, &rc.Date, &notes, &currency, &payment, &rc.CreatedAt, &rc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	rc.Notes, rc.Currency, rc.PaymentMethod = derefStr(notes), derefStr(currency), derefStr(payment)

	rows, err := r.q.Query(ctx, `
		SELECT id, receipt_id, medicine_id, quantity, unit_cost
		FROM receipt_items WHERE receipt_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get receipt items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReceiptItem
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.MedicineID, &it.Quantity, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		rc.Items = append(rc.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get receipt items: %w", err)
	}
	return &rc, nil
}

// GetByID obtiene la entrada con sus líneas.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas vigentes.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.get(ctx, id, true)
}

// UpdateHeader actualiza los campos de la cabecera.
func (r *ReceiptRepo) UpdateHeader(ctx context.Context, rc *entity.Receipt) error {
	query := `
		UPDATE receipts
		SET supplier_id = $2, date = $3, notes = $4, currency = $5, payment_method = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		rc.ID, rc.SupplierID, rc.Date, nullIfEmpty(rc.Notes), nullIfEmpty(rc.Currency), nullIfEmpty(rc.PaymentMethod),
		rc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra todas las líneas e inserta las nuevas.
func (r *ReceiptRepo) ReplaceItems(ctx context.Context, receiptID string, items []entity.ReceiptItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM receipt_items WHERE receipt_id = $1`, receiptID); err != nil {
		return fmt.Errorf("delete receipt items: %w", err)
	}
	return r.insertItems(ctx, items)
}

// Delete elimina la cabecera; las líneas caen por ON DELETE CASCADE.
func (r *ReceiptRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
