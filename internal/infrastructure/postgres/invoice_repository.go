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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, sale_id, customer_id, prefix, number, ncf, status, date,
	subtotal, tax_total, grand_total, cancel_reason, cancelled_at, created_at, updated_at`

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var customerID, reason *string
	if err := row.Scan(
		&inv.ID, &inv.SaleID, &customerID, &inv.Prefix, &inv.Number, &inv.NCF, &inv.Status, &inv.Date,
		&inv.Subtotal, &inv.TaxTotal, &inv.GrandTotal, &reason, &inv.CancelledAt, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	inv.CustomerID, inv.CancelReason = derefStr(customerID), derefStr(reason)
	return &inv, nil
}

// Create persiste la factura. sale_id y ncf son UNIQUE: una segunda factura para la misma venta
// o un NCF repetido se rechazan en la base aunque el chequeo previo se haya saltado.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.SaleID, nullIfEmpty(inv.CustomerID), inv.Prefix, inv.Number, inv.NCF, inv.Status, inv.Date,
		inv.Subtotal, inv.TaxTotal, inv.GrandTotal, nullIfEmpty(inv.CancelReason), inv.CancelledAt,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice %s: %w", inv.NCF, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) getOne(ctx context.Context, where string, arg any, suffix string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where + ` = $1` + suffix
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, "id", id, "")
}

// GetBySaleID obtiene la factura de una venta (a lo sumo una).
func (r *InvoiceRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error) {
	return r.getOne(ctx, "sale_id", saleID, "")
}

// GetForUpdate bloquea la factura para anularla.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, "id", id, " FOR UPDATE")
}

// UpdateStatus persiste la anulación.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $2, cancel_reason = $3, cancelled_at = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, inv.ID, inv.Status, nullIfEmpty(inv.CancelReason), inv.CancelledAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
