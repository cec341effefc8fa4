package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas. No hay borrado: solo anulación.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdateStatus persiste status, cancel_reason y cancelled_at.
	UpdateStatus(ctx context.Context, inv *entity.Invoice) error
}
