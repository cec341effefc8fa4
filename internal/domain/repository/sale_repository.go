package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas (cabecera + líneas).
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera; serializa ediciones y facturación de la misma venta.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	UpdateHeader(ctx context.Context, s *entity.Sale) error
	ReplaceItems(ctx context.Context, saleID string, items []entity.SaleItem) error
	Delete(ctx context.Context, id string) error
}
