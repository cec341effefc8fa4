package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia de entradas (cabecera + líneas).
type ReceiptRepository interface {
	// Create inserta cabecera y líneas.
	Create(ctx context.Context, r *entity.Receipt) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	// GetForUpdate bloquea la cabecera hasta el commit y carga sus líneas actuales.
	GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error)
	UpdateHeader(ctx context.Context, r *entity.Receipt) error
	// ReplaceItems borra todas las líneas del documento e inserta las nuevas.
	ReplaceItems(ctx context.Context, receiptID string, items []entity.ReceiptItem) error
	// Delete elimina cabecera y líneas.
	Delete(ctx context.Context, id string) error
}
