// Package documents coordina el ciclo de vida de entradas y ventas: cabecera, líneas y efecto
// en stock se confirman juntos en una unidad de trabajo o no se confirma nada.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/Farmacia-api/internal/application/documents")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// applyStock pasa los deltas por el ledger y registra cada ajuste aplicado en el kardex,
// todo dentro de la misma unidad de trabajo.
func applyStock(
	ctx context.Context,
	uow repository.UnitOfWork,
	deltas ledger.Deltas,
	docType, docID, kind string,
	now time.Time,
) error {
	adjustments, err := ledger.ValidateAndApply(ctx, uow.Medicines(), deltas)
	if err != nil {
		return err
	}
	for _, a := range adjustments {
		mov := &entity.StockMovement{
			ID:           uuid.New().String(),
			MedicineID:   a.MedicineID,
			DocumentType: docType,
			DocumentID:   docID,
			Kind:         kind,
			Quantity:     a.Delta,
			StockAfter:   a.StockAfter,
			CreatedAt:    now,
		}
		if err := uow.Movements().Create(ctx, mov); err != nil {
			return err
		}
	}
	return nil
}

// parseDate interpreta YYYY-MM-DD; vacío = fecha de hoy.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha %q: %w", s, domain.ErrInvalidInput)
	}
	return t, nil
}

func validateLine(medicineID string, qty int64) error {
	if strings.TrimSpace(medicineID) == "" {
		return fmt.Errorf("línea sin medicamento: %w", domain.ErrInvalidInput)
	}
	if qty <= 0 || qty > ledger.MaxLineQuantity {
		return fmt.Errorf("cantidad %d para %s: %w", qty, medicineID, domain.ErrInvalidInput)
	}
	return nil
}

// logFailure registra una operación rechazada o fallida con el detalle estructurado del error.
func logFailure(log *logger.Logger, op string, err error, fields func(e *zerolog.Event) *zerolog.Event) {
	var ev *zerolog.Event
	if domain.IsRetryable(err) || (!domain.IsClientError(err) && !domain.IsNotFound(err)) {
		ev = log.Error()
	} else {
		ev = log.Warn()
	}
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		ev = ev.Str("medicine_id", ise.MedicineID).Int64("requested", ise.Requested).Int64("available", ise.Available)
	}
	var fde *domain.FrozenDocumentError
	if errors.As(err, &fde) {
		ev = ev.Str("invoice_id", fde.InvoiceID)
	}
	if fields != nil {
		ev = fields(ev)
	}
	ev.Err(err).Str("op", op).Msg("operación de documento rechazada")
}
