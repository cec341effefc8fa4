package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// ReceiptUseCase ciclo de vida de las entradas de mercancía (sentido inbound).
type ReceiptUseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(txRunner ports.TxRunner, log *logger.Logger) *ReceiptUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReceiptUseCase{txRunner: txRunner, log: log}
}

type receiptInput struct {
	date  time.Time
	items []entity.ReceiptItem
}

func (uc *ReceiptUseCase) parse(in dto.ReceiptRequest) (*receiptInput, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	date, err := parseDate(in.Date, time.Now())
	if err != nil {
		return nil, err
	}
	items := make([]entity.ReceiptItem, 0, len(in.Items))
	for _, it := range in.Items {
		if err := validateLine(it.MedicineID, it.Quantity); err != nil {
			return nil, err
		}
		if it.UnitCost.IsNegative() {
			return nil, fmt.Errorf("costo negativo para %s: %w", it.MedicineID, domain.ErrInvalidInput)
		}
		items = append(items, entity.ReceiptItem{
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
		})
	}
	return &receiptInput{date: date, items: items}, nil
}

// withIDs asigna ids nuevos a las líneas (en cada intento de la unidad de trabajo).
func (p *receiptInput) withIDs(receiptID string) []entity.ReceiptItem {
	out := make([]entity.ReceiptItem, len(p.items))
	for i, it := range p.items {
		it.ID = uuid.New().String()
		it.ReceiptID = receiptID
		out[i] = it
	}
	return out
}

func requireSupplier(ctx context.Context, uow repository.UnitOfWork, id string) error {
	s, err := uow.Suppliers().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("proveedor %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CreateReceipt registra la entrada y suma sus cantidades al stock.
func (uc *ReceiptUseCase) CreateReceipt(ctx context.Context, in dto.ReceiptRequest) (_ *dto.ReceiptResponse, err error) {
	ctx, span := tracer.Start(ctx, "documents.CreateReceipt")
	defer func() { endSpan(span, err) }()

	parsed, err := uc.parse(in)
	if err != nil {
		return nil, err
	}

	var created *entity.Receipt
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := requireSupplier(ctx, uow, in.SupplierID); err != nil {
			return err
		}
		now := time.Now()
		r := &entity.Receipt{
			ID:            uuid.New().String(),
			SupplierID:    in.SupplierID,
			Date:          parsed.date,
			Notes:         in.Notes,
			Currency:      in.Currency,
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		r.Items = parsed.withIDs(r.ID)

		deltas, err := ledger.FullDelta(ledger.Inbound, r.Lines())
		if err != nil {
			return err
		}
		if err := applyStock(ctx, uow, deltas, entity.DocumentTypeReceipt, r.ID, entity.MovementKindApply, now); err != nil {
			return err
		}
		if err := uow.Receipts().Create(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		logFailure(uc.log, "create_receipt", err, nil)
		return nil, err
	}

	span.SetAttributes(attribute.String("receipt.id", created.ID))
	uc.log.Info().Str("receipt_id", created.ID).Int("items", len(created.Items)).Msg("entrada registrada")
	return toReceiptResponse(created), nil
}

// EditReceipt reemplaza cabecera y líneas aplicando solo la diferencia neta por medicamento.
func (uc *ReceiptUseCase) EditReceipt(ctx context.Context, id string, in dto.ReceiptRequest) (_ *dto.ReceiptResponse, err error) {
	ctx, span := tracer.Start(ctx, "documents.EditReceipt")
	span.SetAttributes(attribute.String("receipt.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	parsed, err := uc.parse(in)
	if err != nil {
		return nil, err
	}

	var updated *entity.Receipt
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		current, err := uow.Receipts().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("entrada %s: %w", id, domain.ErrNotFound)
		}
		if err := requireSupplier(ctx, uow, in.SupplierID); err != nil {
			return err
		}
		now := time.Now()
		items := parsed.withIDs(id)
		next := &entity.Receipt{Items: items}

		deltas, err := ledger.ComputeDelta(ledger.Inbound, current.Lines(), next.Lines())
		if err != nil {
			return err
		}
		if err := applyStock(ctx, uow, deltas, entity.DocumentTypeReceipt, id, entity.MovementKindEdit, now); err != nil {
			return err
		}

		current.SupplierID = in.SupplierID
		current.Date = parsed.date
		current.Notes = in.Notes
		current.Currency = in.Currency
		current.PaymentMethod = in.PaymentMethod
		current.UpdatedAt = now
		if err := uow.Receipts().UpdateHeader(ctx, current); err != nil {
			return err
		}
		if err := uow.Receipts().ReplaceItems(ctx, id, items); err != nil {
			return err
		}
		current.Items = items
		updated = current
		return nil
	})
	if err != nil {
		logFailure(uc.log, "edit_receipt", err, func(e *zerolog.Event) *zerolog.Event { return e.Str("receipt_id", id) })
		return nil, err
	}

	uc.log.Info().Str("receipt_id", id).Int("items", len(updated.Items)).Msg("entrada editada")
	return toReceiptResponse(updated), nil
}

// DeleteReceipt elimina la entrada revirtiendo su efecto; falla si parte de lo ingresado ya se vendió
// y el stock quedaría negativo.
func (uc *ReceiptUseCase) DeleteReceipt(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "documents.DeleteReceipt")
	span.SetAttributes(attribute.String("receipt.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return domain.ErrInvalidInput
	}
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		current, err := uow.Receipts().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("entrada %s: %w", id, domain.ErrNotFound)
		}
		deltas, err := ledger.Reversal(ledger.Inbound, current.Lines())
		if err != nil {
			return err
		}
		if err := applyStock(ctx, uow, deltas, entity.DocumentTypeReceipt, id, entity.MovementKindReversal, time.Now()); err != nil {
			return err
		}
		return uow.Receipts().Delete(ctx, id)
	})
	if err != nil {
		logFailure(uc.log, "delete_receipt", err, func(e *zerolog.Event) *zerolog.Event { return e.Str("receipt_id", id) })
		return err
	}

	uc.log.Info().Str("receipt_id", id).Msg("entrada eliminada")
	return nil
}

// GetReceipt devuelve la entrada con sus líneas.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	var found *entity.Receipt
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		r, err := uow.Receipts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("entrada %s: %w", id, domain.ErrNotFound)
		}
		found = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(found), nil
}
