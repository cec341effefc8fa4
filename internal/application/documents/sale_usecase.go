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

// SaleUseCase ciclo de vida de las ventas (sentido outbound). Una venta facturada queda congelada.
type SaleUseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner ports.TxRunner, log *logger.Logger) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{txRunner: txRunner, log: log}
}

type saleInput struct {
	date  time.Time
	items []entity.SaleItem
}

func (uc *SaleUseCase) parse(in dto.SaleRequest) (*saleInput, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	date, err := parseDate(in.Date, time.Now())
	if err != nil {
		return nil, err
	}
	items := make([]entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		if err := validateLine(it.MedicineID, it.Quantity); err != nil {
			return nil, err
		}
		if it.UnitPrice.IsNegative() || it.TaxRate.IsNegative() {
			return nil, fmt.Errorf("precio o tasa negativa para %s: %w", it.MedicineID, domain.ErrInvalidInput)
		}
		items = append(items, entity.SaleItem{
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TaxRate:    it.TaxRate,
		})
	}
	return &saleInput{date: date, items: items}, nil
}

func (p *saleInput) withIDs(saleID string) []entity.SaleItem {
	out := make([]entity.SaleItem, len(p.items))
	for i, it := range p.items {
		it.ID = uuid.New().String()
		it.SaleID = saleID
		out[i] = it
	}
	return out
}

// requireCustomer valida el cliente si se indicó uno (vacío = consumidor final).
func requireCustomer(ctx context.Context, uow repository.UnitOfWork, id string) error {
	if id == "" {
		return nil
	}
	c, err := uow.Customers().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("cliente %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ensureNotInvoiced rechaza con FrozenDocumentError si la venta ya tiene factura (emitida o anulada).
func ensureNotInvoiced(ctx context.Context, uow repository.UnitOfWork, saleID string) error {
	inv, err := uow.Invoices().GetBySaleID(ctx, saleID)
	if err != nil {
		return err
	}
	if inv != nil {
		return &domain.FrozenDocumentError{SaleID: saleID, InvoiceID: inv.ID}
	}
	return nil
}

func loadSaleForUpdate(ctx context.Context, uow repository.UnitOfWork, id string) (*entity.Sale, error) {
	s, err := uow.Sales().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// CreateSale registra la venta y descuenta sus cantidades. Si algún medicamento no alcanza,
// no se persiste nada.
func (uc *SaleUseCase) CreateSale(ctx context.Context, in dto.SaleRequest) (_ *dto.SaleResponse, err error) {
	ctx, span := tracer.Start(ctx, "documents.CreateSale")
	defer func() { endSpan(span, err) }()

	parsed, err := uc.parse(in)
	if err != nil {
		return nil, err
	}

	var created *entity.Sale
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := requireCustomer(ctx, uow, in.CustomerID); err != nil {
			return err
		}
		now := time.Now()
		s := &entity.Sale{
			ID:            uuid.New().String(),
			CustomerID:    in.CustomerID,
			Date:          parsed.date,
			Notes:         in.Notes,
			Currency:      in.Currency,
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.Items = parsed.withIDs(s.ID)

		deltas, err := ledger.FullDelta(ledger.Outbound, s.Lines())
		if err != nil {
			return err
		}
		if err := applyStock(ctx, uow, deltas, entity.DocumentTypeSale, s.ID, entity.MovementKindApply, now); err != nil {
			return err
		}
		if err := uow.Sales().Create(ctx, s); err != nil {
			return err
		}
		created = s
		return nil
	})
	if err != nil {
		logFailure(uc.log, "create_sale", err, nil)
		return nil, err
	}

	span.SetAttributes(attribute.String("sale.id", created.ID))
	uc.log.Info().Str("sale_id", created.ID).Int("items", len(created.Items)).Msg("venta registrada")
	return toSaleResponse(created, nil), nil
}

// EditSale reemplaza cabecera y líneas de una venta no facturada aplicando solo el delta neto.
func (uc *SaleUseCase) EditSale(ctx context.Context, id string, in dto.SaleRequest) (_ *dto.SaleResponse, err error) {
	ctx, span := tracer.Start(ctx, "documents.EditSale")
	span.SetAttributes(attribute.String("sale.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	parsed, err := uc.parse(in)
	if err != nil {
		return nil, err
	}

	var updated *entity.Sale
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		current, err := loadSaleForUpdate(ctx, uow, id)
		if err != nil {
			return err
		}
		if err := ensureNotInvoiced(ctx, uow, id); err != nil {
			return err
		}
		if err := requireCustomer(ctx, uow, in.CustomerID); err != nil {
			return err
		}
		now := time.Now()
		items := parsed.withIDs(id)
		next := &entity.Sale{Items: items}

		deltas, err := ledger.ComputeDelta(ledger.Outbound, current.Lines(), next.Lines())
		if err != nil {
			return err
		}
		if err := applyStock(ctx, uow, deltas, entity.DocumentTypeSale, id, entity.MovementKindEdit, now); err != nil {
			return err
		}

		current.CustomerID = in.CustomerID
		current.Date = parsed.date
		current.Notes = in.Notes
		current.Currency = in.Currency
		current.PaymentMethod = in.PaymentMethod
		current.UpdatedAt = now
		if err := uow.Sales().UpdateHeader(ctx, current); err != nil {
			return err
		}
		if err := uow.Sales().ReplaceItems(ctx, id, items); err != nil {
			return err
		}
		current.Items = items
		updated = current
		return nil
	})
	if err != nil {
		logFailure(uc.log, "edit_sale", err, func(e *zerolog.Event) *zerolog.Event { return e.Str("sale_id", id) })
		return nil, err
	}

	uc.log.Info().Str("sale_id", id).Int("items", len(updated.Items)).Msg("venta editada")
	return toSaleResponse(updated, nil), nil
}

// DeleteSale elimina una venta no facturada devolviendo lo vendido al stock.
func (uc *SaleUseCase) DeleteSale(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "documents.DeleteSale")
	span.SetAttributes(attribute.String("sale.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return domain.ErrInvalidInput
	}
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		current, err := loadSaleForUpdate(ctx, uow, id)
		if err != nil {
			return err
		}
		if err := ensureNotInvoiced(ctx, uow, id); err != nil {
			return err
		}
		deltas, err := ledger.Reversal(ledger.Outbound, current.Lines())
		if err != nil {
			return err
		}
		if err := applyStock(ctx, uow, deltas, entity.DocumentTypeSale, id, entity.MovementKindReversal, time.Now()); err != nil {
			return err
		}
		return uow.Sales().Delete(ctx, id)
	})
	if err != nil {
		logFailure(uc.log, "delete_sale", err, func(e *zerolog.Event) *zerolog.Event { return e.Str("sale_id", id) })
		return err
	}

	uc.log.Info().Str("sale_id", id).Msg("venta eliminada")
	return nil
}

// GetSale devuelve la venta con sus líneas y si ya está facturada.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	var (
		found *entity.Sale
		inv   *entity.Invoice
	)
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		s, err := uow.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
		}
		i, err := uow.Invoices().GetBySaleID(ctx, id)
		if err != nil {
			return err
		}
		found, inv = s, i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(found, inv), nil
}
