package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ncf"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/Farmacia-api/internal/application/billing")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InvoiceUseCase emite, anula y consulta facturas.
type InvoiceUseCase struct {
	txRunner  ports.TxRunner
	allocator *SequenceAllocator
	log       *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner ports.TxRunner, allocator *SequenceAllocator, log *logger.Logger) *InvoiceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceUseCase{txRunner: txRunner, allocator: allocator, log: log}
}

// CreateInvoice factura una venta: bloquea la venta, verifica que no tenga factura, toma el próximo NCF
// del prefijo y crea la factura, todo en una sola unidad de trabajo. La venta queda congelada.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, saleID, prefix string) (_ *dto.InvoiceResponse, err error) {
	ctx, span := tracer.Start(ctx, "billing.CreateInvoice")
	span.SetAttributes(attribute.String("sale.id", saleID))
	defer func() { endSpan(span, err) }()

	prefix = ncf.NormalizePrefix(prefix)
	if strings.TrimSpace(saleID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := ncf.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	var (
		inv   *entity.Invoice
		alloc *Allocation
	)
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		sale, err := uow.Sales().GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return &domain.SaleNotFoundError{SaleID: saleID}
		}
		existing, err := uow.Invoices().GetBySaleID(ctx, saleID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.AlreadyInvoicedError{SaleID: saleID, InvoiceID: existing.ID}
		}

		a, err := uc.allocator.Allocate(ctx, uow, prefix)
		if err != nil {
			return err
		}

		now := time.Now()
		subtotal, tax, total := computeTotals(sale.Items)
		i := &entity.Invoice{
			ID:         uuid.New().String(),
			SaleID:     sale.ID,
			CustomerID: sale.CustomerID,
			Prefix:     prefix,
			Number:     a.Number,
			NCF:        a.NCF,
			Status:     entity.InvoiceStatusIssued,
			Date:       now,
			Subtotal:   subtotal,
			TaxTotal:   tax,
			GrandTotal: total,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uow.Invoices().Create(ctx, i); err != nil {
			return err
		}
		inv, alloc = i, a
		return nil
	})
	if err != nil {
		uc.logFailure("create_invoice", err).Str("sale_id", saleID).Str("prefix", prefix).Msg("facturación rechazada")
		return nil, err
	}

	uc.allocator.Report(alloc)
	span.SetAttributes(attribute.String("invoice.id", inv.ID), attribute.String("invoice.ncf", inv.NCF))
	uc.log.Info().Str("invoice_id", inv.ID).Str("sale_id", saleID).Str("ncf", inv.NCF).Msg("factura emitida")

	out := toInvoiceResponse(inv)
	if alloc.Range.HasRange {
		out.Range = &dto.RangeReport{
			InRange:     alloc.Range.InRange,
			Remaining:   alloc.Range.Remaining,
			LowCapacity: alloc.Range.LowCapacity,
		}
	}
	return out, nil
}

// CancelInvoice anula la factura. No se elimina ni se revierte el stock de la venta.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, invoiceID, reason string) (_ *dto.InvoiceResponse, err error) {
	ctx, span := tracer.Start(ctx, "billing.CancelInvoice")
	span.SetAttributes(attribute.String("invoice.id", invoiceID))
	defer func() { endSpan(span, err) }()

	reason = strings.TrimSpace(reason)
	if invoiceID == "" || reason == "" {
		return nil, domain.ErrInvalidInput
	}

	var inv *entity.Invoice
	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		i, err := uow.Invoices().GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if i == nil {
			return fmt.Errorf("factura %s: %w", invoiceID, domain.ErrInvoiceNotFound)
		}
		if i.IsCancelled() {
			return &domain.AlreadyCancelledError{InvoiceID: invoiceID}
		}
		now := time.Now()
		i.Status = entity.InvoiceStatusCancelled
		i.CancelReason = reason
		i.CancelledAt = &now
		i.UpdatedAt = now
		if err := uow.Invoices().UpdateStatus(ctx, i); err != nil {
			return err
		}
		inv = i
		return nil
	})
	if err != nil {
		uc.logFailure("cancel_invoice", err).Str("invoice_id", invoiceID).Msg("anulación rechazada")
		return nil, err
	}

	uc.log.Info().Str("invoice_id", invoiceID).Str("ncf", inv.NCF).Msg("factura anulada")
	return toInvoiceResponse(inv), nil
}

// GetInvoice devuelve la factura por id.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	var inv *entity.Invoice
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		i, err := uow.Invoices().GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if i == nil {
			return fmt.Errorf("factura %s: %w", invoiceID, domain.ErrInvoiceNotFound)
		}
		inv = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

func (uc *InvoiceUseCase) logFailure(op string, err error) *zerolog.Event {
	ev := uc.log.Warn()
	if domain.IsRetryable(err) || (!domain.IsClientError(err) && !domain.IsNotFound(err)) {
		ev = uc.log.Error()
	}
	return ev.Err(err).Str("op", op)
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:           inv.ID,
		SaleID:       inv.SaleID,
		CustomerID:   inv.CustomerID,
		Prefix:       inv.Prefix,
		Number:       inv.Number,
		NCF:          inv.NCF,
		Status:       inv.Status,
		Date:         inv.Date.Format(dto.DateLayout),
		Subtotal:     inv.Subtotal,
		TaxTotal:     inv.TaxTotal,
		GrandTotal:   inv.GrandTotal,
		CancelReason: inv.CancelReason,
	}
	if inv.CancelledAt != nil {
		out.CancelledAt = inv.CancelledAt.Format(time.RFC3339)
	}
	return out
}
