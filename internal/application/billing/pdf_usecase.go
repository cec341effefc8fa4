package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// PDFUseCase genera la representación impresa de una factura (emitida o anulada).
type PDFUseCase struct {
	txRunner  ports.TxRunner
	generator InvoicePDFGenerator
	issuer    Issuer
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(txRunner ports.TxRunner, generator InvoicePDFGenerator, issuer Issuer) *PDFUseCase {
	return &PDFUseCase{txRunner: txRunner, generator: generator, issuer: issuer}
}

// DownloadInvoicePDF reúne factura, cliente y líneas de la venta y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)   si todo sale bien.
//   - domain.ErrInvoiceNotFound   si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	data := InvoicePDFData{Issuer: uc.issuer}

	err = uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		// ── 1. Factura ────────────────────────────────────────────────────────
		inv, err := uow.Invoices().GetByID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("pdf: obtener factura: %w", err)
		}
		if inv == nil {
			return fmt.Errorf("factura %s: %w", invoiceID, domain.ErrInvoiceNotFound)
		}
		data.Invoice = inv

		// ── 2. Cliente (opcional) ─────────────────────────────────────────────
		if inv.CustomerID != "" {
			c, err := uow.Customers().GetByID(ctx, inv.CustomerID)
			if err != nil {
				return fmt.Errorf("pdf: obtener cliente: %w", err)
			}
			data.Customer = c
		}

		// ── 3. Líneas de la venta (congelada) + nombre del medicamento ───────
		sale, err := uow.Sales().GetByID(ctx, inv.SaleID)
		if err != nil {
			return fmt.Errorf("pdf: obtener venta: %w", err)
		}
		if sale == nil {
			return fmt.Errorf("pdf: venta %s de la factura %s: %w", inv.SaleID, inv.ID, domain.ErrNotFound)
		}
		data.Lines = make([]InvoiceLineForPDF, 0, len(sale.Items))
		for _, it := range sale.Items {
			name, sku := "Medicamento "+it.MedicineID, ""
			if m, mErr := uow.Medicines().GetByID(ctx, it.MedicineID); mErr == nil && m != nil {
				name, sku = m.Name, m.SKU
			}
			data.Lines = append(data.Lines, InvoiceLineForPDF{
				MedicineName: name,
				SKU:          sku,
				Quantity:     it.Quantity,
				UnitPrice:    it.UnitPrice,
				TaxRate:      normalizeRate(it.TaxRate),
				Subtotal:     lineSubtotal(it),
			})
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("factura_%s.pdf", data.Invoice.NCF)
	return pdfBytes, filename, nil
}
