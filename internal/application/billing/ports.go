package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// Issuer datos de la farmacia emisora impresos en la factura.
type Issuer struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
}

// InvoiceLineForPDF línea de la venta enriquecida con los datos del medicamento.
type InvoiceLineForPDF struct {
	MedicineName string
	SKU          string
	Quantity     int64
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	Subtotal     decimal.Decimal
}

// InvoicePDFData todo lo necesario para la representación impresa.
// Customer es nil para ventas a consumidor final.
type InvoicePDFData struct {
	Issuer   Issuer
	Invoice  *entity.Invoice
	Customer *entity.Customer
	Lines    []InvoiceLineForPDF
}

// InvoicePDFGenerator puerto de salida del generador de PDF (Maroto en infraestructura).
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, data InvoicePDFData) ([]byte, error)
}
