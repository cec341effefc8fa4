package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/billing"
	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/documents"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *catalog.CatalogUseCase
	ReceiptUC  *documents.ReceiptUseCase
	SaleUC     *documents.SaleUseCase
	InvoiceUC  *billing.InvoiceUseCase
	InvoicePDF *billing.PDFUseCase
	SequenceUC *billing.SequenceUseCase
	Store      ports.Pinger
	AppName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", NewHealthHandler(deps.Store, deps.AppName).Check)

	api := app.Group("/api")

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	medicines := api.Group("/medicines")
	medicines.Post("/", catalogHandler.CreateMedicine)
	medicines.Get("/", catalogHandler.ListMedicines)
	medicines.Get("/:id", catalogHandler.GetMedicine)
	medicines.Get("/:id/stock", catalogHandler.GetStock)
	medicines.Get("/:id/movements", catalogHandler.ListMovements)
	api.Post("/suppliers", catalogHandler.CreateSupplier)
	api.Post("/customers", catalogHandler.CreateCustomer)

	receipts := api.Group("/receipts")
	receiptHandler := NewReceiptHandler(deps.ReceiptUC)
	receipts.Post("/", receiptHandler.Create)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Put("/:id", receiptHandler.Update)
	receipts.Delete("/:id", receiptHandler.Delete)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)

	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Put("/:id", saleHandler.Update)
	sales.Delete("/:id", saleHandler.Delete)
	sales.Post("/:id/invoice", invoiceHandler.CreateFromSale)

	invoices := api.Group("/invoices")
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)

	sequences := api.Group("/ncf-sequences")
	sequenceHandler := NewSequenceHandler(deps.SequenceUC)
	sequences.Get("/", sequenceHandler.List)
	sequences.Put("/:prefix", sequenceHandler.Configure)
}
