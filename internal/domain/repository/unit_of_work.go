package repository

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Todo lo escrito a través de ella se confirma o se descarta junto.
type UnitOfWork interface {
	Medicines() MedicineRepository
	Suppliers() SupplierRepository
	Customers() CustomerRepository
	Receipts() ReceiptRepository
	Sales() SaleRepository
	Invoices() InvoiceRepository
	Sequences() NCFSequenceRepository
	Movements() StockMovementRepository
}
