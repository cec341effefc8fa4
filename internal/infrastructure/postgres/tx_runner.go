package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ ports.TxRunner = (*TxRunner)(nil)
	_ ports.Pinger   = (*TxRunner)(nil)
)

// TxRunner ejecuta unidades de trabajo dentro de una transacción PostgreSQL (READ COMMITTED).
// Los bloqueos de fila (SELECT ... FOR UPDATE) tomados por los repositorios se liberan en Commit/Rollback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Las fallas transitorias (begin, commit, deadlock, serialización, conexión) se devuelven como
// *domain.StorageError; los errores de negocio de fn se devuelven tal cual.
func (r *TxRunner) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return &domain.StorageError{Op: "begin transaction", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newUnitOfWork(tx)); err != nil {
		if isTransient(err) {
			return &domain.StorageError{Op: "unit of work", Err: err}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &domain.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

// Ping verifica la conexión con la base de datos.
func (r *TxRunner) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type unitOfWork struct {
	medicines *MedicineRepo
	suppliers *SupplierRepo
	customers *CustomerRepo
	receipts  *ReceiptRepo
	sales     *SaleRepo
	invoices  *InvoiceRepo
	sequences *NCFSequenceRepo
	movements *StockMovementRepo
}

func newUnitOfWork(q Querier) *unitOfWork {
	return &unitOfWork{
		medicines: NewMedicineRepository(q),
		suppliers: NewSupplierRepository(q),
		customers: NewCustomerRepository(q),
		receipts:  NewReceiptRepository(q),
		sales:     NewSaleRepository(q),
		invoices:  NewInvoiceRepository(q),
		sequences: NewNCFSequenceRepository(q),
		movements: NewStockMovementRepository(q),
	}
}

func (u *unitOfWork) Medicines() repository.MedicineRepository      { return u.medicines }
func (u *unitOfWork) Suppliers() repository.SupplierRepository      { return u.suppliers }
func (u *unitOfWork) Customers() repository.CustomerRepository      { return u.customers }
func (u *unitOfWork) Receipts() repository.ReceiptRepository        { return u.receipts }
func (u *unitOfWork) Sales() repository.SaleRepository              { return u.sales }
func (u *unitOfWork) Invoices() repository.InvoiceRepository        { return u.invoices }
func (u *unitOfWork) Sequences() repository.NCFSequenceRepository   { return u.sequences }
func (u *unitOfWork) Movements() repository.StockMovementRepository { return u.movements }
