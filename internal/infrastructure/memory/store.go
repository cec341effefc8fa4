// Package memory implementa la unidad de trabajo en memoria (tests y desarrollo local).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ ports.TxRunner = (*Store)(nil)
	_ ports.Pinger   = (*Store)(nil)
)

// Store guarda todo el estado en memoria. Run serializa las unidades de trabajo con un mutex
// y trabaja sobre una copia que solo reemplaza al estado confirmado si fn no falla.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	medicines map[string]*entity.Medicine
	suppliers map[string]*entity.Supplier
	customers map[string]*entity.Customer
	receipts  map[string]*entity.Receipt
	sales     map[string]*entity.Sale
	invoices  map[string]*entity.Invoice
	sequences map[string]*entity.NCFSequence
	movements []entity.StockMovement
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: &state{
		medicines: make(map[string]*entity.Medicine),
		suppliers: make(map[string]*entity.Supplier),
		customers: make(map[string]*entity.Customer),
		receipts:  make(map[string]*entity.Receipt),
		sales:     make(map[string]*entity.Sale),
		invoices:  make(map[string]*entity.Invoice),
		sequences: make(map[string]*entity.NCFSequence),
	}}
}

// Run ejecuta fn sobre una copia del estado; Commit = reemplazar el estado, Rollback = descartar la copia.
func (s *Store) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "begin", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&unitOfWork{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "commit", Err: err}
	}
	s.state = work
	return nil
}

// Ping siempre responde.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (st *state) clone() *state {
	out := &state{
		medicines: make(map[string]*entity.Medicine, len(st.medicines)),
		suppliers: make(map[string]*entity.Supplier, len(st.suppliers)),
		customers: make(map[string]*entity.Customer, len(st.customers)),
		receipts:  make(map[string]*entity.Receipt, len(st.receipts)),
		sales:     make(map[string]*entity.Sale, len(st.sales)),
		invoices:  make(map[string]*entity.Invoice, len(st.invoices)),
		sequences: make(map[string]*entity.NCFSequence, len(st.sequences)),
		movements: append([]entity.StockMovement(nil), st.movements...),
	}
	for k, v := range st.medicines {
		c := *v
		out.medicines[k] = &c
	}
	for k, v := range st.suppliers {
		c := *v
		out.suppliers[k] = &c
	}
	for k, v := range st.customers {
		c := *v
		out.customers[k] = &c
	}
	for k, v := range st.receipts {
		out.receipts[k] = copyReceipt(v)
	}
	for k, v := range st.sales {
		out.sales[k] = copySale(v)
	}
	for k, v := range st.invoices {
		out.invoices[k] = copyInvoice(v)
	}
	for k, v := range st.sequences {
		c := *v
		out.sequences[k] = &c
	}
	return out
}

func copyReceipt(r *entity.Receipt) *entity.Receipt {
	c := *r
	c.Items = append([]entity.ReceiptItem(nil), r.Items...)
	return &c
}

func copySale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = append([]entity.SaleItem(nil), s.Items...)
	return &c
}

func copyInvoice(i *entity.Invoice) *entity.Invoice {
	c := *i
	if i.CancelledAt != nil {
		t := *i.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

type unitOfWork struct {
	st *state
}

func (u *unitOfWork) Medicines() repository.MedicineRepository     { return medicineRepo{u.st} }
func (u *unitOfWork) Suppliers() repository.SupplierRepository     { return supplierRepo{u.st} }
func (u *unitOfWork) Customers() repository.CustomerRepository     { return customerRepo{u.st} }
func (u *unitOfWork) Receipts() repository.ReceiptRepository       { return receiptRepo{u.st} }
func (u *unitOfWork) Sales() repository.SaleRepository             { return saleRepo{u.st} }
func (u *unitOfWork) Invoices() repository.InvoiceRepository       { return invoiceRepo{u.st} }
func (u *unitOfWork) Sequences() repository.NCFSequenceRepository  { return sequenceRepo{u.st} }
func (u *unitOfWork) Movements() repository.StockMovementRepository { return movementRepo{u.st} }
