package billing_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/billing"
	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/documents"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
)

// commitFailingRunner ejecuta fn completo y luego simula una falla al confirmar.
type commitFailingRunner struct {
	inner *memory.Store
}

func (r commitFailingRunner) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return r.inner.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := fn(uow); err != nil {
			return err
		}
		return &domain.StorageError{Op: "commit", Err: errors.New("conexión perdida")}
	})
}

type env struct {
	ctx       context.Context
	store     *memory.Store
	catalog   *catalog.CatalogUseCase
	sales     *documents.SaleUseCase
	allocator *billing.SequenceAllocator
	invoices  *billing.InvoiceUseCase
	sequences *billing.SequenceUseCase
	medicine  string
}

func newEnv(t *testing.T, width int) *env {
	t.Helper()
	store := memory.NewStore()
	alloc := billing.NewSequenceAllocator(width, 10, nil)
	e := &env{
		ctx:       context.Background(),
		store:     store,
		catalog:   catalog.NewCatalogUseCase(store, nil),
		sales:     documents.NewSaleUseCase(store, nil),
		allocator: alloc,
		invoices:  billing.NewInvoiceUseCase(store, alloc, nil),
		sequences: billing.NewSequenceUseCase(store, alloc, nil),
	}
	m, err := e.catalog.CreateMedicine(e.ctx, dto.CreateMedicineRequest{
		SKU: "AMOX-500", Name: "Amoxicilina 500mg", Price: decimal.NewFromInt(100), OpeningStock: 1000,
	})
	require.NoError(t, err)
	e.medicine = m.ID
	return e
}

func (e *env) sale(t *testing.T, customerID string, qty int64) string {
	t.Helper()
	s, err := e.sales.CreateSale(e.ctx, dto.SaleRequest{
		CustomerID: customerID,
		Items: []dto.SaleItemRequest{{
			MedicineID: e.medicine, Quantity: qty, UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(18),
		}},
	})
	require.NoError(t, err)
	return s.ID
}

func TestCreateInvoice_FormatoYTotales(t *testing.T) {
	e := newEnv(t, 8)
	s, err := e.sales.CreateSale(e.ctx, dto.SaleRequest{Items: []dto.SaleItemRequest{
		{MedicineID: e.medicine, Quantity: 2, UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(18)},
		{MedicineID: e.medicine, Quantity: 1, UnitPrice: decimal.RequireFromString("10.55"), TaxRate: decimal.RequireFromString("0.16")},
	}})
	require.NoError(t, err)

	inv, err := e.invoices.CreateInvoice(e.ctx, s.ID, " b01 ")
	require.NoError(t, err)
	assert.Equal(t, "B01", inv.Prefix)
	assert.Equal(t, int64(1), inv.Number)
	assert.Equal(t, "B0100000001", inv.NCF)
	assert.Equal(t, "emitida", inv.Status)
	assert.Nil(t, inv.Range, "sin rango configurado no hay reporte")

	assert.True(t, decimal.RequireFromString("210.55").Equal(inv.Subtotal), inv.Subtotal.String())
	assert.True(t, decimal.RequireFromString("37.69").Equal(inv.TaxTotal), inv.TaxTotal.String())
	assert.True(t, decimal.RequireFromString("248.24").Equal(inv.GrandTotal), inv.GrandTotal.String())

	got, err := e.invoices.GetInvoice(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.NCF, got.NCF)
}

func TestCreateInvoice_Errores(t *testing.T) {
	e := newEnv(t, 8)

	_, err := e.invoices.CreateInvoice(e.ctx, "no-existe", "B01")
	var snf *domain.SaleNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "no-existe", snf.SaleID)

	_, err = e.invoices.CreateInvoice(e.ctx, e.sale(t, "", 1), "B-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	saleID := e.sale(t, "", 1)
	first, err := e.invoices.CreateInvoice(e.ctx, saleID, "B01")
	require.NoError(t, err)
	_, err = e.invoices.CreateInvoice(e.ctx, saleID, "B02")
	var already *domain.AlreadyInvoicedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, first.ID, already.InvoiceID)

	// Ni el intento fallido ni el prefijo inválido consumieron números de B01.
	next, err := e.invoices.CreateInvoice(e.ctx, e.sale(t, "", 1), "B01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.Number)

	_, err = e.invoices.GetInvoice(e.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestCreateInvoice_ConcurrentesSinHuecos(t *testing.T) {
	e := newEnv(t, 8)
	const n = 25
	saleIDs := make([]string, n)
	for i := range saleIDs {
		saleIDs[i] = e.sale(t, "", 1)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
		ncfs    = map[string]bool{}
	)
	for _, id := range saleIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			inv, err := e.invoices.CreateInvoice(e.ctx, id, "B01")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, inv.Number)
			ncfs[inv.NCF] = true
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	require.Len(t, numbers, n)
	assert.Len(t, ncfs, n)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, num := range numbers {
		assert.Equal(t, int64(i+1), num)
	}
}

func TestCreateInvoice_FallaAlConfirmarNoAvanzaContador(t *testing.T) {
	e := newEnv(t, 8)
	saleID := e.sale(t, "", 1)

	failing := billing.NewInvoiceUseCase(commitFailingRunner{inner: e.store}, e.allocator, nil)
	_, err := failing.CreateInvoice(e.ctx, saleID, "B01")
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))

	s, err := e.sales.GetSale(e.ctx, saleID)
	require.NoError(t, err)
	assert.False(t, s.Invoiced)

	inv, err := e.invoices.CreateInvoice(e.ctx, saleID, "B01")
	require.NoError(t, err)
	assert.Equal(t, "B0100000001", inv.NCF)
}

func TestCreateInvoice_ReporteDeRango(t *testing.T) {
	e := newEnv(t, 8)
	_, err := e.sequences.ConfigureSequence(e.ctx, "B02", dto.ConfigureSequenceRequest{RangeStart: 1, RangeEnd: 12})
	require.NoError(t, err)

	var reports []*dto.RangeReport
	for i := 0; i < 13; i++ {
		inv, err := e.invoices.CreateInvoice(e.ctx, e.sale(t, "", 1), "B02")
		require.NoError(t, err, "el rango no bloquea la emisión")
		require.NotNil(t, inv.Range)
		reports = append(reports, inv.Range)
	}

	assert.Equal(t, int64(11), reports[0].Remaining)
	assert.False(t, reports[0].LowCapacity)
	assert.Equal(t, int64(10), reports[1].Remaining)
	assert.False(t, reports[1].LowCapacity)
	assert.Equal(t, int64(9), reports[2].Remaining)
	assert.True(t, reports[2].LowCapacity)

	assert.True(t, reports[11].InRange)
	assert.Equal(t, int64(0), reports[11].Remaining)
	assert.False(t, reports[12].InRange, "el número 13 queda fuera del rango 1-12")
}

func TestCreateInvoice_NumeroExcedeAncho(t *testing.T) {
	e := newEnv(t, 2)
	_, err := e.sequences.ConfigureSequence(e.ctx, "B01", dto.ConfigureSequenceRequest{NextNumber: 99})
	require.NoError(t, err)

	inv, err := e.invoices.CreateInvoice(e.ctx, e.sale(t, "", 1), "B01")
	require.NoError(t, err)
	assert.Equal(t, "B0199", inv.NCF)

	saleID := e.sale(t, "", 1)
	_, err = e.invoices.CreateInvoice(e.ctx, saleID, "B01")
	assert.ErrorIs(t, err, domain.ErrConflict)

	s, err := e.sales.GetSale(e.ctx, saleID)
	require.NoError(t, err)
	assert.False(t, s.Invoiced)
}

func TestCancelInvoice(t *testing.T) {
	e := newEnv(t, 8)
	saleID := e.sale(t, "", 3)
	before, err := e.catalog.GetStock(e.ctx, e.medicine)
	require.NoError(t, err)

	inv, err := e.invoices.CreateInvoice(e.ctx, saleID, "B01")
	require.NoError(t, err)

	_, err = e.invoices.CancelInvoice(e.ctx, inv.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cancelled, err := e.invoices.CancelInvoice(e.ctx, inv.ID, "error en el RNC")
	require.NoError(t, err)
	assert.Equal(t, "anulada", cancelled.Status)
	assert.Equal(t, "error en el RNC", cancelled.CancelReason)
	assert.NotEmpty(t, cancelled.CancelledAt)
	assert.Equal(t, inv.NCF, cancelled.NCF)

	_, err = e.invoices.CancelInvoice(e.ctx, inv.ID, "otra vez")
	var ac *domain.AlreadyCancelledError
	require.ErrorAs(t, err, &ac)
	assert.Equal(t, inv.ID, ac.InvoiceID)

	_, err = e.invoices.CancelInvoice(e.ctx, "no-existe", "x")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	after, err := e.catalog.GetStock(e.ctx, e.medicine)
	require.NoError(t, err)
	assert.Equal(t, before, after, "anular no devuelve stock")

	got, err := e.invoices.GetInvoice(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "anulada", got.Status)
}

func TestConfigureSequence(t *testing.T) {
	e := newEnv(t, 8)

	seq, err := e.sequences.ConfigureSequence(e.ctx, "b02", dto.ConfigureSequenceRequest{RangeStart: 100, RangeEnd: 200})
	require.NoError(t, err)
	assert.Equal(t, "B02", seq.Prefix)
	assert.Equal(t, int64(100), seq.NextNumber)
	assert.Equal(t, "B0200000100", seq.NextNCF)
	assert.Equal(t, int64(101), seq.Remaining)

	_, err = e.sequences.ConfigureSequence(e.ctx, "B02", dto.ConfigureSequenceRequest{RangeStart: 1, RangeEnd: 200, NextNumber: 50})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.sequences.ConfigureSequence(e.ctx, "B02", dto.ConfigureSequenceRequest{RangeStart: 300, RangeEnd: 200})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	seq, err = e.sequences.ConfigureSequence(e.ctx, "B02", dto.ConfigureSequenceRequest{RangeStart: 100, RangeEnd: 200, NextNumber: 150})
	require.NoError(t, err)
	assert.Equal(t, int64(51), seq.Remaining)

	_, err = e.invoices.CreateInvoice(e.ctx, e.sale(t, "", 1), "B01")
	require.NoError(t, err)

	list, err := e.sequences.ListSequences(e.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B01", list[0].Prefix)
	assert.Equal(t, int64(2), list[0].NextNumber)
	assert.Equal(t, int64(-1), list[0].Remaining)
	assert.Equal(t, "B02", list[1].Prefix)
}

type fakeGenerator struct {
	got billing.InvoicePDFData
	err error
}

func (g *fakeGenerator) GenerateInvoicePDF(_ context.Context, data billing.InvoicePDFData) ([]byte, error) {
	g.got = data
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-fake"), nil
}

func TestDownloadInvoicePDF(t *testing.T) {
	e := newEnv(t, 8)
	c, err := e.catalog.CreateCustomer(e.ctx, dto.CreateCustomerRequest{Name: "Clínica Norte", TaxID: "131000001"})
	require.NoError(t, err)
	inv, err := e.invoices.CreateInvoice(e.ctx, e.sale(t, c.ID, 2), "B01")
	require.NoError(t, err)

	gen := &fakeGenerator{}
	uc := billing.NewPDFUseCase(e.store, gen, billing.Issuer{Name: "Farmacia Central", TaxID: "101000001"})

	pdf, filename, err := uc.DownloadInvoicePDF(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Equal(t, "factura_B0100000001.pdf", filename)

	assert.Equal(t, "Farmacia Central", gen.got.Issuer.Name)
	require.NotNil(t, gen.got.Customer)
	assert.Equal(t, "Clínica Norte", gen.got.Customer.Name)
	require.Len(t, gen.got.Lines, 1)
	line := gen.got.Lines[0]
	assert.Equal(t, "Amoxicilina 500mg", line.MedicineName)
	assert.Equal(t, "AMOX-500", line.SKU)
	assert.True(t, decimal.RequireFromString("0.18").Equal(line.TaxRate))
	assert.True(t, decimal.NewFromInt(200).Equal(line.Subtotal))

	_, _, err = uc.DownloadInvoicePDF(e.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	gen.err = errors.New("fuente no encontrada")
	_, _, err = uc.DownloadInvoicePDF(e.ctx, inv.ID)
	assert.Error(t, err)
}
