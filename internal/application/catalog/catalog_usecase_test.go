package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
)

func newUseCase() *catalog.CatalogUseCase {
	return catalog.NewCatalogUseCase(memory.NewStore(), nil)
}

func TestCreateMedicine_StockInicial(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	m, err := uc.CreateMedicine(ctx, dto.CreateMedicineRequest{
		SKU: " IBU-400 ", Name: "Ibuprofeno 400mg", Price: decimal.RequireFromString("12.50"), OpeningStock: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "IBU-400", m.SKU)
	assert.Equal(t, int64(40), m.Stock)

	k, err := uc.ListMovements(ctx, m.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, k.Movements, 1)
	assert.Equal(t, "OPENING", k.Movements[0].DocumentType)
	assert.Equal(t, "APPLY", k.Movements[0].Kind)
	assert.Equal(t, int64(40), k.Movements[0].Quantity)
	assert.Equal(t, int64(40), k.Balance)
	assert.Equal(t, 20, k.Page.Limit)
}

func TestCreateMedicine_SinStockNoRegistraMovimiento(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	m, err := uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "A", Name: "Acetaminofén"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Stock)

	k, err := uc.ListMovements(ctx, m.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, k.Movements)
	assert.Equal(t, int64(0), k.Balance)
}

func TestCreateMedicine_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	_, err := uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "X", Name: "X", OpeningStock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "X", Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "X", Name: "X"})
	require.NoError(t, err)
	_, err = uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "X", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestGetYListMedicines(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	b, err := uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "B", Name: "Loratadina", OpeningStock: 3})
	require.NoError(t, err)
	_, err = uc.CreateMedicine(ctx, dto.CreateMedicineRequest{SKU: "A", Name: "Amoxicilina"})
	require.NoError(t, err)

	got, err := uc.GetMedicine(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Stock)

	_, err = uc.GetMedicine(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.GetStock(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.ListMovements(ctx, "no-existe", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.ListMedicines(ctx, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Amoxicilina", list.Items[0].Name)
	assert.Equal(t, "Loratadina", list.Items[1].Name)

	page2, err := uc.ListMedicines(ctx, dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "Loratadina", page2.Items[0].Name)
}

func TestCreateSupplierYCustomer(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	_, err := uc.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	s, err := uc.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "Laboratorios Rowe", TaxID: "101000002"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	c, err := uc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Pedro", TaxID: "00100000001"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	_, err = uc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Otro Pedro", TaxID: " 00100000001 "})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Sin RNC"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
