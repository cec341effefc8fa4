package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/billing"
	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/documents"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Farmacia-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("sin conexión") }

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	allocator := billing.NewSequenceAllocator(8, 10, nil)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		CatalogUC:  catalog.NewCatalogUseCase(store, nil),
		ReceiptUC:  documents.NewReceiptUseCase(store, nil),
		SaleUC:     documents.NewSaleUseCase(store, nil),
		InvoiceUC:  billing.NewInvoiceUseCase(store, allocator, nil),
		InvoicePDF: billing.NewPDFUseCase(store, pdf.NewMarotoPDFGenerator(), billing.Issuer{Name: "Farmacia Test"}),
		SequenceUC: billing.NewSequenceUseCase(store, allocator, nil),
		Store:      store,
		AppName:    "farmacia-test",
	})
	return app
}

// doJSON lanza la petición y decodifica la respuesta en out (si no es nil).
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createMedicine(t *testing.T, app *fiber.App, sku string, opening int64) dto.MedicineResponse {
	t.Helper()
	var m dto.MedicineResponse
	resp := doJSON(t, app, http.MethodPost, "/api/medicines", map[string]any{
		"sku": sku, "name": "Medicamento " + sku, "price": "100", "tax_rate": "0.18", "opening_stock": opening,
	}, &m)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return m
}

func createSupplier(t *testing.T, app *fiber.App) string {
	t.Helper()
	var s dto.SupplierResponse
	resp := doJSON(t, app, http.MethodPost, "/api/suppliers", map[string]any{"name": "Distribuidora"}, &s)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return s.ID
}

func sellBody(medicineID string, qty int64) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"medicine_id": medicineID, "quantity": qty, "unit_price": "100", "tax_rate": "0.18"}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	app := buildTestApp(t)
	var body map[string]string
	resp := doJSON(t, app, http.MethodGet, "/health", nil, &body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestHealth_AlmacenamientoCaido(t *testing.T) {
	app := fiber.New()
	app.Get("/health", apphttp.NewHealthHandler(failingPinger{}, "farmacia-test").Check)
	resp := doJSON(t, app, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestReceiptAndSaleFlow(t *testing.T) {
	app := buildTestApp(t)
	med := createMedicine(t, app, "AMOX-500", 0)
	supplierID := createSupplier(t, app)

	var rc dto.ReceiptResponse
	resp := doJSON(t, app, http.MethodPost, "/api/receipts", map[string]any{
		"supplier_id": supplierID,
		"items":       []map[string]any{{"medicine_id": med.ID, "quantity": 10, "unit_cost": "40"}},
	}, &rc)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var sale dto.SaleResponse
	resp = doJSON(t, app, http.MethodPost, "/api/sales", sellBody(med.ID, 4), &sale)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got dto.MedicineResponse
	doJSON(t, app, http.MethodGet, "/api/medicines/"+med.ID, nil, &got)
	assert.Equal(t, int64(6), got.Stock)

	var kardex dto.KardexResponse
	resp = doJSON(t, app, http.MethodGet, "/api/medicines/"+med.ID+"/movements", nil, &kardex)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, kardex.Movements, 2)
	assert.Equal(t, kardex.Stock, kardex.Balance)

	// Revertir la entrada dejaría 6-10 < 0: se rechaza con el detalle del faltante.
	var errBody dto.ErrorResponse
	resp = doJSON(t, app, http.MethodDelete, "/api/receipts/"+rc.ID, nil, &errBody)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, med.ID, errBody.Details["medicine_id"])
	assert.EqualValues(t, 10, errBody.Details["requested"])
	assert.EqualValues(t, 6, errBody.Details["available"])

	doJSON(t, app, http.MethodGet, "/api/medicines/"+med.ID, nil, &got)
	assert.Equal(t, int64(6), got.Stock)
}

func TestCreateSale_StockInsuficiente(t *testing.T) {
	app := buildTestApp(t)
	med := createMedicine(t, app, "IBU-400", 2)

	var errBody dto.ErrorResponse
	resp := doJSON(t, app, http.MethodPost, "/api/sales", sellBody(med.ID, 3), &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
}

func TestCreateSale_Validacion(t *testing.T) {
	app := buildTestApp(t)

	var errBody dto.ErrorResponse
	resp := doJSON(t, app, http.MethodPost, "/api/sales", map[string]any{"items": []any{}}, &errBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)

	resp = doJSON(t, app, http.MethodPost, "/api/sales", sellBody("x", 0), &errBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	med := createMedicine(t, app, "ACE-500", 20)
	resp = doJSON(t, app, http.MethodPost, "/api/sales", sellBody(med.ID, math.MaxInt64), &errBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)

	var stock dto.StockResponse
	resp = doJSON(t, app, http.MethodGet, "/api/medicines/"+med.ID+"/stock", nil, &stock)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, med.ID, stock.MedicineID)
	assert.Equal(t, int64(20), stock.Stock)
}

func TestInvoiceFlow(t *testing.T) {
	app := buildTestApp(t)
	med := createMedicine(t, app, "LOR-10", 20)

	var sale dto.SaleResponse
	resp := doJSON(t, app, http.MethodPost, "/api/sales", sellBody(med.ID, 2), &sale)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var inv dto.InvoiceResponse
	resp = doJSON(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/invoice", map[string]any{"prefix": "b01"}, &inv)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "B0100000001", inv.NCF)
	assert.Equal(t, "emitida", inv.Status)
	assert.Equal(t, "236", inv.GrandTotal.String())

	var errBody dto.ErrorResponse
	resp = doJSON(t, app, http.MethodPost, "/api/sales/"+sale.ID+"/invoice", map[string]any{"prefix": "B01"}, &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_INVOICED", errBody.Code)

	resp = doJSON(t, app, http.MethodPut, "/api/sales/"+sale.ID, sellBody(med.ID, 1), &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FROZEN_DOCUMENT", errBody.Code)
	assert.Equal(t, inv.ID, errBody.Details["invoice_id"])

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+inv.ID+"/pdf", nil)
	pdfResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, pdfResp.StatusCode)
	assert.Equal(t, "application/pdf", pdfResp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, pdfResp.Header.Get(fiber.HeaderContentDisposition), "factura_B0100000001.pdf")

	var cancelled dto.InvoiceResponse
	resp = doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/cancel", map[string]any{"reason": "error de digitación"}, &cancelled)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "anulada", cancelled.Status)

	resp = doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/cancel", map[string]any{"reason": "otra vez"}, &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_CANCELLED", errBody.Code)

	// Anulada sigue congelando la venta.
	resp = doJSON(t, app, http.MethodDelete, "/api/sales/"+sale.ID, nil, &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FROZEN_DOCUMENT", errBody.Code)
}

func TestInvoice_VentaInexistente(t *testing.T) {
	app := buildTestApp(t)
	var errBody dto.ErrorResponse
	resp := doJSON(t, app, http.MethodPost, "/api/sales/no-existe/invoice", map[string]any{"prefix": "B01"}, &errBody)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SALE_NOT_FOUND", errBody.Code)

	resp = doJSON(t, app, http.MethodGet, "/api/invoices/no-existe", nil, &errBody)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "INVOICE_NOT_FOUND", errBody.Code)
}

func TestSequences(t *testing.T) {
	app := buildTestApp(t)

	var seq dto.SequenceResponse
	resp := doJSON(t, app, http.MethodPut, "/api/ncf-sequences/B02", map[string]any{
		"range_start": 100, "range_end": 200,
	}, &seq)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(100), seq.NextNumber)
	assert.Equal(t, "B0200000100", seq.NextNCF)
	assert.Equal(t, int64(101), seq.Remaining)

	var errBody dto.ErrorResponse
	resp = doJSON(t, app, http.MethodPut, "/api/ncf-sequences/B02", map[string]any{
		"range_start": 1, "range_end": 200, "next_number": 5,
	}, &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errBody.Code)

	resp = doJSON(t, app, http.MethodPut, "/api/ncf-sequences/B02", map[string]any{
		"range_start": 300, "range_end": 200,
	}, &errBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var list []dto.SequenceResponse
	resp = doJSON(t, app, http.MethodGet, "/api/ncf-sequences", nil, &list)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "B02", list[0].Prefix)
}

func TestCreateCustomer_Duplicado(t *testing.T) {
	app := buildTestApp(t)
	body := map[string]any{"name": "Juan Pérez", "tax_id": "00112345678"}
	resp := doJSON(t, app, http.MethodPost, "/api/customers", body, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var errBody dto.ErrorResponse
	resp = doJSON(t, app, http.MethodPost, "/api/customers", body, &errBody)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errBody.Code)
}

func TestMedicine_NoEncontrado(t *testing.T) {
	app := buildTestApp(t)
	var errBody dto.ErrorResponse
	resp := doJSON(t, app, http.MethodGet, "/api/medicines/no-existe", nil, &errBody)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errBody.Code)

	resp = doJSON(t, app, http.MethodGet, "/api/medicines/no-existe/stock", nil, &errBody)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}
