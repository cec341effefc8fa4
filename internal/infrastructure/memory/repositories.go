package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// Los repositorios devuelven copias: mutar el resultado no altera el estado hasta volver a guardarlo.
// Igual que los adaptadores postgres, "no encontrado" es (nil, nil).

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ── medicamentos ─────────────────────────────────────────────────────────────

type medicineRepo struct{ st *state }

func (r medicineRepo) Create(_ context.Context, m *entity.Medicine) error {
	if _, ok := r.st.medicines[m.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.medicines {
		if m.SKU != "" && other.SKU == m.SKU {
			return domain.ErrDuplicate
		}
	}
	c := *m
	r.st.medicines[m.ID] = &c
	return nil
}

func (r medicineRepo) GetByID(_ context.Context, id string) (*entity.Medicine, error) {
	m, ok := r.st.medicines[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r medicineRepo) GetBySKU(_ context.Context, sku string) (*entity.Medicine, error) {
	for _, m := range r.st.medicines {
		if m.SKU == sku {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (r medicineRepo) List(_ context.Context, limit, offset int) ([]*entity.Medicine, error) {
	all := make([]*entity.Medicine, 0, len(r.st.medicines))
	for _, m := range r.st.medicines {
		c := *m
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

func (r medicineRepo) GetStock(_ context.Context, id string) (int64, error) {
	m, ok := r.st.medicines[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return m.Stock, nil
}

func (r medicineRepo) LockStock(_ context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		if m, ok := r.st.medicines[id]; ok {
			out[id] = m.Stock
		}
	}
	return out, nil
}

func (r medicineRepo) AdjustStock(_ context.Context, id string, delta int64) (int64, bool, error) {
	m, ok := r.st.medicines[id]
	if !ok {
		return 0, false, fmt.Errorf("medicamento %s: %w", id, domain.ErrNotFound)
	}
	if m.Stock+delta < 0 {
		return m.Stock, false, nil
	}
	m.Stock += delta
	m.UpdatedAt = time.Now()
	return m.Stock, true, nil
}

// ── proveedores y clientes ───────────────────────────────────────────────────

type supplierRepo struct{ st *state }

func (r supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	if _, ok := r.st.suppliers[s.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *s
	r.st.suppliers[s.ID] = &c
	return nil
}

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	s, ok := r.st.suppliers[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

type customerRepo struct{ st *state }

func (r customerRepo) Create(_ context.Context, cu *entity.Customer) error {
	if _, ok := r.st.customers[cu.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.customers {
		if cu.TaxID != "" && other.TaxID == cu.TaxID {
			return domain.ErrDuplicate
		}
	}
	c := *cu
	r.st.customers[cu.ID] = &c
	return nil
}

func (r customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	cu, ok := r.st.customers[id]
	if !ok {
		return nil, nil
	}
	c := *cu
	return &c, nil
}

func (r customerRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	for _, cu := range r.st.customers {
		if cu.TaxID == taxID {
			c := *cu
			return &c, nil
		}
	}
	return nil, nil
}

func (r customerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	all := make([]*entity.Customer, 0, len(r.st.customers))
	for _, cu := range r.st.customers {
		c := *cu
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

// ── entradas ─────────────────────────────────────────────────────────────────

type receiptRepo struct{ st *state }

func (r receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	if _, ok := r.st.receipts[rc.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.receipts[rc.ID] = copyReceipt(rc)
	return nil
}

func (r receiptRepo) GetByID(_ context.Context, id string) (*entity.Receipt, error) {
	rc, ok := r.st.receipts[id]
	if !ok {
		return nil, nil
	}
	return copyReceipt(rc), nil
}

func (r receiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.GetByID(ctx, id)
}

func (r receiptRepo) UpdateHeader(_ context.Context, rc *entity.Receipt) error {
	cur, ok := r.st.receipts[rc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	items := cur.Items
	upd := copyReceipt(rc)
	upd.Items = items
	r.st.receipts[rc.ID] = upd
	return nil
}

func (r receiptRepo) ReplaceItems(_ context.Context, receiptID string, items []entity.ReceiptItem) error {
	cur, ok := r.st.receipts[receiptID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Items = append([]entity.ReceiptItem(nil), items...)
	return nil
}

func (r receiptRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.receipts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.receipts, id)
	return nil
}

// ── ventas ───────────────────────────────────────────────────────────────────

type saleRepo struct{ st *state }

func (r saleRepo) Create(_ context.Context, s *entity.Sale) error {
	if _, ok := r.st.sales[s.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.sales[s.ID] = copySale(s)
	return nil
}

func (r saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	return copySale(s), nil
}

func (r saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r saleRepo) UpdateHeader(_ context.Context, s *entity.Sale) error {
	cur, ok := r.st.sales[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	items := cur.Items
	upd := copySale(s)
	upd.Items = items
	r.st.sales[s.ID] = upd
	return nil
}

func (r saleRepo) ReplaceItems(_ context.Context, saleID string, items []entity.SaleItem) error {
	cur, ok := r.st.sales[saleID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Items = append([]entity.SaleItem(nil), items...)
	return nil
}

func (r saleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.sales, id)
	return nil
}

// ── facturas ─────────────────────────────────────────────────────────────────

type invoiceRepo struct{ st *state }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if _, ok := r.st.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.invoices {
		if other.SaleID == inv.SaleID || other.NCF == inv.NCF {
			return domain.ErrDuplicate
		}
	}
	r.st.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.st.invoices[id]
	if !ok {
		return nil, nil
	}
	return copyInvoice(inv), nil
}

func (r invoiceRepo) GetBySaleID(_ context.Context, saleID string) (*entity.Invoice, error) {
	for _, inv := range r.st.invoices {
		if inv.SaleID == saleID {
			return copyInvoice(inv), nil
		}
	}
	return nil, nil
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r invoiceRepo) UpdateStatus(_ context.Context, inv *entity.Invoice) error {
	cur, ok := r.st.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = inv.Status
	cur.CancelReason = inv.CancelReason
	if inv.CancelledAt != nil {
		t := *inv.CancelledAt
		cur.CancelledAt = &t
	}
	cur.UpdatedAt = inv.UpdatedAt
	return nil
}

// ── contadores NCF ───────────────────────────────────────────────────────────

type sequenceRepo struct{ st *state }

func (r sequenceRepo) GetForUpdate(_ context.Context, prefix string) (*entity.NCFSequence, error) {
	seq, ok := r.st.sequences[prefix]
	if !ok {
		now := time.Now()
		seq = &entity.NCFSequence{Prefix: prefix, NextNumber: 1, CreatedAt: now, UpdatedAt: now}
		r.st.sequences[prefix] = seq
	}
	c := *seq
	return &c, nil
}

func (r sequenceRepo) GetByPrefix(_ context.Context, prefix string) (*entity.NCFSequence, error) {
	seq, ok := r.st.sequences[prefix]
	if !ok {
		return nil, nil
	}
	c := *seq
	return &c, nil
}

func (r sequenceRepo) Advance(_ context.Context, prefix string, nextNumber int64) error {
	seq, ok := r.st.sequences[prefix]
	if !ok {
		return domain.ErrNotFound
	}
	seq.NextNumber = nextNumber
	seq.UpdatedAt = time.Now()
	return nil
}

func (r sequenceRepo) Upsert(_ context.Context, seq *entity.NCFSequence) error {
	c := *seq
	if cur, ok := r.st.sequences[seq.Prefix]; ok {
		c.CreatedAt = cur.CreatedAt
	}
	r.st.sequences[seq.Prefix] = &c
	return nil
}

func (r sequenceRepo) List(_ context.Context) ([]*entity.NCFSequence, error) {
	out := make([]*entity.NCFSequence, 0, len(r.st.sequences))
	for _, seq := range r.st.sequences {
		c := *seq
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out, nil
}

// ── kardex ───────────────────────────────────────────────────────────────────

type movementRepo struct{ st *state }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.st.movements = append(r.st.movements, *m)
	return nil
}

func (r movementRepo) ListByMedicine(_ context.Context, medicineID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	// Más recientes primero, como el adaptador postgres.
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		if r.st.movements[i].MedicineID == medicineID {
			m := r.st.movements[i]
			out = append(out, &m)
		}
	}
	return page(out, limit, offset), nil
}

func (r movementRepo) Balance(_ context.Context, medicineID string) (int64, error) {
	var sum int64
	for _, m := range r.st.movements {
		if m.MedicineID == medicineID {
			sum += m.Quantity
		}
	}
	return sum, nil
}
