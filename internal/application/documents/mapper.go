package documents

import (
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	out := &dto.ReceiptResponse{
		ID:            r.ID,
		SupplierID:    r.SupplierID,
		Date:          r.Date.Format(dto.DateLayout),
		Notes:         r.Notes,
		Currency:      r.Currency,
		PaymentMethod: r.PaymentMethod,
		Items:         make([]dto.ReceiptItemResponse, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, dto.ReceiptItemResponse{
			ID:         it.ID,
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
		})
	}
	return out
}

func toSaleResponse(s *entity.Sale, inv *entity.Invoice) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		Date:          s.Date.Format(dto.DateLayout),
		Notes:         s.Notes,
		Currency:      s.Currency,
		PaymentMethod: s.PaymentMethod,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
	}
	if inv != nil {
		out.Invoiced = true
		out.InvoiceID = inv.ID
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:         it.ID,
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TaxRate:    it.TaxRate,
		})
	}
	return out
}
