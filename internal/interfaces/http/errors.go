package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
)

// writeError traduce errores de dominio a status HTTP con el detalle estructurado en Details.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("error en request")
	}
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		ise       *domain.InsufficientStockError
		frozen    *domain.FrozenDocumentError
		invoiced  *domain.AlreadyInvoicedError
		saleNF    *domain.SaleNotFoundError
		cancelled *domain.AlreadyCancelledError
	)
	switch {
	case errors.As(err, &ise):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente",
			Details: map[string]any{"medicine_id": ise.MedicineID, "requested": ise.Requested, "available": ise.Available},
		}
	case errors.As(err, &frozen):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "FROZEN_DOCUMENT", Message: "la venta ya tiene factura y no puede modificarse",
			Details: map[string]any{"sale_id": frozen.SaleID, "invoice_id": frozen.InvoiceID},
		}
	case errors.As(err, &invoiced):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "ALREADY_INVOICED", Message: "la venta ya fue facturada",
			Details: map[string]any{"sale_id": invoiced.SaleID, "invoice_id": invoiced.InvoiceID},
		}
	case errors.As(err, &saleNF):
		return fiber.StatusNotFound, dto.ErrorResponse{
			Code: "SALE_NOT_FOUND", Message: "venta no encontrada",
			Details: map[string]any{"sale_id": saleNF.SaleID},
		}
	case errors.As(err, &cancelled):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "ALREADY_CANCELLED", Message: "la factura ya está anulada",
			Details: map[string]any{"invoice_id": cancelled.InvoiceID},
		}
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "INVOICE_NOT_FOUND", Message: "factura no encontrada"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrStorageFailure):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible, reintente"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"}
	}
}

// ErrorHandler para fiber.Config: errores no manejados y de fiber (404 de ruta, body demasiado grande).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return writeError(c, err)
}
