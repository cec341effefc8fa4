// Package catalog registra medicamentos, proveedores y clientes y expone existencias y kardex.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/ledger"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// CatalogUseCase casos de uso del catálogo.
type CatalogUseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(txRunner ports.TxRunner, log *logger.Logger) *CatalogUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogUseCase{txRunner: txRunner, log: log}
}

// CreateMedicine registra un medicamento. El stock arranca en 0; OpeningStock se aplica
// a través del ledger y queda en el kardex como movimiento OPENING.
func (uc *CatalogUseCase) CreateMedicine(ctx context.Context, in dto.CreateMedicineRequest) (*dto.MedicineResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" || in.OpeningStock < 0 || in.OpeningStock > ledger.MaxLineQuantity {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() || in.TaxRate.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var created *entity.Medicine
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		existing, err := uow.Medicines().GetBySKU(ctx, in.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		now := time.Now()
		m := &entity.Medicine{
			ID:          uuid.New().String(),
			SKU:         in.SKU,
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Cost:        in.Cost,
			TaxRate:     in.TaxRate,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uow.Medicines().Create(ctx, m); err != nil {
			return err
		}
		if in.OpeningStock > 0 {
			adj, err := ledger.ValidateAndApply(ctx, uow.Medicines(), ledger.Deltas{m.ID: in.OpeningStock})
			if err != nil {
				return err
			}
			m.Stock = adj[0].StockAfter
			if err := uow.Movements().Create(ctx, &entity.StockMovement{
				ID:           uuid.New().String(),
				MedicineID:   m.ID,
				DocumentType: entity.DocumentTypeOpening,
				DocumentID:   m.ID,
				Kind:         entity.MovementKindApply,
				Quantity:     in.OpeningStock,
				StockAfter:   m.Stock,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("medicine_id", created.ID).Str("sku", created.SKU).Int64("stock", created.Stock).Msg("medicamento registrado")
	return toMedicineResponse(created), nil
}

// GetMedicine devuelve el medicamento con su existencia actual.
func (uc *CatalogUseCase) GetMedicine(ctx context.Context, id string) (*dto.MedicineResponse, error) {
	var found *entity.Medicine
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		m, err := uow.Medicines().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("medicamento %s: %w", id, domain.ErrNotFound)
		}
		found = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toMedicineResponse(found), nil
}

// ListMedicines lista medicamentos paginados por nombre.
func (uc *CatalogUseCase) ListMedicines(ctx context.Context, page dto.PageRequest) (*dto.MedicineListResponse, error) {
	page.DefaultPage()
	var list []*entity.Medicine
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		var err error
		list, err = uow.Medicines().List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.MedicineListResponse{
		Items: make([]dto.MedicineResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, *toMedicineResponse(m))
	}
	return out, nil
}

// GetStock existencia actual de un medicamento.
func (uc *CatalogUseCase) GetStock(ctx context.Context, id string) (int64, error) {
	var qty int64
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		var err error
		qty, err = uow.Medicines().GetStock(ctx, id)
		return err
	})
	return qty, err
}

// ListMovements kardex de un medicamento (más recientes primero) con el balance acumulado.
func (uc *CatalogUseCase) ListMovements(ctx context.Context, medicineID string, page dto.PageRequest) (*dto.KardexResponse, error) {
	page.DefaultPage()
	out := &dto.KardexResponse{
		MedicineID: medicineID,
		Page:       dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		m, err := uow.Medicines().GetByID(ctx, medicineID)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("medicamento %s: %w", medicineID, domain.ErrNotFound)
		}
		movs, err := uow.Movements().ListByMedicine(ctx, medicineID, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		balance, err := uow.Movements().Balance(ctx, medicineID)
		if err != nil {
			return err
		}
		out.Stock = m.Stock
		out.Balance = balance
		out.Movements = make([]dto.StockMovementResponse, 0, len(movs))
		for _, mv := range movs {
			out.Movements = append(out.Movements, dto.StockMovementResponse{
				ID:           mv.ID,
				MedicineID:   mv.MedicineID,
				DocumentType: mv.DocumentType,
				DocumentID:   mv.DocumentID,
				Kind:         mv.Kind,
				Quantity:     mv.Quantity,
				StockAfter:   mv.StockAfter,
				CreatedAt:    mv.CreatedAt.Format(time.RFC3339),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Balance != out.Stock {
		uc.log.Error().Str("medicine_id", medicineID).Int64("stock", out.Stock).Int64("balance", out.Balance).
			Msg("kardex descuadrado")
	}
	return out, nil
}

// CreateSupplier registra un proveedor.
func (uc *CatalogUseCase) CreateSupplier(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     strings.TrimSpace(in.TaxID),
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		return uow.Suppliers().Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return &dto.SupplierResponse{ID: s.ID, Name: s.Name, TaxID: s.TaxID, Phone: s.Phone}, nil
}

// CreateCustomer registra un cliente; el RNC/cédula es único.
func (uc *CatalogUseCase) CreateCustomer(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		existing, err := uow.Customers().GetByTaxID(ctx, c.TaxID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return uow.Customers().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{ID: c.ID, Name: c.Name, TaxID: c.TaxID, Email: c.Email, Phone: c.Phone}, nil
}

func toMedicineResponse(m *entity.Medicine) *dto.MedicineResponse {
	return &dto.MedicineResponse{
		ID:          m.ID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Cost:        m.Cost,
		TaxRate:     m.TaxRate,
		Stock:       m.Stock,
	}
}
