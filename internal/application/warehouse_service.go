package application

import (
	"context"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
)

// WarehouseService manages warehouses and direct stock adjustments
type WarehouseService struct {
	warehouses domain.WarehouseRepository
	products   domain.ProductRepository
	logger     *logging.Logger
}

func NewWarehouseService(warehouses domain.WarehouseRepository, products domain.ProductRepository, logger *logging.Logger) *WarehouseService {
	return &WarehouseService{
		warehouses: warehouses,
		products:   products,
		logger:     logger.WithComponent("warehouse-service"),
	}
}

func (s *WarehouseService) Create(ctx context.Context, cmd CreateWarehouseCommand) (*WarehouseDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	w, err := domain.NewWarehouse(cmd.Name)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	if err := s.warehouses.Insert(ctx, w); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	s.logger.WithContext(ctx).Info("warehouse created", "warehouseId", w.ID.Hex(), "name", w.Name)
	return s.toDTO(ctx, w), nil
}

func (s *WarehouseService) Rename(ctx context.Context, id string, cmd UpdateWarehouseCommand) (*WarehouseDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(id, "warehouse")
	if err != nil {
		return nil, err
	}
	if err := s.warehouses.UpdateName(ctx, oid, cmd.Name); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	w, err := s.warehouses.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	return s.toDTO(ctx, w), nil
}

func (s *WarehouseService) Get(ctx context.Context, id string) (*WarehouseDTO, error) {
	oid, err := parseID(id, "warehouse")
	if err != nil {
		return nil, err
	}
	w, err := s.warehouses.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	return s.toDTO(ctx, w), nil
}

func (s *WarehouseService) List(ctx context.Context, page api.PageRequest) ([]WarehouseDTO, error) {
	opts := domain.ListOptions{Offset: page.Offset(), Limit: page.Limit()}
	ws, err := s.warehouses.FindAll(ctx, opts)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dtos := make([]WarehouseDTO, 0, len(ws))
	for _, w := range ws {
		dtos = append(dtos, *s.toDTO(ctx, w))
	}
	return dtos, nil
}

// Delete removes an empty warehouse. Warehouses still holding stock must be
// drained by transfer first.
func (s *WarehouseService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "warehouse")
	if err != nil {
		return err
	}

	w, err := s.warehouses.FindByID(ctx, oid)
	if err != nil {
		return apperrors.MapDomainError(err)
	}
	for _, e := range w.Stock {
		if e.Quantity != 0 {
			return apperrors.ErrDomainRule("warehouse still holds stock")
		}
	}

	if err := s.warehouses.Delete(ctx, oid); err != nil {
		return apperrors.MapDomainError(err)
	}

	s.logger.WithContext(ctx).Info("warehouse deleted", "warehouseId", id)
	return nil
}

// GetStockEntry returns the single stock entry a warehouse holds for one
// product. A warehouse that never stocked the product reports quantity zero.
func (s *WarehouseService) GetStockEntry(ctx context.Context, id, productID string) (*WarehouseEntryDTO, error) {
	oid, err := parseID(id, "warehouse")
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}

	w, err := s.warehouses.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	entry := WarehouseEntryDTO{
		ProductID: pid.Hex(),
		Quantity:  w.StockFor(pid),
	}
	if p, err := s.products.FindByID(ctx, pid); err == nil {
		entry.ProductName = p.Name
	}
	return &entry, nil
}

// SetStock sets the absolute quantity a warehouse holds for a product,
// overwriting whatever is there
func (s *WarehouseService) SetStock(ctx context.Context, id string, cmd SetWarehouseStockCommand) (*WarehouseDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(id, "warehouse")
	if err != nil {
		return nil, err
	}
	productID, err := parseID(cmd.ProductID, "product")
	if err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	if err := s.warehouses.SetStock(ctx, oid, productID, cmd.Quantity); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	w, err := s.warehouses.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	return s.toDTO(ctx, w), nil
}

func (s *WarehouseService) toDTO(ctx context.Context, w *domain.Warehouse) *WarehouseDTO {
	dto := WarehouseDTO{
		ID:        w.ID.Hex(),
		Name:      w.Name,
		Stock:     make([]WarehouseEntryDTO, 0, len(w.Stock)),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for _, e := range w.Stock {
		entry := WarehouseEntryDTO{
			ProductID: e.ProductID.Hex(),
			Quantity:  e.Quantity,
		}
		if p, err := s.products.FindByID(ctx, e.ProductID); err == nil {
			entry.ProductName = p.Name
		}
		dto.Stock = append(dto.Stock, entry)
	}
	return &dto
}
