package application

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/metrics"
)

// Guard messages surfaced verbatim to clients, checked in this order
const (
	msgSameLocation      = "Source is same as destination"
	msgNonPositiveAmount = "Must be greater than 0"
	msgSourceNotFound    = "Source not found"
	msgDestNotFound      = "Destination not found"
	msgInsufficientStock = "Transfer amount is greater than stored quantity"
)

// TransferService moves stock between locations. Unlike order processing,
// transfers never go negative: the source must hold at least the requested
// amount, checked again at write time against concurrent drains.
type TransferService struct {
	products   domain.ProductRepository
	warehouses domain.WarehouseRepository
	movements  domain.StockMovementRepository
	tx         domain.TxRunner
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

func NewTransferService(
	products domain.ProductRepository,
	warehouses domain.WarehouseRepository,
	movements domain.StockMovementRepository,
	tx domain.TxRunner,
	logger *logging.Logger,
	m *metrics.Metrics,
) *TransferService {
	return &TransferService{
		products:   products,
		warehouses: warehouses,
		movements:  movements,
		tx:         tx,
		logger:     logger.WithComponent("transfer-service"),
		metrics:    m,
	}
}

// Transfer validates and executes a stock transfer, returning the product's
// refreshed stock picture
func (s *TransferService) Transfer(ctx context.Context, cmd TransferStockCommand) (*TransferResultDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	productID, err := parseID(cmd.ProductID, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	source, err := s.resolveLocation(cmd.Source)
	if err != nil {
		return nil, err
	}
	dest, err := s.resolveLocation(cmd.Destination)
	if err != nil {
		return nil, err
	}

	if sameLocation(source, dest) {
		s.metrics.RecordStockTransfer(false)
		return nil, apperrors.ErrDomainRule(msgSameLocation)
	}
	if cmd.Amount <= 0 {
		s.metrics.RecordStockTransfer(false)
		return nil, apperrors.ErrDomainRule(msgNonPositiveAmount)
	}

	sourceStock, err := s.locationStock(ctx, product, source)
	if err != nil {
		s.metrics.RecordStockTransfer(false)
		return nil, apperrors.ErrDomainRule(msgSourceNotFound)
	}
	if _, err := s.locationStock(ctx, product, dest); err != nil {
		s.metrics.RecordStockTransfer(false)
		return nil, apperrors.ErrDomainRule(msgDestNotFound)
	}
	if sourceStock < cmd.Amount {
		s.metrics.RecordStockTransfer(false)
		return nil, apperrors.ErrDomainRule(msgInsufficientStock)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.withdraw(txCtx, productID, source, cmd.Amount); err != nil {
			return err
		}
		if err := s.deposit(txCtx, productID, dest, cmd.Amount); err != nil {
			return err
		}

		out := domain.NewStockMovement(productID, source, -cmd.Amount, domain.ReasonTransferOut, nil)
		out.Remarks = cmd.Remarks
		if err := s.movements.Insert(txCtx, out); err != nil {
			return err
		}
		in := domain.NewStockMovement(productID, dest, cmd.Amount, domain.ReasonTransferIn, nil)
		in.Remarks = cmd.Remarks
		return s.movements.Insert(txCtx, in)
	})
	if err != nil {
		s.metrics.RecordStockTransfer(false)
		return nil, apperrors.MapDomainError(err)
	}

	s.metrics.RecordStockTransfer(true)
	s.metrics.RecordStockMovement(string(domain.ReasonTransferOut))
	s.metrics.RecordStockMovement(string(domain.ReasonTransferIn))
	s.logger.WithContext(ctx).Info("stock transferred",
		"productId", productID.Hex(),
		"amount", cmd.Amount,
		"sourceKind", string(source.Kind),
		"destinationKind", string(dest.Kind),
	)
	return s.result(ctx, productID)
}

func (s *TransferService) resolveLocation(loc TransferLocation) (domain.Location, error) {
	if loc.Kind == string(domain.LocationStore) {
		return domain.StoreLocation(), nil
	}
	wid, err := parseOptionalID(loc.WarehouseID, "warehouse")
	if err != nil || wid == nil {
		return domain.Location{}, apperrors.ErrValidation("warehouseId is required for warehouse locations")
	}
	return domain.WarehouseLocation(*wid), nil
}

func sameLocation(a, b domain.Location) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == domain.LocationStore {
		return true
	}
	return a.WarehouseID != nil && b.WarehouseID != nil && *a.WarehouseID == *b.WarehouseID
}

// locationStock resolves a location and reads its current holding of the
// product. An unresolvable location reports an error the caller translates
// to the source/destination guard message.
func (s *TransferService) locationStock(ctx context.Context, product *domain.Product, loc domain.Location) (int, error) {
	if loc.Kind == domain.LocationStore {
		return product.Stock, nil
	}
	w, err := s.warehouses.FindByID(ctx, *loc.WarehouseID)
	if err != nil {
		return 0, err
	}
	return w.StockFor(product.ID), nil
}

func (s *TransferService) withdraw(ctx context.Context, productID primitive.ObjectID, loc domain.Location, amount int) error {
	if loc.Kind == domain.LocationStore {
		return s.products.IncrementStock(ctx, productID, -amount)
	}
	ok, err := s.warehouses.DecrementStockIfAvailable(ctx, *loc.WarehouseID, productID, amount)
	if err != nil {
		return err
	}
	if !ok {
		// A concurrent transfer drained the source between the read and
		// the write
		return apperrors.ErrDomainRule(msgInsufficientStock)
	}
	return nil
}

func (s *TransferService) deposit(ctx context.Context, productID primitive.ObjectID, loc domain.Location, amount int) error {
	if loc.Kind == domain.LocationStore {
		return s.products.IncrementStock(ctx, productID, amount)
	}
	return s.warehouses.IncrementStock(ctx, *loc.WarehouseID, productID, amount)
}

func (s *TransferService) result(ctx context.Context, productID primitive.ObjectID) (*TransferResultDTO, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dto := TransferResultDTO{
		ProductID:  product.ID.Hex(),
		StoreStock: product.Stock,
	}
	holders, err := s.warehouses.FindHoldingProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	for _, w := range holders {
		dto.WarehouseStock = append(dto.WarehouseStock, WarehouseStockDTO{
			WarehouseID:   w.ID.Hex(),
			WarehouseName: w.Name,
			Quantity:      w.StockFor(productID),
		})
	}
	return &dto, nil
}
