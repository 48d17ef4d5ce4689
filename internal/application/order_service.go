package application

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/metrics"
)

// CounterpartyLookup resolves the counterparty of one order kind: vendors
// for purchase orders, customers for sales orders
type CounterpartyLookup interface {
	NameByID(ctx context.Context, id primitive.ObjectID) (string, error)
}

// OrderServiceConfig carries the policy knobs for order processing
type OrderServiceConfig struct {
	// DeleteRestocks controls whether deleting an order reverses its stock
	// effect. On by default.
	DeleteRestocks bool
}

// OrderService runs one order kind end to end: creation applies stock,
// amendment reconciles stock against the pre-amendment state, deletion
// optionally reverses it. Purchase and sales orders each get an instance;
// the flows differ only in stock direction and counterparty type.
type OrderService struct {
	kind           domain.OrderKind
	orders         domain.OrderRepository
	products       domain.ProductRepository
	warehouses     domain.WarehouseRepository
	counterparties CounterpartyLookup
	applier        *stockApplier
	tx             domain.TxRunner
	config         OrderServiceConfig
	logger         *logging.Logger
	metrics        *metrics.Metrics
}

func NewOrderService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	warehouses domain.WarehouseRepository,
	movements domain.StockMovementRepository,
	counterparties CounterpartyLookup,
	tx domain.TxRunner,
	config OrderServiceConfig,
	logger *logging.Logger,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		kind:           orders.Kind(),
		orders:         orders,
		products:       products,
		warehouses:     warehouses,
		counterparties: counterparties,
		applier:        newStockApplier(products, warehouses, movements),
		tx:             tx,
		config:         config,
		logger:         logger.WithComponent(string(orders.Kind()) + "-order-service"),
		metrics:        m,
	}
}

// Create persists a new order and applies its stock effect in one
// transaction. Reference checks run before any write, so a bad product or
// warehouse on line N leaves lines 1..N-1 untouched as well.
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	counterpartyID, err := parseOptionalID(cmd.CounterpartyID, s.counterpartyResource())
	if err != nil {
		return nil, err
	}
	if err := s.checkCounterparty(ctx, counterpartyID); err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		items, err := s.resolveItems(txCtx, cmd.Items, nil)
		if err != nil {
			return err
		}

		number, err := s.orders.NextOrderNumber(txCtx)
		if err != nil {
			return err
		}

		var orderDate time.Time
		if cmd.OrderDate != nil {
			orderDate = *cmd.OrderDate
		}
		order, err = domain.NewOrder(s.kind, number, counterpartyID, items, orderDate, cmd.InvoiceNumber, cmd.Remarks)
		if err != nil {
			return err
		}

		if err := s.orders.Insert(txCtx, order); err != nil {
			return err
		}
		return s.applier.apply(txCtx, order, s.kind.Direction(), s.movementReason())
	})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	s.metrics.RecordOrderCreated(string(s.kind))
	s.recordMovements(len(order.Items), s.movementReason())
	s.logger.WithContext(ctx).Info("order created",
		"orderId", order.ID.Hex(),
		"orderNumber", order.OrderNumber,
		"total", order.Total,
	)
	return s.populate(ctx, order)
}

// Update amends an order. Stock is reconciled in two phases inside one
// transaction: the persisted pre-amendment state is fully reversed, then
// the post-amendment state is applied. Changing a line's warehouse or
// variant therefore moves stock between the right locations, and a failure
// anywhere leaves both the order and every counter untouched.
// Omitted fields are preserved: a nil counterpartyId keeps the stored one,
// and a nil items list amends metadata only, leaving stock untouched.
func (s *OrderService) Update(ctx context.Context, id string, cmd UpdateOrderCommand) (*OrderDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(id, s.orderResource())
	if err != nil {
		return nil, err
	}

	counterpartyID, err := parseOptionalID(cmd.CounterpartyID, s.counterpartyResource())
	if err != nil {
		return nil, err
	}
	if counterpartyID != nil {
		if err := s.checkCounterparty(ctx, counterpartyID); err != nil {
			return nil, err
		}
	}

	var order *domain.Order
	var reversed, applied int
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		order, err = s.orders.FindByID(txCtx, oid)
		if err != nil {
			return err
		}

		if counterpartyID == nil {
			counterpartyID = order.CounterpartyID
		}
		if counterpartyID == nil && s.kind == domain.OrderKindPurchase {
			return apperrors.ErrValidationWithFields("validation failed", map[string]string{
				"vendorId": "vendorId is required for purchase orders",
			})
		}

		previous := *order
		previous.Items = append([]domain.LineItem(nil), order.Items...)

		items := previous.Items
		replaceItems := cmd.Items != nil
		if replaceItems {
			items, err = s.resolveItems(txCtx, cmd.Items, &previous)
			if err != nil {
				return err
			}
		}

		var orderDate time.Time
		if cmd.OrderDate != nil {
			orderDate = *cmd.OrderDate
		}
		if err := order.Amend(counterpartyID, items, orderDate, cmd.InvoiceNumber, cmd.Remarks); err != nil {
			return err
		}

		if err := s.orders.Update(txCtx, order); err != nil {
			return err
		}
		if !replaceItems {
			return nil
		}
		reversed = len(previous.Items)
		applied = len(order.Items)
		if err := s.applier.reverse(txCtx, &previous, s.kind.Direction()); err != nil {
			return fmt.Errorf("reverse previous stock state: %w", err)
		}
		return s.applier.apply(txCtx, order, s.kind.Direction(), s.movementReason())
	})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	s.metrics.RecordOrderAmended(string(s.kind))
	s.recordMovements(reversed, domain.ReasonOrderReversal)
	s.recordMovements(applied, s.movementReason())
	s.logger.WithContext(ctx).Info("order amended",
		"orderId", order.ID.Hex(),
		"orderNumber", order.OrderNumber,
		"total", order.Total,
	)
	return s.populate(ctx, order)
}

// Delete removes an order, reversing its stock effect unless configured not
// to
func (s *OrderService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, s.orderResource())
	if err != nil {
		return err
	}

	var restocked int
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByID(txCtx, oid)
		if err != nil {
			return err
		}

		if err := s.orders.Delete(txCtx, order.ID); err != nil {
			return err
		}
		if s.config.DeleteRestocks {
			restocked = len(order.Items)
			return s.applier.reverse(txCtx, order, s.kind.Direction())
		}
		return nil
	})
	if err != nil {
		return apperrors.MapDomainError(err)
	}

	s.metrics.RecordOrderDeleted(string(s.kind))
	s.recordMovements(restocked, domain.ReasonOrderReversal)
	s.logger.WithContext(ctx).Info("order deleted", "orderId", id, "restocked", s.config.DeleteRestocks)
	return nil
}

// Get returns an order with product, warehouse and counterparty names
// populated
func (s *OrderService) Get(ctx context.Context, id string) (*OrderDTO, error) {
	oid, err := parseID(id, s.orderResource())
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	return s.populate(ctx, order)
}

// List returns a page of orders, populated like Get
func (s *OrderService) List(ctx context.Context, page api.PageRequest) (*api.PageResponse[OrderDTO], error) {
	opts := domain.ListOptions{Offset: page.Offset(), Limit: page.Limit()}

	orders, err := s.orders.FindAll(ctx, opts)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	total, err := s.orders.Count(ctx)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dto, err := s.populate(ctx, o)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}

	resp := api.NewPageResponse(dtos, page.Page, page.PageSize, total)
	return &resp, nil
}

// resolveItems checks every line's references and builds the domain line
// items. For sales orders the first price a product was ever sold at on
// this order is preserved as OriginalItemPrice across amendments; previous
// carries the pre-amendment state when amending.
func (s *OrderService) resolveItems(ctx context.Context, lines []OrderLineCommand, previous *domain.Order) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(lines))
	for _, lc := range lines {
		productID, err := parseID(lc.ProductID, "product")
		if err != nil {
			return nil, err
		}
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		// Lines carried over from the pre-amendment state may reference an
		// archived revision; fresh lines may not.
		if product.Archived && (previous == nil || previous.FindItemByProduct(productID) == nil) {
			return nil, apperrors.ErrNotFoundWithID("product", lc.ProductID)
		}

		var warehouseID *primitive.ObjectID
		if lc.WarehouseID != nil && *lc.WarehouseID != "" {
			wid, err := parseID(*lc.WarehouseID, "warehouse")
			if err != nil {
				return nil, err
			}
			if _, err := s.warehouses.FindByID(ctx, wid); err != nil {
				return nil, err
			}
			warehouseID = &wid
		}

		li := domain.LineItem{
			ProductID: productID,
			Quantity:  lc.Quantity,
			ItemPrice: lc.ItemPrice,
			Variant: domain.VariantSnapshot{
				Name:     lc.Variant.Name,
				Quantity: lc.Variant.Quantity,
			},
			WarehouseID: warehouseID,
		}

		if s.kind == domain.OrderKindSales {
			if previous != nil {
				if prev := previous.FindItemByProduct(productID); prev != nil && prev.OriginalItemPrice != nil {
					li.OriginalItemPrice = prev.OriginalItemPrice
				}
			}
			if li.OriginalItemPrice == nil {
				price := product.SellingPrice
				li.OriginalItemPrice = &price
			}
		}

		items = append(items, li)
	}
	return items, nil
}

func (s *OrderService) populate(ctx context.Context, o *domain.Order) (*OrderDTO, error) {
	dto := OrderDTO{
		ID:             o.ID.Hex(),
		OrderNumber:    o.OrderNumber,
		Kind:           string(s.kind),
		CounterpartyID: hexPtr(o.CounterpartyID),
		Total:          o.Total,
		OrderDate:      o.OrderDate,
		InvoiceNumber:  o.InvoiceNumber,
		Remarks:        o.Remarks,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if o.CounterpartyID != nil {
		name, err := s.counterparties.NameByID(ctx, *o.CounterpartyID)
		if err == nil {
			dto.CounterpartyName = name
		}
	}

	for _, li := range o.Items {
		line := OrderLineDTO{
			ItemID:            li.ItemID,
			ProductID:         li.ProductID.Hex(),
			Quantity:          li.Quantity,
			ItemPrice:         li.ItemPrice,
			TotalPrice:        li.TotalPrice,
			VariantName:       li.Variant.Name,
			VariantQuantity:   li.Variant.UnitFactor(),
			WarehouseID:       hexPtr(li.WarehouseID),
			OriginalItemPrice: li.OriginalItemPrice,
		}
		if p, err := s.products.FindByID(ctx, li.ProductID); err == nil {
			line.ProductName = p.Name
		}
		if li.WarehouseID != nil {
			if w, err := s.warehouses.FindByID(ctx, *li.WarehouseID); err == nil {
				line.WarehouseName = w.Name
			}
		}
		dto.Items = append(dto.Items, line)
	}

	return &dto, nil
}

// checkCounterparty verifies the referenced vendor or customer exists.
// Purchase orders always buy from a vendor; only sales orders may omit the
// counterparty (walk-in customer).
func (s *OrderService) checkCounterparty(ctx context.Context, id *primitive.ObjectID) error {
	if id == nil {
		if s.kind == domain.OrderKindPurchase {
			return apperrors.ErrValidationWithFields("validation failed", map[string]string{
				"vendorId": "vendorId is required for purchase orders",
			})
		}
		return nil
	}
	if _, err := s.counterparties.NameByID(ctx, *id); err != nil {
		return apperrors.MapDomainError(err)
	}
	return nil
}

func (s *OrderService) recordMovements(count int, reason domain.MovementReason) {
	for i := 0; i < count; i++ {
		s.metrics.RecordStockMovement(string(reason))
	}
}

func (s *OrderService) movementReason() domain.MovementReason {
	if s.kind == domain.OrderKindPurchase {
		return domain.ReasonPurchaseOrder
	}
	return domain.ReasonSalesOrder
}

func (s *OrderService) orderResource() string {
	if s.kind == domain.OrderKindPurchase {
		return "purchase order"
	}
	return "sales order"
}

func (s *OrderService) counterpartyResource() string {
	if s.kind == domain.OrderKindPurchase {
		return "vendor"
	}
	return "customer"
}
