package application

import (
	"context"
	"fmt"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
)

// stockApplier applies (or reverses) the stock effect of an order's line
// items. It runs inside the caller's transaction: the first failing line
// aborts the whole batch and the transaction rolls back every earlier write.
type stockApplier struct {
	products   domain.ProductRepository
	warehouses domain.WarehouseRepository
	movements  domain.StockMovementRepository
}

func newStockApplier(products domain.ProductRepository, warehouses domain.WarehouseRepository, movements domain.StockMovementRepository) *stockApplier {
	return &stockApplier{
		products:   products,
		warehouses: warehouses,
		movements:  movements,
	}
}

// apply walks the order's items in their stored sequence, applying each
// line's effective quantity (line quantity times variant unit factor) with
// the given direction, and journals one movement per line. Negative
// resulting stock is allowed; overselling surfaces through reorder alerts,
// not write failures.
func (a *stockApplier) apply(ctx context.Context, o *domain.Order, dir domain.StockDirection, reason domain.MovementReason) error {
	for _, li := range o.Items {
		delta := int(dir) * li.EffectiveQuantity()

		var loc domain.Location
		if li.WarehouseID != nil {
			loc = domain.WarehouseLocation(*li.WarehouseID)
			if err := a.warehouses.IncrementStock(ctx, *li.WarehouseID, li.ProductID, delta); err != nil {
				return fmt.Errorf("adjust warehouse stock for product %s: %w", li.ProductID.Hex(), err)
			}
		} else {
			loc = domain.StoreLocation()
			if err := a.products.IncrementStock(ctx, li.ProductID, delta); err != nil {
				return fmt.Errorf("adjust store stock for product %s: %w", li.ProductID.Hex(), err)
			}
		}

		mv := domain.NewStockMovement(li.ProductID, loc, delta, reason, &o.ID)
		if err := a.movements.Insert(ctx, mv); err != nil {
			return fmt.Errorf("journal stock movement for product %s: %w", li.ProductID.Hex(), err)
		}
	}
	return nil
}

// reverse undoes the stock effect of an order's current persisted state
func (a *stockApplier) reverse(ctx context.Context, o *domain.Order, dir domain.StockDirection) error {
	return a.apply(ctx, o, dir.Opposite(), domain.ReasonOrderReversal)
}
