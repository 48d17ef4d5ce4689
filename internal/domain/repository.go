package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TxRunner executes fn inside a multi-document transaction. Every repository
// call made with the context fn receives joins that transaction; if fn
// returns an error, all of its writes are rolled back.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ListOptions carries the pagination parameters repositories honor on list
// queries
type ListOptions struct {
	Offset int64
	Limit  int64
}

// ProductRepository persists the product catalog
type ProductRepository interface {
	Insert(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	// FindActiveByNameOrSKU looks for a non-archived product with the given
	// name or SKU, excluding excludeID when non-nil. Used for uniqueness
	// checks on create and revise.
	FindActiveByNameOrSKU(ctx context.Context, name, sku string, excludeID *primitive.ObjectID) (*Product, error)
	FindAll(ctx context.Context, includeArchived bool, opts ListOptions) ([]*Product, error)
	Count(ctx context.Context, includeArchived bool) (int64, error)
	Update(ctx context.Context, p *Product) error
	// IncrementStock applies a signed delta to store-level stock with an
	// atomic update. Stock may go negative.
	IncrementStock(ctx context.Context, id primitive.ObjectID, delta int) error
	SetArchived(ctx context.Context, id primitive.ObjectID, archived bool) error
	AttachVariant(ctx context.Context, productID, variantID primitive.ObjectID) error
	DetachVariant(ctx context.Context, productID, variantID primitive.ObjectID) error
}

// VariantRepository persists product sales units
type VariantRepository interface {
	Insert(ctx context.Context, v *Variant) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Variant, error)
	FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]*Variant, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// RepointProduct moves every variant of oldProductID to newProductID,
	// used when a price revision forks the product record
	RepointProduct(ctx context.Context, oldProductID, newProductID primitive.ObjectID) error
}

// WarehouseRepository persists warehouses and their per-product stock entries
type WarehouseRepository interface {
	Insert(ctx context.Context, w *Warehouse) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Warehouse, error)
	FindAll(ctx context.Context, opts ListOptions) ([]*Warehouse, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementStock applies a signed delta to the warehouse's entry for the
	// product, creating the entry when absent
	IncrementStock(ctx context.Context, id, productID primitive.ObjectID, delta int) error
	SetStock(ctx context.Context, id, productID primitive.ObjectID, quantity int) error
	// DecrementStockIfAvailable decrements only when the stored quantity is
	// at least amount, reporting whether the guard held
	DecrementStockIfAvailable(ctx context.Context, id, productID primitive.ObjectID, amount int) (bool, error)
	// FindHoldingProduct returns the warehouses with a stock entry for the
	// product, used when a price revision re-points warehouse entries
	FindHoldingProduct(ctx context.Context, productID primitive.ObjectID) ([]*Warehouse, error)
	RepointProduct(ctx context.Context, warehouseID, oldProductID, newProductID primitive.ObjectID) error
}

// OrderRepository persists one kind of order. Purchase and sales orders get
// separate instances over separate collections.
type OrderRepository interface {
	Kind() OrderKind
	Insert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	FindAll(ctx context.Context, opts ListOptions) ([]*Order, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	NextOrderNumber(ctx context.Context) (string, error)
}

// VendorRepository persists purchase-order counterparties
type VendorRepository interface {
	Insert(ctx context.Context, v *Vendor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Vendor, error)
	FindAll(ctx context.Context, opts ListOptions) ([]*Vendor, error)
	Update(ctx context.Context, v *Vendor) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CustomerRepository persists sales-order counterparties
type CustomerRepository interface {
	Insert(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Customer, error)
	FindAll(ctx context.Context, opts ListOptions) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StockMovementRepository persists the append-only stock journal
type StockMovementRepository interface {
	Insert(ctx context.Context, m *StockMovement) error
	FindByProduct(ctx context.Context, productID primitive.ObjectID, opts ListOptions) ([]*StockMovement, error)
}
