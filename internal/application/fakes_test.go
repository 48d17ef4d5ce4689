package application

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
)

// memState is the shared in-memory backing store for the fake repositories.
// The mutex makes the increment paths atomic, mirroring the $inc contract
// the real repositories get from MongoDB.
type memState struct {
	mu         sync.Mutex
	products   map[primitive.ObjectID]*domain.Product
	variants   map[primitive.ObjectID]*domain.Variant
	warehouses map[primitive.ObjectID]*domain.Warehouse
	orders     map[primitive.ObjectID]*domain.Order
	vendors    map[primitive.ObjectID]*domain.Vendor
	customers  map[primitive.ObjectID]*domain.Customer
	movements  []*domain.StockMovement
	orderSeq   int64
}

func newMemState() *memState {
	return &memState{
		products:   make(map[primitive.ObjectID]*domain.Product),
		variants:   make(map[primitive.ObjectID]*domain.Variant),
		warehouses: make(map[primitive.ObjectID]*domain.Warehouse),
		orders:     make(map[primitive.ObjectID]*domain.Order),
		vendors:    make(map[primitive.ObjectID]*domain.Vendor),
		customers:  make(map[primitive.ObjectID]*domain.Customer),
	}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.VariantIDs = append([]primitive.ObjectID(nil), p.VariantIDs...)
	return &c
}

func cloneWarehouse(w *domain.Warehouse) *domain.Warehouse {
	c := *w
	c.Stock = append([]domain.StockEntry(nil), w.Stock...)
	return &c
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.LineItem(nil), o.Items...)
	return &c
}

// snapshot deep-copies the state so a failed transaction can restore it
func (s *memState) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := newMemState()
	for id, p := range s.products {
		snap.products[id] = cloneProduct(p)
	}
	for id, v := range s.variants {
		c := *v
		snap.variants[id] = &c
	}
	for id, w := range s.warehouses {
		snap.warehouses[id] = cloneWarehouse(w)
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for id, v := range s.vendors {
		c := *v
		snap.vendors[id] = &c
	}
	for id, cu := range s.customers {
		c := *cu
		snap.customers[id] = &c
	}
	snap.movements = append([]*domain.StockMovement(nil), s.movements...)
	snap.orderSeq = s.orderSeq
	return snap
}

func (s *memState) restore(snap *memState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.variants = snap.variants
	s.warehouses = snap.warehouses
	s.orders = snap.orders
	s.vendors = snap.vendors
	s.customers = snap.customers
	s.movements = snap.movements
	s.orderSeq = snap.orderSeq
}

// fakeTx rolls the shared state back when fn fails, mimicking transaction
// semantics over the in-memory store. Not safe for concurrent transactions;
// the concurrency tests drive the repositories directly.
type fakeTx struct {
	state *memState
}

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.state.snapshot()
	if err := fn(ctx); err != nil {
		t.state.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct {
	state *memState
}

func (r *fakeProductRepo) Insert(ctx context.Context, p *domain.Product) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, other := range r.state.products {
		if !other.Archived && !p.Archived && other.ID != p.ID && (other.Name == p.Name || other.SKU == p.SKU) {
			return apperrors.ErrConflict("a product with the same name or SKU already exists")
		}
	}
	r.state.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	p, ok := r.state.products[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("product", id.Hex())
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) FindActiveByNameOrSKU(ctx context.Context, name, sku string, excludeID *primitive.ObjectID) (*domain.Product, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, p := range r.state.products {
		if p.Archived {
			continue
		}
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.Name == name || p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, apperrors.ErrNotFound("product")
}

func (r *fakeProductRepo) FindAll(ctx context.Context, includeArchived bool, opts domain.ListOptions) ([]*domain.Product, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	var out []*domain.Product
	for _, p := range r.state.products {
		if !includeArchived && p.Archived {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (r *fakeProductRepo) Count(ctx context.Context, includeArchived bool) (int64, error) {
	ps, _ := r.FindAll(ctx, includeArchived, domain.ListOptions{})
	return int64(len(ps)), nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.products[p.ID]; !ok {
		return apperrors.ErrNotFoundWithID("product", p.ID.Hex())
	}
	r.state.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *fakeProductRepo) IncrementStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	p, ok := r.state.products[id]
	if !ok {
		return apperrors.ErrNotFoundWithID("product", id.Hex())
	}
	p.Stock += delta
	return nil
}

func (r *fakeProductRepo) SetArchived(ctx context.Context, id primitive.ObjectID, archived bool) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	p, ok := r.state.products[id]
	if !ok {
		return apperrors.ErrNotFoundWithID("product", id.Hex())
	}
	p.Archived = archived
	return nil
}

func (r *fakeProductRepo) AttachVariant(ctx context.Context, productID, variantID primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	p, ok := r.state.products[productID]
	if !ok {
		return apperrors.ErrNotFoundWithID("product", productID.Hex())
	}
	p.AttachVariant(variantID)
	return nil
}

func (r *fakeProductRepo) DetachVariant(ctx context.Context, productID, variantID primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	p, ok := r.state.products[productID]
	if !ok {
		return apperrors.ErrNotFoundWithID("product", productID.Hex())
	}
	p.DetachVariant(variantID)
	return nil
}

type fakeVariantRepo struct {
	state *memState
}

func (r *fakeVariantRepo) Insert(ctx context.Context, v *domain.Variant) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, other := range r.state.variants {
		if other.ProductID == v.ProductID && other.Name == v.Name {
			return apperrors.ErrConflict("a variant with the same name already exists for this product")
		}
	}
	c := *v
	r.state.variants[v.ID] = &c
	return nil
}

func (r *fakeVariantRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Variant, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	v, ok := r.state.variants[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("variant", id.Hex())
	}
	c := *v
	return &c, nil
}

func (r *fakeVariantRepo) FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]*domain.Variant, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	var out []*domain.Variant
	for _, v := range r.state.variants {
		if v.ProductID == productID {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeVariantRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.variants[id]; !ok {
		return apperrors.ErrNotFoundWithID("variant", id.Hex())
	}
	delete(r.state.variants, id)
	return nil
}

func (r *fakeVariantRepo) RepointProduct(ctx context.Context, oldProductID, newProductID primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, v := range r.state.variants {
		if v.ProductID == oldProductID {
			v.ProductID = newProductID
		}
	}
	return nil
}

type fakeWarehouseRepo struct {
	state *memState
}

func (r *fakeWarehouseRepo) Insert(ctx context.Context, w *domain.Warehouse) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, other := range r.state.warehouses {
		if other.Name == w.Name {
			return apperrors.ErrConflict("a warehouse with the same name already exists")
		}
	}
	r.state.warehouses[w.ID] = cloneWarehouse(w)
	return nil
}

func (r *fakeWarehouseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Warehouse, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	w, ok := r.state.warehouses[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	return cloneWarehouse(w), nil
}

func (r *fakeWarehouseRepo) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Warehouse, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	var out []*domain.Warehouse
	for _, w := range r.state.warehouses {
		out = append(out, cloneWarehouse(w))
	}
	return out, nil
}

func (r *fakeWarehouseRepo) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	w, ok := r.state.warehouses[id]
	if !ok {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	w.Name = name
	return nil
}

func (r *fakeWarehouseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.warehouses[id]; !ok {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	delete(r.state.warehouses, id)
	return nil
}

func (r *fakeWarehouseRepo) IncrementStock(ctx context.Context, id, productID primitive.ObjectID, delta int) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	w, ok := r.state.warehouses[id]
	if !ok {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	w.AdjustStock(productID, delta)
	return nil
}

func (r *fakeWarehouseRepo) SetStock(ctx context.Context, id, productID primitive.ObjectID, quantity int) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	w, ok := r.state.warehouses[id]
	if !ok {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	w.AdjustStock(productID, quantity-w.StockFor(productID))
	return nil
}

func (r *fakeWarehouseRepo) DecrementStockIfAvailable(ctx context.Context, id, productID primitive.ObjectID, amount int) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	w, ok := r.state.warehouses[id]
	if !ok {
		return false, apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	if w.StockFor(productID) < amount {
		return false, nil
	}
	w.AdjustStock(productID, -amount)
	return true, nil
}

func (r *fakeWarehouseRepo) FindHoldingProduct(ctx context.Context, productID primitive.ObjectID) ([]*domain.Warehouse, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	var out []*domain.Warehouse
	for _, w := range r.state.warehouses {
		for _, e := range w.Stock {
			if e.ProductID == productID {
				out = append(out, cloneWarehouse(w))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeWarehouseRepo) RepointProduct(ctx context.Context, warehouseID, oldProductID, newProductID primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	w, ok := r.state.warehouses[warehouseID]
	if !ok {
		return apperrors.ErrNotFoundWithID("warehouse", warehouseID.Hex())
	}
	for i := range w.Stock {
		if w.Stock[i].ProductID == oldProductID {
			w.Stock[i].ProductID = newProductID
		}
	}
	return nil
}

type fakeOrderRepo struct {
	state *memState
	kind  domain.OrderKind

	failOnInsert bool
}

func (r *fakeOrderRepo) Kind() domain.OrderKind {
	return r.kind
}

func (r *fakeOrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if r.failOnInsert {
		return apperrors.ErrInternal("simulated insert failure")
	}
	r.state.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	o, ok := r.state.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("order", id.Hex())
	}
	c := cloneOrder(o)
	c.Kind = r.kind
	return c, nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Order, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	var out []*domain.Order
	for _, o := range r.state.orders {
		c := cloneOrder(o)
		c.Kind = r.kind
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeOrderRepo) Count(ctx context.Context) (int64, error) {
	os, _ := r.FindAll(ctx, domain.ListOptions{})
	return int64(len(os)), nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.orders[o.ID]; !ok {
		return apperrors.ErrNotFoundWithID("order", o.ID.Hex())
	}
	r.state.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.orders[id]; !ok {
		return apperrors.ErrNotFoundWithID("order", id.Hex())
	}
	delete(r.state.orders, id)
	return nil
}

func (r *fakeOrderRepo) NextOrderNumber(ctx context.Context) (string, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	r.state.orderSeq++
	prefix := "SO"
	if r.kind == domain.OrderKindPurchase {
		prefix = "PO"
	}
	return fmt.Sprintf("%s-%06d", prefix, r.state.orderSeq), nil
}

type fakeVendorRepo struct {
	state *memState
}

func (r *fakeVendorRepo) Insert(ctx context.Context, v *domain.Vendor) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	c := *v
	r.state.vendors[v.ID] = &c
	return nil
}

func (r *fakeVendorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Vendor, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	v, ok := r.state.vendors[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("vendor", id.Hex())
	}
	c := *v
	return &c, nil
}

func (r *fakeVendorRepo) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Vendor, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []*domain.Vendor
	for _, v := range r.state.vendors {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeVendorRepo) Update(ctx context.Context, v *domain.Vendor) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.vendors[v.ID]; !ok {
		return apperrors.ErrNotFoundWithID("vendor", v.ID.Hex())
	}
	c := *v
	r.state.vendors[v.ID] = &c
	return nil
}

func (r *fakeVendorRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.vendors[id]; !ok {
		return apperrors.ErrNotFoundWithID("vendor", id.Hex())
	}
	delete(r.state.vendors, id)
	return nil
}

type fakeCustomerRepo struct {
	state *memState
}

func (r *fakeCustomerRepo) Insert(ctx context.Context, c *domain.Customer) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	cc := *c
	r.state.customers[c.ID] = &cc
	return nil
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	c, ok := r.state.customers[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("customer", id.Hex())
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCustomerRepo) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Customer, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []*domain.Customer
	for _, c := range r.state.customers {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.customers[c.ID]; !ok {
		return apperrors.ErrNotFoundWithID("customer", c.ID.Hex())
	}
	cc := *c
	r.state.customers[c.ID] = &cc
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if _, ok := r.state.customers[id]; !ok {
		return apperrors.ErrNotFoundWithID("customer", id.Hex())
	}
	delete(r.state.customers, id)
	return nil
}

type fakeMovementRepo struct {
	state *memState
}

func (r *fakeMovementRepo) Insert(ctx context.Context, m *domain.StockMovement) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	c := *m
	r.state.movements = append(r.state.movements, &c)
	return nil
}

func (r *fakeMovementRepo) FindByProduct(ctx context.Context, productID primitive.ObjectID, opts domain.ListOptions) ([]*domain.StockMovement, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []*domain.StockMovement
	for _, m := range r.state.movements {
		if m.ProductID == productID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// movementsForReason filters the journal for assertions
func (s *memState) movementsForReason(reason domain.MovementReason) []*domain.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.StockMovement
	for _, m := range s.movements {
		if m.Reason == reason {
			out = append(out, m)
		}
	}
	return out
}
