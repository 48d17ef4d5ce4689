package application

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/metrics"
)

type fixture struct {
	state        *memState
	products     *fakeProductRepo
	variants     *fakeVariantRepo
	warehouses   *fakeWarehouseRepo
	movements    *fakeMovementRepo
	purchaseRepo *fakeOrderRepo
	salesRepo    *fakeOrderRepo
	tx           *fakeTx

	productSvc *ProductService
	purchase   *OrderService
	sales      *OrderService
	transfer   *TransferService
	vendorSvc  *VendorService
	custSvc    *CustomerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	state := newMemState()
	f := &fixture{
		state:        state,
		products:     &fakeProductRepo{state: state},
		variants:     &fakeVariantRepo{state: state},
		warehouses:   &fakeWarehouseRepo{state: state},
		movements:    &fakeMovementRepo{state: state},
		purchaseRepo: &fakeOrderRepo{state: state, kind: domain.OrderKindPurchase},
		salesRepo:    &fakeOrderRepo{state: state, kind: domain.OrderKindSales},
		tx:           &fakeTx{state: state},
	}

	logCfg := logging.DefaultConfig("test")
	logCfg.Output = io.Discard
	logger := logging.New(logCfg)
	m := metrics.New(metrics.DefaultConfig("test"))

	f.vendorSvc = NewVendorService(&fakeVendorRepo{state: state}, logger)
	f.custSvc = NewCustomerService(&fakeCustomerRepo{state: state}, logger)
	f.productSvc = NewProductService(f.products, f.variants, f.warehouses, f.movements, f.tx, logger, m)
	cfg := OrderServiceConfig{DeleteRestocks: true}
	f.purchase = NewOrderService(f.purchaseRepo, f.products, f.warehouses, f.movements, f.vendorSvc, f.tx, cfg, logger, m)
	f.sales = NewOrderService(f.salesRepo, f.products, f.warehouses, f.movements, f.custSvc, f.tx, cfg, logger, m)
	f.transfer = NewTransferService(f.products, f.warehouses, f.movements, f.tx, logger, m)

	return f
}

func (f *fixture) seedProduct(t *testing.T, name string, stock int, sellingPrice float64) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(name, "Acme", "general", "", "", sellingPrice, sellingPrice/2, 0)
	require.NoError(t, err)
	p.Stock = stock
	require.NoError(t, f.products.Insert(context.Background(), p))
	return p
}

func (f *fixture) seedVendor(t *testing.T, name string) *VendorDTO {
	t.Helper()
	v, err := f.vendorSvc.Create(context.Background(), CreateVendorCommand{Name: name})
	require.NoError(t, err)
	return v
}

func (f *fixture) seedWarehouse(t *testing.T, name string) *domain.Warehouse {
	t.Helper()
	w, err := domain.NewWarehouse(name)
	require.NoError(t, err)
	require.NoError(t, f.warehouses.Insert(context.Background(), w))
	return w
}

func (f *fixture) productStock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) warehouseStock(t *testing.T, id, productID primitive.ObjectID) int {
	t.Helper()
	w, err := f.warehouses.FindByID(context.Background(), id)
	require.NoError(t, err)
	return w.StockFor(productID)
}

func TestOrderServiceCreatePurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)
	w := f.seedWarehouse(t, "Main")
	v := f.seedVendor(t, "Acme Supply")

	dto, err := f.purchase.Create(ctx, CreateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items: []OrderLineCommand{
			{ProductID: p.ID.Hex(), Quantity: 5, ItemPrice: 8},
			{
				ProductID:   p.ID.Hex(),
				Quantity:    2,
				ItemPrice:   40,
				Variant:     VariantSnapshotCommand{Name: "Box of 12", Quantity: 12},
				WarehouseID: strPtr(w.ID.Hex()),
			},
		},
	})
	require.NoError(t, err)

	// store line: +5; warehouse line: +2*12 at the warehouse only
	assert.Equal(t, 15, f.productStock(t, p.ID))
	assert.Equal(t, 24, f.warehouseStock(t, w.ID, p.ID))

	// the variant factor scales the line total too
	assert.Equal(t, float64(5*8+2*12*40), dto.Total)
	assert.Equal(t, "purchase", dto.Kind)
	assert.Contains(t, dto.OrderNumber, "PO-")

	journal := f.state.movementsForReason(domain.ReasonPurchaseOrder)
	require.Len(t, journal, 2)
	assert.Equal(t, 5, journal[0].Delta)
	assert.Equal(t, 24, journal[1].Delta)
}

func TestOrderServiceCreateSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 25)

	dto, err := f.sales.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{
			{ProductID: p.ID.Hex(), Quantity: 4, ItemPrice: 30},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, f.productStock(t, p.ID))

	// the selling price at creation is frozen on the line
	require.Len(t, dto.Items, 1)
	require.NotNil(t, dto.Items[0].OriginalItemPrice)
	assert.Equal(t, 25.0, *dto.Items[0].OriginalItemPrice)
	assert.Equal(t, 30.0, dto.Items[0].ItemPrice)
}

func TestOrderServiceCreateAllowsNegativeStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 3, 10)

	_, err := f.sales.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 5, ItemPrice: 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, -2, f.productStock(t, p.ID))
}

func TestOrderServiceCreateRollsBackOnBadLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)
	v := f.seedVendor(t, "Acme Supply")

	_, err := f.purchase.Create(ctx, CreateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items: []OrderLineCommand{
			{ProductID: p.ID.Hex(), Quantity: 5, ItemPrice: 8},
			{ProductID: primitive.NewObjectID().Hex(), Quantity: 1, ItemPrice: 1},
		},
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	// nothing moved, nothing persisted
	assert.Equal(t, 10, f.productStock(t, p.ID))
	assert.Empty(t, f.state.orders)
	assert.Empty(t, f.state.movements)
}

func TestOrderServiceCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.purchase.Create(context.Background(), CreateOrderCommand{})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	assert.Contains(t, appErr.Details, "items")
}

func TestOrderServiceUpdateReconcilesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 0, 20)
	w := f.seedWarehouse(t, "Main")
	v := f.seedVendor(t, "Acme Supply")

	created, err := f.purchase.Create(ctx, CreateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items:          []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 5, ItemPrice: 8}},
	})
	require.NoError(t, err)
	require.Equal(t, 5, f.productStock(t, p.ID))

	// move the line to the warehouse and change the quantity
	_, err = f.purchase.Update(ctx, created.ID, UpdateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items: []OrderLineCommand{
			{ProductID: p.ID.Hex(), Quantity: 3, ItemPrice: 8, WarehouseID: strPtr(w.ID.Hex())},
		},
	})
	require.NoError(t, err)

	// the old store effect is fully reversed, the new one applied
	assert.Equal(t, 0, f.productStock(t, p.ID))
	assert.Equal(t, 3, f.warehouseStock(t, w.ID, p.ID))

	reversals := f.state.movementsForReason(domain.ReasonOrderReversal)
	require.Len(t, reversals, 1)
	assert.Equal(t, -5, reversals[0].Delta)
}

func TestOrderServiceUpdatePreservesOriginalItemPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 100, 25)

	created, err := f.sales.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 2, ItemPrice: 25}},
	})
	require.NoError(t, err)

	updated, err := f.sales.Update(ctx, created.ID, UpdateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 2, ItemPrice: 30}},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	require.NotNil(t, updated.Items[0].OriginalItemPrice)
	assert.Equal(t, 25.0, *updated.Items[0].OriginalItemPrice)
	assert.Equal(t, 30.0, updated.Items[0].ItemPrice)
}

func TestOrderServiceUpdateRollsBackOnBadLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 0, 20)
	v := f.seedVendor(t, "Acme Supply")

	created, err := f.purchase.Create(ctx, CreateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items:          []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 5, ItemPrice: 8}},
	})
	require.NoError(t, err)

	_, err = f.purchase.Update(ctx, created.ID, UpdateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items: []OrderLineCommand{
			{ProductID: p.ID.Hex(), Quantity: 1, ItemPrice: 8},
			{ProductID: p.ID.Hex(), Quantity: 1, ItemPrice: 8, WarehouseID: strPtr(primitive.NewObjectID().Hex())},
		},
	})
	require.Error(t, err)

	// the order and the counters keep their pre-amendment state
	assert.Equal(t, 5, f.productStock(t, p.ID))
	stored, err := f.purchaseRepo.FindByID(ctx, mustID(t, created.ID))
	require.NoError(t, err)
	assert.Equal(t, created.Total, stored.Total)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestOrderServiceDeleteRestocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)

	created, err := f.sales.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 4, ItemPrice: 20}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, f.productStock(t, p.ID))

	require.NoError(t, f.sales.Delete(ctx, created.ID))

	assert.Equal(t, 10, f.productStock(t, p.ID))
	assert.Empty(t, f.state.orders)
}

func TestOrderServiceDeleteWithoutRestock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)

	logCfg := logging.DefaultConfig("test")
	logCfg.Output = io.Discard
	logger := logging.New(logCfg)
	noRestock := NewOrderService(f.salesRepo, f.products, f.warehouses, f.movements, f.custSvc, f.tx,
		OrderServiceConfig{DeleteRestocks: false}, logger, metrics.New(metrics.DefaultConfig("test")))

	created, err := noRestock.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 4, ItemPrice: 20}},
	})
	require.NoError(t, err)

	require.NoError(t, noRestock.Delete(ctx, created.ID))

	// stock effect stays in place
	assert.Equal(t, 6, f.productStock(t, p.ID))
}

func TestOrderServiceCounterpartyMustExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)

	_, err := f.purchase.Create(ctx, CreateOrderCommand{
		CounterpartyID: strPtr(primitive.NewObjectID().Hex()),
		Items:          []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 1, ItemPrice: 1}},
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestOrderServicePurchaseRequiresVendor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)

	_, err := f.purchase.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 1, ItemPrice: 1}},
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	assert.Contains(t, appErr.Details, "vendorId")

	// nothing persisted, no stock moved
	assert.Equal(t, 10, f.productStock(t, p.ID))
	assert.Empty(t, f.state.orders)

	// amending without a counterpartyId keeps the stored vendor
	v := f.seedVendor(t, "Acme Supply")
	created, err := f.purchase.Create(ctx, CreateOrderCommand{
		CounterpartyID: strPtr(v.ID),
		Items:          []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 1, ItemPrice: 1}},
	})
	require.NoError(t, err)

	updated, err := f.purchase.Update(ctx, created.ID, UpdateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 2, ItemPrice: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CounterpartyID)
	assert.Equal(t, v.ID, *updated.CounterpartyID)
}

func TestOrderServiceUpdateMetadataOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProduct(t, "Widget", 10, 20)

	created, err := f.sales.Create(ctx, CreateOrderCommand{
		Items: []OrderLineCommand{{ProductID: p.ID.Hex(), Quantity: 4, ItemPrice: 20}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, f.productStock(t, p.ID))

	// no items in the command: remarks change, lines and stock do not
	updated, err := f.sales.Update(ctx, created.ID, UpdateOrderCommand{Remarks: "rush delivery"})
	require.NoError(t, err)

	assert.Equal(t, "rush delivery", updated.Remarks)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, created.Total, updated.Total)
	assert.Equal(t, 6, f.productStock(t, p.ID))
	assert.Empty(t, f.state.movementsForReason(domain.ReasonOrderReversal))
}

func strPtr(s string) *string {
	return &s
}

func mustID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
