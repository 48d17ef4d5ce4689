package application

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
)

func newWarehouseService(f *fixture) *WarehouseService {
	logCfg := logging.DefaultConfig("test")
	logCfg.Output = io.Discard
	return NewWarehouseService(f.warehouses, f.products, logging.New(logCfg))
}

func TestWarehouseServiceGetStockEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newWarehouseService(f)

	p := f.seedProduct(t, "Widget", 0, 10)
	w := f.seedWarehouse(t, "Main")
	require.NoError(t, f.warehouses.SetStock(ctx, w.ID, p.ID, 7))

	entry, err := svc.GetStockEntry(ctx, w.ID.Hex(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 7, entry.Quantity)
	assert.Equal(t, "Widget", entry.ProductName)

	// a product the warehouse never stocked reads as zero
	other := f.seedProduct(t, "Gadget", 0, 10)
	entry, err = svc.GetStockEntry(ctx, w.ID.Hex(), other.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Quantity)
}

func TestWarehouseServiceGetStockEntryMissingWarehouse(t *testing.T) {
	f := newFixture(t)
	svc := newWarehouseService(f)

	p := f.seedProduct(t, "Widget", 0, 10)

	_, err := svc.GetStockEntry(context.Background(), primitive.NewObjectID().Hex(), p.ID.Hex())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
