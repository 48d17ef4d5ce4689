package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWarehouseStock(t *testing.T) {
	w, err := NewWarehouse("Main")
	require.NoError(t, err)

	pid := primitive.NewObjectID()
	assert.Equal(t, 0, w.StockFor(pid))

	w.AdjustStock(pid, 10)
	assert.Equal(t, 10, w.StockFor(pid))

	w.AdjustStock(pid, -4)
	assert.Equal(t, 6, w.StockFor(pid))

	other := primitive.NewObjectID()
	w.AdjustStock(other, 3)
	assert.Len(t, w.Stock, 2)
	assert.Equal(t, 6, w.StockFor(pid))
}

func TestNewWarehouseValidation(t *testing.T) {
	_, err := NewWarehouse("  ")
	assert.ErrorIs(t, err, ErrMissingWarehouseName)

	w, err := NewWarehouse("Main")
	require.NoError(t, err)
	assert.ErrorIs(t, w.Rename(""), ErrMissingWarehouseName)
	require.NoError(t, w.Rename("Annex"))
	assert.Equal(t, "Annex", w.Name)
}
