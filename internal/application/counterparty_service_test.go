package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
)

func TestVendorServiceDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.vendorSvc.Create(ctx, CreateVendorCommand{Name: "Acme Supply"})
	require.NoError(t, err)

	require.NoError(t, f.vendorSvc.Delete(ctx, v.ID))

	_, err = f.vendorSvc.Get(ctx, v.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestVendorServiceDeleteMissing(t *testing.T) {
	f := newFixture(t)

	err := f.vendorSvc.Delete(context.Background(), primitive.NewObjectID().Hex())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestCustomerServiceDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.custSvc.Create(ctx, CreateCustomerCommand{Name: "Walk-in Regular"})
	require.NoError(t, err)

	require.NoError(t, f.custSvc.Delete(ctx, c.ID))

	_, err = f.custSvc.Get(ctx, c.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
