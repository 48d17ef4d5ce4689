package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementReason classifies journal entries by the operation that caused them
type MovementReason string

const (
	ReasonPurchaseOrder   MovementReason = "purchase_order"
	ReasonSalesOrder      MovementReason = "sales_order"
	ReasonOrderReversal   MovementReason = "order_reversal"
	ReasonTransferIn      MovementReason = "transfer_in"
	ReasonTransferOut     MovementReason = "transfer_out"
	ReasonRevisionRepoint MovementReason = "revision_repoint"
)

// LocationKind discriminates where stock physically sits
type LocationKind string

const (
	LocationStore     LocationKind = "store"
	LocationWarehouse LocationKind = "warehouse"
)

// Location identifies a stock location. WarehouseID is set only for
// warehouse locations.
type Location struct {
	Kind        LocationKind        `bson:"kind" json:"kind"`
	WarehouseID *primitive.ObjectID `bson:"warehouseId,omitempty" json:"warehouseId,omitempty"`
}

func StoreLocation() Location {
	return Location{Kind: LocationStore}
}

func WarehouseLocation(id primitive.ObjectID) Location {
	return Location{Kind: LocationWarehouse, WarehouseID: &id}
}

// StockMovement is an append-only journal entry recording a signed stock
// delta at a location. Written in the same transaction as the mutation it
// describes, so the journal and the stock counters cannot diverge.
type StockMovement struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProductID   primitive.ObjectID  `bson:"productId" json:"productId"`
	Location    Location            `bson:"location" json:"location"`
	Delta       int                 `bson:"delta" json:"delta"`
	Reason      MovementReason      `bson:"reason" json:"reason"`
	ReferenceID *primitive.ObjectID `bson:"referenceId,omitempty" json:"referenceId,omitempty"`
	Remarks     string              `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

func NewStockMovement(productID primitive.ObjectID, loc Location, delta int, reason MovementReason, referenceID *primitive.ObjectID) *StockMovement {
	return &StockMovement{
		ID:          primitive.NewObjectID(),
		ProductID:   productID,
		Location:    loc,
		Delta:       delta,
		Reason:      reason,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
}
