package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrMissingWarehouseName = errors.New("name is required")

// StockEntry records how many base units of a product a warehouse holds
type StockEntry struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Warehouse is a named stock location separate from the store. Its stock
// array is keyed by product; persistence mutates entries with positional
// $inc updates rather than rewriting the document.
type Warehouse struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Stock     []StockEntry       `bson:"stock" json:"stock"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewWarehouse(name string) (*Warehouse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingWarehouseName
	}

	now := time.Now().UTC()
	return &Warehouse{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Stock:     make([]StockEntry, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// StockFor returns the quantity held for a product. Missing entries read as 0.
func (w *Warehouse) StockFor(productID primitive.ObjectID) int {
	for _, e := range w.Stock {
		if e.ProductID == productID {
			return e.Quantity
		}
	}
	return 0
}

// AdjustStock applies a signed delta to the entry for productID, creating
// the entry if absent. In-memory counterpart of the repository's $inc path.
func (w *Warehouse) AdjustStock(productID primitive.ObjectID, delta int) {
	for i := range w.Stock {
		if w.Stock[i].ProductID == productID {
			w.Stock[i].Quantity += delta
			w.UpdatedAt = time.Now().UTC()
			return
		}
	}
	w.Stock = append(w.Stock, StockEntry{ProductID: productID, Quantity: delta})
	w.UpdatedAt = time.Now().UTC()
}

// Rename updates the warehouse name
func (w *Warehouse) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingWarehouseName
	}
	w.Name = name
	w.UpdatedAt = time.Now().UTC()
	return nil
}
