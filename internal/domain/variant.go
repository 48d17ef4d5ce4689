package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingVariantName     = errors.New("name is required")
	ErrNonPositiveVariantSize = errors.New("quantity must be greater than 0")
)

// Variant is a sales unit for a product, e.g. "Box of 12". Its Quantity is
// the number of base units one variant unit represents; order line stock math
// multiplies line quantity by this factor.
type Variant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewVariant(productID primitive.ObjectID, name string, quantity int) (*Variant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingVariantName
	}
	if quantity <= 0 {
		return nil, ErrNonPositiveVariantSize
	}

	now := time.Now().UTC()
	return &Variant{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Name:      name,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DefaultVariant is the base unit created alongside every new product
func DefaultVariant(productID primitive.ObjectID) *Variant {
	v, _ := NewVariant(productID, "Default", 1)
	return v
}
