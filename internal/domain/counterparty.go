package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrMissingCounterpartyName = errors.New("name is required")

// Vendor is a purchase-order counterparty
type Vendor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Remarks   string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewVendor(name, email, phone, address, remarks string) (*Vendor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingCounterpartyName
	}
	now := time.Now().UTC()
	return &Vendor{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
		Remarks:   remarks,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Customer is a sales-order counterparty
type Customer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewCustomer(name, email, phone, address string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingCounterpartyName
	}
	now := time.Now().UTC()
	return &Customer{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
