package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderKind discriminates the two symmetric order flows. Purchase orders
// bring stock in, sales orders take stock out.
type OrderKind string

const (
	OrderKindPurchase OrderKind = "purchase"
	OrderKindSales    OrderKind = "sales"
)

// StockDirection is the sign stock application gives to line quantities
type StockDirection int

const (
	StockIncrease StockDirection = 1
	StockDecrease StockDirection = -1
)

// Opposite returns the reversing direction, used when amending or deleting
// an order whose stock effect was already applied.
func (d StockDirection) Opposite() StockDirection {
	return -d
}

// Direction returns the stock effect of applying an order of this kind
func (k OrderKind) Direction() StockDirection {
	if k == OrderKindPurchase {
		return StockIncrease
	}
	return StockDecrease
}

func (k OrderKind) Valid() bool {
	return k == OrderKindPurchase || k == OrderKindSales
}

// Errors for the Order aggregate
var (
	ErrNoLineItems          = errors.New("order must have at least one item")
	ErrNonPositiveQuantity  = errors.New("quantity must be greater than 0")
	ErrNegativeItemPrice    = errors.New("itemPrice must be greater than or equal to 0")
	ErrMissingLineProduct   = errors.New("product is required")
	ErrInvalidOrderKind     = errors.New("invalid order kind")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// VariantSnapshot freezes the sales-unit choice at order time. Later edits
// to the variant record do not retroactively change the order.
type VariantSnapshot struct {
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// UnitFactor is the base-unit multiplier of the snapshot. An unset snapshot
// counts as a single base unit.
func (v VariantSnapshot) UnitFactor() int {
	if v.Quantity <= 0 {
		return 1
	}
	return v.Quantity
}

// LineItem is one product line on an order. WarehouseID nil means the line
// moves store-level stock. OriginalItemPrice, set on sales lines, preserves
// the selling price at first creation across subsequent amendments.
type LineItem struct {
	ItemID            string              `bson:"itemId" json:"itemId"`
	ProductID         primitive.ObjectID  `bson:"productId" json:"productId"`
	Quantity          int                 `bson:"quantity" json:"quantity"`
	ItemPrice         float64             `bson:"itemPrice" json:"itemPrice"`
	TotalPrice        float64             `bson:"totalPrice" json:"totalPrice"`
	Variant           VariantSnapshot     `bson:"variant" json:"variant"`
	WarehouseID       *primitive.ObjectID `bson:"warehouseId,omitempty" json:"warehouseId,omitempty"`
	OriginalItemPrice *float64            `bson:"originalItemPrice,omitempty" json:"originalItemPrice,omitempty"`
}

// EffectiveQuantity is the line's stock effect in base units
func (li LineItem) EffectiveQuantity() int {
	return li.Quantity * li.Variant.UnitFactor()
}

// Order is a purchase or sales order. The two kinds share this shape and
// live in separate collections; Kind selects the stock direction and the
// counterparty type (vendor for purchase, customer for sales).
type Order struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber    string              `bson:"orderNumber" json:"orderNumber"`
	Kind           OrderKind           `bson:"-" json:"-"`
	CounterpartyID *primitive.ObjectID `bson:"counterpartyId,omitempty" json:"counterpartyId,omitempty"`
	Items          []LineItem          `bson:"items" json:"items"`
	Total          float64             `bson:"total" json:"total"`
	OrderDate      time.Time           `bson:"orderDate" json:"orderDate"`
	InvoiceNumber  string              `bson:"invoiceNumber,omitempty" json:"invoiceNumber,omitempty"`
	Remarks        string              `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ComputeTotals recalculates every line's TotalPrice and returns the order
// total. The variant factor scales both the stock effect and the money: a
// line of 2 cases of 12 at unit price 5 is worth 120, not 10.
func ComputeTotals(items []LineItem) float64 {
	var total float64
	for i := range items {
		items[i].TotalPrice = float64(items[i].Quantity) * float64(items[i].Variant.UnitFactor()) * items[i].ItemPrice
		total += items[i].TotalPrice
	}
	return total
}

// ValidateItems checks the line-level invariants shared by both order kinds
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrNoLineItems
	}
	for _, li := range items {
		if li.ProductID.IsZero() {
			return ErrMissingLineProduct
		}
		if li.Quantity <= 0 {
			return ErrNonPositiveQuantity
		}
		if li.ItemPrice < 0 {
			return ErrNegativeItemPrice
		}
	}
	return nil
}

// NewOrder builds an order of the given kind, assigning line item IDs and
// computing totals
func NewOrder(kind OrderKind, orderNumber string, counterpartyID *primitive.ObjectID, items []LineItem, orderDate time.Time, invoiceNumber, remarks string) (*Order, error) {
	if !kind.Valid() {
		return nil, ErrInvalidOrderKind
	}
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ItemID == "" {
			items[i].ItemID = primitive.NewObjectID().Hex()
		}
	}
	total := ComputeTotals(items)

	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	now := time.Now().UTC()
	return &Order{
		ID:             primitive.NewObjectID(),
		OrderNumber:    orderNumber,
		Kind:           kind,
		CounterpartyID: counterpartyID,
		Items:          items,
		Total:          total,
		OrderDate:      orderDate,
		InvoiceNumber:  invoiceNumber,
		Remarks:        remarks,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Amend replaces the order's content with the given items and metadata,
// recomputing totals. Stock reconciliation against the pre-amendment state
// is the caller's job.
func (o *Order) Amend(counterpartyID *primitive.ObjectID, items []LineItem, orderDate time.Time, invoiceNumber, remarks string) error {
	if err := ValidateItems(items); err != nil {
		return err
	}

	for i := range items {
		if items[i].ItemID == "" {
			items[i].ItemID = primitive.NewObjectID().Hex()
		}
	}

	o.CounterpartyID = counterpartyID
	o.Items = items
	o.Total = ComputeTotals(items)
	if !orderDate.IsZero() {
		o.OrderDate = orderDate
	}
	o.InvoiceNumber = invoiceNumber
	o.Remarks = remarks
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// FindItemByProduct returns the first line for the given product, or nil.
// Used to carry OriginalItemPrice across amendments.
func (o *Order) FindItemByProduct(productID primitive.ObjectID) *LineItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}
