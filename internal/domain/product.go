package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the Product aggregate
var (
	ErrNegativeSellingPrice = errors.New("sellingPrice must be greater than or equal to 0")
	ErrNegativeCostPrice    = errors.New("costPrice must be greater than or equal to 0")
	ErrNegativeReorderPoint = errors.New("reorderPoint must be greater than or equal to 0")
	ErrMissingProductName   = errors.New("name is required")
)

// Product is the aggregate root for the catalog. Store-level stock lives
// directly on the product; warehouse-held stock lives on Warehouse entries.
// Price history is immutable: price changes fork a new Product record
// instead of mutating this one (see Revise).
type Product struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Company      string               `bson:"company" json:"company"`
	Category     string               `bson:"category" json:"category"`
	SubCategory  string               `bson:"subCategory" json:"subCategory"`
	SellingPrice float64              `bson:"sellingPrice" json:"sellingPrice"`
	CostPrice    float64              `bson:"costPrice" json:"costPrice"`
	Published    bool                 `bson:"published" json:"published"`
	SKU          string               `bson:"sku" json:"sku"`
	Stock        int                  `bson:"stock" json:"stock"`
	ReorderPoint int                  `bson:"reorderPoint" json:"reorderPoint"`
	Archived     bool                 `bson:"archived" json:"archived"`
	VariantIDs   []primitive.ObjectID `bson:"variantIds" json:"variantIds"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// NewProduct creates a new Product. A missing SKU is generated. Field-level
// validation (enumerating every offending field at once) happens at the
// command boundary; this constructor guards the hard invariants.
func NewProduct(name, company, category, subCategory, sku string, sellingPrice, costPrice float64, reorderPoint int) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingProductName
	}
	if sellingPrice < 0 {
		return nil, ErrNegativeSellingPrice
	}
	if costPrice < 0 {
		return nil, ErrNegativeCostPrice
	}
	if reorderPoint < 0 {
		return nil, ErrNegativeReorderPoint
	}

	if sku == "" {
		sku = GenerateSKU()
	}

	now := time.Now().UTC()
	return &Product{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Company:      company,
		Category:     category,
		SubCategory:  subCategory,
		SellingPrice: sellingPrice,
		CostPrice:    costPrice,
		SKU:          sku,
		VariantIDs:   make([]primitive.ObjectID, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GenerateSKU returns an 8-character uppercase hex SKU
func GenerateSKU() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:8])
}

// ProductUpdate carries an update request. Nil fields are left unchanged.
type ProductUpdate struct {
	Name         *string
	Company      *string
	Category     *string
	SubCategory  *string
	SellingPrice *float64
	CostPrice    *float64
	Published    *bool
	SKU          *string
	ReorderPoint *int
}

// ChangesPrice reports whether the update touches a price field with a value
// different from the stored one. Price changes fork a revision instead of
// mutating in place.
func (p *Product) ChangesPrice(u ProductUpdate) bool {
	if u.SellingPrice != nil && *u.SellingPrice != p.SellingPrice {
		return true
	}
	if u.CostPrice != nil && *u.CostPrice != p.CostPrice {
		return true
	}
	return false
}

// Apply merges non-nil fields of u into the product in place
func (p *Product) Apply(u ProductUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Company != nil {
		p.Company = *u.Company
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.SubCategory != nil {
		p.SubCategory = *u.SubCategory
	}
	if u.SellingPrice != nil {
		p.SellingPrice = *u.SellingPrice
	}
	if u.CostPrice != nil {
		p.CostPrice = *u.CostPrice
	}
	if u.Published != nil {
		p.Published = *u.Published
	}
	if u.SKU != nil {
		p.SKU = *u.SKU
	}
	if u.ReorderPoint != nil {
		p.ReorderPoint = *u.ReorderPoint
	}
	p.UpdatedAt = time.Now().UTC()
}

// Revise returns a new Product revision with u merged in. The clone gets a
// fresh identity and timestamps and carries over the stock and variant list;
// the receiver is left untouched (the caller archives it separately).
func (p *Product) Revise(u ProductUpdate) *Product {
	clone := *p
	clone.ID = primitive.NewObjectID()
	clone.Archived = false
	clone.VariantIDs = append([]primitive.ObjectID(nil), p.VariantIDs...)

	now := time.Now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now

	clone.Apply(u)
	return &clone
}

// Archive soft-deletes the product. Historical orders keep their reference.
func (p *Product) Archive() {
	p.Archived = true
	p.UpdatedAt = time.Now().UTC()
}

// NeedsReorder reports whether stock has fallen to the reorder point
func (p *Product) NeedsReorder() bool {
	return p.Stock <= p.ReorderPoint
}

// AttachVariant appends a variant reference if not already present
func (p *Product) AttachVariant(variantID primitive.ObjectID) {
	for _, id := range p.VariantIDs {
		if id == variantID {
			return
		}
	}
	p.VariantIDs = append(p.VariantIDs, variantID)
	p.UpdatedAt = time.Now().UTC()
}

// DetachVariant removes a variant reference
func (p *Product) DetachVariant(variantID primitive.ObjectID) {
	for i, id := range p.VariantIDs {
		if id == variantID {
			p.VariantIDs = append(p.VariantIDs[:i], p.VariantIDs[i+1:]...)
			p.UpdatedAt = time.Now().UTC()
			return
		}
	}
}
