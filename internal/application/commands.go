package application

import "time"

// Commands are the validated inputs to the use-case services. Validation
// tags enumerate every offending field at once at the API boundary; deeper
// invariants stay with the domain.

type CreateProductCommand struct {
	Name         string  `json:"name" validate:"required"`
	Company      string  `json:"company"`
	Category     string  `json:"category"`
	SubCategory  string  `json:"subCategory"`
	SellingPrice float64 `json:"sellingPrice" validate:"gte=0"`
	CostPrice    float64 `json:"costPrice" validate:"gte=0"`
	Published    bool    `json:"published"`
	SKU          string  `json:"sku"`
	ReorderPoint int     `json:"reorderPoint" validate:"gte=0"`
}

type UpdateProductCommand struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Company      *string  `json:"company,omitempty"`
	Category     *string  `json:"category,omitempty"`
	SubCategory  *string  `json:"subCategory,omitempty"`
	SellingPrice *float64 `json:"sellingPrice,omitempty" validate:"omitempty,gte=0"`
	CostPrice    *float64 `json:"costPrice,omitempty" validate:"omitempty,gte=0"`
	Published    *bool    `json:"published,omitempty"`
	SKU          *string  `json:"sku,omitempty" validate:"omitempty,min=1"`
	ReorderPoint *int     `json:"reorderPoint,omitempty" validate:"omitempty,gte=0"`
}

type CreateVariantCommand struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CreateWarehouseCommand struct {
	Name string `json:"name" validate:"required"`
}

type UpdateWarehouseCommand struct {
	Name string `json:"name" validate:"required"`
}

type SetWarehouseStockCommand struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type OrderLineCommand struct {
	ProductID   string                 `json:"productId" validate:"required"`
	Quantity    int                    `json:"quantity" validate:"gt=0"`
	ItemPrice   float64                `json:"itemPrice" validate:"gte=0"`
	Variant     VariantSnapshotCommand `json:"variant"`
	WarehouseID *string                `json:"warehouseId,omitempty"`
}

type VariantSnapshotCommand struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type CreateOrderCommand struct {
	CounterpartyID *string            `json:"counterpartyId,omitempty"`
	Items          []OrderLineCommand `json:"items" validate:"required,min=1,dive"`
	OrderDate      *time.Time         `json:"orderDate,omitempty"`
	InvoiceNumber  string             `json:"invoiceNumber,omitempty"`
	Remarks        string             `json:"remarks,omitempty"`
}

type UpdateOrderCommand struct {
	CounterpartyID *string            `json:"counterpartyId,omitempty"`
	Items          []OrderLineCommand `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	OrderDate      *time.Time         `json:"orderDate,omitempty"`
	InvoiceNumber  string             `json:"invoiceNumber,omitempty"`
	Remarks        string             `json:"remarks,omitempty"`
}

// TransferLocation names one end of a stock transfer. WarehouseID is
// required for warehouse locations and ignored for the store.
type TransferLocation struct {
	Kind        string  `json:"kind" validate:"required,oneof=store warehouse"`
	WarehouseID *string `json:"warehouseId,omitempty"`
}

// TransferStockCommand moves stock between the store and a warehouse, or
// between two warehouses. Amount is range-checked by the service so the
// exact guard messages surface to the client.
type TransferStockCommand struct {
	ProductID   string           `json:"productId" validate:"required"`
	Source      TransferLocation `json:"source" validate:"required"`
	Destination TransferLocation `json:"destination" validate:"required"`
	Amount      int              `json:"amount"`
	Remarks     string           `json:"remarks,omitempty"`
}

type CreateVendorCommand struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

type UpdateVendorCommand struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

type CreateCustomerCommand struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type UpdateCustomerCommand struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}
