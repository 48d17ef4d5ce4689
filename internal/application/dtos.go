package application

import (
	"time"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
)

// DTOs are the read models the API returns. They flatten identifiers to hex
// strings and carry the populated names a client would otherwise have to
// join for.

type VariantDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// WarehouseStockDTO is one warehouse's holding of a product
type WarehouseStockDTO struct {
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName"`
	Quantity      int    `json:"quantity"`
}

type ProductDTO struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Company        string              `json:"company"`
	Category       string              `json:"category"`
	SubCategory    string              `json:"subCategory"`
	SellingPrice   float64             `json:"sellingPrice"`
	CostPrice      float64             `json:"costPrice"`
	Published      bool                `json:"published"`
	SKU            string              `json:"sku"`
	Stock          int                 `json:"stock"`
	ReorderPoint   int                 `json:"reorderPoint"`
	NeedsReorder   bool                `json:"needsReorder"`
	Archived       bool                `json:"archived"`
	Variants       []VariantDTO        `json:"variants,omitempty"`
	WarehouseStock []WarehouseStockDTO `json:"warehouseStock,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type WarehouseDTO struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Stock     []WarehouseEntryDTO   `json:"stock"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// WarehouseEntryDTO is one product's holding within a warehouse
type WarehouseEntryDTO struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
}

type OrderLineDTO struct {
	ItemID            string   `json:"itemId"`
	ProductID         string   `json:"productId"`
	ProductName       string   `json:"productName,omitempty"`
	Quantity          int      `json:"quantity"`
	ItemPrice         float64  `json:"itemPrice"`
	TotalPrice        float64  `json:"totalPrice"`
	VariantName       string   `json:"variantName,omitempty"`
	VariantQuantity   int      `json:"variantQuantity"`
	WarehouseID       *string  `json:"warehouseId,omitempty"`
	WarehouseName     string   `json:"warehouseName,omitempty"`
	OriginalItemPrice *float64 `json:"originalItemPrice,omitempty"`
}

type OrderDTO struct {
	ID               string         `json:"id"`
	OrderNumber      string         `json:"orderNumber"`
	Kind             string         `json:"kind"`
	CounterpartyID   *string        `json:"counterpartyId,omitempty"`
	CounterpartyName string         `json:"counterpartyName,omitempty"`
	Items            []OrderLineDTO `json:"items"`
	Total            float64        `json:"total"`
	OrderDate        time.Time      `json:"orderDate"`
	InvoiceNumber    string         `json:"invoiceNumber,omitempty"`
	Remarks          string         `json:"remarks,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type VendorDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CustomerDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransferResultDTO is the product's stock picture after a transfer
type TransferResultDTO struct {
	ProductID      string              `json:"productId"`
	StoreStock     int                 `json:"storeStock"`
	WarehouseStock []WarehouseStockDTO `json:"warehouseStock"`
}

type StockMovementDTO struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Kind        string    `json:"locationKind"`
	WarehouseID *string   `json:"warehouseId,omitempty"`
	Delta       int       `json:"delta"`
	Reason      string    `json:"reason"`
	ReferenceID *string   `json:"referenceId,omitempty"`
	Remarks     string    `json:"remarks,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toVariantDTO(v *domain.Variant) VariantDTO {
	return VariantDTO{
		ID:        v.ID.Hex(),
		ProductID: v.ProductID.Hex(),
		Name:      v.Name,
		Quantity:  v.Quantity,
	}
}

func toVendorDTO(v *domain.Vendor) VendorDTO {
	return VendorDTO{
		ID:        v.ID.Hex(),
		Name:      v.Name,
		Email:     v.Email,
		Phone:     v.Phone,
		Address:   v.Address,
		Remarks:   v.Remarks,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toCustomerDTO(c *domain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID.Hex(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMovementDTO(m *domain.StockMovement) StockMovementDTO {
	dto := StockMovementDTO{
		ID:        m.ID.Hex(),
		ProductID: m.ProductID.Hex(),
		Kind:      string(m.Location.Kind),
		Delta:     m.Delta,
		Reason:    string(m.Reason),
		Remarks:   m.Remarks,
		CreatedAt: m.CreatedAt,
	}
	if m.Location.WarehouseID != nil {
		id := m.Location.WarehouseID.Hex()
		dto.WarehouseID = &id
	}
	if m.ReferenceID != nil {
		id := m.ReferenceID.Hex()
		dto.ReferenceID = &id
	}
	return dto
}
