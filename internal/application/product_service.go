package application

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/logging"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/metrics"
)

// ProductService owns the catalog use cases: create with a default variant,
// merge updates, price-change revisions, archival, and the populated reads.
type ProductService struct {
	products   domain.ProductRepository
	variants   domain.VariantRepository
	warehouses domain.WarehouseRepository
	movements  domain.StockMovementRepository
	tx         domain.TxRunner
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

func NewProductService(
	products domain.ProductRepository,
	variants domain.VariantRepository,
	warehouses domain.WarehouseRepository,
	movements domain.StockMovementRepository,
	tx domain.TxRunner,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ProductService {
	return &ProductService{
		products:   products,
		variants:   variants,
		warehouses: warehouses,
		movements:  movements,
		tx:         tx,
		logger:     logger.WithComponent("product-service"),
		metrics:    m,
	}
}

// Create inserts a new product together with its default base-unit variant
// in one transaction
func (s *ProductService) Create(ctx context.Context, cmd CreateProductCommand) (*ProductDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	p, err := domain.NewProduct(cmd.Name, cmd.Company, cmd.Category, cmd.SubCategory, cmd.SKU, cmd.SellingPrice, cmd.CostPrice, cmd.ReorderPoint)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	p.Published = cmd.Published

	if err := s.ensureUnique(ctx, p.Name, p.SKU, nil); err != nil {
		return nil, err
	}

	dv := domain.DefaultVariant(p.ID)
	p.AttachVariant(dv.ID)

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.products.Insert(txCtx, p); err != nil {
			return err
		}
		return s.variants.Insert(txCtx, dv)
	})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	s.logger.WithContext(ctx).Info("product created",
		"productId", p.ID.Hex(),
		"sku", p.SKU,
	)
	return s.populate(ctx, p)
}

// Update merges the command into the product. A change to either price field
// forks a revision: the old record is archived, a fresh record with a new
// identity takes its place, and variant and warehouse references follow the
// new identity. Existing orders keep pointing at the archived record, so
// their historical prices stay intact.
func (s *ProductService) Update(ctx context.Context, id string, cmd UpdateProductCommand) (*ProductDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}

	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	if p.Archived {
		return nil, apperrors.ErrNotFoundWithID("product", id)
	}

	update := domain.ProductUpdate{
		Name:         cmd.Name,
		Company:      cmd.Company,
		Category:     cmd.Category,
		SubCategory:  cmd.SubCategory,
		SellingPrice: cmd.SellingPrice,
		CostPrice:    cmd.CostPrice,
		Published:    cmd.Published,
		SKU:          cmd.SKU,
		ReorderPoint: cmd.ReorderPoint,
	}

	if p.ChangesPrice(update) {
		return s.revise(ctx, p, update)
	}

	name := p.Name
	if update.Name != nil {
		name = *update.Name
	}
	sku := p.SKU
	if update.SKU != nil {
		sku = *update.SKU
	}
	if err := s.ensureUnique(ctx, name, sku, &p.ID); err != nil {
		return nil, err
	}

	p.Apply(update)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	return s.populate(ctx, p)
}

// revise performs the price-change fork in one transaction
func (s *ProductService) revise(ctx context.Context, old *domain.Product, update domain.ProductUpdate) (*ProductDTO, error) {
	next := old.Revise(update)

	if err := s.ensureUnique(ctx, next.Name, next.SKU, &old.ID); err != nil {
		return nil, err
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		// archive first: the active-only unique index on name and SKU must
		// see the old record retired before the revision lands
		if err := s.products.SetArchived(txCtx, old.ID, true); err != nil {
			return err
		}
		if err := s.products.Insert(txCtx, next); err != nil {
			return err
		}
		if err := s.variants.RepointProduct(txCtx, old.ID, next.ID); err != nil {
			return err
		}

		holders, err := s.warehouses.FindHoldingProduct(txCtx, old.ID)
		if err != nil {
			return err
		}
		for _, w := range holders {
			if err := s.warehouses.RepointProduct(txCtx, w.ID, old.ID, next.ID); err != nil {
				return fmt.Errorf("repoint warehouse %s: %w", w.ID.Hex(), err)
			}
			mv := domain.NewStockMovement(next.ID, domain.WarehouseLocation(w.ID), 0, domain.ReasonRevisionRepoint, &old.ID)
			if err := s.movements.Insert(txCtx, mv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	s.metrics.RecordProductRevision()
	s.logger.WithContext(ctx).Info("product revised on price change",
		"oldProductId", old.ID.Hex(),
		"newProductId", next.ID.Hex(),
	)
	return s.populate(ctx, next)
}

// Archive soft-deletes a product; historical orders keep their reference
func (s *ProductService) Archive(ctx context.Context, id string) error {
	oid, err := parseID(id, "product")
	if err != nil {
		return err
	}

	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return apperrors.MapDomainError(err)
	}
	if p.Archived {
		return apperrors.ErrNotFoundWithID("product", id)
	}

	if err := s.products.SetArchived(ctx, oid, true); err != nil {
		return apperrors.MapDomainError(err)
	}

	s.logger.WithContext(ctx).Info("product archived", "productId", id)
	return nil
}

// Get returns a product with its variants and warehouse holdings
func (s *ProductService) Get(ctx context.Context, id string) (*ProductDTO, error) {
	oid, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}

	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	return s.populate(ctx, p)
}

// List returns a page of products, excluding archived ones unless asked
func (s *ProductService) List(ctx context.Context, includeArchived bool, page api.PageRequest) (*api.PageResponse[ProductDTO], error) {
	opts := domain.ListOptions{Offset: page.Offset(), Limit: page.Limit()}

	items, err := s.products.FindAll(ctx, includeArchived, opts)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	total, err := s.products.Count(ctx, includeArchived)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dtos := make([]ProductDTO, 0, len(items))
	for _, p := range items {
		dto, err := s.populate(ctx, p)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}

	resp := api.NewPageResponse(dtos, page.Page, page.PageSize, total)
	return &resp, nil
}

// AddVariant creates a sales unit for a product inside a transaction so the
// variant record and the product's reference list cannot diverge
func (s *ProductService) AddVariant(ctx context.Context, productID string, cmd CreateVariantCommand) (*VariantDTO, error) {
	if err := api.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	oid, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}

	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	if p.Archived {
		return nil, apperrors.ErrNotFoundWithID("product", productID)
	}

	v, err := domain.NewVariant(p.ID, cmd.Name, cmd.Quantity)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.variants.Insert(txCtx, v); err != nil {
			return err
		}
		return s.products.AttachVariant(txCtx, p.ID, v.ID)
	})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dto := toVariantDTO(v)
	return &dto, nil
}

// RemoveVariant deletes a sales unit and detaches it from its product
func (s *ProductService) RemoveVariant(ctx context.Context, variantID string) error {
	oid, err := parseID(variantID, "variant")
	if err != nil {
		return err
	}

	v, err := s.variants.FindByID(ctx, oid)
	if err != nil {
		return apperrors.MapDomainError(err)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.variants.Delete(txCtx, v.ID); err != nil {
			return err
		}
		return s.products.DetachVariant(txCtx, v.ProductID, v.ID)
	})
	if err != nil {
		return apperrors.MapDomainError(err)
	}
	return nil
}

// ensureUnique rejects a name or SKU already used by another active product
func (s *ProductService) ensureUnique(ctx context.Context, name, sku string, excludeID *primitive.ObjectID) error {
	existing, err := s.products.FindActiveByNameOrSKU(ctx, name, sku, excludeID)
	if err != nil {
		if apperrors.FromError(err).Code == apperrors.CodeNotFound {
			return nil
		}
		return apperrors.MapDomainError(err)
	}
	if existing != nil {
		return apperrors.ErrConflict("a product with the same name or SKU already exists")
	}
	return nil
}

func (s *ProductService) populate(ctx context.Context, p *domain.Product) (*ProductDTO, error) {
	dto := ProductDTO{
		ID:           p.ID.Hex(),
		Name:         p.Name,
		Company:      p.Company,
		Category:     p.Category,
		SubCategory:  p.SubCategory,
		SellingPrice: p.SellingPrice,
		CostPrice:    p.CostPrice,
		Published:    p.Published,
		SKU:          p.SKU,
		Stock:        p.Stock,
		ReorderPoint: p.ReorderPoint,
		NeedsReorder: p.NeedsReorder(),
		Archived:     p.Archived,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	vs, err := s.variants.FindByProduct(ctx, p.ID)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	for _, v := range vs {
		dto.Variants = append(dto.Variants, toVariantDTO(v))
	}

	holders, err := s.warehouses.FindHoldingProduct(ctx, p.ID)
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}
	for _, w := range holders {
		dto.WarehouseStock = append(dto.WarehouseStock, WarehouseStockDTO{
			WarehouseID:   w.ID.Hex(),
			WarehouseName: w.Name,
			Quantity:      w.StockFor(p.ID),
		})
	}

	return &dto, nil
}
