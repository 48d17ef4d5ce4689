package application

import (
	"context"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	"github.com/jtjeruta/desktop-ims-sub001/pkg/api"
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
)

// MovementService exposes the stock journal for audit reads
type MovementService struct {
	movements domain.StockMovementRepository
}

func NewMovementService(movements domain.StockMovementRepository) *MovementService {
	return &MovementService{movements: movements}
}

// ListByProduct returns a product's journal entries, newest first
func (s *MovementService) ListByProduct(ctx context.Context, productID string, page api.PageRequest) ([]StockMovementDTO, error) {
	oid, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}

	ms, err := s.movements.FindByProduct(ctx, oid, domain.ListOptions{Offset: page.Offset(), Limit: page.Limit()})
	if err != nil {
		return nil, apperrors.MapDomainError(err)
	}

	dtos := make([]StockMovementDTO, 0, len(ms))
	for _, m := range ms {
		dtos = append(dtos, toMovementDTO(m))
	}
	return dtos, nil
}
