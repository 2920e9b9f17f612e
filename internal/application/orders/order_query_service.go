package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
)

// OrderQueryService serves read access to imported orders, always scoped to
// a tenant
type OrderQueryService struct {
	orderRepo orders.OrderRepository
}

// NewOrderQueryService creates a new OrderQueryService
func NewOrderQueryService(orderRepo orders.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orderRepo: orderRepo}
}

// GetOrder returns one order with its lines
func (s *OrderQueryService) GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(order), nil
}

// GetOrderByNumber returns one order looked up by its human-readable number
func (s *OrderQueryService) GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(order), nil
}

// ListOrders returns a page of orders for a tenant
func (s *OrderQueryService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[OrderDTO], error) {
	found, err := s.orderRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]OrderDTO, 0, len(found))
	for i := range found {
		items = append(items, *ToOrderDTO(&found[i]))
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
