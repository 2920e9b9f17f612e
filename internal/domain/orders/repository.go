package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence.
//
// ExistsByExternalID and ExistsByOrderNumber are deliberately separate
// lookups: historical data may carry only one of the two identifiers, so a
// single OR-query could miss a duplicate after an asymmetric backfill.
type OrderRepository interface {
	// FindByID finds an order (with lines) by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForTenant finds an order by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable number
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)

	// FindByExternalID finds an order by the external system id
	FindByExternalID(ctx context.Context, externalID string) (*Order, error)

	// ExistsByExternalID reports whether an order with the external id
	// exists, returning its id when it does
	ExistsByExternalID(ctx context.Context, externalID string) (bool, uuid.UUID, error)

	// ExistsByOrderNumber reports whether an order with the number exists,
	// returning its id when it does
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, uuid.UUID, error)

	// FindAllForTenant finds orders for a tenant matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountForTenant counts orders for a tenant matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindCarrierPending returns orders flagged for carrier-selection
	// retry, oldest first, up to limit
	FindCarrierPending(ctx context.Context, limit int) ([]Order, error)

	// Save creates or updates an order together with its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order using optimistic locking on Version
	SaveWithLock(ctx context.Context, order *Order) error
}
