package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByReference finds a product by SKU. Client-private products are
	// matched first, then the shared catalog.
	FindByReference(ctx context.Context, clientID *uuid.UUID, reference string) (*Product, error)

	// FindByReferences finds multiple products by SKU
	FindByReferences(ctx context.Context, clientID *uuid.UUID, references []string) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByReference checks if a product with the given SKU exists
	ExistsByReference(ctx context.Context, reference string) (bool, error)
}
