package catalog

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Event types for the catalog context
const (
	EventTypeProductCreated = "catalog.product.created"
)

// ProductCreatedEvent is emitted when a product is added to the catalog,
// either through the API or lazily during order ingestion
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Reference string        `json:"reference"`
	Name      string        `json:"name"`
	Source    ProductSource `json:"source"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	tenantID := uuid.Nil
	if product.ClientID != nil {
		tenantID = *product.ClientID
	}
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID, tenantID),
		Reference:       product.Reference,
		Name:            product.Name,
		Source:          product.Source,
	}
}
