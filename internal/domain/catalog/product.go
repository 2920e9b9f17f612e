package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ProductSource indicates how a product record entered the catalog
type ProductSource string

const (
	// ProductSourceManual is a product created through the catalog API
	ProductSourceManual ProductSource = "manual"
	// ProductSourceIngestion is a product lazily created while importing
	// an external order that referenced an unknown SKU
	ProductSourceIngestion ProductSource = "ingestion"
)

// DefaultUnitWeightKg is the weight assigned to products created during
// ingestion when the payload carries no weight information.
var DefaultUnitWeightKg = decimal.NewFromFloat(0.5)

// Product represents a product/SKU in the catalog.
// The Reference (SKU) is the business-unique key. ClientID is nil for
// products in the shared catalog and set for client-private products.
type Product struct {
	shared.BaseAggregateRoot
	Reference      string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(255);not null"`
	UnitWeight     decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ClientID       *uuid.UUID      `gorm:"type:uuid;index"`
	Source         ProductSource   `gorm:"type:varchar(20);not null;default:'manual'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(reference, name string, unitWeight, unitPrice decimal.Decimal, clientID *uuid.UUID) (*Product, error) {
	if err := validateReference(reference); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitWeight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Unit weight cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         strings.ToUpper(strings.TrimSpace(reference)),
		Name:              name,
		UnitWeight:        unitWeight,
		UnitPrice:         unitPrice,
		AvailableStock:    decimal.Zero,
		ClientID:          clientID,
		Source:            ProductSourceManual,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// NewIngestionProduct creates the minimal product record used when an
// imported order references a SKU that does not exist yet. Weight defaults
// to DefaultUnitWeightKg when the payload gave none, stock starts at zero
// and ownership is the detected client (nil when detection failed).
func NewIngestionProduct(reference, name string, unitWeight, unitPrice decimal.Decimal, clientID *uuid.UUID) (*Product, error) {
	if name == "" {
		name = reference
	}
	if unitWeight.LessThanOrEqual(decimal.Zero) {
		unitWeight = DefaultUnitWeightKg
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}

	product, err := NewProduct(reference, name, unitWeight, unitPrice, clientID)
	if err != nil {
		return nil, err
	}
	product.Source = ProductSourceIngestion

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name string, unitWeight, unitPrice decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitWeight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Unit weight cannot be negative")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	p.Name = name
	p.UnitWeight = unitWeight
	p.UnitPrice = unitPrice
	p.Touch()
	p.IncrementVersion()

	return nil
}

// AssignClient sets the owning client for a shared-catalog product
func (p *Product) AssignClient(clientID uuid.UUID) {
	p.ClientID = &clientID
	p.Touch()
	p.IncrementVersion()
}

// IsShared returns true if the product belongs to the shared catalog
func (p *Product) IsShared() bool {
	return p.ClientID == nil
}

// CanFulfill returns true if available stock covers the requested quantity
func (p *Product) CanFulfill(quantity decimal.Decimal) bool {
	return p.AvailableStock.GreaterThanOrEqual(quantity)
}

// validateReference validates the product reference (SKU)
func validateReference(reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Product reference cannot be empty")
	}
	if len(reference) > 64 {
		return shared.NewDomainError("INVALID_REFERENCE", "Product reference cannot exceed 64 characters")
	}
	for _, r := range reference {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewDomainError("INVALID_REFERENCE", "Product reference can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}
