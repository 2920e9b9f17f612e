package shipping

import (
	"strings"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// SenderConfiguration is a tenant-scoped ship-from address/contact profile.
// At most one configuration per tenant may be flagged default; the
// attribution engine falls back to it when no rule matches.
type SenderConfiguration struct {
	shared.TenantAggregateRoot
	Label       string `gorm:"type:varchar(100);not null"`
	Name        string `gorm:"type:varchar(200);not null"`
	Company     string `gorm:"type:varchar(200)"`
	Line1       string `gorm:"type:varchar(255);not null"`
	Line2       string `gorm:"type:varchar(255)"`
	PostalCode  string `gorm:"type:varchar(20);not null"`
	City        string `gorm:"type:varchar(100);not null"`
	CountryCode string `gorm:"type:varchar(2);not null"`
	Email       string `gorm:"type:varchar(255)"`
	Phone       string `gorm:"type:varchar(50)"`
	IsDefault   bool   `gorm:"not null;default:false"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SenderConfiguration) TableName() string {
	return "sender_configurations"
}

// NewSenderConfiguration creates a new ship-from profile
func NewSenderConfiguration(tenantID uuid.UUID, label, name, line1, postalCode, city, countryCode string) (*SenderConfiguration, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Sender label cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Sender name cannot be empty")
	}
	if line1 == "" || postalCode == "" || city == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Sender address requires line1, postal code, and city")
	}
	if len(countryCode) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Sender country must be a 2-letter code")
	}

	return &SenderConfiguration{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Label:               label,
		Name:                name,
		Line1:               line1,
		PostalCode:          postalCode,
		City:                city,
		CountryCode:         strings.ToUpper(countryCode),
		IsActive:            true,
	}, nil
}

// MarkDefault flags this configuration as the tenant default. The
// repository is responsible for clearing the flag on siblings.
func (c *SenderConfiguration) MarkDefault() {
	c.IsDefault = true
	c.Touch()
	c.IncrementVersion()
}

// Deactivate removes the configuration from attribution without deleting
// orders that already snapshot it
func (c *SenderConfiguration) Deactivate() {
	c.IsActive = false
	c.IsDefault = false
	c.Touch()
	c.IncrementVersion()
}
