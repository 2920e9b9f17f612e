package shipping

import (
	"context"

	"github.com/google/uuid"
)

// SenderConfigurationRepository defines the persistence interface for
// sender configurations
type SenderConfigurationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SenderConfiguration, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]SenderConfiguration, error)
	FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*SenderConfiguration, error)
	Save(ctx context.Context, config *SenderConfiguration) error
	// ClearDefaultForTenant unsets the default flag on every configuration
	// of the tenant. Used before promoting a new default.
	ClearDefaultForTenant(ctx context.Context, tenantID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SenderRuleRepository defines the persistence interface for sender
// attribution rules
type SenderRuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SenderRule, error)
	// FindActiveForTenant returns the tenant's active rules ordered by
	// priority descending, then creation time and id ascending
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]SenderRule, error)
	Save(ctx context.Context, rule *SenderRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientMappingRepository defines the persistence interface for client
// mappings used during tenant detection
type ClientMappingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ClientMapping, error)
	// FindByIntegrationID returns active mappings whose integration
	// identifier matches, ordered by creation time then id ascending
	FindByIntegrationID(ctx context.Context, integrationID string) ([]ClientMapping, error)
	// FindByEmailDomain returns active mappings whose email domain matches,
	// ordered by creation time then id ascending
	FindByEmailDomain(ctx context.Context, domain string) ([]ClientMapping, error)
	FindAllForClient(ctx context.Context, clientID uuid.UUID) ([]ClientMapping, error)
	Save(ctx context.Context, mapping *ClientMapping) error
	Delete(ctx context.Context, id uuid.UUID) error
}
