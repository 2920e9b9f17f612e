package shipping

import (
	"strings"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// ClientMapping links an external sales channel to the client (tenant) its
// orders belong to. Detection runs against the integration identifier first
// and falls back to the customer email domain.
type ClientMapping struct {
	shared.BaseAggregateRoot
	ClientID              uuid.UUID  `gorm:"type:uuid;not null;index"`
	IntegrationID         string     `gorm:"type:varchar(100);index"`
	EmailDomain           string     `gorm:"type:varchar(255);index"`
	DefaultSenderConfigID *uuid.UUID `gorm:"type:uuid"`
	IsActive              bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ClientMapping) TableName() string {
	return "client_mappings"
}

// NewClientMapping creates a mapping from an external channel to a client.
// At least one of integrationID or emailDomain must be set.
func NewClientMapping(clientID uuid.UUID, integrationID, emailDomain string) (*ClientMapping, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	integrationID = strings.TrimSpace(integrationID)
	emailDomain = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(emailDomain, "@")))
	if integrationID == "" && emailDomain == "" {
		return nil, shared.NewDomainError("INVALID_MAPPING", "Mapping requires an integration ID or an email domain")
	}

	return &ClientMapping{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		IntegrationID:     integrationID,
		EmailDomain:       emailDomain,
		IsActive:          true,
	}, nil
}

// SetDefaultSender attaches a default sender configuration used when no
// attribution rule matches an order for this client
func (m *ClientMapping) SetDefaultSender(senderConfigID uuid.UUID) error {
	if senderConfigID == uuid.Nil {
		return shared.NewDomainError("INVALID_SENDER_CONFIG", "Sender configuration ID cannot be empty")
	}
	m.DefaultSenderConfigID = &senderConfigID
	m.Touch()
	m.IncrementVersion()
	return nil
}

// MatchesEmail reports whether the mapping's email domain matches the
// domain of the given address
func (m *ClientMapping) MatchesEmail(email string) bool {
	if m.EmailDomain == "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	return strings.EqualFold(email[at+1:], m.EmailDomain)
}

// Deactivate disables the mapping for tenant detection
func (m *ClientMapping) Deactivate() {
	m.IsActive = false
	m.Touch()
	m.IncrementVersion()
}
