package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// GormClientMappingRepository implements ClientMappingRepository using GORM
type GormClientMappingRepository struct {
	db *gorm.DB
}

var _ shipping.ClientMappingRepository = (*GormClientMappingRepository)(nil)

// NewGormClientMappingRepository creates a new GormClientMappingRepository
func NewGormClientMappingRepository(db *gorm.DB) *GormClientMappingRepository {
	return &GormClientMappingRepository{db: db}
}

// FindByID finds a client mapping by its ID
func (r *GormClientMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.ClientMapping, error) {
	var mapping shipping.ClientMapping
	if err := r.db.WithContext(ctx).First(&mapping, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// FindByIntegrationID returns active mappings for the integration identifier,
// oldest first. Callers resolve ambiguity by taking the first entry.
func (r *GormClientMappingRepository) FindByIntegrationID(ctx context.Context, integrationID string) ([]shipping.ClientMapping, error) {
	var mappings []shipping.ClientMapping
	if err := r.db.WithContext(ctx).
		Where("integration_id = ? AND is_active = ?", integrationID, true).
		Order("created_at ASC, id ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// FindByEmailDomain returns active mappings for the email domain, oldest first
func (r *GormClientMappingRepository) FindByEmailDomain(ctx context.Context, domain string) ([]shipping.ClientMapping, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
	var mappings []shipping.ClientMapping
	if err := r.db.WithContext(ctx).
		Where("email_domain = ? AND is_active = ?", normalized, true).
		Order("created_at ASC, id ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// FindAllForClient finds all mappings pointing at a client
func (r *GormClientMappingRepository) FindAllForClient(ctx context.Context, clientID uuid.UUID) ([]shipping.ClientMapping, error) {
	var mappings []shipping.ClientMapping
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// Save creates or updates a client mapping
func (r *GormClientMappingRepository) Save(ctx context.Context, mapping *shipping.ClientMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}

// Delete deletes a client mapping
func (r *GormClientMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&shipping.ClientMapping{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
