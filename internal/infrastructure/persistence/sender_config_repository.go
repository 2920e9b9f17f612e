package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// GormSenderConfigRepository implements SenderConfigurationRepository using GORM
type GormSenderConfigRepository struct {
	db *gorm.DB
}

var _ shipping.SenderConfigurationRepository = (*GormSenderConfigRepository)(nil)

// NewGormSenderConfigRepository creates a new GormSenderConfigRepository
func NewGormSenderConfigRepository(db *gorm.DB) *GormSenderConfigRepository {
	return &GormSenderConfigRepository{db: db}
}

// FindByID finds a sender configuration by its ID
func (r *GormSenderConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.SenderConfiguration, error) {
	var config shipping.SenderConfiguration
	if err := r.db.WithContext(ctx).First(&config, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &config, nil
}

// FindAllForTenant finds all sender configurations of a tenant
func (r *GormSenderConfigRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]shipping.SenderConfiguration, error) {
	var configs []shipping.SenderConfiguration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("label ASC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// FindDefaultForTenant finds the tenant's default sender configuration
func (r *GormSenderConfigRepository) FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*shipping.SenderConfiguration, error) {
	var config shipping.SenderConfiguration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ? AND is_active = ?", tenantID, true, true).
		Order("created_at ASC").
		First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &config, nil
}

// Save creates or updates a sender configuration
func (r *GormSenderConfigRepository) Save(ctx context.Context, config *shipping.SenderConfiguration) error {
	return r.db.WithContext(ctx).Save(config).Error
}

// ClearDefaultForTenant unsets the default flag on every configuration of the tenant
func (r *GormSenderConfigRepository) ClearDefaultForTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&shipping.SenderConfiguration{}).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		Update("is_default", false).Error
}

// Delete deletes a sender configuration
func (r *GormSenderConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&shipping.SenderConfiguration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
