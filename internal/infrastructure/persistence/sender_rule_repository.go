package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// GormSenderRuleRepository implements SenderRuleRepository using GORM
type GormSenderRuleRepository struct {
	db *gorm.DB
}

var _ shipping.SenderRuleRepository = (*GormSenderRuleRepository)(nil)

// NewGormSenderRuleRepository creates a new GormSenderRuleRepository
func NewGormSenderRuleRepository(db *gorm.DB) *GormSenderRuleRepository {
	return &GormSenderRuleRepository{db: db}
}

// FindByID finds a sender rule by its ID
func (r *GormSenderRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.SenderRule, error) {
	var rule shipping.SenderRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindActiveForTenant returns the tenant's active rules in evaluation order.
// The ordering is total so rule evaluation is deterministic across replicas.
func (r *GormSenderRuleRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]shipping.SenderRule, error) {
	var rules []shipping.SenderRule
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("priority DESC, created_at ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Save creates or updates a sender rule
func (r *GormSenderRuleRepository) Save(ctx context.Context, rule *shipping.SenderRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete deletes a sender rule
func (r *GormSenderRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&shipping.SenderRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
