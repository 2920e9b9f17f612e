package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

var _ orders.OrderRepository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*orders.Order, error) {
	var order orders.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its human-readable number within a tenant
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*orders.Order, error) {
	var order orders.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByExternalID finds an order by the external system id
func (r *GormOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*orders.Order, error) {
	var order orders.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("external_id = ?", externalID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ExistsByExternalID reports whether an order with the external id exists
func (r *GormOrderRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&orders.Order{}).
		Select("id").
		Where("external_id = ?", externalID).
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return false, uuid.Nil, err
	}
	if id == uuid.Nil {
		return false, uuid.Nil, nil
	}
	return true, id, nil
}

// ExistsByOrderNumber reports whether an order with the number exists
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&orders.Order{}).
		Select("id").
		Where("order_number = ?", orderNumber).
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return false, uuid.Nil, err
	}
	if id == uuid.Nil {
		return false, uuid.Nil, nil
	}
	return true, id, nil
}

// FindAllForTenant finds orders for a tenant matching the filter
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]orders.Order, error) {
	var result []orders.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&orders.Order{}).
			Preload("Lines").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// CountForTenant counts orders for a tenant matching the filter
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&orders.Order{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindCarrierPending returns orders flagged for carrier retry, oldest first
func (r *GormOrderRepository) FindCarrierPending(ctx context.Context, limit int) ([]orders.Order, error) {
	var result []orders.Order
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Where("carrier_pending = ?", true).
		Order("updated_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Save creates or updates an order together with its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *orders.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		// Drop lines removed from the aggregate since the last load
		currentLineIDs := make([]uuid.UUID, len(order.Lines))
		for i, line := range order.Lines {
			currentLineIDs[i] = line.ID
		}
		removal := tx.Where("order_id = ?", order.ID)
		if len(currentLineIDs) > 0 {
			removal = removal.Where("id NOT IN ?", currentLineIDs)
		}
		return removal.Delete(&orders.OrderLine{}).Error
	})
}

// SaveWithLock updates an order using optimistic locking on Version
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *orders.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&orders.Order{}).
			Where("id = ?", order.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != order.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another process")
		}

		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&orders.Order{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"tenant_id":           order.TenantID,
				"customer_name":       order.CustomerName,
				"customer_email":      order.CustomerEmail,
				"customer_phone":      order.CustomerPhone,
				"status":              order.Status,
				"sender_config_id":    order.Sender.SenderConfigID,
				"sender_name":         order.Sender.SenderName,
				"sender_company":      order.Sender.SenderCompany,
				"sender_line1":        order.Sender.SenderLine1,
				"sender_line2":        order.Sender.SenderLine2,
				"sender_postal_code":  order.Sender.SenderPostal,
				"sender_city":         order.Sender.SenderCity,
				"sender_country_code": order.Sender.SenderCountry,
				"sender_email":        order.Sender.SenderEmail,
				"sender_phone":        order.Sender.SenderPhone,
				"carrier_name":        order.Carrier.CarrierName,
				"carrier_service":     order.Carrier.CarrierService,
				"tracking_number":     order.Carrier.TrackingNumber,
				"tracking_url":        order.Carrier.TrackingURL,
				"label_url":           order.Carrier.LabelURL,
				"label_archive_key":   order.Carrier.LabelArchive,
				"carrier_pending":     order.CarrierPending,
				"carrier_attempts":    order.CarrierAttempts,
				"version":             order.Version,
				"updated_at":          order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another process")
		}
		return nil
	})
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"order_number ILIKE ? OR external_id ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "carrier_pending":
			query = query.Where("carrier_pending = ?", value)
		case "country":
			query = query.Where("delivery_country_code = ?", value)
		case "unattributed":
			if value == true {
				query = query.Where("sender_config_id IS NULL")
			}
		}
	}
	return query
}
