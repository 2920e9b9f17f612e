package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/shared"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByReference finds a product by SKU. When a client id is given the
// client's private catalog is checked before the shared one.
func (r *GormProductRepository) FindByReference(ctx context.Context, clientID *uuid.UUID, reference string) (*catalog.Product, error) {
	upper := strings.ToUpper(strings.TrimSpace(reference))
	if upper == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Product reference cannot be empty")
	}

	if clientID != nil {
		var product catalog.Product
		err := r.db.WithContext(ctx).
			Where("reference = ? AND client_id = ?", upper, *clientID).
			First(&product).Error
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("reference = ? AND client_id IS NULL", upper).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByReferences finds multiple products by SKU
func (r *GormProductRepository) FindByReferences(ctx context.Context, clientID *uuid.UUID, references []string) ([]catalog.Product, error) {
	if len(references) == 0 {
		return []catalog.Product{}, nil
	}

	upper := make([]string, len(references))
	for i, ref := range references {
		upper[i] = strings.ToUpper(strings.TrimSpace(ref))
	}

	query := r.db.WithContext(ctx).Where("reference IN ?", upper)
	if clientID != nil {
		query = query.Where("client_id = ? OR client_id IS NULL", *clientID)
	} else {
		query = query.Where("client_id IS NULL")
	}

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product. A unique violation on the reference is
// reported as ErrAlreadyExists so callers can re-read the winning row.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByReference checks if a product with the given SKU exists
func (r *GormProductRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("reference = ?", strings.ToUpper(strings.TrimSpace(reference))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "reference")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("reference ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "source":
			query = query.Where("source = ?", value)
		case "client_id":
			if value == nil {
				query = query.Where("client_id IS NULL")
			} else {
				query = query.Where("client_id = ?", value)
			}
		case "out_of_stock":
			if value == true {
				query = query.Where("available_stock <= 0")
			}
		}
	}
	return query
}
