package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// GormStockReservationRepository implements StockReservationRepository using GORM
type GormStockReservationRepository struct {
	db *gorm.DB
}

var _ inventory.StockReservationRepository = (*GormStockReservationRepository)(nil)

// NewGormStockReservationRepository creates a new GormStockReservationRepository
func NewGormStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// Reserve decrements available stock and records the reservation in one
// transaction. The decrement is conditional on sufficient stock, so two
// concurrent reservations can never take the same units.
func (r *GormStockReservationRepository) Reserve(ctx context.Context, productID, orderID uuid.UUID, quantity decimal.Decimal, originReference string) (bool, error) {
	reservation, err := inventory.NewStockReservation(productID, orderID, quantity, originReference)
	if err != nil {
		return false, err
	}

	reserved := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&catalog.Product{}).
			Where("id = ? AND available_stock >= ?", productID, quantity).
			Update("available_stock", gorm.Expr("available_stock - ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Insufficient stock, or the product vanished. Either way
			// nothing is written and the caller sees an unreserved line.
			return nil
		}

		if err := tx.Create(reservation).Error; err != nil {
			return err
		}
		reserved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return reserved, nil
}

// ReleaseForOrder releases all active reservations held by an order and
// returns the quantities to available stock
func (r *GormStockReservationRepository) ReleaseForOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservations []inventory.StockReservation
		if err := tx.Where("order_id = ? AND status = ?", orderID, inventory.ReservationStatusActive).
			Find(&reservations).Error; err != nil {
			return err
		}

		for i := range reservations {
			reservation := &reservations[i]
			if err := reservation.Release(); err != nil {
				return err
			}
			result := tx.Model(&catalog.Product{}).
				Where("id = ?", reservation.ProductID).
				Update("available_stock", gorm.Expr("available_stock + ?", reservation.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
			if err := tx.Save(reservation).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByOrder returns all reservations held by an order
func (r *GormStockReservationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindActiveByProduct returns active reservations for a product
func (r *GormStockReservationRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, inventory.ReservationStatusActive).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
