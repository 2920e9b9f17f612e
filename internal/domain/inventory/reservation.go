package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ReservationStatus represents the lifecycle of a stock reservation
type ReservationStatus string

const (
	// ReservationStatusActive means the stock is held for the order
	ReservationStatusActive ReservationStatus = "active"
	// ReservationStatusReleased means the hold was returned to stock
	ReservationStatusReleased ReservationStatus = "released"
	// ReservationStatusConsumed means the stock left the warehouse
	ReservationStatusConsumed ReservationStatus = "consumed"
)

// StockReservation is a ledger entry holding available stock against a
// specific order so it cannot be promised to another order.
type StockReservation struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	OriginReference string            `gorm:"type:varchar(100);not null"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// NewStockReservation creates a new active reservation
func NewStockReservation(productID, orderID uuid.UUID, quantity decimal.Decimal, originReference string) (*StockReservation, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if originReference == "" {
		return nil, shared.NewDomainError("INVALID_ORIGIN", "Origin reference is required")
	}

	now := time.Now()
	return &StockReservation{
		ID:              uuid.New(),
		ProductID:       productID,
		OrderID:         orderID,
		Quantity:        quantity,
		OriginReference: originReference,
		Status:          ReservationStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Release marks the reservation as returned to stock
func (r *StockReservation) Release() error {
	if r.Status != ReservationStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active reservations can be released")
	}
	r.Status = ReservationStatusReleased
	r.UpdatedAt = time.Now()
	return nil
}

// Consume marks the reservation as shipped out
func (r *StockReservation) Consume() error {
	if r.Status != ReservationStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active reservations can be consumed")
	}
	r.Status = ReservationStatusConsumed
	r.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true while the stock is still held
func (r *StockReservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}
