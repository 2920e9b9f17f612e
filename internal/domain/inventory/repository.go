package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockReservationRepository defines the interface for the reservation ledger.
//
// Reserve is the only way stock is taken: it performs a conditional decrement
// of the product's available stock and inserts the ledger entry in one
// transaction. There is deliberately no read-stock-then-reserve pair on this
// interface, so concurrent callers cannot over-reserve.
type StockReservationRepository interface {
	// Reserve atomically decrements the product's available stock by
	// quantity and records a reservation for the order. Returns false
	// (with a nil error) when available stock is insufficient; nothing is
	// written in that case.
	Reserve(ctx context.Context, productID, orderID uuid.UUID, quantity decimal.Decimal, originReference string) (bool, error)

	// ReleaseForOrder releases all active reservations held by an order
	// and returns the quantities to available stock.
	ReleaseForOrder(ctx context.Context, orderID uuid.UUID) error

	// FindByOrder returns all reservations held by an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]StockReservation, error)

	// FindActiveByProduct returns active reservations for a product
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]StockReservation, error)
}
