package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNoCarrierSelected is returned by a CarrierSelector when no carrier can
// serve the shipment. It is a business outcome, not a transport failure.
var ErrNoCarrierSelected = errors.New("shipping: no carrier selected")

// ShipmentRequest describes an order to the carrier selection engine
type ShipmentRequest struct {
	OrderID        uuid.UUID
	OrderNumber    string
	CountryCode    string
	PostalCode     string
	City           string
	TotalWeightKg  decimal.Decimal
	DeclaredValue  decimal.Decimal
	Currency       string
	SenderLabel    string
	SenderCountry  string
	SenderPostcode string
}

// CarrierSelection is the outcome of a successful carrier selection
type CarrierSelection struct {
	CarrierName    string
	ServiceLevel   string
	TrackingNumber string
	TrackingURL    string
	LabelURL       string
}

// CarrierSelector chooses a carrier and service for a shipment. Transient
// failures are returned as regular errors so callers can retry; a definitive
// "nothing matches" answer is ErrNoCarrierSelected.
type CarrierSelector interface {
	Select(ctx context.Context, req ShipmentRequest) (*CarrierSelection, error)
}
