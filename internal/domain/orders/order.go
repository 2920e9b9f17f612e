package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// FulfillmentStatus represents the warehouse-facing status of an order
type FulfillmentStatus string

const (
	// StatusPending is the transient status before line items are processed
	StatusPending FulfillmentStatus = "pending"
	// StatusProductsNotFound means at least one SKU could not be resolved
	// or created; the order cannot be picked until remediated
	StatusProductsNotFound FulfillmentStatus = "products_not_found"
	// StatusAwaitingRestock means every SKU resolved but at least one line
	// could not be fully reserved
	StatusAwaitingRestock FulfillmentStatus = "awaiting_restock"
	// StatusReadyToPick means all lines are reserved
	StatusReadyToPick FulfillmentStatus = "ready_to_pick"
	// StatusShipped is set from carrier status updates
	StatusShipped FulfillmentStatus = "shipped"
	// StatusDelivered is set from carrier status updates
	StatusDelivered FulfillmentStatus = "delivered"
	// StatusCancelled is set from carrier status updates
	StatusCancelled FulfillmentStatus = "cancelled"
)

// IsValid returns true if the status is valid
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProductsNotFound, StatusAwaitingRestock,
		StatusReadyToPick, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s FulfillmentStatus) String() string {
	return string(s)
}

// LineStatus represents the per-line fulfillment outcome at import time
type LineStatus string

const (
	// LineStatusReservable means stock was reserved for the full quantity
	LineStatusReservable LineStatus = "reservable"
	// LineStatusStockInsufficient means available stock did not cover the
	// quantity; nothing was reserved (no partial reservations)
	LineStatusStockInsufficient LineStatus = "stock_insufficient"
	// LineStatusProductNotFound means the SKU could not be resolved or
	// lazily created
	LineStatusProductNotFound LineStatus = "product_not_found"
)

// DeliveryAddress is the recipient address captured at import time
type DeliveryAddress struct {
	Name        string `gorm:"column:delivery_name;type:varchar(200)"`
	Line1       string `gorm:"column:delivery_line1;type:varchar(255)"`
	Line2       string `gorm:"column:delivery_line2;type:varchar(255)"`
	PostalCode  string `gorm:"column:delivery_postal_code;type:varchar(20)"`
	City        string `gorm:"column:delivery_city;type:varchar(100)"`
	CountryCode string `gorm:"column:delivery_country_code;type:varchar(2)"`
}

// SenderSnapshot holds the ship-from fields copied onto the order when a
// sender configuration is attributed. Later edits to the configuration do
// not change orders that already carry a snapshot.
type SenderSnapshot struct {
	SenderConfigID *uuid.UUID `gorm:"column:sender_config_id;type:uuid"`
	SenderName     string     `gorm:"column:sender_name;type:varchar(200)"`
	SenderCompany  string     `gorm:"column:sender_company;type:varchar(200)"`
	SenderLine1    string     `gorm:"column:sender_line1;type:varchar(255)"`
	SenderLine2    string     `gorm:"column:sender_line2;type:varchar(255)"`
	SenderPostal   string     `gorm:"column:sender_postal_code;type:varchar(20)"`
	SenderCity     string     `gorm:"column:sender_city;type:varchar(100)"`
	SenderCountry  string     `gorm:"column:sender_country_code;type:varchar(2)"`
	SenderEmail    string     `gorm:"column:sender_email;type:varchar(255)"`
	SenderPhone    string     `gorm:"column:sender_phone;type:varchar(50)"`
}

// IsSet returns true when a sender configuration has been attributed
func (s SenderSnapshot) IsSet() bool {
	return s.SenderConfigID != nil
}

// CarrierInfo holds carrier and tracking fields, populated by carrier
// selection or by webhook status updates
type CarrierInfo struct {
	CarrierName    string `gorm:"column:carrier_name;type:varchar(100)"`
	CarrierService string `gorm:"column:carrier_service;type:varchar(100)"`
	TrackingNumber string `gorm:"column:tracking_number;type:varchar(100)"`
	TrackingURL    string `gorm:"column:tracking_url;type:varchar(500)"`
	LabelURL       string `gorm:"column:label_url;type:varchar(500)"`
	LabelArchive   string `gorm:"column:label_archive_key;type:varchar(255)"`
}

// OrderLine represents a line item of an imported order. Product fields are
// snapshots taken at import time.
type OrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index"`
	ProductReference string          `gorm:"type:varchar(64);not null"`
	ProductName      string          `gorm:"type:varchar(255);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineValue        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitWeight       decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	Status           LineStatus      `gorm:"type:varchar(30);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// Order is the aggregate root for imported external orders. The pair
// (ExternalID, OrderNumber) is unique; an order is never created twice for
// the same external id.
type Order struct {
	shared.TenantAggregateRoot
	ExternalID    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	OrderNumber   string `gorm:"type:varchar(100);not null;index"`
	Source        string `gorm:"type:varchar(50);not null"`
	CustomerName  string `gorm:"type:varchar(200);not null"`
	CustomerEmail string `gorm:"type:varchar(255)"`
	CustomerPhone string `gorm:"type:varchar(50)"`
	SubClient     string `gorm:"type:varchar(100)"`
	Tags          string `gorm:"type:varchar(500)"`
	Delivery      DeliveryAddress `gorm:"embedded"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	Status        FulfillmentStatus `gorm:"type:varchar(30);not null;default:'pending'"`
	Sender        SenderSnapshot    `gorm:"embedded"`
	Carrier       CarrierInfo       `gorm:"embedded"`
	// CarrierPending marks orders whose carrier selection failed and is
	// awaiting a background retry
	CarrierPending  bool `gorm:"not null;default:false"`
	CarrierAttempts int  `gorm:"not null;default:0"`
	Lines           []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order header from normalized ingestion fields.
// TenantID may be uuid.Nil when client detection found no mapping.
func NewOrder(tenantID uuid.UUID, externalID, orderNumber, source string) (*Order, error) {
	externalID = strings.TrimSpace(externalID)
	orderNumber = strings.TrimSpace(orderNumber)
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External order ID cannot be empty")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 100 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 100 characters")
	}
	if source == "" {
		source = "api"
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ExternalID:          externalID,
		OrderNumber:         orderNumber,
		Source:              source,
		TotalValue:          decimal.Zero,
		Currency:            "EUR",
		Status:              StatusPending,
		Lines:               make([]OrderLine, 0),
	}

	order.AddDomainEvent(NewOrderImportedEvent(order))

	return order, nil
}

// SetCustomer sets the customer contact fields
func (o *Order) SetCustomer(name, email, phone string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	o.CustomerName = name
	o.CustomerEmail = strings.ToLower(strings.TrimSpace(email))
	o.CustomerPhone = phone
	return nil
}

// SetDelivery sets the delivery address. The country code must already be
// normalized to ISO-2 by the ingestion layer.
func (o *Order) SetDelivery(addr DeliveryAddress) error {
	if len(addr.CountryCode) != 2 {
		return shared.NewDomainError("INVALID_COUNTRY", "Delivery country must be a 2-letter code")
	}
	addr.CountryCode = strings.ToUpper(addr.CountryCode)
	o.Delivery = addr
	return nil
}

// SetDeclaredValue sets the declared total value and currency
func (o *Order) SetDeclaredValue(total decimal.Decimal, currency string) error {
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_TOTAL", "Declared total cannot be negative")
	}
	if currency == "" {
		currency = "EUR"
	}
	if len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	o.TotalValue = total
	o.Currency = strings.ToUpper(currency)
	return nil
}

// AssignClient attributes the order to a detected client
func (o *Order) AssignClient(clientID uuid.UUID) {
	o.TenantID = clientID
	o.Touch()
	o.IncrementVersion()
}

// AddLine appends a line item with snapshot fields taken at import time.
// Lines are persisted regardless of the reservation outcome.
func (o *Order) AddLine(productID *uuid.UUID, reference, name string, quantity, unitPrice, unitWeight decimal.Decimal, status LineStatus) (*OrderLine, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Line product reference cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Line unit price cannot be negative")
	}
	if name == "" {
		name = reference
	}

	now := time.Now()
	line := OrderLine{
		ID:               uuid.New(),
		OrderID:          o.ID,
		ProductID:        productID,
		ProductReference: strings.ToUpper(strings.TrimSpace(reference)),
		ProductName:      name,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		LineValue:        quantity.Mul(unitPrice),
		UnitWeight:       unitWeight,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	o.Lines = append(o.Lines, line)
	o.UpdatedAt = now

	return &o.Lines[len(o.Lines)-1], nil
}

// ComputeFulfillmentStatus derives the aggregate status from line outcomes.
// A missing product anywhere forces products_not_found even when other lines
// are fully reserved, because an incomplete order cannot be picked; otherwise
// any short line forces awaiting_restock.
func (o *Order) ComputeFulfillmentStatus() FulfillmentStatus {
	anyNotFound := false
	anyShort := false
	for _, line := range o.Lines {
		switch line.Status {
		case LineStatusProductNotFound:
			anyNotFound = true
		case LineStatusStockInsufficient:
			anyShort = true
		}
	}

	switch {
	case anyNotFound:
		return StatusProductsNotFound
	case anyShort:
		return StatusAwaitingRestock
	default:
		return StatusReadyToPick
	}
}

// FinalizeImport computes and applies the aggregate status after all lines
// have been processed
func (o *Order) FinalizeImport() {
	previous := o.Status
	o.Status = o.ComputeFulfillmentStatus()
	o.Touch()
	o.IncrementVersion()

	if previous != o.Status {
		o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	}
}

// ApplySenderSnapshot copies the chosen sender configuration onto the order.
// Re-attribution is allowed: the snapshot may be overwritten, never
// duplicated.
func (o *Order) ApplySenderSnapshot(snapshot SenderSnapshot) {
	o.Sender = snapshot
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewSenderAttributedEvent(o))
}

// AssignCarrier writes the carrier selection result onto the order and
// clears any pending-retry state
func (o *Order) AssignCarrier(carrierName, serviceName string) {
	o.Carrier.CarrierName = carrierName
	o.Carrier.CarrierService = serviceName
	o.CarrierPending = false
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewCarrierAssignedEvent(o))
}

// MarkCarrierPending flags the order for background carrier-selection retry
func (o *Order) MarkCarrierPending() {
	o.CarrierPending = true
	o.CarrierAttempts++
	o.Touch()
	o.IncrementVersion()
}

// AbandonCarrierSelection clears the pending flag once retries are exhausted;
// the order stays usable without carrier data
func (o *Order) AbandonCarrierSelection() {
	o.CarrierPending = false
	o.Touch()
	o.IncrementVersion()
}

// UpdateTracking updates tracking fields from a carrier status event. Empty
// values leave the existing fields untouched.
func (o *Order) UpdateTracking(trackingNumber, trackingURL, labelURL string) {
	if trackingNumber != "" {
		o.Carrier.TrackingNumber = trackingNumber
	}
	if trackingURL != "" {
		o.Carrier.TrackingURL = trackingURL
	}
	if labelURL != "" {
		o.Carrier.LabelURL = labelURL
	}
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewTrackingUpdatedEvent(o))
}

// SetLabelArchiveKey records where an archived copy of the shipping label
// was stored
func (o *Order) SetLabelArchiveKey(key string) {
	o.Carrier.LabelArchive = key
	o.Touch()
}

// ApplyCarrierStatus maps a carrier lifecycle status onto the order. Only
// forward transitions are applied; unknown statuses are ignored.
func (o *Order) ApplyCarrierStatus(status FulfillmentStatus) bool {
	switch status {
	case StatusShipped, StatusDelivered, StatusCancelled:
	default:
		return false
	}
	if o.Status == status {
		return false
	}

	previous := o.Status
	o.Status = status
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	return true
}

// HasClient returns true once the order is attributed to a tenant
func (o *Order) HasClient() bool {
	return o.TenantID != uuid.Nil
}

// LineCount returns the number of line items
func (o *Order) LineCount() int {
	return len(o.Lines)
}

// TotalWeight returns the summed snapshot weight of all lines
func (o *Order) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.UnitWeight.Mul(line.Quantity))
	}
	return total
}
