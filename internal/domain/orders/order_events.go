package orders

import (
	"github.com/wms/backend/internal/domain/shared"
)

// Event types for the orders context
const (
	EventTypeOrderImported    = "orders.order.imported"
	EventTypeStatusChanged    = "orders.order.status_changed"
	EventTypeSenderAttributed = "orders.order.sender_attributed"
	EventTypeCarrierAssigned  = "orders.order.carrier_assigned"
	EventTypeTrackingUpdated  = "orders.order.tracking_updated"
)

// OrderImportedEvent is emitted when an external order is first persisted
type OrderImportedEvent struct {
	shared.BaseDomainEvent
	ExternalID  string `json:"external_id"`
	OrderNumber string `json:"order_number"`
	Source      string `json:"source"`
}

// NewOrderImportedEvent creates a new OrderImportedEvent
func NewOrderImportedEvent(order *Order) *OrderImportedEvent {
	return &OrderImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderImported, "Order", order.ID, order.TenantID),
		ExternalID:      order.ExternalID,
		OrderNumber:     order.OrderNumber,
		Source:          order.Source,
	}
}

// OrderStatusChangedEvent is emitted when the fulfillment status changes
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string            `json:"order_number"`
	PreviousStatus FulfillmentStatus `json:"previous_status"`
	NewStatus      FulfillmentStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, previous FulfillmentStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, "Order", order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		PreviousStatus:  previous,
		NewStatus:       order.Status,
	}
}

// SenderAttributedEvent is emitted when a sender configuration snapshot is
// applied to an order
type SenderAttributedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	SenderName  string `json:"sender_name"`
}

// NewSenderAttributedEvent creates a new SenderAttributedEvent
func NewSenderAttributedEvent(order *Order) *SenderAttributedEvent {
	return &SenderAttributedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSenderAttributed, "Order", order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		SenderName:      order.Sender.SenderName,
	}
}

// CarrierAssignedEvent is emitted when carrier selection writes a carrier
// onto the order
type CarrierAssignedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string `json:"order_number"`
	CarrierName    string `json:"carrier_name"`
	CarrierService string `json:"carrier_service"`
}

// NewCarrierAssignedEvent creates a new CarrierAssignedEvent
func NewCarrierAssignedEvent(order *Order) *CarrierAssignedEvent {
	return &CarrierAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCarrierAssigned, "Order", order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		CarrierName:     order.Carrier.CarrierName,
		CarrierService:  order.Carrier.CarrierService,
	}
}

// TrackingUpdatedEvent is emitted when tracking fields change from a
// webhook delivery
type TrackingUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string `json:"order_number"`
	TrackingNumber string `json:"tracking_number"`
}

// NewTrackingUpdatedEvent creates a new TrackingUpdatedEvent
func NewTrackingUpdatedEvent(order *Order) *TrackingUpdatedEvent {
	return &TrackingUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTrackingUpdated, "Order", order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		TrackingNumber:  order.Carrier.TrackingNumber,
	}
}
