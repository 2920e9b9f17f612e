package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/orders"
)

// SyncOrdersRequest carries one inbound synchronization batch. Each element
// of Orders is one raw order payload in either accepted shape.
type SyncOrdersRequest struct {
	Source        string            `json:"source"`
	IntegrationID string            `json:"integration_id"`
	Orders        []json.RawMessage `json:"orders" binding:"required,min=1"`
}

// OrderLineDTO is the API representation of an order line
type OrderLineDTO struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	ProductReference string          `json:"product_reference"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineValue        decimal.Decimal `json:"line_value"`
	UnitWeight       decimal.Decimal `json:"unit_weight"`
	Status           string          `json:"status"`
}

// DeliveryAddressDTO is the API representation of a delivery address
type DeliveryAddressDTO struct {
	Name        string `json:"name"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

// SenderDTO is the API representation of the attributed sender snapshot
type SenderDTO struct {
	SenderConfigID *uuid.UUID `json:"sender_config_id,omitempty"`
	Name           string     `json:"name,omitempty"`
	Company        string     `json:"company,omitempty"`
	Line1          string     `json:"line1,omitempty"`
	Line2          string     `json:"line2,omitempty"`
	PostalCode     string     `json:"postal_code,omitempty"`
	City           string     `json:"city,omitempty"`
	CountryCode    string     `json:"country_code,omitempty"`
}

// CarrierDTO is the API representation of carrier and tracking fields
type CarrierDTO struct {
	CarrierName    string `json:"carrier_name,omitempty"`
	CarrierService string `json:"carrier_service,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	TrackingURL    string `json:"tracking_url,omitempty"`
	LabelURL       string `json:"label_url,omitempty"`
	Pending        bool   `json:"pending,omitempty"`
}

// OrderDTO is the API representation of an imported order
type OrderDTO struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id,omitempty"`
	ExternalID    string             `json:"external_id"`
	OrderNumber   string             `json:"order_number"`
	Source        string             `json:"source"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	SubClient     string             `json:"sub_client,omitempty"`
	Tags          string             `json:"tags,omitempty"`
	Delivery      DeliveryAddressDTO `json:"delivery"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	Currency      string             `json:"currency"`
	Status        string             `json:"status"`
	Sender        *SenderDTO         `json:"sender,omitempty"`
	Carrier       CarrierDTO         `json:"carrier"`
	Lines         []OrderLineDTO     `json:"lines"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ToOrderDTO converts an order aggregate to its API representation
func ToOrderDTO(order *orders.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:            order.ID,
		TenantID:      order.TenantID,
		ExternalID:    order.ExternalID,
		OrderNumber:   order.OrderNumber,
		Source:        order.Source,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		SubClient:     order.SubClient,
		Tags:          order.Tags,
		Delivery: DeliveryAddressDTO{
			Name:        order.Delivery.Name,
			Line1:       order.Delivery.Line1,
			Line2:       order.Delivery.Line2,
			PostalCode:  order.Delivery.PostalCode,
			City:        order.Delivery.City,
			CountryCode: order.Delivery.CountryCode,
		},
		TotalValue: order.TotalValue,
		Currency:   order.Currency,
		Status:     order.Status.String(),
		Carrier: CarrierDTO{
			CarrierName:    order.Carrier.CarrierName,
			CarrierService: order.Carrier.CarrierService,
			TrackingNumber: order.Carrier.TrackingNumber,
			TrackingURL:    order.Carrier.TrackingURL,
			LabelURL:       order.Carrier.LabelURL,
			Pending:        order.CarrierPending,
		},
		Lines:     make([]OrderLineDTO, 0, len(order.Lines)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}

	if order.Sender.IsSet() {
		dto.Sender = &SenderDTO{
			SenderConfigID: order.Sender.SenderConfigID,
			Name:           order.Sender.SenderName,
			Company:        order.Sender.SenderCompany,
			Line1:          order.Sender.SenderLine1,
			Line2:          order.Sender.SenderLine2,
			PostalCode:     order.Sender.SenderPostal,
			City:           order.Sender.SenderCity,
			CountryCode:    order.Sender.SenderCountry,
		}
	}

	for _, line := range order.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ID:               line.ID,
			ProductID:        line.ProductID,
			ProductReference: line.ProductReference,
			ProductName:      line.ProductName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			LineValue:        line.LineValue,
			UnitWeight:       line.UnitWeight,
			Status:           string(line.Status),
		})
	}

	return dto
}
