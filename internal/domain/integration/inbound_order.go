package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports an inbound payload that cannot yield a usable
// order. The order is skipped and counted as an error; the batch continues.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("integration: invalid payload: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for an inbound payload field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InboundOrderItem is one canonical order line extracted from a payload
type InboundOrderItem struct {
	Reference  string
	Name       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	UnitWeight decimal.Decimal
}

// InboundAddress is the canonical delivery address of an inbound order
type InboundAddress struct {
	Name        string
	Company     string
	Line1       string
	Line2       string
	PostalCode  string
	City        string
	CountryCode string
}

// InboundOrder is the canonical form every accepted payload shape decodes
// into. Warnings carry non-fatal normalization notes (e.g. the country
// fallback) that the pipeline surfaces on the per-order result.
type InboundOrder struct {
	ExternalID    string
	OrderNumber   string
	IntegrationID string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	SubClient     string
	Tags          []string
	Address       InboundAddress
	DeclaredValue decimal.Decimal
	Currency      string
	Items         []InboundOrderItem
	Warnings      []string
}

// flexString decodes JSON values that some channels emit as numbers and
// others as strings
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexDecimal tolerates numeric fields sent as strings
type flexDecimal decimal.Decimal

func (d *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*d = flexDecimal(decimal.Zero)
		return nil
	}
	data = bytes.Trim(data, `"`)
	v, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", string(data), err)
	}
	*d = flexDecimal(v)
	return nil
}

func (d flexDecimal) Decimal() decimal.Decimal {
	return decimal.Decimal(d)
}

// rawCountry accepts a plain string ("FR", "France") or an object exposing
// an ISO-2 subfield ({"code": "FR"} or {"iso2": "FR"})
type rawCountry struct {
	value string
}

func (c *rawCountry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Code string `json:"code"`
			ISO2 string `json:"iso2"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Code != "" {
			c.value = obj.Code
		} else {
			c.value = obj.ISO2
		}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	c.value = v
	return nil
}

type rawItem struct {
	SKU       flexString  `json:"sku"`
	Reference flexString  `json:"reference"`
	Name      string      `json:"name"`
	Title     string      `json:"title"`
	Quantity  flexDecimal `json:"quantity"`
	UnitPrice flexDecimal `json:"unit_price"`
	Price     flexDecimal `json:"price"`
	Total     flexDecimal `json:"total"`
	Weight    flexDecimal `json:"weight"`
}

func (it rawItem) reference() string {
	if it.SKU != "" {
		return strings.TrimSpace(string(it.SKU))
	}
	return strings.TrimSpace(string(it.Reference))
}

func (it rawItem) name() string {
	if it.Name != "" {
		return it.Name
	}
	return it.Title
}

func (it rawItem) unitPrice() decimal.Decimal {
	price := it.UnitPrice.Decimal()
	if price.IsZero() {
		price = it.Price.Decimal()
	}
	qty := it.Quantity.Decimal()
	if price.IsZero() && !it.Total.Decimal().IsZero() && qty.IsPositive() {
		price = it.Total.Decimal().Div(qty)
	}
	return price
}

type rawShippingAddress struct {
	Name       string     `json:"name"`
	Company    string     `json:"company"`
	Address    string     `json:"address"`
	Address1   string     `json:"address1"`
	Address2   string     `json:"address2"`
	City       string     `json:"city"`
	PostalCode string     `json:"postal_code"`
	Zip        string     `json:"zip"`
	Country    rawCountry `json:"country"`
}

// rawOrder covers both accepted payload shapes. The nested shape carries a
// shipping_address object; the flat shape carries the same fields at the
// top level. When both are present the nested object wins.
type rawOrder struct {
	ID            flexString `json:"id"`
	ExternalID    flexString `json:"external_id"`
	OrderNumber   flexString `json:"order_number"`
	Number        flexString `json:"number"`
	IntegrationID flexString `json:"integration_id"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Email         string `json:"email"`
	CustomerPhone string `json:"customer_phone"`
	Phone         string `json:"phone"`
	SubClient     string `json:"sub_client"`

	Tags json.RawMessage `json:"tags"`

	ShippingAddress *rawShippingAddress `json:"shipping_address"`

	// flat shape address fields
	ShippingName string     `json:"shipping_name"`
	Address1     string     `json:"address1"`
	Address2     string     `json:"address2"`
	City         string     `json:"city"`
	PostalCode   string     `json:"postal_code"`
	Country      rawCountry `json:"country"`

	TotalPrice flexDecimal `json:"total_price"`
	Currency   string      `json:"currency"`

	OrderItems []rawItem `json:"order_items"`
	Items      []rawItem `json:"items"`
}

// DecodeInboundOrder parses a raw payload into the canonical inbound order.
// It fails with a ValidationError when neither shape yields an external id
// and an order number, or when no line items are present.
func DecodeInboundOrder(data []byte) (*InboundOrder, error) {
	var raw rawOrder
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, NewValidationError("payload", "not a valid JSON object")
	}

	externalID := strings.TrimSpace(string(raw.ID))
	if externalID == "" {
		externalID = strings.TrimSpace(string(raw.ExternalID))
	}
	orderNumber := strings.TrimSpace(string(raw.OrderNumber))
	if orderNumber == "" {
		orderNumber = strings.TrimSpace(string(raw.Number))
	}
	if externalID == "" {
		return nil, NewValidationError("id", "missing external order id")
	}
	if orderNumber == "" {
		return nil, NewValidationError("order_number", "missing order number")
	}

	order := &InboundOrder{
		ExternalID:    externalID,
		OrderNumber:   orderNumber,
		IntegrationID: strings.TrimSpace(string(raw.IntegrationID)),
		CustomerName:  raw.CustomerName,
		CustomerEmail: firstNonEmpty(raw.CustomerEmail, raw.Email),
		CustomerPhone: firstNonEmpty(raw.CustomerPhone, raw.Phone),
		SubClient:     raw.SubClient,
		Tags:          decodeTags(raw.Tags),
		DeclaredValue: raw.TotalPrice.Decimal(),
		Currency:      strings.ToUpper(strings.TrimSpace(raw.Currency)),
	}

	var rawCountryValue string
	if raw.ShippingAddress != nil {
		addr := raw.ShippingAddress
		order.Address = InboundAddress{
			Name:       firstNonEmpty(addr.Name, raw.CustomerName),
			Company:    addr.Company,
			Line1:      firstNonEmpty(addr.Address1, addr.Address),
			Line2:      addr.Address2,
			PostalCode: firstNonEmpty(addr.PostalCode, addr.Zip),
			City:       addr.City,
		}
		rawCountryValue = addr.Country.value
	} else {
		order.Address = InboundAddress{
			Name:       firstNonEmpty(raw.ShippingName, raw.CustomerName),
			Line1:      raw.Address1,
			Line2:      raw.Address2,
			PostalCode: raw.PostalCode,
			City:       raw.City,
		}
		rawCountryValue = raw.Country.value
	}
	if order.CustomerName == "" {
		order.CustomerName = order.Address.Name
	}

	code, recognized := NormalizeCountry(rawCountryValue)
	order.Address.CountryCode = code
	if !recognized {
		order.Warnings = append(order.Warnings,
			fmt.Sprintf("unrecognized country %q, defaulted to %s", rawCountryValue, code))
	}

	items := raw.OrderItems
	if len(items) == 0 {
		items = raw.Items
	}
	if len(items) == 0 {
		return nil, NewValidationError("order_items", "order has no line items")
	}
	for i, it := range items {
		ref := it.reference()
		if ref == "" {
			return nil, NewValidationError(fmt.Sprintf("order_items[%d].sku", i), "missing product reference")
		}
		qty := it.Quantity.Decimal()
		if !qty.IsPositive() {
			return nil, NewValidationError(fmt.Sprintf("order_items[%d].quantity", i), "quantity must be positive")
		}
		order.Items = append(order.Items, InboundOrderItem{
			Reference:  ref,
			Name:       it.name(),
			Quantity:   qty,
			UnitPrice:  it.unitPrice(),
			UnitWeight: it.Weight.Decimal(),
		})
	}

	if order.Currency == "" {
		order.Currency = "EUR"
	}

	return order, nil
}

func decodeTags(data json.RawMessage) []string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	// tags arrive either as a JSON array or a comma-separated string
	if data[0] == '[' {
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return nil
		}
		return tags
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
