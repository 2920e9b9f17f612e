package integration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecodeInboundOrderNestedShape(t *testing.T) {
	payload := []byte(`{
		"id": "99",
		"order_number": "CMD-1",
		"shipping_address": {
			"name": "Acme",
			"address": "1 Rue X",
			"city": "Lyon",
			"postal_code": "69000",
			"country": "France"
		},
		"order_items": [
			{"sku": "PROD-001", "name": "Widget", "quantity": 3}
		]
	}`)

	order, err := DecodeInboundOrder(payload)

	assert.NoError(t, err)
	assert.Equal(t, "99", order.ExternalID)
	assert.Equal(t, "CMD-1", order.OrderNumber)
	assert.Equal(t, "Acme", order.Address.Name)
	assert.Equal(t, "1 Rue X", order.Address.Line1)
	assert.Equal(t, "Lyon", order.Address.City)
	assert.Equal(t, "FR", order.Address.CountryCode)
	assert.Empty(t, order.Warnings)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "PROD-001", order.Items[0].Reference)
	assert.True(t, order.Items[0].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestDecodeInboundOrderFlatShape(t *testing.T) {
	payload := []byte(`{
		"id": 1042,
		"order_number": "CMD-2",
		"customer_name": "Jean Dupont",
		"email": "jean@acme.fr",
		"shipping_name": "Jean Dupont",
		"address1": "5 Avenue Y",
		"address2": "Bat B",
		"postal_code": "75002",
		"city": "Paris",
		"country": "fr",
		"total_price": "42.50",
		"currency": "eur",
		"items": [
			{"reference": "PROD-002", "title": "Gadget", "quantity": "2", "price": 21.25}
		]
	}`)

	order, err := DecodeInboundOrder(payload)

	assert.NoError(t, err)
	assert.Equal(t, "1042", order.ExternalID)
	assert.Equal(t, "jean@acme.fr", order.CustomerEmail)
	assert.Equal(t, "5 Avenue Y", order.Address.Line1)
	assert.Equal(t, "FR", order.Address.CountryCode)
	assert.Equal(t, "EUR", order.Currency)
	assert.True(t, order.DeclaredValue.Equal(decimal.NewFromFloat(42.5)))
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "PROD-002", order.Items[0].Reference)
	assert.Equal(t, "Gadget", order.Items[0].Name)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromFloat(21.25)))
}

func TestDecodeInboundOrderPrefersNestedAddress(t *testing.T) {
	payload := []byte(`{
		"id": "7",
		"order_number": "CMD-7",
		"address1": "flat street",
		"city": "FlatCity",
		"country": "de",
		"shipping_address": {
			"name": "Nested",
			"address1": "nested street",
			"city": "NestedCity",
			"country": {"code": "BE"}
		},
		"order_items": [{"sku": "X", "quantity": 1}]
	}`)

	order, err := DecodeInboundOrder(payload)

	assert.NoError(t, err)
	assert.Equal(t, "nested street", order.Address.Line1)
	assert.Equal(t, "NestedCity", order.Address.City)
	assert.Equal(t, "BE", order.Address.CountryCode)
}

func TestDecodeInboundOrderCountryFallback(t *testing.T) {
	payload := []byte(`{
		"id": "8",
		"order_number": "CMD-8",
		"shipping_address": {"name": "A", "country": "Atlantis"},
		"order_items": [{"sku": "X", "quantity": 1}]
	}`)

	order, err := DecodeInboundOrder(payload)

	assert.NoError(t, err)
	assert.Equal(t, "FR", order.Address.CountryCode)
	assert.Len(t, order.Warnings, 1)
	assert.Contains(t, order.Warnings[0], "Atlantis")
}

func TestDecodeInboundOrderValidation(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		_, err := DecodeInboundOrder([]byte(`{"order_number": "CMD-1", "order_items": [{"sku": "X", "quantity": 1}]}`))

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "id", verr.Field)
	})

	t.Run("missing order number", func(t *testing.T) {
		_, err := DecodeInboundOrder([]byte(`{"id": "1", "order_items": [{"sku": "X", "quantity": 1}]}`))

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "order_number", verr.Field)
	})

	t.Run("no line items", func(t *testing.T) {
		_, err := DecodeInboundOrder([]byte(`{"id": "1", "order_number": "CMD-1"}`))

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("item without reference", func(t *testing.T) {
		_, err := DecodeInboundOrder([]byte(`{"id": "1", "order_number": "CMD-1", "order_items": [{"name": "x", "quantity": 1}]}`))

		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := DecodeInboundOrder([]byte(`not json`))

		assert.Error(t, err)
	})
}

func TestDecodeInboundOrderTags(t *testing.T) {
	t.Run("array form", func(t *testing.T) {
		order, err := DecodeInboundOrder([]byte(`{"id": "1", "order_number": "N", "tags": ["vip", "b2b"], "order_items": [{"sku": "X", "quantity": 1}]}`))

		assert.NoError(t, err)
		assert.Equal(t, []string{"vip", "b2b"}, order.Tags)
	})

	t.Run("comma separated form", func(t *testing.T) {
		order, err := DecodeInboundOrder([]byte(`{"id": "1", "order_number": "N", "tags": "vip, b2b", "order_items": [{"sku": "X", "quantity": 1}]}`))

		assert.NoError(t, err)
		assert.Equal(t, []string{"vip", "b2b"}, order.Tags)
	})
}
