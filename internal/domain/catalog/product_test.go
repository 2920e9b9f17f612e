package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid input", func(t *testing.T) {
		clientID := uuid.New()
		product, err := NewProduct("PROD-001", "Widget",
			decimal.NewFromFloat(1.2), decimal.NewFromFloat(9.99), &clientID)

		assert.NoError(t, err)
		assert.NotNil(t, product)
		assert.Equal(t, "PROD-001", product.Reference)
		assert.False(t, product.IsShared())
		assert.Equal(t, ProductSourceManual, product.Source)
	})

	t.Run("nil client means shared catalog", func(t *testing.T) {
		product, err := NewProduct("PROD-002", "Widget", decimal.NewFromFloat(1), decimal.Zero, nil)

		assert.NoError(t, err)
		assert.True(t, product.IsShared())
	})

	t.Run("rejects empty reference", func(t *testing.T) {
		product, err := NewProduct("", "Widget", decimal.Zero, decimal.Zero, nil)

		assert.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("rejects reference with invalid characters", func(t *testing.T) {
		product, err := NewProduct("PROD 001!", "Widget", decimal.Zero, decimal.Zero, nil)

		assert.Error(t, err)
		assert.Nil(t, product)
	})
}

func TestNewIngestionProduct(t *testing.T) {
	clientID := uuid.New()

	t.Run("defaults weight when unspecified", func(t *testing.T) {
		product, err := NewIngestionProduct("PROD-001", "", decimal.Zero, decimal.Zero, &clientID)

		assert.NoError(t, err)
		assert.True(t, product.UnitWeight.Equal(DefaultUnitWeightKg))
		assert.True(t, product.AvailableStock.IsZero())
		assert.Equal(t, ProductSourceIngestion, product.Source)
	})

	t.Run("name defaults to reference", func(t *testing.T) {
		product, err := NewIngestionProduct("PROD-001", "", decimal.Zero, decimal.Zero, &clientID)

		assert.NoError(t, err)
		assert.Equal(t, "PROD-001", product.Name)
	})

	t.Run("keeps explicit weight", func(t *testing.T) {
		product, err := NewIngestionProduct("PROD-001", "Widget", decimal.NewFromFloat(2.5), decimal.Zero, &clientID)

		assert.NoError(t, err)
		assert.True(t, product.UnitWeight.Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("clamps negative price to zero", func(t *testing.T) {
		product, err := NewIngestionProduct("PROD-001", "Widget", decimal.Zero, decimal.NewFromInt(-5), &clientID)

		assert.NoError(t, err)
		assert.True(t, product.UnitPrice.IsZero())
	})
}

func TestProductCanFulfill(t *testing.T) {
	product, err := NewProduct("PROD-001", "Widget", decimal.NewFromFloat(0.5), decimal.Zero, nil)
	assert.NoError(t, err)
	product.AvailableStock = decimal.NewFromInt(5)

	assert.True(t, product.CanFulfill(decimal.NewFromInt(3)))
	assert.True(t, product.CanFulfill(decimal.NewFromInt(5)))
	assert.False(t, product.CanFulfill(decimal.NewFromInt(6)))
}

func TestProductAssignClient(t *testing.T) {
	product, err := NewProduct("PROD-001", "Widget", decimal.NewFromFloat(0.5), decimal.Zero, nil)
	assert.NoError(t, err)
	assert.True(t, product.IsShared())

	clientID := uuid.New()
	product.AssignClient(clientID)

	assert.False(t, product.IsShared())
	assert.Equal(t, clientID, *product.ClientID)
}
