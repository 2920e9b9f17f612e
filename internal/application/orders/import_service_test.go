package orders

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	appshipping "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

type importFixture struct {
	orderRepo       *MockOrderRepository
	productRepo     *MockProductRepository
	reservationRepo *MockReservationRepository
	mappingRepo     *MockClientMappingRepository
	configRepo      *MockSenderConfigRepository
	ruleRepo        *MockSenderRuleRepository
	selector        *MockCarrierSelector
	service         *OrderImportService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		orderRepo:       new(MockOrderRepository),
		productRepo:     new(MockProductRepository),
		reservationRepo: new(MockReservationRepository),
		mappingRepo:     new(MockClientMappingRepository),
		configRepo:      new(MockSenderConfigRepository),
		ruleRepo:        new(MockSenderRuleRepository),
		selector:        new(MockCarrierSelector),
	}
	logger := zap.NewNop()
	attribution := appshipping.NewAttributionService(f.ruleRepo, f.configRepo, f.selector, logger)
	f.service = NewOrderImportService(
		f.orderRepo, f.productRepo, f.reservationRepo,
		f.mappingRepo, f.configRepo, attribution, nil, logger)
	return f
}

func (f *importFixture) expectNoDuplicate() {
	f.orderRepo.On("ExistsByExternalID", mock.Anything, mock.Anything).Return(false, uuid.Nil, nil)
	f.orderRepo.On("ExistsByOrderNumber", mock.Anything, mock.Anything).Return(false, uuid.Nil, nil)
}

func (f *importFixture) expectNoMapping() {
	f.mappingRepo.On("FindByIntegrationID", mock.Anything, mock.Anything).Return([]shipping.ClientMapping{}, nil).Maybe()
	f.mappingRepo.On("FindByEmailDomain", mock.Anything, mock.Anything).Return([]shipping.ClientMapping{}, nil).Maybe()
}

func (f *importFixture) expectNoCarrier() {
	f.selector.On("Select", mock.Anything, mock.Anything).Return(nil, shipping.ErrNoCarrierSelected)
}

func mustMapping(t *testing.T, clientID uuid.UUID, integrationID string) shipping.ClientMapping {
	m, err := shipping.NewClientMapping(clientID, integrationID, "")
	assert.NoError(t, err)
	return *m
}

func mustProduct(t *testing.T, reference string, stock int64) *catalog.Product {
	p, err := catalog.NewProduct(reference, reference, decimal.NewFromFloat(0.5), decimal.NewFromInt(10), nil)
	assert.NoError(t, err)
	p.AvailableStock = decimal.NewFromInt(stock)
	return p
}

const nestedPayload = `{
	"id": "99",
	"order_number": "CMD-1",
	"shipping_address": {
		"name": "Acme",
		"address": "1 Rue X",
		"city": "Lyon",
		"postal_code": "69000",
		"country": "France"
	},
	"order_items": [{"sku": "PROD-001", "name": "Widget", "quantity": 3}]
}`

func TestSyncOrdersCreatesReadyToPickOrder(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()
	clientID := uuid.New()

	f.expectNoDuplicate()
	f.mappingRepo.On("FindByIntegrationID", mock.Anything, "shop-1").
		Return([]shipping.ClientMapping{mustMapping(t, clientID, "shop-1")}, nil)

	product := mustProduct(t, "PROD-001", 5)
	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").Return(product, nil)
	f.reservationRepo.On("Reserve", mock.Anything, product.ID, mock.Anything, decimal.NewFromInt(3), "CMD-1").
		Return(true, nil)

	f.ruleRepo.On("FindActiveForTenant", mock.Anything, clientID).Return([]shipping.SenderRule{}, nil)
	f.configRepo.On("FindDefaultForTenant", mock.Anything, clientID).Return(nil, shared.ErrNotFound)
	f.expectNoCarrier()

	var saved *orders.Order
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*orders.Order) }).
		Return(nil)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Source:        "shopify",
		IntegrationID: "shop-1",
		Orders:        []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, integration.OutcomeCreated, result.Results[0].Outcome)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[0].AlreadyExists)

	assert.NotNil(t, saved)
	assert.Equal(t, clientID, saved.TenantID)
	assert.Equal(t, "FR", saved.Delivery.CountryCode)
	assert.Equal(t, orders.StatusReadyToPick, saved.Status)
	assert.Len(t, saved.Lines, 1)
	assert.Equal(t, orders.LineStatusReservable, saved.Lines[0].Status)
	assert.True(t, saved.Lines[0].Quantity.Equal(decimal.NewFromInt(3)))

	f.orderRepo.AssertExpectations(t)
	f.reservationRepo.AssertExpectations(t)
}

func TestSyncOrdersInsufficientStock(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	f.expectNoDuplicate()
	f.expectNoMapping()
	f.expectNoCarrier()

	// stock of 1 cannot cover quantity 3: nothing is reserved
	product := mustProduct(t, "PROD-001", 1)
	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").Return(product, nil)
	f.reservationRepo.On("Reserve", mock.Anything, product.ID, mock.Anything, decimal.NewFromInt(3), "CMD-1").
		Return(false, nil)

	var saved *orders.Order
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*orders.Order) }).
		Return(nil)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, orders.StatusAwaitingRestock, saved.Status)
	assert.Equal(t, orders.LineStatusStockInsufficient, saved.Lines[0].Status)
	assert.True(t, saved.Lines[0].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestSyncOrdersLazyProductCreation(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	f.expectNoDuplicate()
	f.expectNoMapping()
	f.expectNoCarrier()

	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").
		Return(nil, shared.ErrNotFound)
	var created *catalog.Product
	f.productRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*catalog.Product) }).
		Return(nil)
	f.reservationRepo.On("Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil)

	var saved *orders.Order
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*orders.Order) }).
		Return(nil)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.NotNil(t, created)
	assert.Equal(t, "PROD-001", created.Reference)
	assert.True(t, created.UnitWeight.Equal(catalog.DefaultUnitWeightKg))
	assert.True(t, created.AvailableStock.IsZero())
	// product was created with zero stock, so the order waits for restock
	assert.Equal(t, orders.StatusAwaitingRestock, saved.Status)
}

func TestSyncOrdersIdempotence(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()
	existingID := uuid.New()

	f.orderRepo.On("ExistsByExternalID", mock.Anything, "99").Return(true, existingID, nil)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Existing)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, integration.OutcomeExisting, result.Results[0].Outcome)
	assert.True(t, result.Results[0].Success)
	assert.True(t, result.Results[0].AlreadyExists)
	assert.Equal(t, existingID, result.Results[0].OrderID)

	// no order writes, no reservations on the duplicate path
	f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.reservationRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncOrdersDetectsDuplicateByOrderNumber(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()
	existingID := uuid.New()

	// external id lookup misses but the order number is already taken
	f.orderRepo.On("ExistsByExternalID", mock.Anything, "99").Return(false, uuid.Nil, nil)
	f.orderRepo.On("ExistsByOrderNumber", mock.Anything, "CMD-1").Return(true, existingID, nil)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Existing)
	f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSyncOrdersPartialFailureIsolation(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	f.expectNoDuplicate()
	f.expectNoMapping()
	f.expectNoCarrier()

	product := mustProduct(t, "PROD-001", 100)
	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").Return(product, nil)
	f.reservationRepo.On("Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).Return(nil)

	good1 := `{"id": "1", "order_number": "CMD-1", "shipping_address": {"country": "FR"}, "order_items": [{"sku": "PROD-001", "quantity": 1}]}`
	malformed := `{"id": "2", "order_items": [{"sku": "PROD-001", "quantity": 1}]}`
	good2 := `{"id": "3", "order_number": "CMD-3", "shipping_address": {"country": "FR"}, "order_items": [{"sku": "PROD-001", "quantity": 1}]}`

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{
			json.RawMessage(good1),
			json.RawMessage(malformed),
			json.RawMessage(good2),
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, integration.OutcomeCreated, result.Results[0].Outcome)
	assert.Equal(t, integration.OutcomeError, result.Results[1].Outcome)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.Equal(t, integration.OutcomeCreated, result.Results[2].Outcome)
}

func TestSyncOrdersAppliesSenderRule(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()
	clientID := uuid.New()

	f.expectNoDuplicate()
	f.mappingRepo.On("FindByIntegrationID", mock.Anything, "shop-1").
		Return([]shipping.ClientMapping{mustMapping(t, clientID, "shop-1")}, nil)

	product := mustProduct(t, "PROD-001", 10)
	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").Return(product, nil)
	f.reservationRepo.On("Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)

	config, err := shipping.NewSenderConfiguration(clientID, "depot-a", "Depot A", "2 Rue Y", "69001", "Lyon", "FR")
	assert.NoError(t, err)
	rule, err := shipping.NewSenderRule(clientID, "acme rule", shipping.ConditionCustomerNameContains, "acme", config.ID, 5)
	assert.NoError(t, err)

	f.ruleRepo.On("FindActiveForTenant", mock.Anything, clientID).Return([]shipping.SenderRule{*rule}, nil)
	f.configRepo.On("FindByID", mock.Anything, config.ID).Return(config, nil)
	f.expectNoCarrier()

	var saved *orders.Order
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*orders.Order) }).
		Return(nil)

	_, err = f.service.SyncOrders(ctx, SyncOrdersRequest{
		IntegrationID: "shop-1",
		Orders:        []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.True(t, saved.Sender.IsSet())
	assert.Equal(t, config.ID, *saved.Sender.SenderConfigID)
	assert.Equal(t, "Depot A", saved.Sender.SenderName)
	assert.Equal(t, "FR", saved.Sender.SenderCountry)
}

func TestSyncOrdersCarrierFailureMarksPending(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	f.expectNoDuplicate()
	f.expectNoMapping()

	product := mustProduct(t, "PROD-001", 10)
	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").Return(product, nil)
	f.reservationRepo.On("Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)
	f.selector.On("Select", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	var saved *orders.Order
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*orders.Order) }).
		Return(nil)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	// carrier failure is non-fatal: the order is created and queued
	assert.Equal(t, 1, result.Processed)
	assert.True(t, saved.CarrierPending)
	assert.Equal(t, 1, saved.CarrierAttempts)
}

func TestSyncOrdersReleasesReservationsWhenSaveFails(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	f.expectNoDuplicate()
	f.expectNoMapping()
	f.expectNoCarrier()

	product := mustProduct(t, "PROD-001", 10)
	f.productRepo.On("FindByReference", mock.Anything, mock.Anything, "PROD-001").Return(product, nil)

	var reservedOrderID uuid.UUID
	f.reservationRepo.On("Reserve", mock.Anything, product.ID, mock.Anything, decimal.NewFromInt(3), "CMD-1").
		Run(func(args mock.Arguments) { reservedOrderID = args.Get(2).(uuid.UUID) }).
		Return(true, nil)
	f.reservationRepo.On("ReleaseForOrder", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*orders.Order")).Return(assert.AnError)

	result, err := f.service.SyncOrders(ctx, SyncOrdersRequest{
		Orders: []json.RawMessage{json.RawMessage(nestedPayload)},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, integration.OutcomeError, result.Results[0].Outcome)

	// the unsaved order must not keep holding stock
	f.reservationRepo.AssertCalled(t, "ReleaseForOrder", mock.Anything, reservedOrderID)
}
