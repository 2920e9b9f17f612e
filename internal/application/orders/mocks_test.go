package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*orders.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*orders.Order, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*orders.Order, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockOrderRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, uuid.UUID, error) {
	args := m.Called(ctx, externalID)
	return args.Bool(0), args.Get(1).(uuid.UUID), args.Error(2)
}

func (m *MockOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, uuid.UUID, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Get(1).(uuid.UUID), args.Error(2)
}

func (m *MockOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]orders.Order, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orders.Order), args.Error(1)
}

func (m *MockOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindCarrierPending(ctx context.Context, limit int) ([]orders.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orders.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *orders.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *orders.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByReference(ctx context.Context, clientID *uuid.UUID, reference string) (*catalog.Product, error) {
	args := m.Called(ctx, clientID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByReferences(ctx context.Context, clientID *uuid.UUID, references []string) ([]catalog.Product, error) {
	args := m.Called(ctx, clientID, references)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

// MockReservationRepository is a mock implementation of StockReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Reserve(ctx context.Context, productID, orderID uuid.UUID, quantity decimal.Decimal, originReference string) (bool, error) {
	args := m.Called(ctx, productID, orderID, quantity, originReference)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ReleaseForOrder(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockReservationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.StockReservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockReservation, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockReservation), args.Error(1)
}

// MockClientMappingRepository is a mock implementation of ClientMappingRepository
type MockClientMappingRepository struct {
	mock.Mock
}

func (m *MockClientMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.ClientMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ClientMapping), args.Error(1)
}

func (m *MockClientMappingRepository) FindByIntegrationID(ctx context.Context, integrationID string) ([]shipping.ClientMapping, error) {
	args := m.Called(ctx, integrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.ClientMapping), args.Error(1)
}

func (m *MockClientMappingRepository) FindByEmailDomain(ctx context.Context, domain string) ([]shipping.ClientMapping, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.ClientMapping), args.Error(1)
}

func (m *MockClientMappingRepository) FindAllForClient(ctx context.Context, clientID uuid.UUID) ([]shipping.ClientMapping, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.ClientMapping), args.Error(1)
}

func (m *MockClientMappingRepository) Save(ctx context.Context, mapping *shipping.ClientMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockClientMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSenderConfigRepository is a mock implementation of SenderConfigurationRepository
type MockSenderConfigRepository struct {
	mock.Mock
}

func (m *MockSenderConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.SenderConfiguration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.SenderConfiguration), args.Error(1)
}

func (m *MockSenderConfigRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]shipping.SenderConfiguration, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.SenderConfiguration), args.Error(1)
}

func (m *MockSenderConfigRepository) FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*shipping.SenderConfiguration, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.SenderConfiguration), args.Error(1)
}

func (m *MockSenderConfigRepository) Save(ctx context.Context, config *shipping.SenderConfiguration) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockSenderConfigRepository) ClearDefaultForTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockSenderConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSenderRuleRepository is a mock implementation of SenderRuleRepository
type MockSenderRuleRepository struct {
	mock.Mock
}

func (m *MockSenderRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.SenderRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.SenderRule), args.Error(1)
}

func (m *MockSenderRuleRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]shipping.SenderRule, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.SenderRule), args.Error(1)
}

func (m *MockSenderRuleRepository) Save(ctx context.Context, rule *shipping.SenderRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockSenderRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCarrierSelector is a mock implementation of CarrierSelector
type MockCarrierSelector struct {
	mock.Mock
}

func (m *MockCarrierSelector) Select(ctx context.Context, req shipping.ShipmentRequest) (*shipping.CarrierSelection, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CarrierSelection), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, deliveryID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	args := m.Called(ctx, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockLabelArchiver is a mock implementation of LabelArchiver
type MockLabelArchiver struct {
	mock.Mock
}

func (m *MockLabelArchiver) ArchiveLabel(ctx context.Context, orderID uuid.UUID, labelURL string) (string, error) {
	args := m.Called(ctx, orderID, labelURL)
	return args.String(0), args.Error(1)
}
