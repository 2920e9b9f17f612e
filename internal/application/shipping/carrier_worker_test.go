package shipping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

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

func pendingOrder(t *testing.T, attempts int) orders.Order {
	order, err := orders.NewOrder(uuid.New(), uuid.NewString(), "CMD-"+uuid.NewString()[:8], "api")
	assert.NoError(t, err)
	for i := 0; i < attempts; i++ {
		order.MarkCarrierPending()
	}
	return *order
}

func TestRetryPending(t *testing.T) {
	ctx := context.Background()

	newWorker := func(orderRepo *MockOrderRepository, selector *MockCarrierSelector, maxAttempts int) *CarrierRetryWorker {
		logger := zap.NewNop()
		attribution := NewAttributionService(nil, nil, selector, logger)
		return NewCarrierRetryWorker(orderRepo, attribution, CarrierRetryConfig{
			BatchSize:   10,
			MaxAttempts: maxAttempts,
		}, logger)
	}

	t.Run("assigns carrier on successful retry", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		selector := new(MockCarrierSelector)
		worker := newWorker(orderRepo, selector, 5)

		orderRepo.On("FindCarrierPending", mock.Anything, 10).
			Return([]orders.Order{pendingOrder(t, 1)}, nil)
		selector.On("Select", mock.Anything, mock.Anything).
			Return(&shipping.CarrierSelection{CarrierName: "chronopost", ServiceLevel: "express"}, nil)
		orderRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*orders.Order")).Return(nil)

		stats, err := worker.RetryPending(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.Pending)
		assert.Equal(t, 1, stats.Assigned)
		assert.Equal(t, 0, stats.Abandoned)
	})

	t.Run("abandons after max attempts", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		selector := new(MockCarrierSelector)
		worker := newWorker(orderRepo, selector, 3)

		exhausted := pendingOrder(t, 3)
		orderRepo.On("FindCarrierPending", mock.Anything, 10).
			Return([]orders.Order{exhausted}, nil)
		var saved *orders.Order
		orderRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*orders.Order")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*orders.Order) }).
			Return(nil)

		stats, err := worker.RetryPending(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.Abandoned)
		assert.False(t, saved.CarrierPending)
		selector.AssertNotCalled(t, "Select", mock.Anything, mock.Anything)
	})

	t.Run("counts failed retries", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		selector := new(MockCarrierSelector)
		worker := newWorker(orderRepo, selector, 5)

		orderRepo.On("FindCarrierPending", mock.Anything, 10).
			Return([]orders.Order{pendingOrder(t, 1)}, nil)
		selector.On("Select", mock.Anything, mock.Anything).Return(nil, assert.AnError)
		orderRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*orders.Order")).Return(nil)

		stats, err := worker.RetryPending(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
	})

	t.Run("empty queue", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		selector := new(MockCarrierSelector)
		worker := newWorker(orderRepo, selector, 5)

		orderRepo.On("FindCarrierPending", mock.Anything, 10).Return([]orders.Order{}, nil)

		stats, err := worker.RetryPending(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, stats.Pending)
		orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
