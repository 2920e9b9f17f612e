package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
)

// ErrUnknownOrder is returned when a webhook references an order this
// system has never imported
var ErrUnknownOrder = errors.New("orders: webhook references unknown order")

// LabelArchiver stores a durable copy of a carrier shipping label and
// returns the storage key
type LabelArchiver interface {
	ArchiveLabel(ctx context.Context, orderID uuid.UUID, labelURL string) (string, error)
}

// CarrierWebhookRequest is one carrier status callback
type CarrierWebhookRequest struct {
	DeliveryID     string `json:"delivery_id" binding:"required"`
	ExternalID     string `json:"external_id"`
	OrderNumber    string `json:"order_number"`
	Status         string `json:"status"`
	CarrierName    string `json:"carrier_name"`
	CarrierService string `json:"carrier_service"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	LabelURL       string `json:"label_url"`
}

// WebhookResult reports what a webhook delivery changed
type WebhookResult struct {
	OrderID       uuid.UUID `json:"order_id"`
	Duplicate     bool      `json:"duplicate"`
	StatusChanged bool      `json:"status_changed"`
	Status        string    `json:"status"`
}

// OrderWebhookService applies carrier status callbacks to imported orders.
// Deliveries are deduplicated by delivery id; a redelivered webhook is a
// successful no-op.
type OrderWebhookService struct {
	orderRepo   orders.OrderRepository
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	archiver    LabelArchiver
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewOrderWebhookService creates a new OrderWebhookService
func NewOrderWebhookService(
	orderRepo orders.OrderRepository,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	archiver LabelArchiver,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *OrderWebhookService {
	return &OrderWebhookService{
		orderRepo:   orderRepo,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		archiver:    archiver,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// HandleCarrierUpdate applies one carrier callback: tracking fields are
// merged, the lifecycle status is advanced when the callback carries one,
// and the label is archived when a label URL is present
func (s *OrderWebhookService) HandleCarrierUpdate(ctx context.Context, req CarrierWebhookRequest) (*WebhookResult, error) {
	if s.idemConfig.Enabled && s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.DeliveryID, s.idemConfig.TTL)
		if err != nil {
			// the store being down must not drop carrier updates
			s.logger.Warn("Idempotency store unavailable, processing anyway",
				zap.String("delivery_id", req.DeliveryID),
				zap.Error(err))
		} else if !fresh {
			s.logger.Debug("Skipping duplicate webhook delivery",
				zap.String("delivery_id", req.DeliveryID))
			return &WebhookResult{Duplicate: true}, nil
		}
	}

	order, err := s.findOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.CarrierName != "" {
		order.Carrier.CarrierName = req.CarrierName
	}
	if req.CarrierService != "" {
		order.Carrier.CarrierService = req.CarrierService
	}
	order.UpdateTracking(req.TrackingNumber, req.TrackingURL, req.LabelURL)

	statusChanged := false
	if req.Status != "" {
		status := orders.FulfillmentStatus(req.Status)
		statusChanged = order.ApplyCarrierStatus(status)
		if !statusChanged && !status.IsValid() {
			s.logger.Warn("Ignoring unknown carrier status",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", req.Status))
		}
	}

	if req.LabelURL != "" && s.archiver != nil {
		if key, err := s.archiver.ArchiveLabel(ctx, order.ID, req.LabelURL); err != nil {
			s.logger.Warn("Label archival failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		} else {
			order.SetLabelArchiveKey(key)
		}
	}

	// a concurrent retry-worker write must not be clobbered
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publishAggregateEvents(ctx, order)

	return &WebhookResult{
		OrderID:       order.ID,
		StatusChanged: statusChanged,
		Status:        order.Status.String(),
	}, nil
}

// findOrder locates the target order by external id first, then by order
// number, mirroring the dedup checks at import time
func (s *OrderWebhookService) findOrder(ctx context.Context, req CarrierWebhookRequest) (*orders.Order, error) {
	if req.ExternalID != "" {
		order, err := s.orderRepo.FindByExternalID(ctx, req.ExternalID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if req.OrderNumber != "" {
		exists, orderID, err := s.orderRepo.ExistsByOrderNumber(ctx, req.OrderNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return s.orderRepo.FindByID(ctx, orderID)
		}
	}
	return nil, ErrUnknownOrder
}

func (s *OrderWebhookService) publishAggregateEvents(ctx context.Context, order *orders.Order) {
	if s.eventBus == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}
