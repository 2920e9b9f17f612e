package shipping

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// AttributionService resolves the sender configuration and carrier for an
// imported order. Sender selection is rule based with a default fallback;
// carrier selection is delegated to an external selector and is never fatal
// to order creation.
type AttributionService struct {
	ruleRepo   shipping.SenderRuleRepository
	configRepo shipping.SenderConfigurationRepository
	selector   shipping.CarrierSelector
	logger     *zap.Logger
}

// NewAttributionService creates a new AttributionService
func NewAttributionService(
	ruleRepo shipping.SenderRuleRepository,
	configRepo shipping.SenderConfigurationRepository,
	selector shipping.CarrierSelector,
	logger *zap.Logger,
) *AttributionService {
	return &AttributionService{
		ruleRepo:   ruleRepo,
		configRepo: configRepo,
		selector:   selector,
		logger:     logger,
	}
}

// AttributeSender evaluates the tenant's rules against the order and copies
// the winning sender configuration onto it. Returns true when a sender was
// attributed. No matching rule and no default is a warning, not an error:
// the order stays persisted without a snapshot for manual resolution.
// Re-running attribution overwrites the snapshot and never duplicates data.
func (s *AttributionService) AttributeSender(ctx context.Context, order *orders.Order) (bool, error) {
	if !order.HasClient() {
		s.logger.Debug("Skipping sender attribution for order without client",
			zap.String("order_number", order.OrderNumber))
		return false, nil
	}

	config, err := s.resolveSenderConfig(ctx, order)
	if err != nil {
		return false, err
	}
	if config == nil {
		s.logger.Warn("No sender rule or default matched order",
			zap.String("order_number", order.OrderNumber),
			zap.String("tenant_id", order.TenantID.String()))
		return false, nil
	}

	order.ApplySenderSnapshot(SnapshotFromConfig(config))
	return true, nil
}

func (s *AttributionService) resolveSenderConfig(ctx context.Context, order *orders.Order) (*shipping.SenderConfiguration, error) {
	rules, err := s.ruleRepo.FindActiveForTenant(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}

	target := shipping.RuleTarget{
		CustomerName: order.CustomerName,
		Tags:         splitTags(order.Tags),
		SubClient:    order.SubClient,
	}

	if rule := shipping.FirstMatch(rules, target); rule != nil {
		config, err := s.configRepo.FindByID(ctx, rule.SenderConfigID)
		if err != nil {
			// a rule pointing at a deleted configuration falls through to
			// the tenant default
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Sender rule targets missing configuration",
					zap.String("rule_id", rule.ID.String()),
					zap.String("sender_config_id", rule.SenderConfigID.String()))
			} else {
				return nil, err
			}
		} else {
			return config, nil
		}
	}

	config, err := s.configRepo.FindDefaultForTenant(ctx, order.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return config, nil
}

// SelectCarrier invokes the external carrier selector and writes the result
// onto the order. Transient failures mark the order for background retry;
// a definitive no-carrier answer clears the pending state.
func (s *AttributionService) SelectCarrier(ctx context.Context, order *orders.Order) error {
	selection, err := s.selector.Select(ctx, buildShipmentRequest(order))
	if err != nil {
		if errors.Is(err, shipping.ErrNoCarrierSelected) {
			s.logger.Info("No carrier available for order",
				zap.String("order_number", order.OrderNumber))
			order.AbandonCarrierSelection()
			return nil
		}
		s.logger.Warn("Carrier selection failed, order queued for retry",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		order.MarkCarrierPending()
		return err
	}

	order.AssignCarrier(selection.CarrierName, selection.ServiceLevel)
	order.UpdateTracking(selection.TrackingNumber, selection.TrackingURL, selection.LabelURL)
	return nil
}

func buildShipmentRequest(order *orders.Order) shipping.ShipmentRequest {
	return shipping.ShipmentRequest{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CountryCode:    order.Delivery.CountryCode,
		PostalCode:     order.Delivery.PostalCode,
		City:           order.Delivery.City,
		TotalWeightKg:  order.TotalWeight(),
		DeclaredValue:  order.TotalValue,
		Currency:       order.Currency,
		SenderLabel:    order.Sender.SenderName,
		SenderCountry:  order.Sender.SenderCountry,
		SenderPostcode: order.Sender.SenderPostal,
	}
}

// SnapshotFromConfig copies a sender configuration into the snapshot form
// stored on orders
func SnapshotFromConfig(config *shipping.SenderConfiguration) orders.SenderSnapshot {
	id := config.ID
	return orders.SenderSnapshot{
		SenderConfigID: &id,
		SenderName:     config.Name,
		SenderCompany:  config.Company,
		SenderLine1:    config.Line1,
		SenderLine2:    config.Line2,
		SenderPostal:   config.PostalCode,
		SenderCity:     config.City,
		SenderCountry:  config.CountryCode,
		SenderEmail:    config.Email,
		SenderPhone:    config.Phone,
	}
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
