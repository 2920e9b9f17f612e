package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appshipping "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/orders"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shipping"
)

// syncScope is the request-scoped context threaded through one batch run.
// It replaces any notion of an ambient "current client": everything the
// pipeline needs to know about the surrounding request travels here.
type syncScope struct {
	source        string
	integrationID string
}

// OrderImportService runs the order synchronization pipeline: normalize,
// detect client, deduplicate, resolve line items and reserve stock, then
// attribute sender and carrier. Orders in a batch are processed one at a
// time; one bad order never aborts the rest.
type OrderImportService struct {
	orderRepo       orders.OrderRepository
	productRepo     catalog.ProductRepository
	reservationRepo inventory.StockReservationRepository
	mappingRepo     shipping.ClientMappingRepository
	configRepo      shipping.SenderConfigurationRepository
	attribution     *appshipping.AttributionService
	eventBus        shared.EventPublisher
	logger          *zap.Logger
}

// NewOrderImportService creates a new OrderImportService
func NewOrderImportService(
	orderRepo orders.OrderRepository,
	productRepo catalog.ProductRepository,
	reservationRepo inventory.StockReservationRepository,
	mappingRepo shipping.ClientMappingRepository,
	configRepo shipping.SenderConfigurationRepository,
	attribution *appshipping.AttributionService,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *OrderImportService {
	return &OrderImportService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
		mappingRepo:     mappingRepo,
		configRepo:      configRepo,
		attribution:     attribution,
		eventBus:        eventBus,
		logger:          logger,
	}
}

// SyncOrders processes a batch of raw order payloads sequentially and
// returns the per-order outcome summary
func (s *OrderImportService) SyncOrders(ctx context.Context, req SyncOrdersRequest) (*integration.BatchResult, error) {
	scope := syncScope{
		source:        strings.TrimSpace(req.Source),
		integrationID: strings.TrimSpace(req.IntegrationID),
	}
	if scope.source == "" {
		scope.source = "api"
	}

	result := &integration.BatchResult{}
	for _, raw := range req.Orders {
		s.importOne(ctx, scope, raw, result)
	}

	s.logger.Info("Order sync batch complete",
		zap.String("source", scope.source),
		zap.Int("total", result.Total),
		zap.Int("processed", result.Processed),
		zap.Int("existing", result.Existing),
		zap.Int("errors", result.Errors))

	return result, nil
}

func (s *OrderImportService) importOne(ctx context.Context, scope syncScope, raw json.RawMessage, batch *integration.BatchResult) {
	inbound, err := integration.DecodeInboundOrder(raw)
	if err != nil {
		s.logger.Warn("Rejected inbound order payload", zap.Error(err))
		batch.AddError(integration.OrderResult{}, err)
		return
	}

	entry := integration.OrderResult{
		ExternalID:  inbound.ExternalID,
		OrderNumber: inbound.OrderNumber,
		Warnings:    inbound.Warnings,
	}

	// two separate duplicate checks: either identifier alone may have been
	// populated by a prior partial import
	if exists, orderID, err := s.orderRepo.ExistsByExternalID(ctx, inbound.ExternalID); err != nil {
		batch.AddError(entry, err)
		return
	} else if exists {
		entry.OrderID = orderID
		batch.AddExisting(entry)
		return
	}
	if exists, orderID, err := s.orderRepo.ExistsByOrderNumber(ctx, inbound.OrderNumber); err != nil {
		batch.AddError(entry, err)
		return
	} else if exists {
		entry.OrderID = orderID
		batch.AddExisting(entry)
		return
	}

	clientID, mapping, err := s.detectClient(ctx, scope, inbound, &entry)
	if err != nil {
		batch.AddError(entry, err)
		return
	}

	order, err := s.buildOrder(scope, clientID, inbound)
	if err != nil {
		batch.AddError(entry, err)
		return
	}

	s.processLines(ctx, order, inbound, &entry)
	order.FinalizeImport()

	s.attributeOrder(ctx, order, mapping, &entry)

	if err := s.orderRepo.Save(ctx, order); err != nil {
		// the line loop already decremented stock; an unsaved order must
		// not keep holding it
		if relErr := s.reservationRepo.ReleaseForOrder(ctx, order.ID); relErr != nil {
			s.logger.Error("Failed to release reservations for unsaved order",
				zap.String("order_id", order.ID.String()),
				zap.Error(relErr))
		}
		batch.AddError(entry, err)
		return
	}
	s.publishEvents(ctx, order)

	entry.OrderID = order.ID
	entry.Status = order.Status.String()
	batch.AddCreated(entry)
}

// detectClient resolves the tenant for an inbound order via client mappings,
// first by integration id and then by the customer email domain. Finding no
// mapping is not an error: the order is imported unattributed.
func (s *OrderImportService) detectClient(ctx context.Context, scope syncScope, inbound *integration.InboundOrder, entry *integration.OrderResult) (uuid.UUID, *shipping.ClientMapping, error) {
	integrationID := inbound.IntegrationID
	if integrationID == "" {
		integrationID = scope.integrationID
	}

	if integrationID != "" {
		mappings, err := s.mappingRepo.FindByIntegrationID(ctx, integrationID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if m := s.pickMapping(mappings, "integration_id", integrationID, entry); m != nil {
			return m.ClientID, m, nil
		}
	}

	if at := strings.LastIndex(inbound.CustomerEmail, "@"); at >= 0 && at < len(inbound.CustomerEmail)-1 {
		domain := strings.ToLower(inbound.CustomerEmail[at+1:])
		mappings, err := s.mappingRepo.FindByEmailDomain(ctx, domain)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if m := s.pickMapping(mappings, "email_domain", domain, entry); m != nil {
			return m.ClientID, m, nil
		}
	}

	entry.Warnings = append(entry.Warnings, "no client mapping matched, order imported unattributed")
	return uuid.Nil, nil, nil
}

// pickMapping applies the deterministic resolution order when several active
// mappings match the same key: the repository returns them oldest first and
// the first one wins. Multiple matches are surfaced as a warning because the
// data should not allow them.
func (s *OrderImportService) pickMapping(mappings []shipping.ClientMapping, kind, key string, entry *integration.OrderResult) *shipping.ClientMapping {
	if len(mappings) == 0 {
		return nil
	}
	if len(mappings) > 1 {
		s.logger.Warn("Multiple client mappings match, using oldest",
			zap.String(kind, key),
			zap.Int("matches", len(mappings)))
		entry.Warnings = append(entry.Warnings, "ambiguous client mapping for "+kind+" "+key)
	}
	return &mappings[0]
}

func (s *OrderImportService) buildOrder(scope syncScope, clientID uuid.UUID, inbound *integration.InboundOrder) (*orders.Order, error) {
	order, err := orders.NewOrder(clientID, inbound.ExternalID, inbound.OrderNumber, scope.source)
	if err != nil {
		return nil, err
	}

	customerName := inbound.CustomerName
	if customerName == "" {
		customerName = inbound.Address.Name
	}
	if customerName != "" {
		if err := order.SetCustomer(customerName, inbound.CustomerEmail, inbound.CustomerPhone); err != nil {
			return nil, err
		}
	}

	if err := order.SetDelivery(orders.DeliveryAddress{
		Name:        inbound.Address.Name,
		Line1:       inbound.Address.Line1,
		Line2:       inbound.Address.Line2,
		PostalCode:  inbound.Address.PostalCode,
		City:        inbound.Address.City,
		CountryCode: inbound.Address.CountryCode,
	}); err != nil {
		return nil, err
	}

	if err := order.SetDeclaredValue(inbound.DeclaredValue, inbound.Currency); err != nil {
		return nil, err
	}

	order.SubClient = inbound.SubClient
	order.Tags = strings.Join(inbound.Tags, ",")

	return order, nil
}

// processLines resolves every line item and reserves stock where possible.
// Lines are persisted whatever their outcome; a single line's failure is
// reflected in the aggregate status, never aborts the order.
func (s *OrderImportService) processLines(ctx context.Context, order *orders.Order, inbound *integration.InboundOrder, entry *integration.OrderResult) {
	var clientID *uuid.UUID
	if order.HasClient() {
		id := order.TenantID
		clientID = &id
	}

	for _, item := range inbound.Items {
		product, err := s.resolveProduct(ctx, clientID, item)
		if err != nil {
			s.logger.Warn("Product resolution failed",
				zap.String("order_number", order.OrderNumber),
				zap.String("reference", item.Reference),
				zap.Error(err))
			entry.Warnings = append(entry.Warnings, "product "+item.Reference+": "+err.Error())
			s.appendLine(order, nil, item, item.UnitWeight, orders.LineStatusProductNotFound)
			continue
		}

		status := orders.LineStatusStockInsufficient
		reserved, err := s.reservationRepo.Reserve(ctx, product.ID, order.ID, item.Quantity, order.OrderNumber)
		if err != nil {
			s.logger.Warn("Stock reservation failed",
				zap.String("order_number", order.OrderNumber),
				zap.String("reference", item.Reference),
				zap.Error(err))
			entry.Warnings = append(entry.Warnings, "reservation "+item.Reference+": "+err.Error())
		} else if reserved {
			status = orders.LineStatusReservable
		}

		productID := product.ID
		s.appendLine(order, &productID, item, product.UnitWeight, status)
	}
}

// resolveProduct finds the product for a SKU, creating a minimal record when
// the catalog has none
func (s *OrderImportService) resolveProduct(ctx context.Context, clientID *uuid.UUID, item integration.InboundOrderItem) (*catalog.Product, error) {
	product, err := s.productRepo.FindByReference(ctx, clientID, item.Reference)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	product, err = catalog.NewIngestionProduct(item.Reference, item.Name, item.UnitWeight, item.UnitPrice, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		// lost a create race: another import created the SKU first
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.productRepo.FindByReference(ctx, clientID, item.Reference)
		}
		return nil, err
	}
	s.publishEvents(ctx, product)
	return product, nil
}

func (s *OrderImportService) appendLine(order *orders.Order, productID *uuid.UUID, item integration.InboundOrderItem, unitWeight decimal.Decimal, status orders.LineStatus) {
	if _, err := order.AddLine(productID, item.Reference, item.Name, item.Quantity, item.UnitPrice, unitWeight, status); err != nil {
		s.logger.Error("Failed to append order line",
			zap.String("order_number", order.OrderNumber),
			zap.String("reference", item.Reference),
			zap.Error(err))
	}
}

// attributeOrder runs sender and carrier attribution. Both outcomes are
// non-fatal: a missing sender is a warning, a carrier failure flags the
// order for background retry.
func (s *OrderImportService) attributeOrder(ctx context.Context, order *orders.Order, mapping *shipping.ClientMapping, entry *integration.OrderResult) {
	attributed, err := s.attribution.AttributeSender(ctx, order)
	if err != nil {
		s.logger.Error("Sender attribution failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		entry.Warnings = append(entry.Warnings, "sender attribution failed: "+err.Error())
	} else if !attributed {
		// the client mapping may carry its own default sender
		if mapping != nil && mapping.DefaultSenderConfigID != nil {
			if config, err := s.configRepo.FindByID(ctx, *mapping.DefaultSenderConfigID); err == nil {
				order.ApplySenderSnapshot(appshipping.SnapshotFromConfig(config))
				attributed = true
			}
		}
		if !attributed {
			entry.Warnings = append(entry.Warnings, "no sender configuration attributed")
		}
	}

	if err := s.attribution.SelectCarrier(ctx, order); err != nil {
		entry.Warnings = append(entry.Warnings, "carrier selection pending retry")
	}
}

func (s *OrderImportService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventBus == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	aggregate.ClearDomainEvents()
}
