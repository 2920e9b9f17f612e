package shipping

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/orders"
)

// CarrierRetryConfig configures the background carrier-selection worker
type CarrierRetryConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// DefaultCarrierRetryConfig returns sensible defaults
func DefaultCarrierRetryConfig() CarrierRetryConfig {
	return CarrierRetryConfig{
		PollInterval: time.Minute,
		BatchSize:    20,
		MaxAttempts:  5,
	}
}

// CarrierRetryWorker retries carrier selection for orders whose initial
// selection failed. Attempts are bounded; once exhausted the order loses
// its pending flag and stays visible without carrier data.
type CarrierRetryWorker struct {
	orderRepo   orders.OrderRepository
	attribution *AttributionService
	config      CarrierRetryConfig
	logger      *zap.Logger
	wg          sync.WaitGroup
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewCarrierRetryWorker creates a new CarrierRetryWorker
func NewCarrierRetryWorker(
	orderRepo orders.OrderRepository,
	attribution *AttributionService,
	config CarrierRetryConfig,
	logger *zap.Logger,
) *CarrierRetryWorker {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 20
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	return &CarrierRetryWorker{
		orderRepo:   orderRepo,
		attribution: attribution,
		config:      config,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Start launches the polling loop
func (w *CarrierRetryWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
	w.logger.Info("Carrier retry worker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("max_attempts", w.config.MaxAttempts))
}

// Stop signals the loop to exit and waits for it
func (w *CarrierRetryWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *CarrierRetryWorker) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			if _, err := w.RetryPending(ctx); err != nil {
				w.logger.Error("Carrier retry batch failed", zap.Error(err))
			}
		}
	}
}

// RetryStats summarizes one retry batch
type RetryStats struct {
	Pending   int
	Assigned  int
	Abandoned int
	Failed    int
}

// RetryPending loads orders flagged for carrier retry and re-runs selection
// for each. Exposed for tests and for manual triggering.
func (w *CarrierRetryWorker) RetryPending(ctx context.Context) (*RetryStats, error) {
	pending, err := w.orderRepo.FindCarrierPending(ctx, w.config.BatchSize)
	if err != nil {
		return nil, err
	}

	stats := &RetryStats{Pending: len(pending)}
	for i := range pending {
		order := &pending[i]

		if order.CarrierAttempts >= w.config.MaxAttempts {
			w.logger.Warn("Carrier selection attempts exhausted",
				zap.String("order_number", order.OrderNumber),
				zap.Int("attempts", order.CarrierAttempts))
			order.AbandonCarrierSelection()
			stats.Abandoned++
		} else if err := w.attribution.SelectCarrier(ctx, order); err != nil {
			stats.Failed++
		} else {
			stats.Assigned++
		}

		// optimistic lock: a webhook may have updated the order since the
		// batch was loaded, and its write wins
		if err := w.orderRepo.SaveWithLock(ctx, order); err != nil {
			w.logger.Error("Failed to save order after carrier retry",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}

	if stats.Pending > 0 {
		w.logger.Info("Carrier retry batch complete",
			zap.Int("pending", stats.Pending),
			zap.Int("assigned", stats.Assigned),
			zap.Int("abandoned", stats.Abandoned),
			zap.Int("failed", stats.Failed))
	}
	return stats, nil
}
