package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

type deliveryRecord struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements IdempotencyStore with a local map.
// Suitable for single-instance deployments and tests; it does not share
// state across processes, so a redelivery routed to another instance would
// be processed again.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	records   map[string]deliveryRecord
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store and
// starts a background goroutine to evict expired records
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		records:  make(map[string]deliveryRecord),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// MarkProcessed marks a delivery as processed with a TTL. Returns true if the
// delivery was newly marked, false if it was already processed.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, exists := s.records[deliveryID]; exists && time.Now().Before(rec.expiresAt) {
		return false, nil
	}

	s.records[deliveryID] = deliveryRecord{
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// IsProcessed checks if a delivery has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[deliveryID]
	if !exists || time.Now().After(rec.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for deliveryID, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, deliveryID)
		}
	}
}

// Size returns the number of records in the store (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
