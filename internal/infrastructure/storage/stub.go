package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	appOrders "github.com/wms/backend/internal/application/orders"
)

var _ appOrders.LabelArchiver = (*StubLabelStore)(nil)

// StubLabelStore is a placeholder LabelArchiver for development and tests.
// It records the would-be archive keys without fetching or storing anything.
type StubLabelStore struct {
	KeyPrefix string

	mu       sync.Mutex
	archived map[uuid.UUID]string
}

// NewStubLabelStore creates a new StubLabelStore
func NewStubLabelStore() *StubLabelStore {
	return &StubLabelStore{
		KeyPrefix: "labels/",
		archived:  make(map[uuid.UUID]string),
	}
}

// ArchiveLabel records the archive key for the order without storing data
func (s *StubLabelStore) ArchiveLabel(ctx context.Context, orderID uuid.UUID, labelURL string) (string, error) {
	if labelURL == "" {
		return "", errors.New("storage: label URL is required")
	}

	key := s.KeyPrefix + orderID.String() + ".pdf"
	s.mu.Lock()
	s.archived[orderID] = key
	s.mu.Unlock()
	return key, nil
}

// ArchivedKey returns the key recorded for an order, if any
func (s *StubLabelStore) ArchivedKey(orderID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.archived[orderID]
	return key, ok
}
