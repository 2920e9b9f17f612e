package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubLabelStore_ArchiveLabel(t *testing.T) {
	t.Run("records a deterministic key", func(t *testing.T) {
		store := NewStubLabelStore()
		orderID := uuid.New()

		key, err := store.ArchiveLabel(context.Background(), orderID, "https://labels.example/x.pdf")
		require.NoError(t, err)
		assert.Equal(t, "labels/"+orderID.String()+".pdf", key)

		recorded, ok := store.ArchivedKey(orderID)
		assert.True(t, ok)
		assert.Equal(t, key, recorded)
	})

	t.Run("rejects an empty label URL", func(t *testing.T) {
		store := NewStubLabelStore()

		_, err := store.ArchiveLabel(context.Background(), uuid.New(), "")
		assert.Error(t, err)
	})
}
