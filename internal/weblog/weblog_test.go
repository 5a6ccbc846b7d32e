package weblog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookrelay/internal/models"
)

func TestMemoryStoreBounding(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < MaxEntries+1; i++ {
		err := store.Append(ctx, Entry{ID: int64(i), Status: "no_match"})
		require.NoError(t, err)
	}

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)

	// Newest first; the very first entry (ID 0) was evicted.
	assert.Equal(t, int64(MaxEntries), entries[0].ID)
	assert.Equal(t, int64(1), entries[MaxEntries-1].ID)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Append(ctx, Entry{ID: 1}))
	require.NoError(t, store.Clear(ctx))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorderStatusDerivation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := NewRecorder(store)

	payload := json.RawMessage(`{"a":1}`)
	rec.Record(ctx, payload, 0, 3, nil)
	rec.Record(ctx, payload, 2, 3, []models.DispatchResult{{ChatID: "1", Success: true}})

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "matched", entries[0].Status)
	assert.Equal(t, 2, entries[0].Matched)
	assert.Equal(t, 3, entries[0].TotalRules)
	assert.Equal(t, "no_match", entries[1].Status)
}

type failingStore struct{}

func (failingStore) Append(context.Context, Entry) error { return errors.New("disk full") }
func (failingStore) List(context.Context) ([]Entry, error) {
	return nil, fmt.Errorf("not implemented")
}
func (failingStore) Clear(context.Context) error { return nil }

func TestRecorderSwallowsWriteFailure(t *testing.T) {
	rec := NewRecorder(failingStore{})
	// Must not panic or propagate; the webhook response does not depend on it.
	rec.Record(context.Background(), json.RawMessage(`{}`), 1, 1, nil)
}
