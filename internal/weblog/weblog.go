// Package weblog keeps a bounded, newest-first log of webhook dispatch
// cycles for the admin console.
package weblog

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"hookrelay/internal/models"
)

// MaxEntries is the retention cap; appending past it evicts oldest-first.
const MaxEntries = 100

// Entry records one dispatch cycle. Entries are immutable once written and
// only ever removed by a bulk clear or cap eviction.
type Entry struct {
	ID              int64                   `json:"id"`
	Timestamp       string                  `json:"timestamp"`
	Payload         json.RawMessage         `json:"payload"`
	Matched         int                     `json:"matched"`
	TotalRules      int                     `json:"total_rules"`
	TelegramResults []models.DispatchResult `json:"telegram_results"`
	Status          string                  `json:"status"`
}

// Store is the persistence boundary for the log. List returns newest first.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// Recorder builds entries and writes them through a Store. A failed write is
// logged and swallowed: the webhook caller's response never depends on it.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends one cycle to the log.
func (r *Recorder) Record(ctx context.Context, payload json.RawMessage, matched, totalRules int, results []models.DispatchResult) {
	now := time.Now()
	status := "no_match"
	if matched > 0 {
		status = "matched"
	}
	entry := Entry{
		ID:              now.UnixMilli(),
		Timestamp:       now.UTC().Format(time.RFC3339),
		Payload:         payload,
		Matched:         matched,
		TotalRules:      totalRules,
		TelegramResults: results,
		Status:          status,
	}
	if err := r.store.Append(ctx, entry); err != nil {
		log.Printf("WEBLOG: append log entry: %v", err)
	}
}

// MemoryStore keeps the log in process memory, newest first. Used when no
// Redis address is configured and by tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
