package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kavineksith/location-tracker/internal/tracker/store"
	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// BufferStore is the in-memory twin of the sqlite buffer, used in tests.
type BufferStore struct {
	mu     sync.Mutex
	nextID int64
	recs   []store.BufferedRecord
}

func New() *BufferStore {
	return &BufferStore{nextID: 1}
}

func (s *BufferStore) Store(_ context.Context, fix types.LocationFix) (store.BufferedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now().UTC()
	}
	rec := store.BufferedRecord{ID: s.nextID, Fix: fix}
	s.nextID++
	s.recs = append(s.recs, rec)
	return rec, nil
}

func (s *BufferStore) Pending(_ context.Context) ([]store.BufferedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// recs is append-only and ids are assigned in order, so this is already
	// oldest-first.
	out := make([]store.BufferedRecord, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

func (s *BufferStore) MarkSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.recs {
		if rec.ID == id {
			s.recs = append(s.recs[:i], s.recs[i+1:]...)
			return nil
		}
	}
	// Absent id: idempotent no-op.
	return nil
}
