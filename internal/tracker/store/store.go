package store

import (
	"context"
	"errors"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// ErrLocalStorage tags buffer I/O failures. Cycle-fatal only: the loop logs
// and continues; a persistent run of these indicates a broken environment.
var ErrLocalStorage = errors.New("local buffer storage error")

// BufferedRecord is a LocationFix awaiting remote confirmation, keyed by a
// monotonically increasing local id. Created by Store while offline (or after
// a failed direct remote write); removed only by a confirmed sync.
type BufferedRecord struct {
	ID     int64
	Synced bool
	Fix    types.LocationFix
}

// BufferStore is the durable local buffer of unsynced fixes.
type BufferStore interface {
	// Store appends fix as a new unsynced record and returns it.
	Store(ctx context.Context, fix types.LocationFix) (BufferedRecord, error)

	// Pending returns unsynced records in ascending id order (oldest first).
	// The ordering is an invariant: drains must preserve append order.
	Pending(ctx context.Context) ([]BufferedRecord, error)

	// MarkSynced removes the record after a confirmed remote write.
	// Idempotent: an absent or already-synced id is a no-op.
	MarkSynced(ctx context.Context, id int64) error
}
