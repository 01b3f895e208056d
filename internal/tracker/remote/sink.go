package remote

import (
	"context"
	"errors"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// ErrRemote tags a failed remote write. Recoverable: during direct routing
// the fix degrades to the local buffer; during a drain pass it halts the pass
// and leaves the record pending.
var ErrRemote = errors.New("remote write failed")

// Sink is the remote store for confirmed location fixes. A Write may fail
// even immediately after a connectivity probe reported online; callers must
// treat online/offline as a routing hint, not a precondition.
type Sink interface {
	Write(ctx context.Context, fix types.LocationFix) error
}
