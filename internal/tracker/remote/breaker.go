package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// BreakerSink wraps a Sink with a circuit breaker so that a sustained remote
// outage fails fast instead of burning a full HTTP timeout per record during
// every drain pass. A rejected call is a RemoteError like any other: the fix
// stays in (or falls back to) the local buffer and is retried next cycle.
type BreakerSink struct {
	next Sink
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerSink(next Sink, logger zerolog.Logger) *BreakerSink {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "remote-sink",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("remote sink breaker state change")
		},
	})
	return &BreakerSink{next: next, cb: cb}
}

func (s *BreakerSink) Write(ctx context.Context, fix types.LocationFix) error {
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Write(ctx, fix)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRemote) {
		return err
	}
	// Breaker-open / too-many-requests rejections.
	return fmt.Errorf("%w: %w", ErrRemote, err)
}
