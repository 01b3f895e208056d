package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/observability"
	"github.com/kavineksith/location-tracker/internal/tracker/remote"
	"github.com/kavineksith/location-tracker/internal/tracker/store"
	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// ErrValidation tags a resolved fix that is missing required fields. Treated
// like a resolution failure: the cycle is skipped, nothing is written.
var ErrValidation = errors.New("invalid location fix")

// Tracker runs the periodic resolve → validate → route → sync cycle. It is
// the single logical worker: the cycle body is sequential and may block on
// network I/O, which is acceptable at hour-scale cadence.
type Tracker struct {
	resolver LocationResolver
	probe    ConnectivityProbe
	buffer   store.BufferStore
	sink     remote.Sink
	syncer   *Syncer
	interval time.Duration
	validate *validator.Validate
	logger   zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

type TrackerDeps struct {
	Resolver LocationResolver
	Probe    ConnectivityProbe
	Buffer   store.BufferStore
	Sink     remote.Sink
	Syncer   *Syncer

	// Interval between cycles. Defaults to one hour.
	Interval time.Duration

	Logger zerolog.Logger
}

func NewTracker(d TrackerDeps) *Tracker {
	interval := d.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Tracker{
		resolver: d.Resolver,
		probe:    d.Probe,
		buffer:   d.Buffer,
		sink:     d.Sink,
		syncer:   d.Syncer,
		interval: interval,
		validate: validator.New(),
		logger:   d.Logger,
		done:     make(chan struct{}),
	}
}

// Start begins the tracking loop: an immediate cycle, then one per interval.
// The loop exits when ctx is cancelled or Stop is called.
func (t *Tracker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	go t.loop(ctx)
	t.logger.Info().Dur("interval", t.interval).Msg("location tracker started")
}

// Stop signals the loop to exit and waits for it to finish. Safe to call
// repeatedly, and a no-op before Start. A cycle already in flight completes
// or fails on its own terms; no new writes start after cancellation.
func (t *Tracker) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
}

func (t *Tracker) loop(ctx context.Context) {
	defer close(t.done)

	t.RunOnce(ctx)

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			t.RunOnce(ctx)
			timer.Reset(t.interval)
		}
	}
}

// RunOnce executes a single tracking cycle. Per-cycle errors never propagate:
// every failure path is a logged skip, a local fallback write, or work
// deferred to the next sync pass.
func (t *Tracker) RunOnce(ctx context.Context) {
	start := time.Now()
	defer observability.ObserveCycleDuration(start)
	observability.Cycles.Inc()

	fix, err := t.resolver.Resolve(ctx)
	if err != nil {
		observability.ResolveFailures.Inc()
		t.logger.Error().Err(err).Msg("resolution failed, skipping cycle")
		return
	}

	// Defensive re-check: the resolver should already guarantee the required
	// fields, but an invalid fix must never reach either sink.
	if err := t.validate.Struct(fix); err != nil {
		observability.ValidationFailures.Inc()
		t.logger.Error().Err(fmt.Errorf("%w: %w", ErrValidation, err)).Msg("rejected fix, skipping cycle")
		return
	}

	if ctx.Err() != nil {
		return
	}
	t.route(ctx, fix)

	if ctx.Err() != nil {
		return
	}
	t.syncer.Drain(ctx)
}

// route lands the fix in exactly one of {remote confirmed, local pending}.
// The probe only picks the first attempt; a failed direct remote write
// degrades to the buffer rather than dropping the fix.
func (t *Tracker) route(ctx context.Context, fix types.LocationFix) {
	if t.probe.Online(ctx) {
		if err := t.sink.Write(ctx, fix); err != nil {
			observability.RemoteWriteFallbacks.Inc()
			t.logger.Warn().Err(err).Msg("remote write failed, buffering fix locally")
			t.storeLocal(ctx, fix)
			return
		}
		observability.RemoteWrites.Inc()
		t.logger.Info().Str("city", fix.City).Str("country", fix.Country).
			Bool("coordinates", fix.HasCoordinates()).
			Msg("fix written to remote store")
		return
	}

	t.logger.Info().Msg("offline, buffering fix locally")
	t.storeLocal(ctx, fix)
}

func (t *Tracker) storeLocal(ctx context.Context, fix types.LocationFix) {
	rec, err := t.buffer.Store(ctx, fix)
	if err != nil {
		observability.LocalWriteErrors.Inc()
		t.logger.Error().Err(err).Msg("local buffer write failed")
		return
	}
	observability.LocalWrites.Inc()
	t.logger.Info().Int64("id", rec.ID).Str("city", fix.City).Str("country", fix.Country).
		Msg("fix buffered locally pending sync")
}
