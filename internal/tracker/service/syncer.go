package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/observability"
	"github.com/kavineksith/location-tracker/internal/tracker/remote"
	"github.com/kavineksith/location-tracker/internal/tracker/store"
	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// ConnectivityProbe reports current network reachability. The result is a
// point-in-time hint, sampled fresh per decision.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// LocationResolver produces a location fix or fails with a resolution error.
type LocationResolver interface {
	Resolve(ctx context.Context) (types.LocationFix, error)
}

// Syncer drains the local buffer into the remote sink once connectivity is
// back.
type Syncer struct {
	buffer store.BufferStore
	sink   remote.Sink
	probe  ConnectivityProbe
	logger zerolog.Logger
}

func NewSyncer(buffer store.BufferStore, sink remote.Sink, probe ConnectivityProbe, logger zerolog.Logger) *Syncer {
	return &Syncer{buffer: buffer, sink: sink, probe: probe, logger: logger}
}

// Drain attempts one pass over the backlog, oldest first. Offline it is a
// cheap no-op. The first remote write failure halts the pass without skipping
// ahead: if the sink is failing systematically there is no point reordering
// the trail, and the remaining records simply stay pending for the next
// cycle. Returns the number of records confirmed and the number that failed.
func (s *Syncer) Drain(ctx context.Context) (synced, failed int) {
	if !s.probe.Online(ctx) {
		return 0, 0
	}

	pending, err := s.buffer.Pending(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("sync: reading pending records failed")
		return 0, 0
	}
	if len(pending) == 0 {
		return 0, 0
	}

	for _, rec := range pending {
		if err := s.sink.Write(ctx, rec.Fix); err != nil {
			failed++
			observability.SyncFailures.Inc()
			s.logger.Warn().Err(err).Int64("id", rec.ID).
				Int("synced", synced).Int("remaining", len(pending)-synced).
				Msg("sync: remote write failed, halting drain pass")
			break
		}
		if err := s.buffer.MarkSynced(ctx, rec.ID); err != nil {
			// The record is confirmed remotely but still flagged pending, so
			// the next pass may send it again. Halt rather than compound.
			s.logger.Error().Err(err).Int64("id", rec.ID).
				Msg("sync: marking record synced failed, halting drain pass")
			break
		}
		synced++
		observability.SyncedRecords.Inc()
	}

	if synced > 0 {
		s.logger.Info().Int("synced", synced).Int("failed", failed).
			Msg("sync: drained buffered fixes to remote store")
	}
	return synced, failed
}
