package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/tracker/remote"
	"github.com/kavineksith/location-tracker/internal/tracker/service"
	"github.com/kavineksith/location-tracker/internal/tracker/store/memory"
	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

func silentLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeProbe struct {
	online bool
}

func (p *fakeProbe) Online(context.Context) bool { return p.online }

// fakeSink records written fixes and fails on configured cities.
type fakeSink struct {
	written  []types.LocationFix
	failCity map[string]bool
}

func (s *fakeSink) Write(_ context.Context, fix types.LocationFix) error {
	if s.failCity[fix.City] {
		return fmt.Errorf("%w: injected failure for %s", remote.ErrRemote, fix.City)
	}
	s.written = append(s.written, fix)
	return nil
}

func fix(city string) types.LocationFix {
	return types.LocationFix{
		IP:      "203.0.113.7",
		City:    city,
		Region:  "Western",
		Country: "LK",
	}
}

func TestSyncer_OfflineIsNoOp(t *testing.T) {
	buffer := memory.New()
	sink := &fakeSink{}
	ctx := context.Background()

	if _, err := buffer.Store(ctx, fix("Colombo")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	syncer := service.NewSyncer(buffer, sink, &fakeProbe{online: false}, silentLogger())
	synced, failed := syncer.Drain(ctx)

	if synced != 0 || failed != 0 {
		t.Errorf("expected {0,0} offline, got {%d,%d}", synced, failed)
	}
	if len(sink.written) != 0 {
		t.Errorf("expected zero sink calls offline, got %d", len(sink.written))
	}
}

func TestSyncer_DrainsOldestFirst(t *testing.T) {
	buffer := memory.New()
	sink := &fakeSink{}
	ctx := context.Background()

	cities := []string{"Colombo", "Kandy", "Galle"}
	for _, c := range cities {
		if _, err := buffer.Store(ctx, fix(c)); err != nil {
			t.Fatalf("Store %s: %v", c, err)
		}
	}

	syncer := service.NewSyncer(buffer, sink, &fakeProbe{online: true}, silentLogger())
	synced, failed := syncer.Drain(ctx)

	if synced != 3 || failed != 0 {
		t.Fatalf("expected {3,0}, got {%d,%d}", synced, failed)
	}
	for i, c := range cities {
		if sink.written[i].City != c {
			t.Errorf("written[%d]: expected %s, got %s", i, c, sink.written[i].City)
		}
	}

	pending, err := buffer.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty backlog after full drain, got %d", len(pending))
	}
}

func TestSyncer_HaltsOnFirstFailure(t *testing.T) {
	buffer := memory.New()
	// Record 2 fails: record 3 must not be attempted, preserving order.
	sink := &fakeSink{failCity: map[string]bool{"Kandy": true}}
	ctx := context.Background()

	for _, c := range []string{"Colombo", "Kandy", "Galle"} {
		if _, err := buffer.Store(ctx, fix(c)); err != nil {
			t.Fatalf("Store %s: %v", c, err)
		}
	}

	syncer := service.NewSyncer(buffer, sink, &fakeProbe{online: true}, silentLogger())
	synced, failed := syncer.Drain(ctx)

	if synced != 1 || failed != 1 {
		t.Errorf("expected {1,1}, got {%d,%d}", synced, failed)
	}
	if len(sink.written) != 1 || sink.written[0].City != "Colombo" {
		t.Fatalf("expected only Colombo written, got %v", sink.written)
	}

	pending, err := buffer.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 still pending, got %d", len(pending))
	}
	if pending[0].Fix.City != "Kandy" || pending[1].Fix.City != "Galle" {
		t.Errorf("expected Kandy and Galle pending, got %s and %s",
			pending[0].Fix.City, pending[1].Fix.City)
	}
}

func TestSyncer_RetrySucceedsAfterOutage(t *testing.T) {
	buffer := memory.New()
	sink := &fakeSink{failCity: map[string]bool{"Kandy": true}}
	ctx := context.Background()

	for _, c := range []string{"Colombo", "Kandy"} {
		if _, err := buffer.Store(ctx, fix(c)); err != nil {
			t.Fatalf("Store %s: %v", c, err)
		}
	}

	syncer := service.NewSyncer(buffer, sink, &fakeProbe{online: true}, silentLogger())
	syncer.Drain(ctx)

	// Outage over: the deferred record drains on the next pass.
	sink.failCity = nil
	synced, failed := syncer.Drain(ctx)
	if synced != 1 || failed != 0 {
		t.Errorf("expected {1,0} on retry, got {%d,%d}", synced, failed)
	}

	pending, err := buffer.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty backlog after retry, got %d", len(pending))
	}
}

func TestSyncer_EmptyBacklog(t *testing.T) {
	syncer := service.NewSyncer(memory.New(), &fakeSink{}, &fakeProbe{online: true}, silentLogger())
	synced, failed := syncer.Drain(context.Background())
	if synced != 0 || failed != 0 {
		t.Errorf("expected {0,0} on empty backlog, got {%d,%d}", synced, failed)
	}
}
