package remote_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/tracker/remote"
	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

func testFix() types.LocationFix {
	lat, lon := 6.9271, 79.8612
	return types.LocationFix{
		Timestamp: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		IP:        "203.0.113.7",
		City:      "Colombo",
		Region:    "Western",
		Country:   "LK",
		Latitude:  &lat,
		Longitude: &lon,
	}
}

func publicIPServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("198.51.100.4"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSink_WritePayload(t *testing.T) {
	var got map[string]any
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(store.Close)

	sink := remote.NewHTTPSink(store.URL, publicIPServer(t).URL, time.Second)
	if err := sink.Write(context.Background(), testFix()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for field, want := range map[string]string{
		"timestamp": "2026-08-23T12:00:00Z",
		"ip":        "203.0.113.7",
		"city":      "Colombo",
		"region":    "Western",
		"country":   "LK",
		"public_ip": "198.51.100.4",
	} {
		if got[field] != want {
			t.Errorf("payload %s: expected %q, got %v", field, want, got[field])
		}
	}
	if got["latitude"] != 6.9271 || got["longitude"] != 79.8612 {
		t.Errorf("payload coordinates: got %v,%v", got["latitude"], got["longitude"])
	}
	if got["remote_timestamp"] == nil || got["remote_timestamp"] == "" {
		t.Errorf("payload remote_timestamp missing")
	}
}

func TestHTTPSink_NonSuccessStatusIsRemoteError(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(store.Close)

	sink := remote.NewHTTPSink(store.URL, publicIPServer(t).URL, time.Second)
	err := sink.Write(context.Background(), testFix())
	if !errors.Is(err, remote.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
}

func TestHTTPSink_PublicIPLookupFailureDoesNotLoseRow(t *testing.T) {
	var got map[string]any
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
	}))
	t.Cleanup(store.Close)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	sink := remote.NewHTTPSink(store.URL, down.URL, time.Second)
	if err := sink.Write(context.Background(), testFix()); err != nil {
		t.Fatalf("Write should succeed without public ip, got %v", err)
	}
	if _, present := got["public_ip"]; present {
		t.Errorf("expected public_ip omitted, got %v", got["public_ip"])
	}
}

func TestBreakerSink_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(store.Close)

	sink := remote.NewBreakerSink(
		remote.NewHTTPSink(store.URL, publicIPServer(t).URL, time.Second),
		zerolog.Nop(),
	)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		err := sink.Write(ctx, testFix())
		if !errors.Is(err, remote.ErrRemote) {
			t.Fatalf("write %d: expected ErrRemote, got %v", i, err)
		}
	}

	// The breaker trips at 5 consecutive failures; later writes are rejected
	// without touching the endpoint.
	if hits >= 10 {
		t.Errorf("expected breaker to stop hitting the endpoint, saw %d hits", hits)
	}
}
