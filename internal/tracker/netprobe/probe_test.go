package netprobe_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kavineksith/location-tracker/internal/tracker/netprobe"
)

func TestProbe_OnlineWhenReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	p := netprobe.New(ln.Addr().String(), time.Second)
	if !p.Online(context.Background()) {
		t.Errorf("expected online against a live listener")
	}
}

func TestProbe_OfflineWhenUnreachable(t *testing.T) {
	// Grab a port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	p := netprobe.New(addr, 200*time.Millisecond)
	if p.Online(context.Background()) {
		t.Errorf("expected offline against a closed port")
	}
}

func TestProbe_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := netprobe.New("192.0.2.1:9", time.Second)
	if p.Online(ctx) {
		t.Errorf("expected offline with a cancelled context")
	}
}
