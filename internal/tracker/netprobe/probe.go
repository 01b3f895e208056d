package netprobe

import (
	"context"
	"net"
	"time"
)

const (
	// DefaultAddr is a well-known, highly available endpoint (Google public
	// DNS over TCP). Reaching it is a connectivity hint, not a guarantee that
	// a later remote write will succeed.
	DefaultAddr    = "8.8.8.8:53"
	DefaultTimeout = 5 * time.Second
)

// Probe answers "does the network look reachable right now?" with a single
// bounded TCP dial. It never returns an error: timeouts, refusals and DNS
// failures all read as offline.
type Probe struct {
	addr    string
	timeout time.Duration
}

func New(addr string, timeout time.Duration) *Probe {
	if addr == "" {
		addr = DefaultAddr
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Probe{addr: addr, timeout: timeout}
}

// Online reports current reachability. The result is sampled fresh on every
// call and must not be cached across decision points: connectivity can flap
// between a probe and the write that follows it.
func (p *Probe) Online(ctx context.Context) bool {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", p.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
