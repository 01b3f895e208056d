package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
	"github.com/kavineksith/location-tracker/internal/tracker/wifi"
)

// ErrResolution tags a failed resolution: both the Wi-Fi and IP paths were
// exhausted. It wraps the last underlying cause.
var ErrResolution = errors.New("location resolution failed")

// Resolver produces LocationFixes, preferring Wi-Fi positioning and falling
// back to IP geolocation. It never retries internally: the retry cadence is
// the tracker loop's polling interval.
type Resolver struct {
	scanner  wifi.Scanner
	position *PositionClient
	ip       *IPClient
	logger   zerolog.Logger
	now      func() time.Time
}

func NewResolver(scanner wifi.Scanner, position *PositionClient, ip *IPClient, logger zerolog.Logger) *Resolver {
	return &Resolver{
		scanner:  scanner,
		position: position,
		ip:       ip,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Resolve returns a fix for the host's current location.
//
// The Wi-Fi path contributes coordinates only; the place fields and public IP
// always come from the IP lookup, so a fix that validates (non-empty
// ip/city/region/country) is produced regardless of which path won. When
// scanning yields no access points, or positioning fails for any reason
// (network error, non-2xx, malformed payload, missing API key), resolution
// degrades to the plain IP path.
func (r *Resolver) Resolve(ctx context.Context) (types.LocationFix, error) {
	var coords *Coordinates

	if aps := r.scanner.Scan(ctx); len(aps) > 0 {
		c, err := r.position.Locate(ctx, aps)
		if err != nil {
			r.logger.Warn().Err(err).Int("access_points", len(aps)).
				Msg("wifi positioning failed, falling back to ip geolocation")
		} else {
			coords = &c
			r.logger.Debug().
				Float64("lat", c.Latitude).Float64("lng", c.Longitude).Float64("accuracy_m", c.Accuracy).
				Msg("wifi positioning succeeded")
		}
	} else {
		r.logger.Debug().Msg("no wifi access points found, using ip geolocation")
	}

	fix, err := r.ip.Lookup(ctx)
	if err != nil {
		return types.LocationFix{}, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	if coords != nil {
		fix.Latitude = &coords.Latitude
		fix.Longitude = &coords.Longitude
	}
	fix.Timestamp = r.now()

	return fix, nil
}
