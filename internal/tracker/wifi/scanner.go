package wifi

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// Scanner enumerates nearby Wi-Fi access points. Implementations are
// platform-specific and best-effort: any failure yields an empty slice, never
// an error. The resolver treats an empty scan as "use the IP path".
type Scanner interface {
	Scan(ctx context.Context) []types.AccessPoint
}

// NewScanner selects the scanner for the current platform. On platforms
// without a known scan tool it returns a scanner that always reports no
// access points, which degrades resolution to the IP path.
func NewScanner(logger zerolog.Logger) Scanner {
	switch runtime.GOOS {
	case "linux":
		return &nmcliScanner{logger: logger}
	case "windows":
		return &netshScanner{logger: logger}
	default:
		logger.Info().Str("os", runtime.GOOS).Msg("no wifi scanner for platform, ip geolocation only")
		return noopScanner{}
	}
}

type noopScanner struct{}

func (noopScanner) Scan(context.Context) []types.AccessPoint { return nil }
