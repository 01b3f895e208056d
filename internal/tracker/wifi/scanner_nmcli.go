package wifi

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

const scanTimeout = 10 * time.Second

// nmcliScanner shells out to NetworkManager's CLI on Linux.
type nmcliScanner struct {
	logger zerolog.Logger
}

func (s *nmcliScanner) Scan(ctx context.Context) []types.AccessPoint {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nmcli", "-t", "-f", "BSSID,SIGNAL", "device", "wifi", "list").Output()
	if err != nil {
		s.logger.Debug().Err(err).Msg("nmcli scan failed, treating as no access points")
		return nil
	}
	return parseNmcli(string(out))
}

// parseNmcli reads nmcli terse output. In -t mode the BSSID's colons are
// escaped, so a line looks like "AA\:BB\:CC\:DD\:EE\:FF:62". The final
// unescaped colon separates the signal column.
func parseNmcli(out string) []types.AccessPoint {
	var aps []types.AccessPoint
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		i := strings.LastIndex(line, ":")
		if i <= 0 || (i > 0 && line[i-1] == '\\') {
			continue
		}
		mac := strings.ReplaceAll(line[:i], `\:`, ":")
		signal, err := strconv.Atoi(line[i+1:])
		if err != nil || mac == "" {
			continue
		}
		aps = append(aps, types.AccessPoint{
			MACAddress:     strings.ToLower(mac),
			SignalStrength: percentToDbm(signal),
		})
	}
	return aps
}

// percentToDbm maps nmcli's 0-100 signal quality onto the dBm scale the
// positioning API expects, using the common quality/2-100 approximation.
func percentToDbm(pct int) int {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct/2 - 100
}
