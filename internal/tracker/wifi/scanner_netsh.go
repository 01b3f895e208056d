package wifi

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// netshScanner shells out to the built-in WLAN tool on Windows.
type netshScanner struct {
	logger zerolog.Logger
}

func (s *netshScanner) Scan(ctx context.Context) []types.AccessPoint {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "netsh", "wlan", "show", "networks", "mode=bssid").Output()
	if err != nil {
		s.logger.Debug().Err(err).Msg("netsh scan failed, treating as no access points")
		return nil
	}
	return parseNetsh(string(out))
}

// parseNetsh reads "netsh wlan show networks mode=bssid" output, pairing each
// "BSSID n : aa:bb:cc:dd:ee:ff" line with the "Signal : 62%" line that
// follows it.
func parseNetsh(out string) []types.AccessPoint {
	var aps []types.AccessPoint
	var mac string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.HasPrefix(key, "BSSID"):
			// The value itself contains colons; re-slice from the first one.
			mac = strings.ToLower(strings.TrimSpace(line[strings.Index(line, ":")+1:]))
		case key == "Signal" && mac != "":
			pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
			if err == nil {
				aps = append(aps, types.AccessPoint{
					MACAddress:     mac,
					SignalStrength: percentToDbm(pct),
				})
			}
			mac = ""
		}
	}
	return aps
}
