// In-package on purpose: the parsers are unexported, and Scan itself shells
// out to platform tools (nmcli, netsh) that are not available on test hosts.
package wifi

import "testing"

func TestParseNmcli(t *testing.T) {
	out := `AA\:BB\:CC\:DD\:EE\:FF:82
11\:22\:33\:44\:55\:66:40

not-a-record
`
	aps := parseNmcli(out)
	if len(aps) != 2 {
		t.Fatalf("expected 2 access points, got %d", len(aps))
	}
	if aps[0].MACAddress != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("unexpected mac %q", aps[0].MACAddress)
	}
	// 82% quality maps to 82/2-100 = -59 dBm.
	if aps[0].SignalStrength != -59 {
		t.Errorf("expected -59 dBm, got %d", aps[0].SignalStrength)
	}
	if aps[1].MACAddress != "11:22:33:44:55:66" || aps[1].SignalStrength != -80 {
		t.Errorf("unexpected second access point %+v", aps[1])
	}
}

func TestParseNetsh(t *testing.T) {
	out := `
SSID 1 : HomeNet
    Network type            : Infrastructure
    BSSID 1                 : aa:bb:cc:dd:ee:ff
         Signal             : 82%
    BSSID 2                 : 11:22:33:44:55:66
         Signal             : 40%

SSID 2 : Cafe
    BSSID 1                 : 77:88:99:aa:bb:cc
         Signal             : 10%
`
	aps := parseNetsh(out)
	if len(aps) != 3 {
		t.Fatalf("expected 3 access points, got %d", len(aps))
	}
	if aps[0].MACAddress != "aa:bb:cc:dd:ee:ff" || aps[0].SignalStrength != -59 {
		t.Errorf("unexpected first access point %+v", aps[0])
	}
	if aps[2].MACAddress != "77:88:99:aa:bb:cc" || aps[2].SignalStrength != -95 {
		t.Errorf("unexpected last access point %+v", aps[2])
	}
}

func TestPercentToDbmClamps(t *testing.T) {
	cases := []struct {
		pct  int
		want int
	}{
		{-10, -100},
		{0, -100},
		{100, -50},
		{150, -50},
	}
	for _, c := range cases {
		if got := percentToDbm(c.pct); got != c.want {
			t.Errorf("percentToDbm(%d): expected %d, got %d", c.pct, c.want, got)
		}
	}
}
