package types

// AccessPoint is a nearby Wi-Fi network observed by a scan. Ephemeral:
// access points are submitted to the positioning service and never persisted.
type AccessPoint struct {
	MACAddress     string `json:"macAddress"`
	SignalStrength int    `json:"signalStrength"` // dBm
}
