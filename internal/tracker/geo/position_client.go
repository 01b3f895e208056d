package geo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

// DefaultPositionURL is the Google Geolocation API endpoint. The API key is
// appended as a query parameter.
const DefaultPositionURL = "https://www.googleapis.com/geolocation/v1/geolocate"

// signalToNoiseRatio is sent verbatim with every access point; the service
// tolerates a fixed estimate.
const signalToNoiseRatio = 40

var errNoAPIKey = errors.New("wifi positioning: no api key")

// Coordinates is a Wi-Fi-derived position estimate.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters
}

type positionRequest struct {
	WifiAccessPoints []positionAccessPoint `json:"wifiAccessPoints"`
}

type positionAccessPoint struct {
	MACAddress         string `json:"macAddress"`
	SignalStrength     int    `json:"signalStrength"`
	SignalToNoiseRatio int    `json:"signalToNoiseRatio"`
}

type positionResponse struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

// PositionClient turns a set of observed access points into coordinates via
// an external Wi-Fi positioning service.
type PositionClient struct {
	client *http.Client
	url    string
	apiKey string
}

func NewPositionClient(url, apiKey string, timeout time.Duration) *PositionClient {
	if url == "" {
		url = DefaultPositionURL
	}
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &PositionClient{
		client: &http.Client{Timeout: timeout},
		url:    url,
		apiKey: apiKey,
	}
}

func (c *PositionClient) Locate(ctx context.Context, aps []types.AccessPoint) (Coordinates, error) {
	if c.apiKey == "" {
		return Coordinates{}, errNoAPIKey
	}

	payload := positionRequest{
		WifiAccessPoints: make([]positionAccessPoint, 0, len(aps)),
	}
	for _, ap := range aps {
		payload.WifiAccessPoints = append(payload.WifiAccessPoints, positionAccessPoint{
			MACAddress:         ap.MACAddress,
			SignalStrength:     ap.SignalStrength,
			SignalToNoiseRatio: signalToNoiseRatio,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Coordinates{}, fmt.Errorf("wifi positioning encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return Coordinates{}, fmt.Errorf("wifi positioning request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("wifi positioning: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Coordinates{}, fmt.Errorf("wifi positioning: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return Coordinates{}, fmt.Errorf("wifi positioning read: %w", err)
	}

	var out positionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Coordinates{}, fmt.Errorf("wifi positioning decode: %w", err)
	}
	if out.Location.Lat == 0 && out.Location.Lng == 0 && out.Accuracy == 0 {
		// An empty object unmarshals cleanly; treat it as a malformed payload.
		return Coordinates{}, fmt.Errorf("wifi positioning: empty location in response")
	}

	return Coordinates{
		Latitude:  out.Location.Lat,
		Longitude: out.Location.Lng,
		Accuracy:  out.Accuracy,
	}, nil
}
