package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

const (
	// DefaultIPLookupURL is the free IP-geolocation endpoint. Returns place
	// fields without coordinates precise enough to carry on the fix.
	DefaultIPLookupURL = "https://ipinfo.io/json"

	httpTimeout    = 10 * time.Second
	maxResponseLen = 1 << 20
)

// ipLookupResponse is the subset of the ipinfo.io payload the tracker needs.
type ipLookupResponse struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// IPClient resolves a LocationFix from the caller's public IP address.
type IPClient struct {
	client *http.Client
	url    string
}

func NewIPClient(url string, timeout time.Duration) *IPClient {
	if url == "" {
		url = DefaultIPLookupURL
	}
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &IPClient{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

// Lookup fetches the IP-derived fix. The returned fix carries no
// coordinates; the caller stamps the timestamp.
func (c *IPClient) Lookup(ctx context.Context) (types.LocationFix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return types.LocationFix{}, fmt.Errorf("ip lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.LocationFix{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.LocationFix{}, fmt.Errorf("ip lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return types.LocationFix{}, fmt.Errorf("ip lookup read: %w", err)
	}

	var payload ipLookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return types.LocationFix{}, fmt.Errorf("ip lookup decode: %w", err)
	}

	return types.LocationFix{
		IP:      payload.IP,
		City:    payload.City,
		Region:  payload.Region,
		Country: payload.Country,
	}, nil
}
