package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kavineksith/location-tracker/internal/tracker/types"
)

const (
	// DefaultPublicIPURL returns the caller's public IP as plain text.
	DefaultPublicIPURL = "https://api.ipify.org"

	defaultTimeout = 10 * time.Second
	maxBodyLen     = 1 << 16
)

// remoteRow is the wire shape of one persisted fix. public_ip and
// remote_timestamp are stamped at write time, so replayed buffer records keep
// their original observation timestamp but show when they actually landed.
type remoteRow struct {
	Timestamp       string   `json:"timestamp"`
	IP              string   `json:"ip"`
	City            string   `json:"city"`
	Region          string   `json:"region"`
	Country         string   `json:"country"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	PublicIP        string   `json:"public_ip,omitempty"`
	RemoteTimestamp string   `json:"remote_timestamp"`
}

// HTTPSink posts fixes as JSON rows to the remote location store. With an
// empty url the endpoint is derived from the discovered public IP
// (http://<public-ip>/v1/location), mirroring the self-addressed test setup
// the tracker originally shipped with.
type HTTPSink struct {
	client      *http.Client
	url         string
	publicIPURL string
	now         func() time.Time
}

func NewHTTPSink(url, publicIPURL string, timeout time.Duration) *HTTPSink {
	if publicIPURL == "" {
		publicIPURL = DefaultPublicIPURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSink{
		client:      &http.Client{Timeout: timeout},
		url:         url,
		publicIPURL: publicIPURL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *HTTPSink) Write(ctx context.Context, fix types.LocationFix) error {
	// Best-effort public IP stamp; an unreachable discovery endpoint should
	// not lose the row when the store itself is reachable.
	publicIP, ipErr := s.lookupPublicIP(ctx)
	if ipErr != nil {
		publicIP = ""
	}

	url := s.url
	if url == "" {
		if ipErr != nil {
			return fmt.Errorf("%w: derive endpoint: %w", ErrRemote, ipErr)
		}
		url = "http://" + publicIP + "/v1/location"
	}

	row := remoteRow{
		Timestamp:       fix.Timestamp.UTC().Format(time.RFC3339),
		IP:              fix.IP,
		City:            fix.City,
		Region:          fix.Region,
		Country:         fix.Country,
		Latitude:        fix.Latitude,
		Longitude:       fix.Longitude,
		PublicIP:        publicIP,
		RemoteTimestamp: s.now().Format(time.RFC3339),
	}

	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrRemote, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: request: %w", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemote, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyLen))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrRemote, resp.StatusCode)
	}
	return nil
}

func (s *HTTPSink) lookupPublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.publicIPURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("public ip lookup: unexpected status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyLen))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
