package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "LOCTRACK_CONFIG"

// DefaultConfigPaths lists where the config file is searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/location-tracker/config.yaml",
}

type Config struct {
	// Interval between tracking cycles.
	Interval time.Duration `koanf:"interval"`

	Database DatabaseConfig `koanf:"database"`
	Remote   RemoteConfig   `koanf:"remote"`
	Probe    ProbeConfig    `koanf:"probe"`
	Geo      GeoConfig      `koanf:"geo"`
	Secrets  SecretsConfig  `koanf:"secrets"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type RemoteConfig struct {
	// URL of the remote location store's write endpoint.
	URL string `koanf:"url"`
	// PublicIPURL returns the caller's public IP as plain text.
	PublicIPURL string        `koanf:"publicipurl"`
	Timeout     time.Duration `koanf:"timeout"`
	// Breaker enables the circuit breaker around the remote sink.
	Breaker bool `koanf:"breaker"`
}

type ProbeConfig struct {
	Addr    string        `koanf:"addr"`
	Timeout time.Duration `koanf:"timeout"`
}

type GeoConfig struct {
	// PositionURL is the Wi-Fi positioning endpoint.
	PositionURL string `koanf:"positionurl"`
	// IPLookupURL is the IP-geolocation endpoint.
	IPLookupURL string        `koanf:"ipurl"`
	Timeout     time.Duration `koanf:"timeout"`
}

type SecretsConfig struct {
	KeyFile          string `koanf:"keyfile"`
	EncryptedKeyFile string `koanf:"encryptedkeyfile"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func defaultConfig() Config {
	return Config{
		Interval: time.Hour,
		Database: DatabaseConfig{
			Path: "./data/locations.db",
		},
		Remote: RemoteConfig{
			URL:         "",
			PublicIPURL: "https://api.ipify.org",
			Timeout:     10 * time.Second,
			Breaker:     true,
		},
		Probe: ProbeConfig{
			Addr:    "8.8.8.8:53",
			Timeout: 5 * time.Second,
		},
		Geo: GeoConfig{
			PositionURL: "https://www.googleapis.com/geolocation/v1/geolocate",
			IPLookupURL: "https://ipinfo.io/json",
			Timeout:     10 * time.Second,
		},
		Secrets: SecretsConfig{
			KeyFile:          "./api_key",
			EncryptedKeyFile: "./api_key.enc",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// envMappings maps LOCTRACK_* environment variables to config keys.
// Explicit mapping avoids ambiguity between underscores in variable names and
// nesting delimiters.
var envMappings = map[string]string{
	"loctrack_interval":                  "interval",
	"loctrack_db_path":                   "database.path",
	"loctrack_remote_url":                "remote.url",
	"loctrack_remote_public_ip_url":      "remote.publicipurl",
	"loctrack_remote_timeout":            "remote.timeout",
	"loctrack_remote_breaker":            "remote.breaker",
	"loctrack_probe_addr":                "probe.addr",
	"loctrack_probe_timeout":             "probe.timeout",
	"loctrack_geo_position_url":          "geo.positionurl",
	"loctrack_geo_ip_url":                "geo.ipurl",
	"loctrack_geo_timeout":               "geo.timeout",
	"loctrack_secrets_key_file":          "secrets.keyfile",
	"loctrack_secrets_encrypted_keyfile": "secrets.encryptedkeyfile",
	"loctrack_log_level":                 "log.level",
	"loctrack_log_format":                "log.format",
	"loctrack_metrics_enabled":           "metrics.enabled",
	"loctrack_metrics_addr":              "metrics.addr",
}

func envTransform(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped variables are dropped so unrelated LOCTRACK_* vars (like the
	// API key, which belongs to the secrets chain) never land in the config.
	return ""
}

// Load builds the configuration by layering struct defaults, an optional
// YAML config file, and LOCTRACK_* environment variables, in that order of
// increasing precedence.
func Load() (Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("LOCTRACK_", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
