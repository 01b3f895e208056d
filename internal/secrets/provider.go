package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variables consulted by the default chain.
const (
	APIKeyEnvVar        = "LOCTRACK_API_KEY"
	EncryptionKeyEnvVar = "LOCTRACK_ENCRYPTION_KEY"
)

// ErrAPIKeyNotFound means no source in the chain produced a key. Fatal at
// startup: tracking never begins without a positioning API key.
var ErrAPIKeyNotFound = errors.New("api key not found in environment, key file, or encrypted key file")

// source is one strategy for obtaining the API key. A source distinguishes
// "not configured / not present" (found=false, err=nil) from a hard failure
// (err != nil); the chain skips the former and surfaces the latter.
type source interface {
	name() string
	lookup() (key string, found bool, err error)
}

// Provider resolves the geolocation API key from an ordered list of sources:
// environment variable, then plaintext key file, then encrypted key file.
// The first source that yields a key wins.
type Provider struct {
	sources []source
	logger  zerolog.Logger
}

type Config struct {
	KeyFile          string // plaintext key file path ("" disables)
	EncryptedKeyFile string // encrypted key file path ("" disables)
}

func NewProvider(cfg Config, logger zerolog.Logger) *Provider {
	return &Provider{
		sources: []source{
			envSource{variable: APIKeyEnvVar},
			fileSource{path: cfg.KeyFile},
			encryptedFileSource{path: cfg.EncryptedKeyFile, keyEnvVar: EncryptionKeyEnvVar},
		},
		logger: logger,
	}
}

// APIKey walks the chain and returns the first key found.
func (p *Provider) APIKey() (string, error) {
	for _, src := range p.sources {
		key, found, err := src.lookup()
		if err != nil {
			return "", fmt.Errorf("api key source %s: %w", src.name(), err)
		}
		if found {
			p.logger.Info().Str("source", src.name()).Msg("api key resolved")
			return key, nil
		}
		p.logger.Debug().Str("source", src.name()).Msg("api key not found, trying next source")
	}
	return "", ErrAPIKeyNotFound
}

type envSource struct {
	variable string
}

func (s envSource) name() string { return "env" }

func (s envSource) lookup() (string, bool, error) {
	key := strings.TrimSpace(os.Getenv(s.variable))
	return key, key != "", nil
}

type fileSource struct {
	path string
}

func (s fileSource) name() string { return "file" }

func (s fileSource) lookup() (string, bool, error) {
	if s.path == "" {
		return "", false, nil
	}
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	key := strings.TrimSpace(string(b))
	return key, key != "", nil
}

type encryptedFileSource struct {
	path      string
	keyEnvVar string
}

func (s encryptedFileSource) name() string { return "encrypted-file" }

func (s encryptedFileSource) lookup() (string, bool, error) {
	if s.path == "" {
		return "", false, nil
	}
	ciphertext, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	secret := strings.TrimSpace(os.Getenv(s.keyEnvVar))
	if secret == "" {
		return "", false, fmt.Errorf("%s not set but encrypted key file exists", s.keyEnvVar)
	}

	key, err := Decrypt(strings.TrimSpace(string(ciphertext)), secret)
	if err != nil {
		return "", false, err
	}
	return key, key != "", nil
}
