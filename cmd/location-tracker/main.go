package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/kavineksith/location-tracker/internal/config"
	"github.com/kavineksith/location-tracker/internal/db"
	"github.com/kavineksith/location-tracker/internal/observability"
	"github.com/kavineksith/location-tracker/internal/secrets"
	"github.com/kavineksith/location-tracker/internal/tracker/geo"
	"github.com/kavineksith/location-tracker/internal/tracker/netprobe"
	"github.com/kavineksith/location-tracker/internal/tracker/remote"
	"github.com/kavineksith/location-tracker/internal/tracker/service"
	"github.com/kavineksith/location-tracker/internal/tracker/store/sqlite"
	"github.com/kavineksith/location-tracker/internal/tracker/wifi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	// Startup failures are fatal: tracking never begins without an API key
	// and an initialized buffer.
	provider := secrets.NewProvider(secrets.Config{
		KeyFile:          cfg.Secrets.KeyFile,
		EncryptedKeyFile: cfg.Secrets.EncryptedKeyFile,
	}, logger)
	apiKey, err := provider.APIKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("api key resolution failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("local buffer initialization failed")
	}
	defer conn.Close()

	writer := db.NewWriter(conn)
	defer writer.Close()

	buffer := sqlite.NewBufferStore(conn, writer)

	scanner := wifi.NewScanner(logger)
	resolver := geo.NewResolver(
		scanner,
		geo.NewPositionClient(cfg.Geo.PositionURL, apiKey, cfg.Geo.Timeout),
		geo.NewIPClient(cfg.Geo.IPLookupURL, cfg.Geo.Timeout),
		logger,
	)

	probe := netprobe.New(cfg.Probe.Addr, cfg.Probe.Timeout)

	var sink remote.Sink = remote.NewHTTPSink(cfg.Remote.URL, cfg.Remote.PublicIPURL, cfg.Remote.Timeout)
	if cfg.Remote.Breaker {
		sink = remote.NewBreakerSink(sink, logger)
	}

	syncer := service.NewSyncer(buffer, sink, probe, logger)
	tracker := service.NewTracker(service.TrackerDeps{
		Resolver: resolver,
		Probe:    probe,
		Buffer:   buffer,
		Sink:     sink,
		Syncer:   syncer,
		Interval: cfg.Interval,
		Logger:   logger,
	})

	if cfg.Metrics.Enabled {
		go func() {
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listener starting")
			if err := observability.StartMetricsServer(cfg.Metrics.Addr); err != nil {
				logger.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	tracker.Start(ctx)

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	tracker.Stop()
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
