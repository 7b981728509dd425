package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hairscan/hairscan-admin/internal/api"
	"github.com/hairscan/hairscan-admin/internal/config"
	"github.com/hairscan/hairscan-admin/internal/notify"
	"github.com/hairscan/hairscan-admin/internal/storage"
	"github.com/hairscan/hairscan-admin/pkg/crypto"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/admin-server.yml", "Configuration file path")
	flag.Parse()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Without a configured secret, sessions do not survive a restart
	if cfg.JWT.Secret == "" {
		secret, err := crypto.GenerateRandomString(32)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate JWT secret")
		}
		cfg.JWT.Secret = secret
		log.Warn().Msg("JWT secret not configured, using an ephemeral one")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open storage
	var store storage.Store
	switch cfg.Store.Driver {
	case "postgres":
		if err := runMigrations(cfg.Database.DSN); err != nil {
			log.Fatal().Err(err).Msg("Migrations failed")
		}

		pg, err := storage.NewPostgresStore(cfg.Database.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		pg.Configure(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
		store = pg
		log.Info().Msg("Connected to database")
	case "memory":
		store = storage.NewMemoryStore()
		log.Info().Msg("Using in-memory store")
	default:
		log.Fatal().Str("driver", cfg.Store.Driver).Msg("Unknown store driver")
	}
	defer store.Close()

	if cfg.Store.Seed {
		adminPassword := os.Getenv("ADMIN_PASSWORD")
		if adminPassword == "" {
			adminPassword = "admin1234"
		}
		hash, err := crypto.HashPassword(adminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash admin password")
		}
		if err := storage.Seed(ctx, store, hash); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed store")
		}
		log.Info().Msg("Seeded demo data")
	}

	// Optional NATS connection for the event bus
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		log.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS...")

		nc, err = nats.Connect(cfg.NATS.URL,
			nats.Name(cfg.Server.Name),
			nats.UserInfo(cfg.NATS.Username, cfg.NATS.Password),
			nats.ReconnectWait(cfg.NATS.ReconnectInterval),
			nats.MaxReconnects(cfg.NATS.MaxReconnects),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				log.Warn().Err(err).Msg("Disconnected from NATS")
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info().Msg("Reconnected to NATS")
			}),
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, continuing without event bus")
			nc = nil
		} else {
			defer nc.Close()
			log.Info().Msg("Connected to NATS")
		}
	} else {
		log.Info().Msg("NATS not configured, running in standalone mode")
	}

	webhook := notify.NewWebhookForwarder(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	notifier := notify.NewNotifier(store, nc, webhook)

	// Start REST API server
	apiServer := api.NewRESTServer(cfg, store, notifier)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := apiServer.ListenAndServe(addr); err != nil {
			log.Error().Err(err).Msg("REST API server stopped")
		}
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	cancel()

	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	wg.Wait()

	log.Info().Msg("Admin server stopped")
}
