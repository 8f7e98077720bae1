// Package main starts the MTG Binder server: a REST API for card
// collections, decks and trades backed by the Scryfall card database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mtgbinder/mtgbinder/internal/api"
	"github.com/mtgbinder/mtgbinder/internal/auth"
	"github.com/mtgbinder/mtgbinder/internal/config"
	"github.com/mtgbinder/mtgbinder/internal/events"
	"github.com/mtgbinder/mtgbinder/internal/importer"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
	"github.com/mtgbinder/mtgbinder/internal/storage"
	"github.com/mtgbinder/mtgbinder/internal/storage/postgres"
	"github.com/mtgbinder/mtgbinder/internal/trade"
	"github.com/mtgbinder/mtgbinder/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.mtgbinder/config.toml)")
	port       = flag.Int("port", 0, "Override the configured server port")
)

// stores is the persistence surface the server needs, satisfied by
// both backends.
type stores struct {
	users       auth.UserStore
	collections storage.CollectionStore
	decks       storage.DeckStore
	trades      trade.Store
	close       func()
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = os.Getenv("MTGBINDER_AUTH_SECRET")
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.Secret == "" {
		slog.Error("auth secret is required (config [auth] secret or MTGBINDER_AUTH_SECRET)")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("starting mtgbinder", "version", version.GetVersion())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.close()

	server, err := buildServer(cfg, st, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	server.Start()

	// Surface config edits; a changed port or DSN needs a restart.
	if *configPath != "" {
		go func() {
			_ = config.Watch(ctx, *configPath, logger, func(*config.Config) {
				logger.Info("config file changed, restart to apply")
			})
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// openStores opens the configured storage backend.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		if err := postgres.Migrate(cfg.Storage.DSN); err != nil {
			return nil, err
		}
		store, err := postgres.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("storage ready", "driver", "postgres")
		return &stores{
			users:       store.Users(),
			collections: store.Collections(),
			decks:       store.Decks(),
			trades:      store.Trades(),
			close:       store.Close,
		}, nil

	default:
		path := cfg.Storage.Path
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(home, ".mtgbinder", "data.db")
		}

		dbConfig := storage.DefaultConfig(path)
		dbConfig.AutoMigrate = true
		db, err := storage.Open(dbConfig)
		if err != nil {
			return nil, err
		}
		logger.Info("storage ready", "driver", "sqlite", "path", path)
		return &stores{
			users:       db.Users(),
			collections: db.Collections(),
			decks:       db.Decks(),
			trades:      db.Trades(),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("failed to close database", "error", err)
				}
			},
		}, nil
	}
}

// buildServer wires the services and the API server together.
func buildServer(cfg *config.Config, st *stores, logger *slog.Logger) (*api.Server, error) {
	requestDelay, err := cfg.GetRequestDelay()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.GetScryfallTimeout()
	if err != nil {
		return nil, err
	}
	cooldown, err := cfg.GetImportCooldown()
	if err != nil {
		return nil, err
	}
	tokenTTL, err := cfg.GetTokenTTL()
	if err != nil {
		return nil, err
	}

	clientOpts := scryfall.DefaultOptions()
	clientOpts.RequestDelay = requestDelay
	clientOpts.Timeout = timeout
	if cfg.Scryfall.BaseURL != "" {
		clientOpts.BaseURL = cfg.Scryfall.BaseURL
	}
	if cfg.Scryfall.UserAgent != "" {
		clientOpts.UserAgent = cfg.Scryfall.UserAgent
	}
	client := scryfall.NewClient(clientOpts)

	dispatcher := events.NewDispatcher(logger)
	governor := importer.NewGovernor(requestDelay, cooldown)
	imp := importer.New(client, governor, dispatcher, logger)

	services := api.Services{
		Auth:        auth.NewService(st.users, cfg.Auth.Secret, tokenTTL),
		Users:       st.users,
		Cards:       client,
		Collections: st.collections,
		Decks:       st.decks,
		Trades:      trade.NewService(st.trades, dispatcher),
		Importer:    imp,
		Dispatcher:  dispatcher,
	}

	serverCfg := &api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	return api.NewServer(serverCfg, services, logger), nil
}
