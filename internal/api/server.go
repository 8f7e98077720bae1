// Package api exposes the application over a REST interface with a
// WebSocket event stream.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mtgbinder/mtgbinder/internal/api/handlers"
	"github.com/mtgbinder/mtgbinder/internal/api/websocket"
	"github.com/mtgbinder/mtgbinder/internal/auth"
	"github.com/mtgbinder/mtgbinder/internal/events"
	"github.com/mtgbinder/mtgbinder/internal/storage"
	"github.com/mtgbinder/mtgbinder/internal/trade"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	logger     *slog.Logger

	wsHub *websocket.Hub

	authService *auth.Service

	authHandler       *handlers.AuthHandler
	cardHandler       *handlers.CardHandler
	collectionHandler *handlers.CollectionHandler
	deckHandler       *handlers.DeckHandler
	tradeHandler      *handlers.TradeHandler
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// Services bundles the application services the server exposes.
type Services struct {
	Auth        *auth.Service
	Users       auth.UserStore
	Cards       handlers.CardClient
	Collections storage.CollectionStore
	Decks       storage.DeckStore
	Trades      *trade.Service
	Importer    handlers.CardImporter
	Dispatcher  *events.Dispatcher
}

// NewServer creates a new API server wired to the given services.
func NewServer(cfg *Config, services Services, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	wsHub := websocket.NewHub(logger)
	if services.Dispatcher != nil {
		services.Dispatcher.Register(websocket.NewEventForwarder(wsHub))
	}

	s := &Server{
		router:            chi.NewRouter(),
		port:              cfg.Port,
		logger:            logger,
		wsHub:             wsHub,
		authService:       services.Auth,
		authHandler:       handlers.NewAuthHandler(services.Auth, services.Users),
		cardHandler:       handlers.NewCardHandler(services.Cards),
		collectionHandler: handlers.NewCollectionHandler(services.Collections, services.Importer, services.Dispatcher),
		deckHandler:       handlers.NewDeckHandler(services.Decks),
		tradeHandler:      handlers.NewTradeHandler(services.Trades, services.Users),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json for requests
// with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Router returns the configured handler, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server in a goroutine.
func (s *Server) Start() {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("api server starting", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("api server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server and the WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
