package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"cookalong/internal/api"
	"cookalong/internal/auth"
	"cookalong/internal/config"
	"cookalong/internal/database"
	"cookalong/internal/events"
	"cookalong/internal/hub"
	"cookalong/internal/progress"
	"cookalong/internal/room"
	"cookalong/internal/roster"
	"cookalong/internal/websocket"
)

// Application coordinates all system components.
type Application struct {
	config     *config.Config
	dbManager  *database.Manager
	registry   *websocket.Registry
	rooms      *room.Registry
	eventHub   *hub.Hub
	apiServer  *api.Server
	httpServer *http.Server
	log        *logrus.Entry
}

// NewApplication creates an application with all components initialized.
// Initialization follows dependency order:
// Database -> Auth -> Registries -> Router -> Hub -> Transport -> API -> HTTP
func NewApplication(cfg *config.Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database manager: %w", err)
	}

	authService := auth.NewService(cfg.Auth.Secret)

	registry := websocket.NewRegistry()
	rooms := room.NewRegistry()
	ros := roster.NewRoster()
	prog := progress.NewStore()

	router := events.NewRouter(rooms, ros, prog, registry, cfg.Room.DefaultMaxClients)
	eventHub := hub.NewHub(router)

	wsHandler := websocket.NewHandler(registry, authService, eventHub,
		cfg.WebSocket.PingInterval, cfg.WebSocket.ReadTimeout, cfg.WebSocket.WriteBuffer)

	apiServer := api.NewServer(dbManager, authService, cfg.Auth.TokenTTL, cfg.Auth.SpecialTokenTTL, registry)
	apiServer.RegisterWebSocket("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:     cfg,
		dbManager:  dbManager,
		registry:   registry,
		rooms:      rooms,
		eventHub:   eventHub,
		apiServer:  apiServer,
		httpServer: httpServer,
		log:        logrus.WithField("component", "app"),
	}, nil
}

// Start begins application execution. The hub starts first so event
// processing is live before the HTTP server admits connections.
func (app *Application) Start(ctx context.Context) error {
	app.log.WithField("addr", app.httpServer.Addr).Info("starting application")

	if err := app.eventHub.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event hub: %w", err)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		_ = app.eventHub.Stop()
		return err
	case <-time.After(100 * time.Millisecond):
		app.log.Info("application started")
		return nil
	case <-ctx.Done():
		_ = app.eventHub.Stop()
		return ctx.Err()
	}
}

// Stop gracefully shuts the application down in reverse dependency order:
// HTTP -> Hub -> Database.
func (app *Application) Stop(ctx context.Context) error {
	app.log.Info("shutting down application")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		app.log.WithError(err).Warn("HTTP server shutdown error")
	}

	if err := app.eventHub.Stop(); err != nil {
		app.log.WithError(err).Warn("event hub shutdown error")
	}

	if err := app.dbManager.Close(); err != nil {
		app.log.WithError(err).Warn("database shutdown error")
	}

	app.log.Info("application shutdown complete")
	return nil
}

// GetAddr returns the server address for external connections.
func (app *Application) GetAddr() string {
	return app.httpServer.Addr
}
