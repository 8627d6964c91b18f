package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/storefront/internal/auth/http"
	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/aussiebroadwan/storefront/internal/auth/notify"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	codec    *jwtx.Codec
	metrics  *metrics.Metrics
	notifier notify.Notifier

	// Services
	sessionService   *service.SessionService
	recoveryService  *service.RecoveryService
	userService      *service.UserService
	bootstrapService *service.BootstrapService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "storefront-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	codec, err := InitCodec(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapService.Run(ctx, service.BootstrapAdmin{
		Email:     cfg.BootstrapAdminEmail,
		Password:  cfg.BootstrapAdminPassword,
		FirstName: "Admin",
	}); err != nil {
		_ = app.closeResources()
		return nil, fmt.Errorf("failed to bootstrap: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.closeResources()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// closeResources flushes the notifier and closes the database.
func (app *Application) closeResources() error {
	if c, ok := app.notifier.(notify.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing notifier", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var db store.Store

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		pg, err := postgres.NewStore(ctx, postgres.Config{
			URL:          app.cfg.DatabaseURL,
			QueryTimeout: 5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		db = pg
	default:
		lite, err := sqlite.NewStore("file:" + app.cfg.DatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		db = lite
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initNotifier builds the channel password reset messages go out on
func (app *Application) initNotifier() error {
	switch app.cfg.Notifier {
	case notify.KindSMTP:
		n, err := notify.NewSMTPNotifier(app.cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to initialize smtp notifier: %w", err)
		}
		app.notifier = n
	case notify.KindKafka:
		n, err := notify.NewKafkaNotifier(app.cfg.KafkaBrokers, app.cfg.KafkaTopic)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka notifier: %w", err)
		}
		app.notifier = n
	default:
		app.notifier = notify.LogNotifier{}
	}
	app.logger.Info("notifier ready", "kind", app.cfg.Notifier)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:      app.db,
		Issuer:     app.codec,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		Metrics:    app.metrics,
	}
	app.recoveryService = &service.RecoveryService{
		Store:       app.db,
		Notifier:    app.notifier,
		ResetTTL:    app.cfg.ResetTTL,
		LinkBaseURL: app.cfg.ResetLinkBaseURL,
		Metrics:     app.metrics,
	}
	app.userService = &service.UserService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.logger,
		httpapi.RateLimits{Strict: app.cfg.StrictLimit, Moderate: app.cfg.ModerateLimit},
	)

	// Wire services to router
	router.Metrics = app.metrics
	router.SessionService = app.sessionService
	router.RecoveryService = app.recoveryService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
