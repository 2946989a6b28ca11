package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/fieldbook/fieldbook/internal/auth/http"
	"github.com/fieldbook/fieldbook/internal/auth/oidc"
	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/internal/auth/store/drivers/sqlite"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	revocations revocation.Store
	codec       *jwtx.Codec

	credentialService *service.CredentialService
	identityService   *service.IdentityService
	principalService  *service.PrincipalService

	// sweeper is nil when the revocation backend expires entries itself.
	sweeper *revocation.Sweeper

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewCodec([]byte(cfg.SecretKey), cfg.Issuer, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initRevocations(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.sweeper != nil {
		app.sweeper.Start()
	}

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the principal directory and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRevocations selects the revocation backend. Redis is required as soon
// as more than one instance serves traffic; the in-process store cannot see
// revocations made elsewhere.
func (app *Application) initRevocations() error {
	cutoffTTL := app.cfg.TokenTTL + time.Hour

	if app.cfg.RedisAddr == "" {
		mem := revocation.NewMemoryStore(cutoffTTL)
		app.revocations = mem
		app.sweeper = revocation.NewSweeper(mem, app.logger, app.cfg.SweepInterval)
		app.logger.Warn("using in-process revocation store, not safe for multi-instance deployments")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
	}

	// Redis expires blacklist entries itself, no sweeper needed.
	app.revocations = revocation.NewRedisStore(client, cutoffTTL)
	app.logger.Info("using redis revocation store", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.credentialService = &service.CredentialService{
		Codec:       app.codec,
		Store:       app.db,
		Revocations: app.revocations,
	}
	app.identityService = &service.IdentityService{Store: app.db}
	app.principalService = &service.PrincipalService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() error {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.revocations,
		app.logger,
	)

	router.CredentialService = app.credentialService
	router.IdentityService = app.identityService
	router.PrincipalService = app.principalService
	router.Cookies = httpapi.CookieConfig{
		Name:   app.cfg.CookieName,
		Secure: app.cfg.CookieSecure,
	}
	router.FrontendCallbackURL = app.cfg.FrontendCallbackURL

	if app.cfg.OAuth.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		provider, err := oidc.New(ctx, oidc.Config{
			ClientID:     app.cfg.OAuth.ClientID,
			ClientSecret: app.cfg.OAuth.ClientSecret,
			RedirectURL:  app.cfg.OAuth.RedirectURL,
			Scope:        app.cfg.OAuth.Scope,
			IssuerURL:    app.cfg.OAuth.IssuerURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize oauth provider: %w", err)
		}
		router.OAuthProvider = provider
	}

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
