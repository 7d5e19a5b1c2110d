package app

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingpong42/account/internal/account/cache"
	"github.com/pingpong42/account/internal/account/cache/memory"
	"github.com/pingpong42/account/internal/account/cache/redis"
	httpapi "github.com/pingpong42/account/internal/account/http"
	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/internal/account/store"
	"github.com/pingpong42/account/internal/account/store/drivers/sqlite"
	"github.com/pingpong42/account/pkg/cryptox"
	"github.com/pingpong42/account/pkg/jwtx"
	"github.com/pingpong42/account/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the account service together: store, cache, services
// and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	tickets cache.Cache
	codec   *jwtx.HS256

	oauthService    *service.OAuthService
	identityService *service.IdentityService
	tokenService    *service.TokenService
	twoFAService    *service.TwoFAService
	housekeeping    *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "account-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("ACCOUNT_SIGNING_SECRET is required")
	}

	codec, err := jwtx.NewHS256([]byte(cfg.SigningSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.tickets.Close()
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("account service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests and releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down account service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.tickets.Close(); err != nil {
		app.logger.Error("error closing ticket cache", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("account service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
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

func (app *Application) initCache() error {
	switch app.cfg.CacheBackend {
	case "redis":
		c, err := redis.New(context.Background(), redis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
			Prefix:   "account",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		app.tickets = c
		app.logger.Info("ticket cache backend: redis", "addr", app.cfg.RedisAddr)
	default:
		app.tickets = memory.New(app.cfg.TicketTTL)
		app.logger.Info("ticket cache backend: memory")
	}
	return nil
}

func (app *Application) initServices() error {
	sealer, err := newSealer(app.cfg)
	if err != nil {
		return err
	}

	app.oauthService = &service.OAuthService{
		ClientID:     app.cfg.FTClientID,
		ClientSecret: app.cfg.FTClientSecret,
		RedirectURI:  app.cfg.FTRedirectURI,
		Timeout:      app.cfg.OAuthTimeout,
	}

	app.identityService = &service.IdentityService{Store: app.db}

	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Store:      app.db,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.twoFAService = &service.TwoFAService{
		Store:     app.db,
		Cache:     app.tickets,
		Sealer:    sealer,
		Issuer:    app.cfg.Issuer,
		TicketTTL: app.cfg.TicketTTL,
	}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// newSealer derives the secret-sealing key. An explicit base64 key wins;
// otherwise the key is derived from the signing secret so single-secret
// deployments still get sealed storage.
func newSealer(cfg Config) (*cryptox.SecretBox, error) {
	if cfg.SecretBoxKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.SecretBoxKey)
		if err != nil {
			return nil, fmt.Errorf("ACCOUNT_SECRETBOX_KEY is not valid base64: %w", err)
		}
		return cryptox.NewSecretBox(key)
	}

	derived := sha256.Sum256([]byte("secretbox:" + cfg.SigningSecret))
	return cryptox.NewSecretBox(derived[:])
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.db,
		app.tickets,
		app.logger,
		app.cfg.AllowedOrigins,
	)

	router.OAuthService = app.oauthService
	router.IdentityService = app.identityService
	router.TokenService = app.tokenService
	router.TwoFAService = app.twoFAService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
