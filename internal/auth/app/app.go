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

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/access"
	httpapi "github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/http"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/postgres"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/sqlite"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/totpx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	redisKeyPrefix = "ehr-auth:"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	sessions   session.Store
	keyManager *jwtx.KeyManager
	cipher     *cryptox.SecretCipher
	totp       *totpx.Engine

	// Services
	audit               *service.AuditRecorder
	loginService        *service.LoginService
	sessionService      *service.SessionService
	mfaService          *service.MFAService
	profileService      *service.ProfileService
	userService         *service.UserAdminService
	staffService        *service.StaffService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService // nil with redis, which expires keys itself

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ehr-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initCipher(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initSessions(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Bootstrap creates the first administrator when the database is empty. A
// generated password is returned so the caller can show it once.
func (app *Application) Bootstrap(ctx context.Context) (service.BootstrapResult, error) {
	ctx = slogx.WithContext(ctx, app.logger)

	res, err := app.bootstrapService.EnsureAdmin(ctx)
	if errors.Is(err, service.ErrBootstrapAlready) {
		return service.BootstrapResult{}, nil
	}
	return res, err
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

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

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() {
	if app.sessions != nil {
		_ = app.sessions.Close()
	}
	_ = app.db.Close()
}

// initCipher loads the TOTP secret key. Production refuses to start without
// one.
func (app *Application) initCipher() error {
	key, err := cryptox.LoadSecretKey(app.cfg.EncryptionKey, app.cfg.Production())
	if err != nil {
		return fmt.Errorf("failed to load encryption key: %w", err)
	}

	cipher, err := cryptox.NewSecretCipher(key, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize secret cipher: %w", err)
	}
	app.cipher = cipher
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// OpenStore connects to the database selected by cfg without migrating it.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	}
}

// initSessions picks redis when REDIS_URL is set and memory otherwise. The
// memory store needs housekeeping, redis expires its keys itself.
func (app *Application) initSessions(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		mem := session.NewMemoryStore()
		app.sessions = mem
		app.housekeepingService = service.NewHousekeepingService(mem, app.logger, app.cfg.HousekeepingInterval)
		app.logger.Warn("using in-memory session store, revocations are lost on restart")
		return nil
	}

	rs, err := session.OpenRedis(ctx, app.cfg.RedisURL, redisKeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.sessions = rs
	app.logger.Info("using redis session store")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.totp = totpx.NewEngine()
	app.totp.Skew = app.cfg.TOTPSkew

	var replay session.ReplayGuard
	if app.cfg.TOTPReplayProtection {
		replay = app.sessions
	}

	app.audit = &service.AuditRecorder{Store: app.db}

	app.loginService = &service.LoginService{
		Store:  app.db,
		Cipher: app.cipher,
		TOTP:   app.totp,
		Replay: replay,
	}
	app.sessionService = &service.SessionService{
		Keys:        app.keyManager,
		Revocations: app.sessions,
		Audit:       app.audit,
		Issuer:      app.cfg.Issuer,
		TTL:         app.cfg.SessionTTL,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Audit:  app.audit,
		Cipher: app.cipher,
		TOTP:   app.totp,
		Issuer: app.cfg.TOTPIssuer,
		Replay: replay,
	}
	app.profileService = &service.ProfileService{Store: app.db, Audit: app.audit}
	app.userService = &service.UserAdminService{Store: app.db, Audit: app.audit}
	app.staffService = &service.StaffService{Store: app.db, Audit: app.audit}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Audit: app.audit,
		Admin: app.cfg.BootstrapAdmin,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		app.sessions,
		access.New(app.cfg.Access),
		BuildVersion,
		app.db,
		app.logger,
	)
	router.AllowOrigins(app.cfg.CORSAllowedOrigins)

	// Wire services to router
	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.MFAService = app.mfaService
	router.ProfileService = app.profileService
	router.UserService = app.userService
	router.StaffService = app.staffService
	router.Audit = app.audit
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
