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

	httpapi "github.com/Ma16q/MotriLog/internal/auth/http"
	"github.com/Ma16q/MotriLog/internal/auth/notify"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/internal/auth/store/drivers/redis"
	"github.com/Ma16q/MotriLog/internal/auth/store/drivers/sqlite"
	"github.com/Ma16q/MotriLog/pkg/cryptox"
	"github.com/Ma16q/MotriLog/pkg/httpx"
	"github.com/Ma16q/MotriLog/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the MotriLog auth service and all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions store.Sessions
	redis    *redis.SessionStore // nil unless SESSION_STORE=redis
	notifier *notify.Gateway

	// Services
	otpService          *service.OTPService
	sessionManager      *service.SessionManager
	guard               *service.Guard
	authService         *service.AuthService
	userService         *service.UserService
	adminService        *service.AdminService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	notifier, err := NewNotifier(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.notifier = notifier

	app.initServices()
	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "motrilog-auth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// OpenDatabase opens the SQLite store and applies pending migrations.
func OpenDatabase(cfg Config) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// NewNotifier selects the delivery transport named by NOTIFY_DRIVER.
// A telegram driver without a bot token falls back to disabled delivery,
// which turns every login into a password-only login.
func NewNotifier(cfg Config, logger *slog.Logger) (*notify.Gateway, error) {
	var transport notify.Transport

	switch cfg.NotifyDriver {
	case NotifyTelegram:
		if cfg.TelegramBotToken == "" {
			logger.Warn("TELEGRAM_BOT_TOKEN not set, second factor delivery disabled")
			transport = notify.Disabled{}
			break
		}
		t, err := notify.NewTelegramTransport(cfg.TelegramBotToken, cfg.TelegramAPIURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram transport: %w", err)
		}
		transport = t
	case NotifyEmail:
		t, err := notify.NewEmailTransport(notify.EmailConfig{
			SMTPHost:  cfg.SMTPHost,
			SMTPPort:  cfg.SMTPPort,
			SMTPUser:  cfg.SMTPUser,
			SMTPPass:  cfg.SMTPPass,
			FromEmail: cfg.SMTPFrom,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize email transport: %w", err)
		}
		transport = t
	case NotifyLog:
		transport = notify.LogTransport{Logger: logger}
	default:
		transport = notify.Disabled{}
	}

	logger.Info("notification transport selected", "driver", transport.Name())
	return notify.NewGateway(transport, logger), nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("motrilog auth starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		app.closeStores()
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

// Shutdown drains in-flight requests, stops housekeeping and closes stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down motrilog auth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("motrilog auth stopped")
	return nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) closeStores() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

func (app *Application) initDatabase() error {
	db, err := OpenDatabase(app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initSessions picks the session backend. SQLite keeps sessions next to
// users; redis moves them out of the database.
func (app *Application) initSessions() error {
	if app.cfg.SessionStore != SessionStoreRedis {
		app.sessions = app.db.Sessions()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs, err := redis.New(ctx, redis.Config{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
		Prefix:   app.cfg.RedisPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = rs
	app.sessions = rs
	app.logger.Info("session store: redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
	return nil
}

func (app *Application) initServices() {
	app.otpService = &service.OTPService{Store: app.db}
	app.sessionManager = service.NewSessionManager(app.sessions, app.cfg.SessionTTL, nil)
	app.guard = &service.Guard{Store: app.db, Sessions: app.sessionManager}

	app.authService = &service.AuthService{
		Store:    app.db,
		OTP:      app.otpService,
		Sessions: app.sessionManager,
		Notifier: app.notifier,
	}
	app.userService = &service.UserService{Store: app.db, Notifier: app.notifier}
	app.adminService = &service.AdminService{
		Store:    app.db,
		Guard:    app.guard,
		Notifier: app.notifier,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.sessions,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() error {
	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	var sessions httpapi.Pinger
	if app.redis != nil {
		sessions = app.redis
	}

	router := httpapi.NewRouter(BuildVersion, app.db, sessions, app.logger)
	router.Cookie.Secure = app.cfg.SessionCookieSecure
	router.Cookie.TTL = app.cfg.SessionTTL
	router.Proxies = proxies

	router.AuthService = app.authService
	router.UserService = app.userService
	router.AdminService = app.adminService
	router.Guard = app.guard
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
