package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Ma16q/MotriLog/pkg/httpx"
)

const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"

	NotifyTelegram = "telegram"
	NotifyEmail    = "email"
	NotifyLog      = "log"
	NotifyNone     = "none"
)

type Config struct {
	DatabaseFile string `env:"MOTRILOG_DATABASE_FILE" envDefault:"motrilog.db"` // SQLite database path
	PepperFile   string `env:"MOTRILOG_PEPPER_FILE" envDefault:"pepper"`        // Password hashing pepper, created on first use

	Env       string `env:"ENV" envDefault:"dev"`         // dev, staging, prod
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// Reverse proxies allowed to set X-Forwarded-For / X-Real-IP, as
	// addresses or CIDR ranges. Empty trusts no forwarding headers.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	SessionStore        string        `env:"SESSION_STORE" envDefault:"sqlite"` // sqlite, redis
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_SESSION_PREFIX" envDefault:"motrilog:session:"`

	NotifyDriver     string `env:"NOTIFY_DRIVER" envDefault:"telegram"` // telegram, email, log, none
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL   string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM"`
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.DatabaseFile == "" {
		return fmt.Errorf("MOTRILOG_DATABASE_FILE is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.HousekeepingInterval <= 0 {
		return fmt.Errorf("HOUSEKEEPING_INTERVAL must be positive")
	}

	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	switch c.SessionStore {
	case SessionStoreSQLite:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}

	switch c.NotifyDriver {
	case NotifyTelegram, NotifyLog, NotifyNone:
	case NotifyEmail:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required when NOTIFY_DRIVER=email")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_DRIVER %q", c.NotifyDriver)
	}

	return nil
}
