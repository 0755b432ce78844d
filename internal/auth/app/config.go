package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/access"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
)

var ErrMissingEncryptionKey = errors.New("ENCRYPTION_KEY is required when ENV=prod")

// maxTOTPSkew bounds the accepted steps either side of now.
const maxTOTPSkew = 10

type Config struct {
	Env                 string        `toml:"env"`        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        `toml:"log_level"`  // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        `toml:"log_format"` // Log format (json, text) (default: json)
	Port                int           `toml:"port"`       // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration `toml:"shutdown_grace_period"`

	DatabaseDriver string `toml:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseFile   string `toml:"database_file"`   // SQLite file (default: ./auth.db)
	DatabaseURL    string `toml:"database_url"`    // Postgres DSN, required for the postgres driver

	PepperFile    string        `toml:"pepper_file"`    // Pepper for password hashing (default: ./pepper)
	EncryptionKey string        `toml:"encryption_key"` // TOTP secret key material, required in prod
	Issuer        string        `toml:"session_issuer"` // iss claim of session tokens
	SessionTTL    time.Duration `toml:"session_ttl"`    // default: 8h

	TOTPIssuer           string `toml:"totp_issuer"` // Shown by authenticator apps
	TOTPSkew             uint   `toml:"totp_skew"`   // Accepted steps either side (default: 1)
	TOTPReplayProtection bool   `toml:"totp_replay_protection"`

	RedisURL             string        `toml:"redis_url"` // Sessions live in memory when empty
	CORSAllowedOrigins   []string      `toml:"cors_allowed_origins"`
	HousekeepingInterval time.Duration `toml:"housekeeping_interval"`

	BootstrapAdmin domain.BootstrapAdmin `toml:"bootstrap_admin"`

	Access access.Paths `toml:"access"`
}

// Production reports whether the service must fail closed on missing secrets.
func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

func defaultConfig() Config {
	return Config{
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		DatabaseDriver:       "sqlite",
		DatabaseFile:         "auth.db",
		PepperFile:           "pepper",
		Issuer:               "ehr-auth",
		SessionTTL:           8 * time.Hour,
		TOTPIssuer:           "EHR Portal",
		TOTPSkew:             1,
		TOTPReplayProtection: true,
		HousekeepingInterval: 10 * time.Minute,
		BootstrapAdmin: domain.BootstrapAdmin{
			NationalCode: "0000000000",
			PhoneNumber:  "09120000000",
			FullName:     "Admin User",
		},
	}
}

// LoadConfig reads the optional TOML file named by CONFIG_FILE and then
// applies environment variables on top of it.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)

	cfg.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseFile = getEnvOrDefault("DATABASE_FILE", cfg.DatabaseFile)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseURL)

	cfg.PepperFile = getEnvOrDefault("PEPPER_FILE", cfg.PepperFile)
	cfg.EncryptionKey = getEnvOrDefault("ENCRYPTION_KEY", getEnvOrDefault("AUTH_SECRET", cfg.EncryptionKey))
	cfg.Issuer = getEnvOrDefault("SESSION_ISSUER", cfg.Issuer)
	cfg.SessionTTL = getEnvDurationOrDefault("SESSION_TTL", cfg.SessionTTL)

	cfg.TOTPIssuer = getEnvOrDefault("TOTP_ISSUER", cfg.TOTPIssuer)
	skew := getEnvIntOrDefault("TOTP_SKEW", int(cfg.TOTPSkew))
	if skew < 0 || skew > maxTOTPSkew {
		return Config{}, fmt.Errorf("TOTP_SKEW must be between 0 and %d, got %d", maxTOTPSkew, skew)
	}
	cfg.TOTPSkew = uint(skew)
	cfg.TOTPReplayProtection = getEnvBoolOrDefault("TOTP_REPLAY_PROTECTION", cfg.TOTPReplayProtection)

	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.CORSAllowedOrigins = getEnvListOrDefault("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	cfg.BootstrapAdmin.NationalCode = getEnvOrDefault("BOOTSTRAP_ADMIN_NATIONAL_CODE", cfg.BootstrapAdmin.NationalCode)
	cfg.BootstrapAdmin.PhoneNumber = getEnvOrDefault("BOOTSTRAP_ADMIN_PHONE", cfg.BootstrapAdmin.PhoneNumber)
	cfg.BootstrapAdmin.FullName = getEnvOrDefault("BOOTSTRAP_ADMIN_NAME", cfg.BootstrapAdmin.FullName)
	cfg.BootstrapAdmin.Password = getEnvOrDefault("BOOTSTRAP_ADMIN_PASSWORD", cfg.BootstrapAdmin.Password)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.Production() && strings.TrimSpace(c.EncryptionKey) == "" {
		return ErrMissingEncryptionKey
	}
	if c.TOTPSkew > maxTOTPSkew {
		return fmt.Errorf("totp_skew must be at most %d", maxTOTPSkew)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
