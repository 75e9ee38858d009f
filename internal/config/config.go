package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Environment string
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Server      ServerConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Telemetry   TelemetryConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. The product event feed is
// only started when Enabled is true.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// AuthConfig holds credential and session token settings.
type AuthConfig struct {
	JWTSecret  string //nolint:gosec // G117: JWT signing secret config
	TokenTTL   time.Duration
	BcryptCost int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	// WebDir, when set, is a directory holding a prebuilt frontend bundle
	// served on unmatched GET routes.
	WebDir string
}

// RateLimitConfig holds token bucket settings. Auth limits are keyed by
// client IP, API limits by tenant.
type RateLimitConfig struct {
	AuthRPS   float64
	AuthBurst int
	APIRPS    float64
	APIBurst  int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// TelemetryConfig holds tracing settings. Tracing is off when OTLPEndpoint
// is empty.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("NESTHOST_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("NESTHOST_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisEnabled, err := getEnvBool("NESTHOST_REDIS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("NESTHOST_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tokenTTL, err := getEnvDuration("NESTHOST_JWT_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	bcryptCost, err := getEnvInt("NESTHOST_BCRYPT_COST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("NESTHOST_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("NESTHOST_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	shutdownTimeout, err := getEnvDuration("NESTHOST_SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	authRPS, err := getEnvFloat("NESTHOST_RATE_LIMIT_AUTH_RPS", 1)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	authBurst, err := getEnvInt("NESTHOST_RATE_LIMIT_AUTH_BURST", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	apiRPS, err := getEnvFloat("NESTHOST_RATE_LIMIT_API_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	apiBurst, err := getEnvInt("NESTHOST_RATE_LIMIT_API_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("NESTHOST_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Environment: getEnv("NESTHOST_ENV", "development"),
		Database: DatabaseConfig{
			Host:     getEnv("NESTHOST_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("NESTHOST_DB_USER", "nesthost"),
			Password: getEnv("NESTHOST_DB_PASSWORD", ""),
			DBName:   getEnv("NESTHOST_DB_NAME", "nesthost_dev"),
			SSLMode:  getEnv("NESTHOST_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Addr:     getEnv("NESTHOST_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("NESTHOST_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("NESTHOST_JWT_SECRET", ""),
			TokenTTL:   tokenTTL,
			BcryptCost: bcryptCost,
		},
		Server: ServerConfig{
			Addr:            getEnv("NESTHOST_SERVER_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CORSOrigins:     corsOrigins,
			WebDir:          getEnv("NESTHOST_WEB_DIR", ""),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   authRPS,
			AuthBurst: authBurst,
			APIRPS:    apiRPS,
			APIBurst:  apiBurst,
		},
		Log: LogConfig{
			Level:  getEnv("NESTHOST_LOG_LEVEL", "info"),
			Format: getEnv("NESTHOST_LOG_FORMAT", "json"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("NESTHOST_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("NESTHOST_SERVICE_NAME", "nesthost"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from path into the environment when the file
// exists. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	return nil
}

// IsProduction reports whether NESTHOST_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.Auth.JWTSecret == "" {
		return errors.New("NESTHOST_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("NESTHOST_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && c.IsProduction() {
		log.Warn().Msg("NESTHOST_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("NESTHOST_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("NESTHOST_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("NESTHOST_JWT_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("NESTHOST_BCRYPT_COST must be 4-31, got %d", c.Auth.BcryptCost)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("NESTHOST_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("NESTHOST_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("NESTHOST_SERVER_SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.RateLimit.AuthRPS <= 0 {
		return fmt.Errorf("NESTHOST_RATE_LIMIT_AUTH_RPS must be positive, got %g", c.RateLimit.AuthRPS)
	}
	if c.RateLimit.AuthBurst < 1 {
		return fmt.Errorf("NESTHOST_RATE_LIMIT_AUTH_BURST must be >= 1, got %d", c.RateLimit.AuthBurst)
	}
	if c.RateLimit.APIRPS <= 0 {
		return fmt.Errorf("NESTHOST_RATE_LIMIT_API_RPS must be positive, got %g", c.RateLimit.APIRPS)
	}
	if c.RateLimit.APIBurst < 1 {
		return fmt.Errorf("NESTHOST_RATE_LIMIT_API_BURST must be >= 1, got %d", c.RateLimit.APIBurst)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("NESTHOST_LOG_LEVEL: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("NESTHOST_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
