package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Auth     AuthConfig
	Projects ProjectsConfig
	App      AppConfig

	// Warnings lists values that were invalid and replaced by defaults.
	// They are logged once a logger exists.
	Warnings []string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

type AuthConfig struct {
	SessionTTL          time.Duration
	MinPasswordLength   int
	RequireConfirmation bool
	SignInRatePerMinute int
}

type ProjectsConfig struct {
	PurgeSchedule  string
	PurgeRetention time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

// ClientConfig configures the eprod CLI and any other consumer of the client core.
type ClientConfig struct {
	APIURL                 string
	RequestTimeout         time.Duration
	SessionFile            string
	AllowUnconfirmedWrites bool
	App                    AppConfig
	Warnings               []string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: env.asInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       env.asInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Auth: AuthConfig{
			SessionTTL:          env.asDuration("AUTH_SESSION_TTL", 7*24*time.Hour),
			MinPasswordLength:   env.asInt("AUTH_MIN_PASSWORD_LENGTH", 6),
			RequireConfirmation: env.asBool("AUTH_REQUIRE_CONFIRMATION", true),
			SignInRatePerMinute: env.asInt("AUTH_SIGNIN_RATE_PER_MIN", 10),
		},
		Projects: ProjectsConfig{
			PurgeSchedule:  getEnv("PROJECTS_PURGE_SCHEDULE", "0 0 0 * * *"),
			PurgeRetention: env.asDuration("PROJECTS_PURGE_RETENTION", 30*24*time.Hour),
		},
		App: loadApp(),
	}
	cfg.Warnings = env.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.Auth.MinPasswordLength < 6 {
		return fmt.Errorf("AUTH_MIN_PASSWORD_LENGTH must be at least 6")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("AUTH_SESSION_TTL must be positive")
	}

	return nil
}

// LoadClient reads the client-side settings. It never requires server secrets.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &ClientConfig{
		APIURL:                 strings.TrimRight(getEnv("EPROD_API_URL", "http://localhost:8080"), "/"),
		RequestTimeout:         env.asDuration("EPROD_REQUEST_TIMEOUT", 15*time.Second),
		SessionFile:            getEnv("EPROD_SESSION_FILE", ""),
		AllowUnconfirmedWrites: env.asBool("EPROD_ALLOW_UNCONFIRMED_WRITES", true),
		App:                    loadApp(),
	}
	cfg.Warnings = env.warnings

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("EPROD_API_URL is required")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("EPROD_REQUEST_TIMEOUT must be positive")
	}

	return cfg, nil
}

func loadApp() AppConfig {
	return AppConfig{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed values and records the ones it had to replace.
type envReader struct {
	warnings []string
}

func (e *envReader) warn(key string, defaultValue any) {
	e.warnings = append(e.warnings, fmt.Sprintf("invalid value for %s, using default: %v", key, defaultValue))
}

func (e *envReader) asInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.warn(key, defaultValue)
		return defaultValue
	}

	return value
}

func (e *envReader) asBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.warn(key, defaultValue)
		return defaultValue
	}

	return value
}

func (e *envReader) asDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		e.warn(key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
