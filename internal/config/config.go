package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the portal backend.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Session      SessionConfig
	Notification NotificationConfig
	Payments     PaymentsConfig
	Uploads      UploadsConfig
	CORS         CORSConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicURL             string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ConnectAttempts int
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Name        string
	Env         string
	Development bool
}

// Password storage schemes understood by the directory.
const (
	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"
)

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	PasswordScheme          string
	BcryptCost              int
	JWTSecret               string
	PasswordResetTTLMinutes int
	MinPasswordLength       int
	SignupMaxAttempts       int
	SignupRetryDelayMillis  int
}

// Session token modes.
const (
	TokenModeLegacy = "legacy"
	TokenModeJWT    = "jwt"
)

// SessionConfig controls the remembered-login slot.
type SessionConfig struct {
	TokenMode  string
	KeyPrefix  string
	CookieName string
	TTLHours   int
}

// NotificationConfig holds email delivery settings.
type NotificationConfig struct {
	EmailFrom     string
	EmailAPIURL   string
	EmailAPIKey   string
	ResetLinkBase string
}

// PaymentsConfig holds webhook verification settings.
type PaymentsConfig struct {
	WebhookSecret string
}

// UploadsConfig controls image upload storage.
type UploadsConfig struct {
	Dir          string
	PublicPrefix string
	MaxBytes     int64
}

// CORSConfig lists origins allowed to call the public endpoints.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ontimely-admin-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			PublicURL:             getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
			MaxConns:        maxConns,
			MinConns:        minConns,
			RunMigrations:   runMigrations,
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  connMaxIdle,
			ConnMaxLifeSec:  connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Name:        getEnv("APP_NAME", "ontimely-admin-portal"),
			Env:         getEnv("APP_ENV", "development"),
			Development: getEnv("APP_ENV", "development") == "development",
		},
		Auth: AuthConfig{
			PasswordScheme:          strings.ToLower(getEnv("AUTH_PASSWORD_SCHEME", PasswordSchemePlain)),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 60),
			MinPasswordLength:       getEnvAsInt("AUTH_MIN_PASSWORD_LENGTH", 8),
			SignupMaxAttempts:       getEnvAsInt("AUTH_SIGNUP_MAX_ATTEMPTS", 3),
			SignupRetryDelayMillis:  getEnvAsInt("AUTH_SIGNUP_RETRY_DELAY_MS", 1000),
		},
		Session: SessionConfig{
			TokenMode:  strings.ToLower(getEnv("SESSION_TOKEN_MODE", TokenModeLegacy)),
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "ontimely:session:"),
			CookieName: getEnv("SESSION_CLIENT_COOKIE", "ontimely_client"),
			TTLHours:   getEnvAsInt("SESSION_TTL_HOURS", 0),
		},
		Notification: NotificationConfig{
			EmailFrom:     getEnv("NOTIFY_EMAIL_FROM", "noreply@ontimely.app"),
			EmailAPIURL:   getEnv("NOTIFY_EMAIL_API_URL", ""),
			EmailAPIKey:   os.Getenv("NOTIFY_EMAIL_API_KEY"),
			ResetLinkBase: getEnv("NOTIFY_RESET_LINK_BASE", "http://localhost:5173/reset-password"),
		},
		Payments: PaymentsConfig{
			WebhookSecret: os.Getenv("PAYMENTS_WEBHOOK_SECRET"),
		},
		Uploads: UploadsConfig{
			Dir:          getEnv("UPLOADS_DIR", "uploads"),
			PublicPrefix: getEnv("UPLOADS_PUBLIC_PREFIX", "/media"),
			MaxBytes:     int64(getEnvAsInt("UPLOADS_MAX_BYTES", 5*1024*1024)),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects option values the services cannot work with.
func (c *Config) Validate() error {
	switch c.Auth.PasswordScheme {
	case PasswordSchemePlain, PasswordSchemeBcrypt:
	default:
		return fmt.Errorf("invalid AUTH_PASSWORD_SCHEME %q", c.Auth.PasswordScheme)
	}
	switch c.Session.TokenMode {
	case TokenModeLegacy, TokenModeJWT:
	default:
		return fmt.Errorf("invalid SESSION_TOKEN_MODE %q", c.Session.TokenMode)
	}
	if c.Auth.SignupMaxAttempts < 1 {
		return fmt.Errorf("AUTH_SIGNUP_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns the session lifetime, zero meaning the record never expires.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// SignupRetryDelay returns the base delay of the linear signup backoff.
func (a AuthConfig) SignupRetryDelay() time.Duration {
	return time.Duration(a.SignupRetryDelayMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
