package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ActivationModeEmail  = "email"
	ActivationModeDirect = "direct"

	MailProviderSES    = "ses"
	MailProviderResend = "resend"
	MailProviderLog    = "log"

	RevocationStorePostgres = "postgres"
	RevocationStoreRedis    = "redis"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	Lifecycle LifecycleConfig
	Mail      MailConfig
	Redis     RedisConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port             string
	Env              string
	LogLevel         string
	SentryDSN        string
	AllowedOrigins   []string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	AuthRateLimitRPM int
}

type AuthConfig struct {
	JWTSecret          string
	SessionTTL         time.Duration // 0 issues tokens without an exp claim
	SessionRememberTTL time.Duration
	RevocationStore    string
	CleanupInterval    time.Duration
	AdminEmail         string
	AdminPassword      string
}

// LifecycleConfig drives signup, activation and password reset.
type LifecycleConfig struct {
	ActivationMode string
	UIBaseURL      string
	SignupTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	BcryptCost     int
}

type MailConfig struct {
	Env          string // copied from ENV; the log transport redacts outside development
	Provider     string
	From         string
	AWSRegion    string
	ResendAPIKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "inkwell"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			Env:              env,
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			SentryDSN:        getEnv("SENTRY_DSN", ""),
			AllowedOrigins:   parseAllowedOrigins(env),
			ReadTimeout:      getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:      getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AuthRateLimitRPM: getEnvAsInt("AUTH_RATE_LIMIT_RPM", 10),
		},
		Auth: AuthConfig{
			JWTSecret:          jwtSecret,
			SessionTTL:         getEnvAsDuration("SESSION_TTL", time.Hour),
			SessionRememberTTL: getEnvAsDuration("SESSION_REMEMBER_TTL", 90*24*time.Hour),
			RevocationStore:    strings.ToLower(getEnv("REVOCATION_STORE", RevocationStorePostgres)),
			CleanupInterval:    getEnvAsDuration("CLEANUP_INTERVAL", time.Hour),
			AdminEmail:         getEnv("ADMIN_EMAIL", ""),
			AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		},
		Lifecycle: LifecycleConfig{
			ActivationMode: strings.ToLower(getEnv("ACTIVATION_MODE", defaultActivationMode(env))),
			UIBaseURL:      strings.TrimRight(getEnv("UI_BASE_URL", "http://localhost:3000"), "/"),
			SignupTokenTTL: getEnvAsDuration("SIGNUP_TOKEN_TTL", 24*time.Hour),
			ResetTokenTTL:  getEnvAsDuration("RESET_TOKEN_TTL", 3*time.Hour),
			BcryptCost:     getEnvAsInt("BCRYPT_COST", 12),
		},
		Mail: MailConfig{
			Env:          env,
			Provider:     strings.ToLower(getEnv("MAIL_PROVIDER", defaultMailProvider(env))),
			From:         getEnv("MAIL_FROM", "Inkwell <no-reply@inkwell.local>"),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Lifecycle.ActivationMode {
	case ActivationModeEmail, ActivationModeDirect:
	default:
		return fmt.Errorf("ACTIVATION_MODE must be %q or %q (got %q)",
			ActivationModeEmail, ActivationModeDirect, c.Lifecycle.ActivationMode)
	}

	switch c.Mail.Provider {
	case MailProviderSES:
	case MailProviderLog:
		if c.IsProduction() {
			return fmt.Errorf("MAIL_PROVIDER=log cannot be used in production")
		}
	case MailProviderResend:
		if c.Mail.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when MAIL_PROVIDER=resend")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
	}

	switch c.Auth.RevocationStore {
	case RevocationStorePostgres, RevocationStoreRedis:
	default:
		return fmt.Errorf("unknown REVOCATION_STORE %q", c.Auth.RevocationStore)
	}

	if c.Lifecycle.SignupTokenTTL <= 0 || c.Lifecycle.ResetTokenTTL <= 0 {
		return fmt.Errorf("SIGNUP_TOKEN_TTL and RESET_TOKEN_TTL must be positive")
	}
	if c.Auth.SessionTTL < 0 || c.Auth.SessionRememberTTL < 0 {
		return fmt.Errorf("session lifetimes cannot be negative")
	}

	return nil
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func defaultActivationMode(env string) string {
	if env == "production" {
		return ActivationModeEmail
	}
	return ActivationModeDirect
}

func defaultMailProvider(env string) string {
	if env == "production" {
		return MailProviderSES
	}
	return MailProviderLog
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if originsStr := getEnv("ALLOWED_ORIGINS", ""); originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	if env == "production" {
		return []string{}
	}

	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
