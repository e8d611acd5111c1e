package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Session  SessionConfig
	PSA      PSAConfig
	TextGen  TextGenConfig
	Payment  PaymentConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. The audit log is disabled when DSN is empty.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr                string
	Password            string
	DB                  int
	DialTimeoutSeconds  int
	ReadTimeoutSeconds  int
	WriteTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
	Env     string
}

// SessionConfig controls how workflow sessions are addressed and persisted.
type SessionConfig struct {
	Secret     string
	Backend    string
	CookieName string
	TTLMinutes int
}

// PSAConfig holds credentials and fixed values for the PSA API.
type PSAConfig struct {
	BaseURL            string
	ClientID           string
	CompanyID          string
	PublicKey          string
	PrivateKey         string
	APIVersion         string
	TimeoutSeconds     int
	RateLimitPerSecond float64
	Territory          string
	SiteName           string
	CompanyTypeID      int
	TicketBoard        string
	TicketStatus       string
}

// TextGenConfig configures the chat completion service.
type TextGenConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// PaymentConfig holds the amounts shown on the payment hand-off screen.
type PaymentConfig struct {
	DepositCents int64
	FeeCents     int64
}

const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"

	defaultSessionSecret = "supersecret"
	envProduction        = "production"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rateLimit, err := strconv.ParseFloat(getEnv("PSA_RATE_LIMIT_PER_SECOND", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PSA_RATE_LIMIT_PER_SECOND: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "checkin-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 90),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:                getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:            os.Getenv("REDIS_PASSWORD"),
			DB:                  redisDB,
			DialTimeoutSeconds:  getEnvAsInt("REDIS_DIAL_TIMEOUT_SECONDS", 5),
			ReadTimeoutSeconds:  getEnvAsInt("REDIS_READ_TIMEOUT_SECONDS", 3),
			WriteTimeoutSeconds: getEnvAsInt("REDIS_WRITE_TIMEOUT_SECONDS", 3),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", defaultSessionSecret),
			Backend:    getEnv("SESSION_BACKEND", SessionBackendRedis),
			CookieName: getEnv("SESSION_COOKIE_NAME", "checkin_session"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 120),
		},
		PSA: PSAConfig{
			BaseURL:            os.Getenv("PSA_BASE_URL"),
			ClientID:           os.Getenv("PSA_CLIENT_ID"),
			CompanyID:          os.Getenv("PSA_COMPANY_ID"),
			PublicKey:          os.Getenv("PSA_PUBLIC_KEY"),
			PrivateKey:         os.Getenv("PSA_PRIVATE_KEY"),
			APIVersion:         os.Getenv("PSA_API_VERSION"),
			TimeoutSeconds:     getEnvAsInt("PSA_TIMEOUT_SECONDS", 30),
			RateLimitPerSecond: rateLimit,
			Territory:          getEnv("PSA_TERRITORY", "Hollister"),
			SiteName:           getEnv("PSA_SITE_NAME", "Main Office"),
			CompanyTypeID:      getEnvAsInt("PSA_COMPANY_TYPE_ID", 1),
			TicketBoard:        getEnv("PSA_TICKET_BOARD", "RX Professional Services"),
			TicketStatus:       getEnv("PSA_TICKET_STATUS", "New (portal)"),
		},
		TextGen: TextGenConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        os.Getenv("OPENAI_BASE_URL"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4"),
			MaxTokens:      getEnvAsInt("OPENAI_MAX_TOKENS", 300),
			TimeoutSeconds: getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 30),
		},
		Payment: PaymentConfig{
			DepositCents: int64(getEnvAsInt("PAYMENT_DEPOSIT_CENTS", 10000)),
			FeeCents:     int64(getEnvAsInt("PAYMENT_FEE_CENTS", 300)),
		},
	}

	if cfg.App.Env == envProduction && cfg.Session.Secret == defaultSessionSecret {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}

	cfg.Logger.Service = cfg.App.Name
	cfg.Logger.Env = cfg.App.Env
	return cfg, nil
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

// TTL returns how long an idle session survives.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Timeout returns the per-call deadline for outbound PSA requests.
func (p PSAConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Timeout returns the deadline for one completion request.
func (t TextGenConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
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
