package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"focus-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingSecret is returned when a signing secret is not configured.
var ErrMissingSecret = errors.New("signing secret is not configured")

// Error is a fatal configuration problem. The process must not serve traffic.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvProduction = "production"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8081"`

	// Credential store
	DBDriver     string        `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost       string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort       string        `envconfig:"DB_PORT" default:"5432"`
	DBUser       string        `envconfig:"DB_USER" default:"postgres"`
	DBName       string        `envconfig:"DB_NAME" default:"focus"`
	DBSSLMode    string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns   int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTime   time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	DBPassword   string        `envconfig:"DB_PASSWORD"`
	SQLitePath   string        `envconfig:"SQLITE_PATH" default:"focus.db"`
	AutoMigrate  bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	ConnAttempts uint64        `envconfig:"CONNECT_ATTEMPTS" default:"20"`
	ConnDelay    time.Duration `envconfig:"CONNECT_RETRY_DELAY" default:"3s"`

	// Redis backs the auth endpoint rate limiter. Empty address disables it.
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RateLimit       int           `envconfig:"AUTH_RATE_LIMIT" default:"10"`
	RateLimitWindow time.Duration `envconfig:"AUTH_RATE_LIMIT_WINDOW" default:"1m"`

	// RabbitMQ receives user.registered events. Empty URL disables publishing.
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	// JWT settings. Secrets may also come from /run/secrets/{jwt_secret,jwt_refresh_secret}.
	JWTSecret                string   `envconfig:"JWT_SECRET"`
	JWTExpirationTime        Lifetime `envconfig:"JWT_EXPIRATION_TIME" required:"true"`
	JWTRefreshSecret         string   `envconfig:"JWT_REFRESH_SECRET"`
	JWTRefreshExpirationTime Lifetime `envconfig:"JWT_REFRESH_EXPIRATION_TIME" required:"true"`
	JWTIssuer                string   `envconfig:"JWT_ISSUER" default:"focus-server-auth"`
	PasswordPepper           string   `envconfig:"PASSWORD_PEPPER"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// TokenConfig is the secret and lifetime of one token kind.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// JWTConfig is the immutable token configuration handed to the signer and auth service.
type JWTConfig struct {
	Issuer  string
	Access  TokenConfig
	Refresh TokenConfig
}

// JWT returns a copy of the token configuration.
func (c *Config) JWT() JWTConfig {
	return JWTConfig{
		Issuer: c.JWTIssuer,
		Access: TokenConfig{
			Secret: []byte(c.JWTSecret),
			TTL:    c.JWTExpirationTime.Duration(),
		},
		Refresh: TokenConfig{
			Secret: []byte(c.JWTRefreshSecret),
			TTL:    c.JWTRefreshExpirationTime.Duration(),
		},
	}
}

// IsProduction reports whether cookies must be Secure and cross-site capable.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// PostgresDSN builds the connection string for pgx and golang-migrate.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Validate checks the invariants the service relies on. Every failure is an *Error.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return &Error{Key: "JWT_SECRET", Err: ErrMissingSecret}
	}
	if c.JWTRefreshSecret == "" {
		return &Error{Key: "JWT_REFRESH_SECRET", Err: ErrMissingSecret}
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return &Error{Key: "JWT_REFRESH_SECRET", Err: errors.New("must differ from JWT_SECRET")}
	}
	if c.JWTExpirationTime <= 0 {
		return &Error{Key: "JWT_EXPIRATION_TIME", Err: ErrInvalidLifetime}
	}
	if c.JWTRefreshExpirationTime <= 0 {
		return &Error{Key: "JWT_REFRESH_EXPIRATION_TIME", Err: ErrInvalidLifetime}
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return &Error{Key: "DB_DRIVER", Err: fmt.Errorf("unsupported driver %q", c.DBDriver)}
	}
	return nil
}

// LoadConfig loads configuration from an optional .env file, the environment and Docker secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &Error{Key: "env", Err: err}
	}

	// Signing secrets: environment first, Docker secret file as fallback.
	if secret, err := utils.EnvOrSecret(cfg.JWTSecret, "jwt_secret"); err == nil {
		cfg.JWTSecret = secret
	}
	if secret, err := utils.EnvOrSecret(cfg.JWTRefreshSecret, "jwt_refresh_secret"); err == nil {
		cfg.JWTRefreshSecret = secret
	}

	// Optional secrets.
	if v, err := utils.EnvOrSecret(cfg.DBPassword, "db_password"); err == nil {
		cfg.DBPassword = v
	}
	if v, err := utils.EnvOrSecret(cfg.RedisPassword, "redis_password"); err == nil {
		cfg.RedisPassword = v
	}
	if v, err := utils.EnvOrSecret(cfg.PasswordPepper, "password_pepper"); err == nil {
		cfg.PasswordPepper = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
