package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultAPIBaseURL = "http://localhost:8000"

	IntegrationREST = "rest"
	IntegrationBaaS = "baas"
)

type Config struct {
	API           APIConfig           `mapstructure:"api"`
	BaaS          BaaSConfig          `mapstructure:"baas"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Session       SessionConfig       `mapstructure:"session"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	StubServer    StubServerConfig    `mapstructure:"stub_server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type APIConfig struct {
	BaseURL     string `mapstructure:"base_url" envconfig:"NEXT_PUBLIC_API_URL" default:"http://localhost:8000" validate:"required,url"`
	Integration string `mapstructure:"integration" envconfig:"API_INTEGRATION" default:"rest" validate:"required,oneof=rest baas"`
	PageSize    int    `mapstructure:"page_size" envconfig:"API_PAGE_SIZE" default:"10" validate:"min=1,max=500"`
	// Zero means no client-side timeout.
	RequestTimeout time.Duration `mapstructure:"request_timeout" envconfig:"API_REQUEST_TIMEOUT"`
}

type BaaSConfig struct {
	URL     string `mapstructure:"url" envconfig:"NEXT_PUBLIC_SUPABASE_URL"`
	AnonKey string `mapstructure:"anon_key" envconfig:"NEXT_PUBLIC_SUPABASE_ANON_KEY"`
}

type DatabaseConfig struct {
	Source          string        `mapstructure:"source" envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"DATABASE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"30m"`
}

type SessionConfig struct {
	Path string `mapstructure:"path" envconfig:"SESSION_PATH"`
}

type NotificationsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" envconfig:"NOTIFICATIONS_POLL_INTERVAL" default:"30s" validate:"min=1s"`
}

type StubServerConfig struct {
	Port         int           `mapstructure:"port" envconfig:"STUB_SERVER_PORT" default:"8000" validate:"min=1,max=65535"`
	JWTSecret    string        `mapstructure:"jwt_secret" envconfig:"STUB_SERVER_JWT_SECRET" default:"campus-resources-local-development-secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" envconfig:"STUB_SERVER_TOKEN_TTL" default:"8h"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"STUB_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"STUB_SERVER_WRITE_TIMEOUT" default:"15s"`
}

type ObservabilityConfig struct {
	Env     string        `mapstructure:"env" envconfig:"APP_ENV" default:"development"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOG_LEVEL" default:"info" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" envconfig:"LOG_FORMAT" default:"text" validate:"omitempty,oneof=json text"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"METRICS_ENABLED"`
	Addr    string `mapstructure:"addr" envconfig:"METRICS_ADDR" default:":9102" validate:"required_if=Enabled true"`
}

// LoadConfigFromEnv reads a .env file when present, then the process environment.
func LoadConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	sections := []interface{}{
		&cfg.API,
		&cfg.BaaS,
		&cfg.Database,
		&cfg.Session,
		&cfg.Notifications,
		&cfg.StubServer,
		&cfg.Observability,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("error reading environment: %w", err)
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills values a config file may leave blank.
func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Integration == "" {
		c.API.Integration = IntegrationREST
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = 10
	}
	if c.Notifications.PollInterval == 0 {
		c.Notifications.PollInterval = 30 * time.Second
	}
	if c.Session.Path == "" {
		c.Session.Path = DefaultSessionPath()
	}
	if c.StubServer.Port == 0 {
		c.StubServer.Port = 8000
	}
	if c.StubServer.TokenTTL == 0 {
		c.StubServer.TokenTTL = 8 * time.Hour
	}
}

// DefaultSessionPath is where the signed-in token is kept between runs.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "campus-resources", "session.json")
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		errs = append(errs, fmt.Sprintf("fields: %v", err))
	}

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if err := c.BaaS.Validate(c.API.Integration); err != nil {
		errs = append(errs, fmt.Sprintf("baas config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %s: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", u.Scheme)
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout cannot be negative")
	}
	return nil
}

func (c *BaaSConfig) Validate(integration string) error {
	if integration != IntegrationBaaS {
		return nil
	}
	if c.URL == "" {
		return errors.New("url is required when integration is baas")
	}
	if c.AnonKey == "" {
		return errors.New("anon_key is required when integration is baas")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}
