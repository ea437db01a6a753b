// Package config resolves the startup configuration consumed by the
// connection lifecycle. Values come from joinery.yaml and JOINERY_*
// environment overrides; the retry, TLS, and pool sections are passed
// through to the connection collaborator without interpretation.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested config keys to environment variable names,
// so database.retry.max_attempts reads JOINERY_DATABASE_RETRY_MAX_ATTEMPTS.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Auth modes accepted for the database connection.
const (
	AuthModePassword = "password"
	AuthModeTrust    = "trust"
)

// Config is the resolved startup configuration.
type Config struct {
	Database     DatabaseConfig `mapstructure:"database"`
	Server       ServerConfig   `mapstructure:"server"`
	Auth         AuthConfig     `mapstructure:"auth"`
	Logging      LoggingConfig  `mapstructure:"logging"`
	EnsureSchema bool           `mapstructure:"ensure_schema"`
}

// DatabaseConfig identifies the connection target and credentials.
type DatabaseConfig struct {
	Host     string      `mapstructure:"host"`
	Port     int         `mapstructure:"port"`
	Name     string      `mapstructure:"name"`
	User     string      `mapstructure:"user"`
	Password string      `mapstructure:"password"`
	AuthMode string      `mapstructure:"auth_mode"`
	TLS      TLSConfig   `mapstructure:"tls"`
	Retry    RetryConfig `mapstructure:"retry"`
	Pool     PoolConfig  `mapstructure:"pool"`
}

// TLSConfig toggles transport security for the database connection.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertPath string `mapstructure:"cert_path"`
}

// RetryConfig is the connection retry policy.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Interval    time.Duration `mapstructure:"interval"`
}

// PoolConfig carries the connection pool settings handed to the driver.
type PoolConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AuthConfig configures request authentication. An empty token secret
// disables it.
type AuthConfig struct {
	TokenSecret string `mapstructure:"token_secret"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks that the configuration names a reachable target and
// complete credentials.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("database.port must be positive, got %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	switch c.Database.AuthMode {
	case AuthModePassword:
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required when auth_mode is %q", AuthModePassword)
		}
	case AuthModeTrust:
	default:
		return fmt.Errorf("database.auth_mode must be %q or %q, got %q", AuthModePassword, AuthModeTrust, c.Database.AuthMode)
	}

	if c.Database.Retry.MaxAttempts < 1 {
		return fmt.Errorf("database.retry.max_attempts must be at least 1, got %d", c.Database.Retry.MaxAttempts)
	}
	if c.Database.Retry.Interval < 0 {
		return fmt.Errorf("database.retry.interval must not be negative")
	}

	return nil
}

// DSN builds the connection string for the pgx driver.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Name,
	}
	if c.Database.AuthMode == AuthModeTrust {
		u.User = url.User(c.Database.User)
	} else {
		u.User = url.UserPassword(c.Database.User, c.Database.Password)
	}

	q := url.Values{}
	switch {
	case c.Database.TLS.Enabled && c.Database.TLS.CertPath != "":
		q.Set("sslmode", "verify-full")
		q.Set("sslrootcert", c.Database.TLS.CertPath)
	case c.Database.TLS.Enabled:
		q.Set("sslmode", "require")
	default:
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Resolver produces the startup configuration. It is the first stage
// collaborator of the connection lifecycle.
type Resolver interface {
	Resolve(ctx context.Context) (*Config, error)
}

// FileResolver resolves configuration from joinery.yaml plus JOINERY_*
// environment overrides.
type FileResolver struct {
	// Paths are the directories searched for joinery.yaml. Empty means
	// the working directory.
	Paths []string
}

// Resolve implements Resolver.
func (r *FileResolver) Resolve(_ context.Context) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("joinery")
	v.SetConfigType("yaml")
	if len(r.Paths) == 0 {
		v.AddConfigPath(".")
	}
	for _, p := range r.Paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("joinery")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file means defaults plus environment.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StaticResolver hands back a fixed configuration. Intended for tests
// and embedding callers that assemble Config themselves.
type StaticResolver struct {
	Config *Config
	Err    error
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(_ context.Context) (*Config, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Config == nil {
		return nil, fmt.Errorf("static resolver has no config")
	}
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}
	return r.Config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	// Empty defaults keep these keys visible to Unmarshal when they
	// arrive via environment variables only.
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.auth_mode", AuthModePassword)
	v.SetDefault("database.tls.enabled", false)
	v.SetDefault("database.tls.cert_path", "")
	v.SetDefault("auth.token_secret", "")
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.interval", "500ms")
	v.SetDefault("database.pool.max_open_conns", 100)
	v.SetDefault("database.pool.max_idle_conns", 10)
	v.SetDefault("database.pool.conn_max_lifetime", "1h")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.level", "info")
	v.SetDefault("ensure_schema", false)
}
