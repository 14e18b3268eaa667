// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types and validates that
// required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the PHONEBOOK_ prefix. The prefix is removed,
	the key lowercased and "__" becomes the "." koanf nesting delimiter:

		PHONEBOOK_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout

	Two unprefixed variables are honoured as well because hosting platforms
	set them: PORT (server.port) and DATABASE_URL (database.url).
*/

// EnvPrefix is the prefix every application env var carries.
const EnvPrefix = "PHONEBOOK_"

// Config is the root configuration object for the application.
//
// Observability is optional in the environment; LoadConfig always
// returns it populated with defaults.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// StaticDir is the front-end build directory served at "/".
	// Serving is skipped when the directory does not exist.
	StaticDir string `koanf:"static_dir"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// URL takes precedence; the discrete fields are used only when it is empty.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port" validate:"required_without=URL"`
	User            string `koanf:"user" validate:"required_without=URL"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_without=URL"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxConns        int32  `koanf:"max_conns" validate:"min=1"`
	MinConns        int32  `koanf:"min_conns" validate:"min=0,ltefield=MaxConns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`
}

// DSN returns the connection string for the store.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	hostPort := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))

	// URL-encode the password so characters like ":" or "@" keep the DSN valid.
	encodedPassword := url.QueryEscape(c.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.User,
		encodedPassword,
		hostPort,
		c.Name,
		c.SSLMode,
	)
}

// MaxConnLifetime is ConnMaxLifetime as a duration.
func (c DatabaseConfig) MaxConnLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Second
}

// MaxConnIdleTime is ConnMaxIdleTime as a duration.
func (c DatabaseConfig) MaxConnIdleTime() time.Duration {
	return time.Duration(c.ConnMaxIdleTime) * time.Second
}

// RedisConfig contains Redis connection details.
//
// Redis is optional: an empty Address disables both the Redis health
// check and the background job service.
type RedisConfig struct {
	Address        string `koanf:"address" validate:"omitempty,hostname_port"`
	JobConcurrency int    `koanf:"job_concurrency" validate:"min=1"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// defaults are loaded before the environment so every optional key has a value.
func defaults() map[string]any {
	return map[string]any{
		"primary.env":                 "development",
		"server.port":                 "3001",
		"server.read_timeout":         30,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.cors_allowed_origins": []string{"*"},
		"server.static_dir":           "build",
		"database.port":               5432,
		"database.ssl_mode":           "disable",
		"database.max_conns":          10,
		"database.min_conns":          0,
		"database.conn_max_lifetime":  3600,
		"database.conn_max_idle_time": 300,
		"redis.job_concurrency":       5,
	}
}

// envKey maps PHONEBOOK_SERVER__PORT to server.port.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// envValue splits comma separated values for list keys.
func envValue(key, value string) any {
	if strings.HasSuffix(key, "cors_allowed_origins") || strings.HasSuffix(key, "checks") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return value
}

// platformVars are the unprefixed env vars honoured for hosting platforms.
var platformVars = map[string]string{
	"PORT":         "server.port",
	"DATABASE_URL": "database.url",
}

// LoadConfig loads configuration from defaults and environment variables,
// unmarshals it into Config, validates it and applies observability defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load default config: %w", err)
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		mapped := envKey(key)
		return mapped, envValue(mapped, value)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// An empty key tells the provider to skip the variable.
	err = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		mapped, ok := platformVars[key]
		if !ok || value == "" {
			return "", nil
		}
		return mapped, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load platform env variables: %w", err)
	}

	// Env values are decoded over the observability defaults so a single
	// PHONEBOOK_OBSERVABILITY__ variable does not zero the rest of the block.
	// Checks is left empty because decoding merges into an existing slice.
	obs := DefaultObservabilityConfig()
	obs.HealthChecks.Checks = nil
	mainConfig := &Config{Observability: obs}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	mainConfig.Observability.applyDefaults()

	// Service name and environment always follow the primary config.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// IsLocal reports whether the app runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}

// StaticDirExists reports whether the configured front-end build directory exists.
func (c *Config) StaticDirExists() bool {
	if c.Server.StaticDir == "" {
		return false
	}
	info, err := os.Stat(c.Server.StaticDir)
	return err == nil && info.IsDir()
}
