package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const EnvPrefix = "ADMINLITE_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Schema    SchemaConfig    `koanf:"schema"`
	Options   OptionsConfig   `koanf:"options"`
	Rows      RowsConfig      `koanf:"rows"`
	Auth      AuthConfig      `koanf:"auth"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	Log       LogConfig       `koanf:"log"`
	Timezone  string          `koanf:"timezone"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
	MaxConns int32  `koanf:"max_conns"`
	MinConns int32  `koanf:"min_conns"`
}

type SchemaConfig struct {
	Name        string `koanf:"name"`
	Concurrency int    `koanf:"concurrency"`
}

type OptionsConfig struct {
	Limit int `koanf:"limit"`
}

type RowsConfig struct {
	Limit int `koanf:"limit"`
}

type WorkspaceConfig struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var defaults = map[string]interface{}{
	"server.port":              8080,
	"server.allowed_origins":   []string{"*"},
	"server.read_timeout":      "10s",
	"server.write_timeout":     "30s",
	"database.port":            5432,
	"database.sslmode":         "disable",
	"database.max_conns":       25,
	"database.min_conns":       5,
	"schema.name":              "public",
	"schema.concurrency":       4,
	"options.limit":            100,
	"rows.limit":               100,
	"workspace.idle_ttl":       "30m",
	"workspace.sweep_interval": "1m",
	"log.level":                "info",
	"log.format":               "text",
	"timezone":                 "Local",
}

// legacyEnv maps the plain variables of a .env file onto config keys.
var legacyEnv = map[string]string{
	"PORT":         "server.port",
	"DB_HOST":      "database.host",
	"DB_PORT":      "database.port",
	"DB_USERNAME":  "database.user",
	"DB_PASSWORD":  "database.password",
	"DB_DATABASE":  "database.name",
	"DATABASE_URL": "database.url",
	"JWT_SECRET":   "auth.jwt_secret",
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"port":         "server.port",
	"database-url": "database.url",
	"schema":       "schema.name",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"limit":        "rows.limit",
}

// Load builds the configuration. Precedence, highest first: changed flags,
// ADMINLITE_ env vars, plain .env style vars, the YAML file, defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return legacyEnv[key], value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// ADMINLITE_AUTH_JWT_SECRET -> auth.jwt_secret
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			TagName:          "koanf",
			Result:           &cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Schema.Name == "" {
		errs = append(errs, errors.New("schema.name is required"))
	}
	if c.Schema.Concurrency < 1 {
		errs = append(errs, errors.New("schema.concurrency must be at least 1"))
	}
	if c.Rows.Limit < 1 {
		errs = append(errs, errors.New("rows.limit must be at least 1"))
	}
	if c.Workspace.IdleTTL < 0 {
		errs = append(errs, errors.New("workspace.idle_ttl must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolves the time zone used to display and parse datetimes.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN returns the connection string, preferring an explicit URL.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" {
		return "", errors.New("database.host or database.url is required")
	}
	if d.User == "" {
		return "", errors.New("database.user is required")
	}
	if d.Name == "" {
		return "", errors.New("database.name is required")
	}

	userInfo := url.UserPassword(d.User, d.Password)
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo.String(),
		d.Host,
		d.Port,
		url.PathEscape(d.Name),
		url.QueryEscape(sslmode),
	), nil
}

// Redacted returns the DSN with the password masked, for logs.
func (d DatabaseConfig) Redacted() string {
	dsn, err := d.DSN()
	if err != nil {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres://***"
	}
	return u.Redacted()
}
