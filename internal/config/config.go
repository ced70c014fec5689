package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meltforce/liftlog/internal/oracle"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Oracle    OracleConfig    `yaml:"oracle"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// OracleConfig configures the optional language-model refinement.
type OracleConfig struct {
	Enabled       bool          `yaml:"enabled"`
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxTokens     int64         `yaml:"max_tokens"`
	RatePerMinute int           `yaml:"rate_per_minute"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Settings returns the per-call oracle gate. The oracle is attempted only
// when enabled and a key is configured.
func (o OracleConfig) Settings() oracle.Settings {
	return oracle.Settings{Enabled: o.Enabled && o.APIKey != ""}
}

// Client returns the oracle client configuration.
func (o OracleConfig) Client() oracle.Config {
	return oracle.Config{
		APIKey:        o.APIKey,
		Model:         o.Model,
		MaxTokens:     o.MaxTokens,
		Timeout:       o.Timeout,
		RatePerMinute: o.RatePerMinute,
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_STATIC_DIR,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_AUTH_API_KEY, LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME,
//	LIFTLOG_ORACLE_ENABLED, LIFTLOG_ORACLE_API_KEY, LIFTLOG_ORACLE_MODEL,
//	LIFTLOG_ORACLE_TIMEOUT
//
// ANTHROPIC_API_KEY is used as the oracle key when none is configured.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envOverride binds one environment variable to a config field.
type envOverride struct {
	name  string
	apply func(cfg *Config, v string)
}

var envOverrides = []envOverride{
	{"LIFTLOG_SERVER_HOST", func(c *Config, v string) { c.Server.Host = v }},
	{"LIFTLOG_SERVER_PORT", func(c *Config, v string) { setInt(&c.Server.Port, v) }},
	{"LIFTLOG_STATIC_DIR", func(c *Config, v string) { c.Server.StaticDir = v }},
	{"LIFTLOG_DB_HOST", func(c *Config, v string) { c.Database.Host = v }},
	{"LIFTLOG_DB_PORT", func(c *Config, v string) { setInt(&c.Database.Port, v) }},
	{"LIFTLOG_DB_NAME", func(c *Config, v string) { c.Database.Name = v }},
	{"LIFTLOG_DB_USER", func(c *Config, v string) { c.Database.User = v }},
	{"LIFTLOG_DB_PASSWORD", func(c *Config, v string) { c.Database.Password = v }},
	{"LIFTLOG_DB_SSLMODE", func(c *Config, v string) { c.Database.SSLMode = v }},
	{"LIFTLOG_AUTH_API_KEY", func(c *Config, v string) { c.Auth.APIKey = v }},
	{"LIFTLOG_TAILSCALE_ENABLED", func(c *Config, v string) { setBool(&c.Tailscale.Enabled, v) }},
	{"LIFTLOG_TAILSCALE_HOSTNAME", func(c *Config, v string) { c.Tailscale.Hostname = v }},
	{"LIFTLOG_ORACLE_ENABLED", func(c *Config, v string) { setBool(&c.Oracle.Enabled, v) }},
	{"LIFTLOG_ORACLE_API_KEY", func(c *Config, v string) { c.Oracle.APIKey = v }},
	{"LIFTLOG_ORACLE_MODEL", func(c *Config, v string) { c.Oracle.Model = v }},
	{"LIFTLOG_ORACLE_TIMEOUT", func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			c.Oracle.Timeout = d
		}
	}},
}

func applyEnvOverrides(cfg *Config) {
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(cfg, v)
		}
	}
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "liftlog"
	}
	if cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = "tsnet-state"
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 15 * time.Second
	}
	if cfg.Oracle.RatePerMinute == 0 {
		cfg.Oracle.RatePerMinute = 30
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Oracle.Timeout < 0 {
		return fmt.Errorf("oracle.timeout must not be negative")
	}
	if c.Oracle.MaxTokens < 0 {
		return fmt.Errorf("oracle.max_tokens must not be negative")
	}
	return nil
}
