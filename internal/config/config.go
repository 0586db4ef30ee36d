package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the gateway. The DSN is the
// only required setting; everything else has a usable default. Resolution
// order: defaults, then the yaml file, then DBGATEWAY_* environment
// variables (optionally loaded from a .env file first).
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

type DatabaseConfig struct {
	// DSN selects the backend dialect by its scheme and carries the
	// transient credentials. Never persisted or logged.
	DSN string `yaml:"dsn"`

	// ReadOnly documents the statement allow-list as the enforcement
	// boundary for all executed statements.
	ReadOnly bool `yaml:"read_only"`

	// InitScriptPath points at a SQL batch executed once after connect.
	// Used only by the demo/test path to seed an in-memory database.
	InitScriptPath string `yaml:"init_script"`
}

type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport   string `yaml:"transport"`
	HTTPPort    int    `yaml:"http_port"`
	MetricsPort int    `yaml:"metrics_port"`
}

// Load builds the configuration. envFile, when non-empty, is loaded into
// the process environment before the DBGATEWAY_* overrides are read.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Transport:   "stdio",
			HTTPPort:    8080,
			MetricsPort: 9090,
		},
	}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("DBGATEWAY_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DBGATEWAY_READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Database.ReadOnly = b
		}
	}
	if v := os.Getenv("DBGATEWAY_INIT_SCRIPT"); v != "" {
		c.Database.InitScriptPath = v
	}
	if v := os.Getenv("DBGATEWAY_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("DBGATEWAY_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("DBGATEWAY_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.MetricsPort = port
		}
	}
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required (set database.dsn or DBGATEWAY_DSN)")
	}
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid transport %q (want stdio or http)", c.Server.Transport)
	}
	return nil
}

// InitScript reads the configured init script, or returns "" when none
// is configured.
func (c *Config) InitScript() (string, error) {
	if c.Database.InitScriptPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Database.InitScriptPath)
	if err != nil {
		return "", fmt.Errorf("failed to read init script: %w", err)
	}
	return string(data), nil
}
