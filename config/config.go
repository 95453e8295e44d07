// Package config loads and validates the service configuration from an
// optional YAML file overlaid on defaults. Flag and environment
// handling lives in cmd/wellgraph.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/explain"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Audit   AuditConfig   `yaml:"audit"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
}

// StorageConfig configures session persistence. An empty path selects
// the in-memory store; sessions then do not survive restarts.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// AuditConfig configures the audit sink. An empty path disables
// persistent auditing.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig configures the reasoning engine.
type EngineConfig struct {
	// RuleFile is an optional YAML rule catalog; empty selects the
	// builtin rule set.
	RuleFile string `yaml:"rule_file"`
	// ExplainDepth bounds explanation chain reconstruction.
	ExplainDepth int `yaml:"explain_depth"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       20,
			RateBurst:       40,
		},
		Engine: EngineConfig{
			ExplainDepth: explain.DefaultMaxDepth,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapFatal(err, "Config", "Load", "read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapFatal(err, "Config", "Load", "parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration before start.
func (c Config) Validate() error {
	fail := func(msg string) error {
		return errors.WrapFatal(errors.New(msg), "Config", "Validate", "check configuration")
	}

	if c.Server.Addr == "" {
		return fail("server.addr must not be empty")
	}
	if c.Server.RateLimit <= 0 {
		return fail("server.rate_limit must be positive")
	}
	if c.Server.RateBurst <= 0 {
		return fail("server.rate_burst must be positive")
	}
	if c.Engine.ExplainDepth <= 0 {
		return fail("engine.explain_depth must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fail("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fail("logging.format must be text or json")
	}
	return nil
}
