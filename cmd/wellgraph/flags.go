package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	Addr            string
	LogLevel        string
	LogFormat       string
	RuleFile        string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("WELLGRAPH_CONFIG", ""),
		"Path to configuration file, empty for built-in defaults (env: WELLGRAPH_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("WELLGRAPH_CONFIG", ""),
		"Path to configuration file, empty for built-in defaults (env: WELLGRAPH_CONFIG)")

	flag.StringVar(&cfg.Addr, "addr",
		getEnv("WELLGRAPH_ADDR", ""),
		"Listen address, overrides config (env: WELLGRAPH_ADDR)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("WELLGRAPH_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error, overrides config (env: WELLGRAPH_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("WELLGRAPH_LOG_FORMAT", ""),
		"Log format: json, text, overrides config (env: WELLGRAPH_LOG_FORMAT)")

	flag.StringVar(&cfg.RuleFile, "rules",
		getEnv("WELLGRAPH_RULES", ""),
		"Path to YAML rule catalog, empty for the built-in rules (env: WELLGRAPH_RULES)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("WELLGRAPH_SHUTDOWN_TIMEOUT", 0),
		"Graceful shutdown timeout, overrides config (env: WELLGRAPH_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and rules, then exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if cfg.LogLevel != "" && !contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if cfg.LogFormat != "" && !contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.RuleFile != "" {
		if _, err := os.Stat(cfg.RuleFile); err != nil {
			return fmt.Errorf("rule file not found: %s", cfg.RuleFile)
		}
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Session Reasoning Engine

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run with built-in defaults (in-memory sessions, built-in rules)
  %s

  # Run with custom config and rule catalog
  %s --config=/etc/wellgraph/config.yaml --rules=/etc/wellgraph/rules.yaml

  # Run with environment variables
  export WELLGRAPH_CONFIG=/etc/wellgraph/config.yaml
  export WELLGRAPH_LOG_LEVEL=debug
  %s

  # Validate configuration and rules only
  %s --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
