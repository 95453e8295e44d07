// Package main implements the entry point for the wellgraph service.
// Wellgraph is a session reasoning engine for a student wellness
// assistant: it keeps a per-session knowledge graph, runs a rule
// catalog to fixpoint over each conversation turn, and serves ranked,
// explained risk states over an HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/wellgraph/wellgraph/audit"
	"github.com/wellgraph/wellgraph/catalog"
	"github.com/wellgraph/wellgraph/config"
	"github.com/wellgraph/wellgraph/engine"
	"github.com/wellgraph/wellgraph/escalation"
	gatewayhttp "github.com/wellgraph/wellgraph/gateway/http"
	"github.com/wellgraph/wellgraph/metric"
	"github.com/wellgraph/wellgraph/storage"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "wellgraph"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	slog.Info("Starting wellgraph (session reasoning engine)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"addr", cfg.Server.Addr)

	vocab := vocabulary.Standard()
	cat, err := catalog.LoadFile(cfg.Engine.RuleFile, vocab)
	if err != nil {
		return fmt.Errorf("load rule catalog: %w", err)
	}
	slog.Info("Rule catalog loaded", "rules", cat.Len(), "source", ruleSource(cfg.Engine.RuleFile))

	if cliCfg.Validate {
		slog.Info("Configuration and rule catalog are valid")
		return nil
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sink, err := openAuditSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	registry := prometheus.NewRegistry()
	metrics := metric.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	eng, err := engine.New(engine.Params{
		Catalog:      cat,
		Vocabulary:   vocab,
		Gate:         escalation.NewGate(logger),
		Sink:         sink,
		Metrics:      metrics,
		Logger:       logger,
		ExplainDepth: cfg.Engine.ExplainDepth,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	api := gatewayhttp.NewServer(eng, store, vocab, cfg.Server, registry, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return serve(ctx, httpServer, cfg.Server.ShutdownTimeout)
}

// serve runs the HTTP server until a shutdown signal arrives, then
// drains in-flight requests within the shutdown timeout.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	g, gctx := errgroup.WithContext(signalCtx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("wellgraph shutdown complete")
	return nil
}

// loadConfig loads file configuration and applies CLI overrides.
func loadConfig(cliCfg *CLIConfig) (config.Config, error) {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Addr != "" {
		cfg.Server.Addr = cliCfg.Addr
	}
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if cliCfg.RuleFile != "" {
		cfg.Engine.RuleFile = cliCfg.RuleFile
	}
	if cliCfg.ShutdownTimeout > 0 {
		cfg.Server.ShutdownTimeout = cliCfg.ShutdownTimeout
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	if cfg.Storage.Path == "" {
		slog.Info("Using in-memory session store")
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.OpenSQLite(ctx, cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	slog.Info("Session store opened", "path", cfg.Storage.Path)
	return store, nil
}

func openAuditSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (audit.Sink, error) {
	if cfg.Audit.Path == "" {
		slog.Info("Audit trail disabled")
		return audit.NoopSink{}, nil
	}
	sink, err := audit.OpenSQLite(ctx, cfg.Audit.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open audit sink: %w", err)
	}
	slog.Info("Audit trail opened", "path", cfg.Audit.Path)
	return sink, nil
}

func ruleSource(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
