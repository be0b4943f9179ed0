package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haukened/callgate/internal/screen/common/clock"
	"github.com/haukened/callgate/internal/screen/common/log"
	"github.com/haukened/callgate/internal/screen/common/phone"
	"github.com/haukened/callgate/internal/screen/config"
	"github.com/haukened/callgate/internal/screen/gateways/directory"
	"github.com/haukened/callgate/internal/screen/gateways/directory/file"
	"github.com/haukened/callgate/internal/screen/repos/rules"
	"github.com/haukened/callgate/internal/screen/repos/rules/bloom"
	"github.com/haukened/callgate/internal/screen/repos/rules/bolt"
	"github.com/haukened/callgate/internal/screen/repos/rules/lru"
	"github.com/haukened/callgate/internal/screen/services/dirsync"
	"github.com/haukened/callgate/internal/screen/services/policy"
	"github.com/haukened/callgate/internal/screen/services/stats"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "callgated"

	// Default timeouts
	defaultSyncTimeout     = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the call screening daemon
type Application struct {
	config    *config.AppConfig
	rules     *rules.RuleStore
	evaluator *policy.Evaluator
	sync      *dirsync.Synchronizer
	stats     *stats.Aggregator
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":     version,
		"env":         cfg.Env,
		"log_level":   cfg.LogLevel,
		"db_path":     cfg.DBPath,
		"cache_size":  cfg.CacheSize,
		"directory":   cfg.DirectoryPath,
		"max_entries": cfg.MaxEntries,
	}, "Starting callgate daemon")

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	// Run until context is cancelled
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Daemon failed")
	}

	log.Info(nil, "Callgate daemon stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Build repository layer
	ruleStore, err := buildRules(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule repository: %w", err)
	}

	// Build gateway layer
	dir := buildDirectory(cfg, logger)

	// Build service layer
	evaluator := policy.NewEvaluator(policy.EvaluatorOptions{
		Rules:      ruleStore,
		Normalizer: phone.NewNormalizer(cfg.ExitCodes...),
		Logger:     logger,
	})

	synchronizer := dirsync.New(dirsync.Options{
		Rules:      ruleStore,
		Directory:  dir,
		MaxEntries: cfg.MaxEntries,
		Clock:      clk,
		Logger:     logger,
	})

	aggregator := stats.New(stats.Options{
		Rules: ruleStore,
		Clock: clk,
	})

	return &Application{
		config:    cfg,
		rules:     ruleStore,
		evaluator: evaluator,
		sync:      synchronizer,
		stats:     aggregator,
	}, nil
}

// buildRules creates the durable store, decision cache, and bloom-guarded
// rule repository on top of them.
func buildRules(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (*rules.RuleStore, error) {
	store, err := bolt.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule store: %w", err)
	}

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision cache: %w", err)
	}
	if cfg.CacheSize > 0 {
		log.Info(map[string]any{
			"type": "LRU",
			"size": cfg.CacheSize,
		}, "Decision cache configured")
	} else {
		log.Info(map[string]any{"disabled": true}, "Decision caching disabled")
	}

	ruleStore, err := rules.New(rules.Options{
		Store:   store,
		Cache:   cache,
		Factory: bloom.NewFactory(),
		FPRate:  cfg.BloomFPRate,
		Clock:   clk,
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Info(map[string]any{
		"db_path": cfg.DBPath,
		"version": ruleStore.Version(),
	}, "Rule repository loaded")

	return ruleStore, nil
}

// buildDirectory selects the directory gateway. Without a configured path the
// daemon runs with enforcement export disabled.
func buildDirectory(cfg *config.AppConfig, logger log.Logger) directory.Directory {
	if cfg.DirectoryPath == "" {
		log.Info(map[string]any{"disabled": true}, "Directory export disabled")
		return &directory.NopDirectory{}
	}

	log.Info(map[string]any{
		"path":        cfg.DirectoryPath,
		"status_path": cfg.StatusPath,
	}, "File directory gateway configured")
	return file.New(cfg.DirectoryPath, cfg.StatusPath, logger)
}

// Run performs the startup sync, then blocks until the context is cancelled.
// SIGHUP requests a resync of the enforcement list.
func (app *Application) Run(ctx context.Context) error {
	syncCtx, cancel := context.WithTimeout(ctx, defaultSyncTimeout)
	err := app.sync.SyncNow(syncCtx)
	cancel()
	if err != nil {
		// A failed startup sync is not fatal: rules still evaluate locally
		// and a SIGHUP retries the export.
		log.Warn(map[string]any{"error": err}, "Startup directory sync failed")
	}

	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, syscall.SIGHUP)
	defer signal.Stop(hupChan)

	log.Info(map[string]any{"state": app.sync.State().String()}, "Daemon started")

	for {
		select {
		case <-hupChan:
			log.Info(nil, "SIGHUP received, requesting directory resync")
			app.sync.RequestSync(ctx)
		case <-ctx.Done():
			return app.shutdown()
		}
	}
}

// shutdown closes the rule repository, bounded by the shutdown timeout.
func (app *Application) shutdown() error {
	log.Info(nil, "Shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- app.rules.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warn(map[string]any{"error": err}, "Error closing rule repository")
			return err
		}
		log.Info(nil, "Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}
}
