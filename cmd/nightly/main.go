package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/cadence"
	"github.com/copperline/pipeline-core/internal/config"
	"github.com/copperline/pipeline-core/internal/lifecycle"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/messaging"
	"github.com/copperline/pipeline-core/internal/nightly"
	"github.com/copperline/pipeline-core/internal/providers/enrichment"
	jetstream "github.com/copperline/pipeline-core/internal/providers/jetstream"
	"github.com/copperline/pipeline-core/internal/research"
	"github.com/copperline/pipeline-core/internal/scoring"
	"github.com/copperline/pipeline-core/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	runOnce    = flag.Bool("once", false, "Run one cycle immediately and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadNightlyConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "nightly",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting nightly cycle runner")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}

	// Initialize stores
	dataStore := store.NewPGStore(db)
	checkpoints := store.NewCheckpointStore(db)

	// Initialize clock adapter
	clock := adapter.NewClock()

	// Connect to NATS when a broker is configured
	var events messaging.Publisher
	if cfg.NATS.URL != "" {
		events, err = jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), adapter.NewJSON())
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer events.Close()
		logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL), zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.Warn("NATS URL not configured, transition events will not be published")
	}

	// Initialize domain services
	machine := lifecycle.NewMachine(dataStore, clock, events)
	calc := cadence.NewCalculator(dataStore, clock, nil)
	rescorer := scoring.NewRescorer(dataStore, clock)

	// Initialize research worker with the enrichment provider
	var researcher research.Researcher
	if cfg.Enrichment.BaseURL != "" {
		httpClient := adapter.NewHTTPClient(cfg.Enrichment.Timeout)
		researcher = enrichment.NewResearcher(enrichment.Config{
			BaseURL:      cfg.Enrichment.BaseURL,
			APIKey:       cfg.Enrichment.APIKey,
			ProviderName: cfg.Enrichment.ProviderName,
			Timeout:      cfg.Enrichment.Timeout,
		}, httpClient)
	} else {
		logger.Warn("Enrichment base URL not configured, broken prospects will not be researched")
	}
	worker := research.NewWorker(research.WorkerConfig{
		BatchSize:      cfg.Research.BatchSize,
		WorkerPoolSize: cfg.Research.WorkerPoolSize,
	}, dataStore, machine, researcher, clock)

	// Resolve the schedule timezone
	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Fatal("Invalid schedule timezone", zap.Error(err), zap.String("timezone", cfg.Schedule.Timezone))
	}

	cycle := nightly.NewCycle(nightly.Config{
		RunHour:  cfg.Schedule.RunHour,
		Location: location,
	}, dataStore, checkpoints, machine, calc, rescorer, worker, clock)

	logger.Info("Initialized nightly cycle",
		zap.Int("run_hour", cfg.Schedule.RunHour),
		zap.String("timezone", cfg.Schedule.Timezone),
		zap.Int("research_batch_size", cfg.Research.BatchSize),
	)

	// One-shot mode runs a single cycle and exits
	if *runOnce || cfg.RunOnce {
		if err := cycle.Run(ctx); err != nil {
			logger.Fatal("Nightly cycle failed", zap.Error(err))
		}
		logger.Info("Nightly cycle complete")
		return
	}

	// Start the scheduler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := cycle.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error(err)
	}

	// Cancel context to stop the cycle
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := cycle.Stop(shutdownCtx); err != nil {
		logger.Error(err)
	}

	logger.Info("Nightly cycle runner stopped")
}
