// package main provides the entry point of the sentinel-lite service: the regulatory
// change watch, its background scheduler and the REST and GraphQL API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qeme/sentinel-lite/database"
	"github.com/qeme/sentinel-lite/events/modules/updates"
	gqlschema "github.com/qeme/sentinel-lite/graphql"
	"github.com/qeme/sentinel-lite/internal/api"
	"github.com/qeme/sentinel-lite/internal/kafka"
	"github.com/qeme/sentinel-lite/internal/regulatory"
	"github.com/qeme/sentinel-lite/internal/services"
	"github.com/qeme/sentinel-lite/restapi"
	"github.com/qeme/sentinel-lite/restapi/modules/reports"
	"github.com/qeme/sentinel-lite/util"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := regulatory.LoadConfig()
	if err != nil {
		util.InitLogger("error").Fatal("Invalid regulatory configuration", zap.Error(err))
	}

	logger := util.InitLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	serverCfg, err := api.LoadServerConfig()
	if err != nil {
		logger.Fatal("Invalid server configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := regulatory.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		logger.Fatal("Failed to load regulatory sources", zap.Error(err))
	}

	fingerprints, snapshots, err := initStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize stores", zap.Error(err))
	}

	opts := []regulatory.Option{
		regulatory.WithLogger(logger),
		regulatory.WithWorkers(cfg.Workers),
		regulatory.WithNotifier(regulatory.NewMailNotifier(cfg.Mail, logger)),
	}

	if cfg.Kafka.Enabled() {
		if err := kafka.CheckConnection(ctx, cfg.Kafka, logger); err != nil {
			logger.Warn("Kafka is not reachable yet, events will be retried per cycle", zap.Error(err))
		}
		producer := updates.NewProducer(kafka.NewWriter(cfg.Kafka))
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("Failed to close Kafka writer", zap.Error(err))
			}
		}()
		opts = append(opts, regulatory.WithPublisher(producer))
	}

	checker := regulatory.NewChecker(
		registry,
		regulatory.NewHTTPFetcher(cfg),
		regulatory.NewChangeDetector(fingerprints, logger),
		regulatory.NewUpdateCache(snapshots, cfg.CacheTTL, logger),
		opts...,
	)

	schema, err := gqlschema.CreateSchema(checker, checker.Registry())
	if err != nil {
		logger.Fatal("Failed to create GraphQL schema", zap.Error(err))
	}

	app := api.NewFiberApp(serverCfg, restapi.Deps{
		Checker: checker,
		Reports: reports.NewStore(cfg.ReportsDir()),
		Logger:  logger,
	}, schema)

	if cfg.CheckInterval > 0 {
		scheduler := services.NewScheduler(checker, cfg.CheckInterval, logger)
		go scheduler.Run(ctx)
		logger.Info("Background regulatory check scheduled", zap.Duration("interval", cfg.CheckInterval))
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Starting server",
		zap.String("port", serverCfg.Port),
		zap.Int("sources", registry.Len()),
		zap.String("store", cfg.Store))
	if err := app.Listen(":" + serverCfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// initStores returns the fingerprint and snapshot stores for the configured backend.
func initStores(ctx context.Context, cfg regulatory.Config, logger *zap.Logger) (regulatory.FingerprintStore, regulatory.SnapshotStore, error) {
	if cfg.Store != regulatory.StoreArangoDB {
		return regulatory.NewFileFingerprintStore(cfg.FingerprintDir()),
			regulatory.NewFileSnapshotStore(cfg.CacheFile()), nil
	}

	db, err := database.InitializeDatabase(ctx, database.LoadConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	return database.NewFingerprintStore(db), database.NewSnapshotStore(db), nil
}
