package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"docscribe/internal/config"
	"docscribe/internal/handler/http/respond"
	pgRepo "docscribe/internal/infra/adapter/persistence/postgres"
	"docscribe/internal/infra/db"
	"docscribe/internal/infra/extractor"
	"docscribe/internal/infra/summarizer"
	workerPkg "docscribe/internal/infra/worker"
	"docscribe/internal/observability/logging"
	"docscribe/internal/resilience/circuitbreaker"
	docUC "docscribe/internal/usecase/document"
	sumUC "docscribe/internal/usecase/summarize"
)

// waitForMigrations blocks until the API has created the documents table.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM documents LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Invalid values fall back to defaults, so the worker always starts.
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig := workerPkg.LoadConfigFromEnv(workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("batch_size", workerConfig.BatchSize),
		slog.Int("parallelism", workerConfig.Parallelism),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	dbBreaker := circuitbreaker.NewDBCircuitBreaker(database)
	svc := setupDocumentService(logger, dbBreaker, workerMetrics, workerConfig)

	startMetricsServer(ctx, logger, map[string]breakerState{"database": dbBreaker})

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, database.PingContext)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runCronWorker(ctx, logger, svc, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.OpenFromEnv(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// setupDocumentService builds the summarization pipeline used to reprocess pending documents.
// Raw uploads are never re-read, so the worker runs without object storage.
func setupDocumentService(logger *slog.Logger, q circuitbreaker.Querier, metrics *workerPkg.WorkerMetrics, cfg *workerPkg.WorkerConfig) *docUC.Service {
	sumCfg, err := config.LoadSummarizeConfig(metrics.ConfigMetrics)
	if err != nil {
		logger.Error("failed to load summarizer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !sumCfg.HasAPIKey() {
		// Without a key every run would only produce fallback summaries again.
		logger.Warn("summarizer API key is not set; pending documents will stay pending",
			slog.String("env", config.APIKeyEnv(sumCfg.Client.Provider)))
	}

	client, err := summarizer.New(context.Background(), sumCfg.Client)
	if err != nil {
		logger.Error("failed to create summarizer", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("summarizer initialized",
		slog.String("provider", string(sumCfg.Client.Provider)),
		slog.String("model", sumCfg.Client.Model))

	sumSvc := sumUC.NewService(client, summarizer.NewExtractive(), nil, sumCfg.Orchestrator)
	svc := docUC.NewService(pgRepo.NewDocumentRepo(q), extractor.NewDocconvExtractor(logger), sumSvc, nil)
	svc.Parallelism = cfg.Parallelism
	return svc
}

// runCronWorker schedules the reprocess job and blocks until ctx is cancelled.
func runCronWorker(ctx context.Context, logger *slog.Logger, svc *docUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runReprocessJob(ctx, logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// Wait for a running job to observe cancellation and return.
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runReprocessJob re-summarizes one batch of pending documents.
func runReprocessJob(ctx context.Context, logger *slog.Logger, svc *docUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("reprocess started", slog.Int("batch_size", cfg.BatchSize))

	ctx, cancel := context.WithTimeout(ctx, cfg.JobTimeout)
	defer cancel()

	stats, err := svc.ReprocessPending(ctx, cfg.BatchSize)
	metrics.RecordJobDuration(time.Since(startTime))
	metrics.RecordReprocessed(stats.Processed, stats.Fallback, stats.Failed)
	if err != nil {
		logger.Error("reprocess failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordLastSuccess()

	logger.Info("reprocess completed",
		slog.Int("scanned", stats.Scanned),
		slog.Int("processed", stats.Processed),
		slog.Int("fallback", stats.Fallback),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", time.Since(startTime)),
	)
}
