package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"docscribe/internal/config"
	pgRepo "docscribe/internal/infra/adapter/persistence/postgres"
	"docscribe/internal/infra/db"
	"docscribe/internal/infra/extractor"
	"docscribe/internal/infra/storage"
	"docscribe/internal/infra/summarizer"
	"docscribe/internal/observability/logging"
	"docscribe/internal/observability/tracing"
	pkgconfig "docscribe/internal/pkg/config"
	"docscribe/internal/resilience/circuitbreaker"

	docUC "docscribe/internal/usecase/document"
	sumUC "docscribe/internal/usecase/summarize"

	hhttp "docscribe/internal/handler/http"
	hdocument "docscribe/internal/handler/http/document"
	"docscribe/internal/handler/http/middleware"
	"docscribe/internal/handler/http/requestid"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	shutdownTracing := tracing.Setup()
	defer func() { _ = shutdownTracing(context.Background()) }()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	cfgMetrics := pkgconfig.NewConfigMetrics("api")
	serverCfg := config.LoadServerConfig(cfgMetrics)
	components := setupServer(logger, database, serverCfg, cfgMetrics)

	runServer(logger, components, serverCfg)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.OpenFromEnv(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// ServerComponents holds the assembled handler and the services behind it.
type ServerComponents struct {
	Handler  http.Handler
	Document *docUC.Service
}

// setupServer builds the summarization pipeline, the document service and the HTTP handler.
func setupServer(logger *slog.Logger, database *sql.DB, serverCfg *config.ServerConfig, cfgMetrics *pkgconfig.ConfigMetrics) *ServerComponents {
	ctx := context.Background()

	sumCfg, err := config.LoadSummarizeConfig(cfgMetrics)
	if err != nil {
		logger.Error("failed to load summarizer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !sumCfg.HasAPIKey() {
		logger.Warn("summarizer API key is not set; summaries will use the extractive fallback",
			slog.String("provider", string(sumCfg.Client.Provider)),
			slog.String("env", config.APIKeyEnv(sumCfg.Client.Provider)))
	}

	client, err := summarizer.New(ctx, sumCfg.Client)
	if err != nil {
		logger.Error("failed to create summarizer", slog.Any("error", err))
		os.Exit(1)
	}
	sumSvc := sumUC.NewService(client, summarizer.NewExtractive(), nil, sumCfg.Orchestrator)

	storageCfg := config.LoadStorageConfig(cfgMetrics)
	var store docUC.ObjectStore
	if storageCfg.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, storageCfg)
		if err != nil {
			logger.Error("failed to create object store", slog.Any("error", err))
			os.Exit(1)
		}
		store = s3Store
		logger.Info("upload archiving enabled",
			slog.String("bucket", storageCfg.Bucket),
			slog.String("prefix", storageCfg.Prefix))
	} else {
		logger.Info("upload archiving disabled (S3_BUCKET not set)")
	}

	repo := pgRepo.NewDocumentRepo(circuitbreaker.NewDBCircuitBreaker(database))
	docSvc := docUC.NewService(repo, extractor.NewDocconvExtractor(logger), sumSvc, store)

	logger.Info("summarization configured",
		slog.String("provider", string(sumCfg.Client.Provider)),
		slog.String("model", sumCfg.Client.Model),
		slog.Int("long_text_threshold", sumCfg.Orchestrator.LongTextThreshold),
		slog.Int("chunk_size", sumCfg.Orchestrator.ChunkSize))

	mux := setupRoutes(database, serverCfg, sumCfg, storageCfg.Enabled(), docSvc, logger)
	handler := applyMiddleware(logger, mux, serverCfg)

	return &ServerComponents{Handler: handler, Document: docSvc}
}

// setupRoutes registers the probe, metrics and document routes.
func setupRoutes(
	database *sql.DB,
	serverCfg *config.ServerConfig,
	sumCfg *config.SummarizeConfig,
	storageEnabled bool,
	docSvc *docUC.Service,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:                   database,
		Version:              serverCfg.Version,
		SummarizerProvider:   string(sumCfg.Client.Provider),
		SummarizerConfigured: sumCfg.HasAPIKey(),
		StorageEnabled:       storageEnabled,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	var uploadLimit func(http.Handler) http.Handler
	if serverCfg.UploadRate > 0 {
		uploadLimit = hhttp.NewRateLimiter(serverCfg.UploadRate).Limit
		logger.Info("upload rate limiting enabled",
			slog.Int("requests_per_minute", serverCfg.UploadRate))
	} else {
		logger.Warn("upload rate limiting is DISABLED - not recommended for production")
	}
	hdocument.Register(mux, docSvc, uploadLimit)

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: CORS → Request ID → Tracing → Recovery → Logging → Body Limit → Timeout → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler, serverCfg *config.ServerConfig) http.Handler {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: serverCfg.AllowedOrigins,
		Logger:         logger,
	}
	logger.Info("CORS enabled",
		slog.Int("allowed_origins_count", len(corsConfig.AllowedOrigins)),
		slog.Any("allowed_origins", corsConfig.AllowedOrigins))

	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Timeout(serverCfg.RequestTimeout)(chain)
	chain = hhttp.LimitRequestBody(serverCfg.MaxBodyBytes)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(corsConfig)(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, serverCfg *config.ServerConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", serverCfg.Addr),
			slog.String("version", serverCfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// In-flight summaries see cancellation only after Shutdown has drained.
	cancel()
	logger.Info("server stopped")
}
