package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-report-service/internal/api/http"
	"github.com/spec-kit/ticket-report-service/internal/api/http/handlers"
	"github.com/spec-kit/ticket-report-service/internal/auth"
	"github.com/spec-kit/ticket-report-service/internal/config"
	"github.com/spec-kit/ticket-report-service/internal/events"
	"github.com/spec-kit/ticket-report-service/internal/extract"
	"github.com/spec-kit/ticket-report-service/internal/glpi"
	"github.com/spec-kit/ticket-report-service/internal/llm"
	"github.com/spec-kit/ticket-report-service/internal/observability"
	"github.com/spec-kit/ticket-report-service/internal/pdf"
	"github.com/spec-kit/ticket-report-service/internal/persistence"
	"github.com/spec-kit/ticket-report-service/internal/pipeline"
	"github.com/spec-kit/ticket-report-service/internal/report"
	"github.com/spec-kit/ticket-report-service/internal/repository"
	"github.com/spec-kit/ticket-report-service/internal/service"
	"github.com/spec-kit/ticket-report-service/internal/status"
	"github.com/spec-kit/ticket-report-service/internal/storage"
	"github.com/spec-kit/ticket-report-service/internal/summarize"
	"github.com/spec-kit/ticket-report-service/internal/textclean"
	"github.com/spec-kit/ticket-report-service/internal/worker"
)

// glpiSource adapts the GLPI client to the pipeline's session interface.
type glpiSource struct {
	client *glpi.Client
}

func (s glpiSource) Acquire(ctx context.Context) (pipeline.TicketSession, error) {
	session, err := s.client.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var (
		redisConn   *persistence.Redis
		statusStore status.Store
	)
	if cfg.Redis.Addr != "" {
		redisConn = persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
		statusStore = status.NewRedisStore(redisConn.Client, cfg.Pipeline.StatusTTL())
	} else {
		logger.Warn("REDIS_ADDR not provided; run status kept in memory")
		statusStore = status.NewMemoryStore()
	}

	uploader, err := storage.NewUploader(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	llmClient := llm.NewClient(cfg.LLM, logger)
	chunker := summarize.NewChunker(cfg.Pipeline.ChunkTags)
	summarizer := summarize.NewSummarizer(llmClient, chunker, cfg.Pipeline.TopK, logger)
	extractor := extract.NewExtractor(llmClient, logger)
	cleaner := textclean.New(cfg.Cleaner.ExtraNoisePatterns...)
	renderer := pdf.NewRenderer(pdf.DefaultStyle())
	sink := report.NewSink(renderer, uploader, "", logger)

	reportPipeline := pipeline.New(pipeline.Dependencies{
		Source:     glpiSource{client: glpi.NewClient(cfg.GLPI, logger)},
		Summarizer: summarizer,
		Extractor:  extractor,
		Cleaner:    cleaner,
		Sink:       sink,
		Status:     statusStore,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		RunTimeout: cfg.Pipeline.RunTimeout(),
	})

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	var (
		archive *service.ArchiveService
		runRepo repository.ReportRunRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		runRepo = repository.NewReportRunRepository(pool)
		archive = service.NewArchiveService(dispatcher, runRepo, statusStore, logger)
	}
	worker.StartReportWorkers(notifications, archive)

	var tokens *auth.TokenManager
	if cfg.Webhook.JWTSecret != "" {
		tokens = auth.NewTokenManager(cfg.Webhook.JWTSecret, 0)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Webhook: handlers.NewWebhookHandler(reportPipeline, logger),
		Reports: handlers.NewReportsHandler(statusStore, runRepo),
		Auth:    auth.NewWebhookMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
