// cmd/worker-manager/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"cotiza-workers/internal/catalog"
	"cotiza-workers/internal/common/camunda"
	"cotiza-workers/internal/common/config"
	"cotiza-workers/internal/common/database"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/pkg/registry"

	searchvehicles "cotiza-workers/internal/workers/catalog/search-vehicles"
	sendleadnotification "cotiza-workers/internal/workers/leads/send-lead-notification"
)

var backoff = &camunda.RetryConfig{MaxRetries: 14, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		TracingEnabled: cfg.Observability.TracingEnabled,
		SampleRatio:    cfg.Observability.SampleRatio,
		SpanProcessors: spanProcessors(log),
	})
	if err != nil {
		zapLog.Warn("observability init failed, metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkRegistry(cfg, log)

	// --- Zeebe ---
	zb, err := camunda.Connect(ctx, camunda.ClientConfigFrom(cfg.Camunda), 10, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = camunda.WithBackoff(ctx, backoff, "PostgreSQL connection", log, func(ctx context.Context) error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		if err = pg.Ping(ctx); err != nil {
			pg.Close()
		}
		return err
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = camunda.WithBackoff(ctx, backoff, "Redis connection", log, rdb.Ping)
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch, only for free-text search ---
	var es *database.ElasticsearchClient
	if config.IsWorkerEnabled(cfg, searchvehicles.TaskType) {
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = camunda.WithBackoff(ctx, backoff, "Elasticsearch connection", log, es.Ping)
		}
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	deps := &dependencies{
		cfg:     cfg,
		pg:      pg,
		redis:   rdb,
		es:      es,
		catalog: catalog.NewStore(pg.DB, rdb.Client, config.GetDuration(cfg.Catalog.CacheTTL), log),
		obs:     obs,
		log:     log,
	}

	// --- AWS, only for lead notifications ---
	if config.IsWorkerEnabled(cfg, sendleadnotification.TaskType) {
		deps.ses, deps.sns, err = newNotificationClients(ctx, cfg)
		if err != nil {
			zapLog.Fatal("aws clients failed", zap.Error(err))
		}
	}

	workers := startWorkers(zb.GetClient(), deps)
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	srv := newHealthServer(cfg.App.HealthPort, zb, deps)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(20 * time.Second)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if obs != nil {
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error flushing telemetry", zap.Error(err))
		}
	}
	if err := zb.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("Error closing PostgreSQL client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func spanProcessors(log logger.Logger) []sdktrace.SpanProcessor {
	return []sdktrace.SpanProcessor{observability.NewLogSpanProcessor(log)}
}

// checkRegistry warns about enabled workers the activity registry does not
// describe. A missing registry is not fatal.
func checkRegistry(cfg *config.Config, log logger.Logger) {
	reg, err := registry.LoadRegistry(cfg.App.RegistryPath)
	if err != nil {
		log.Warn("activity registry not loaded", map[string]interface{}{
			"path":  cfg.App.RegistryPath,
			"error": err.Error(),
		})
		return
	}
	for _, problem := range reg.Validate() {
		log.Warn("activity registry problem", map[string]interface{}{"error": problem.Error()})
	}
	for taskType, wcfg := range cfg.Workers {
		if !wcfg.Enabled {
			continue
		}
		if _, err := reg.Find(taskType); err != nil {
			log.Warn("enabled worker missing from activity registry", map[string]interface{}{"taskType": taskType})
		}
	}
}
