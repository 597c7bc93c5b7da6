// internal/workers/recommendation/rank-vehicles/handler.go
package rankvehicles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cotiza-workers/internal/common/camunda"
	"cotiza-workers/internal/common/database"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/metrics"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/models"
	"cotiza-workers/internal/ranking"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "rank-vehicles"

	cachePrefix = "rank:vehicles:"
)

var (
	ErrNilInput          = errors.New("input cannot be nil")
	ErrCatalogLoadFailed = errors.New("CATALOG_LOAD_FAILED")
)

// VehicleCatalog is the slice of catalog.Store the handler reads.
type VehicleCatalog interface {
	Vehicles(ctx context.Context, condition models.Condition) ([]models.Vehicle, error)
}

type Handler struct {
	config   *Config
	catalog  VehicleCatalog
	cache    *database.JSONCache
	obs      *observability.Observability
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, catalog VehicleCatalog, rdb *redis.Client, obs *observability.Observability, log logger.Logger) *Handler {
	if config.Ranker == nil {
		config.Ranker = ranking.NewVehicleRanker()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		catalog:  catalog,
		cache:    database.NewJSONCache(rdb, config.CacheTTL),
		obs:      obs,
		reporter: camunda.NewReporter(TaskType, obs, log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.reporter.Fail(context.Background(), client, job, started, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.reporter.Fail(context.Background(), client, job, started, toStandardError(err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	ctx, end := h.obs.StartSpan(ctx, TaskType+".execute",
		attribute.Int("inline_vehicles", len(input.Vehicles)),
		attribute.String("condition", string(input.Answers.Condition)),
	)
	output, err := h.rank(ctx, input)
	end(err)
	return output, err
}

func (h *Handler) rank(ctx context.Context, input *Input) (*Output, error) {
	candidates, err := h.candidates(ctx, input)
	if err != nil {
		return nil, err
	}

	limit := h.maxResults(input.MaxResults)
	key := database.HashKey(cachePrefix, input.Answers, candidates, limit, h.config.Ranker)

	var cached Output
	hit, err := h.cache.Get(ctx, key, &cached)
	if err != nil {
		h.logger.Warn("ranking cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if h.cache.Enabled() {
		metrics.ObserveCache(metrics.KindVehicle, hit)
	}
	if hit {
		cached.FromCache = true
		h.logger.Info("ranking served from cache", map[string]interface{}{"resultCount": len(cached.Recommendations)})
		return &cached, nil
	}

	start := time.Now()

	_, endFilter := h.obs.StartSpan(ctx, "filter-vehicles")
	eligible := h.config.Ranker.FilterByBudget(candidates, input.Answers.MonthlyBudget, input.Answers.DownPayment)
	endFilter(nil)

	_, endRank := h.obs.StartSpan(ctx, "rank-vehicles", attribute.Int("eligible", len(eligible)))
	ranked := h.config.Ranker.Rank(eligible, input.Answers)
	endRank(nil)

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	duration := time.Since(start)
	metrics.ObserveRanking(metrics.KindVehicle, len(eligible), len(ranked))
	h.logger.Info("ranking completed", map[string]interface{}{
		"candidateCount": len(candidates),
		"eligibleCount":  len(eligible),
		"outputCount":    len(ranked),
		"durationMs":     duration.Milliseconds(),
	})
	if duration > h.config.SlowThreshold {
		h.logger.Warn("ranking exceeded slow threshold", map[string]interface{}{
			"durationMs":  duration.Milliseconds(),
			"thresholdMs": h.config.SlowThreshold.Milliseconds(),
		})
	}

	output := &Output{
		Recommendations: ranked,
		CandidateCount:  len(candidates),
		EligibleCount:   len(eligible),
		RankedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.cache.Set(ctx, key, output); err != nil {
		h.logger.Warn("ranking cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return output, nil
}

// candidates returns the inline vehicles or the catalog, both restricted to
// the requested condition.
func (h *Handler) candidates(ctx context.Context, input *Input) ([]models.Vehicle, error) {
	if len(input.Vehicles) > 0 {
		return ranking.FilterVehiclesByCondition(input.Vehicles, input.Answers.Condition), nil
	}
	if h.catalog == nil {
		return []models.Vehicle{}, nil
	}
	vehicles, err := h.catalog.Vehicles(ctx, input.Answers.Condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoadFailed, err)
	}
	return vehicles, nil
}

func (h *Handler) maxResults(requested int) int {
	if requested > 0 && requested < h.config.MaxResults {
		return requested
	}
	if h.config.MaxResults > 0 {
		return h.config.MaxResults
	}
	return 10
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrCatalogLoadFailed):
		return apperrors.NewCatalogLoadFailedError("vehicles", err)
	case errors.Is(err, ErrNilInput):
		return apperrors.NewInvalidAnswersError(err.Error())
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
