// internal/workers/recommendation/rank-insurance/handler.go
package rankinsurance

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
	TaskType = "rank-insurance"

	cachePrefix = "rank:insurance:"
)

var (
	ErrNilInput            = errors.New("input cannot be nil")
	ErrCatalogLoadFailed   = errors.New("CATALOG_LOAD_FAILED")
	ErrPremiumLookupFailed = errors.New("PREMIUM_LOOKUP_FAILED")
)

type InsuranceCatalog interface {
	InsuranceProducts(ctx context.Context) ([]models.InsuranceProduct, error)
	Premiums(ctx context.Context, vehicleID string) ([]models.Premium, error)
}

type Handler struct {
	config   *Config
	catalog  InsuranceCatalog
	cache    *database.JSONCache
	obs      *observability.Observability
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, catalog InsuranceCatalog, rdb *redis.Client, obs *observability.Observability, log logger.Logger) *Handler {
	if config.Ranker == nil {
		config.Ranker = ranking.NewInsuranceRanker()
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
		h.reporter.Fail(context.Background(), client, job, started, toStandardError(input.Answers.VehicleID, err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	ctx, end := h.obs.StartSpan(ctx, TaskType+".execute",
		attribute.String("vehicle_id", input.Answers.VehicleID),
		attribute.Int("inline_products", len(input.Products)),
	)
	output, err := h.rank(ctx, input)
	end(err)
	return output, err
}

func (h *Handler) rank(ctx context.Context, input *Input) (*Output, error) {
	products, premiums, err := h.candidates(ctx, input)
	if err != nil {
		return nil, err
	}

	limit := h.maxResults(input.MaxResults)
	key := database.HashKey(cachePrefix, input.Answers, products, premiums, limit, h.config.Ranker)

	var cached Output
	hit, err := h.cache.Get(ctx, key, &cached)
	if err != nil {
		h.logger.Warn("ranking cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if h.cache.Enabled() {
		metrics.ObserveCache(metrics.KindInsurance, hit)
	}
	if hit {
		cached.FromCache = true
		h.logger.Info("ranking served from cache", map[string]interface{}{"resultCount": len(cached.Recommendations)})
		return &cached, nil
	}

	start := time.Now()

	_, endFilter := h.obs.StartSpan(ctx, "filter-insurance")
	eligible := ranking.FilterInsuranceByBudget(products, premiums, input.Answers.MonthlyBudget)
	endFilter(nil)

	_, endRank := h.obs.StartSpan(ctx, "rank-insurance", attribute.Int("eligible", len(eligible)))
	ranked := h.config.Ranker.Rank(eligible, premiums, input.Answers)
	endRank(nil)

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	duration := time.Since(start)
	metrics.ObserveRanking(metrics.KindInsurance, len(eligible), len(ranked))
	h.logger.Info("ranking completed", map[string]interface{}{
		"vehicleId":      input.Answers.VehicleID,
		"candidateCount": len(products),
		"premiumCount":   len(premiums),
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
		CandidateCount:  len(products),
		EligibleCount:   len(eligible),
		RankedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.cache.Set(ctx, key, output); err != nil {
		h.logger.Warn("ranking cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return output, nil
}

// candidates resolves products and the premium table for the selected
// vehicle, preferring inline data over the catalog.
func (h *Handler) candidates(ctx context.Context, input *Input) ([]models.InsuranceProduct, []models.Premium, error) {
	products := input.Products
	if len(products) == 0 && h.catalog != nil {
		var err error
		products, err = h.catalog.InsuranceProducts(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCatalogLoadFailed, err)
		}
	}
	if products == nil {
		products = []models.InsuranceProduct{}
	}

	vehicleID := input.Answers.VehicleID
	premiums := input.Premiums
	if len(premiums) == 0 && vehicleID != "" && h.catalog != nil {
		var err error
		premiums, err = h.catalog.Premiums(ctx, vehicleID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrPremiumLookupFailed, err)
		}
	}
	return products, premiumsFor(premiums, vehicleID), nil
}

// premiumsFor keeps the rows priced for vehicleID. An empty id keeps all.
func premiumsFor(premiums []models.Premium, vehicleID string) []models.Premium {
	out := make([]models.Premium, 0, len(premiums))
	for _, p := range premiums {
		if vehicleID == "" || p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	return out
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

func toStandardError(vehicleID string, err error) error {
	switch {
	case errors.Is(err, ErrCatalogLoadFailed):
		return apperrors.NewCatalogLoadFailedError("insurance", err)
	case errors.Is(err, ErrPremiumLookupFailed):
		return apperrors.NewPremiumLookupFailedError(vehicleID, err)
	case errors.Is(err, ErrNilInput):
		return apperrors.NewInvalidAnswersError(err.Error())
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
