package estimatevehiclevalue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cotiza-workers/internal/catalog"
	"cotiza-workers/internal/common/camunda"
	"cotiza-workers/internal/common/database"
	apperrors "cotiza-workers/internal/common/errors"
	apihttp "cotiza-workers/internal/common/http"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/metrics"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "estimate-vehicle-value"

	cachePrefix  = "valuation:"
	apiKeyHeader = "X-API-Key"
)

var (
	ErrMissingVehicleID  = errors.New("vehicleId is required")
	ErrVehicleNotFound   = errors.New("VEHICLE_NOT_FOUND")
	ErrCatalogLoadFailed = errors.New("CATALOG_LOAD_FAILED")
	ErrValuationFailed   = errors.New("VALUATION_FAILED")
	ErrValuationTimeout  = errors.New("VALUATION_TIMEOUT")
)

type VehicleLookup interface {
	Vehicle(ctx context.Context, id string) (*models.Vehicle, error)
}

type Handler struct {
	config   *Config
	vehicles VehicleLookup
	http     *apihttp.Client
	cache    *database.JSONCache
	obs      *observability.Observability
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, vehicles VehicleLookup, rdb *redis.Client, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		vehicles: vehicles,
		http:     apihttp.NewClient(config.RequestTimeout),
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
		h.reporter.Fail(context.Background(), client, job, started, toStandardError(input.VehicleID, err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.VehicleID == "" {
		return nil, ErrMissingVehicleID
	}

	vehicle, err := h.vehicles.Vehicle(ctx, input.VehicleID)
	if errors.Is(err, catalog.ErrVehicleNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, input.VehicleID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoadFailed, err)
	}

	mileage := vehicle.MileageKm
	if input.MileageKm != nil {
		mileage = *input.MileageKm
	}

	key := database.HashKey(cachePrefix, vehicle.ID, vehicle.Year, mileage)
	var cached Output
	if h.cache.Enabled() {
		hit, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.Warn("valuation cache read failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.ObserveCache(metrics.KindValuation, hit)
		if hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	spanCtx, end := h.obs.StartSpan(ctx, "valuation-api",
		attribute.String("vehicleId", vehicle.ID),
		attribute.Int("mileageKm", mileage),
	)
	resp, err := h.fetch(spanCtx, vehicle, mileage)
	end(err)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrValuationTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrValuationFailed, err)
	}
	if resp.ValueCLP <= 0 {
		return nil, fmt.Errorf("%w: non-positive value %.0f", ErrValuationFailed, resp.ValueCLP)
	}

	output := &Output{
		VehicleID:         vehicle.ID,
		EstimatedValueCLP: resp.ValueCLP,
		ValueRange:        valueRange(resp),
		ListPriceCLP:      vehicle.PriceCLP,
		DepreciationPct:   depreciation(vehicle.PriceCLP, resp.ValueCLP),
		Source:            resp.Source,
		ValuedAt:          time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Info("vehicle valued", map[string]interface{}{
		"vehicleId":       vehicle.ID,
		"valueCLP":        output.EstimatedValueCLP,
		"depreciationPct": output.DepreciationPct,
	})

	if err := h.cache.Set(ctx, key, output); err != nil {
		h.logger.Warn("valuation cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return output, nil
}

func (h *Handler) fetch(ctx context.Context, v *models.Vehicle, mileage int) (*valuationResponse, error) {
	q := url.Values{}
	q.Set("brand", v.Brand)
	q.Set("model", v.Model)
	q.Set("year", strconv.Itoa(v.Year))
	q.Set("mileageKm", strconv.Itoa(mileage))
	if v.Version != "" {
		q.Set("version", v.Version)
	}
	endpoint := strings.TrimRight(h.config.BaseURL, "/") + "/v1/valuations?" + q.Encode()

	headers := map[string]string{}
	if h.config.APIKey != "" {
		headers[apiKeyHeader] = h.config.APIKey
	}

	var resp valuationResponse
	if err := h.http.GetJSON(ctx, endpoint, headers, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// valueRange falls back to the point estimate when the API omits bounds.
func valueRange(r *valuationResponse) models.Range {
	lo, hi := r.MinCLP, r.MaxCLP
	if lo <= 0 || lo > r.ValueCLP {
		lo = r.ValueCLP
	}
	if hi < r.ValueCLP {
		hi = r.ValueCLP
	}
	return models.NewRange(lo, hi)
}

// depreciation is the loss against list price in percent, one decimal.
func depreciation(listPrice, value float64) float64 {
	if listPrice <= 0 {
		return 0
	}
	pct := (listPrice - value) / listPrice * 100
	return math.Round(pct*10) / 10
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func toStandardError(vehicleID string, err error) error {
	switch {
	case errors.Is(err, ErrMissingVehicleID):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, ErrVehicleNotFound):
		return apperrors.NewVehicleNotFoundError(vehicleID)
	case errors.Is(err, ErrCatalogLoadFailed):
		return apperrors.NewCatalogLoadFailedError("vehicles", err)
	case errors.Is(err, ErrValuationTimeout):
		return apperrors.NewValuationTimeoutError()
	case errors.Is(err, ErrValuationFailed):
		return apperrors.NewValuationFailedError(err)
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
