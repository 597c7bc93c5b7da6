package searchvehicles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cotiza-workers/internal/common/camunda"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/workers/catalog/search-vehicles/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "search-vehicles"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound     = errors.New("INDEX_NOT_FOUND")
	ErrInvalidQuery      = errors.New("invalid search query")
)

type Handler struct {
	config   *Config
	client   *elasticsearch.Client
	obs      *observability.Observability
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		client:   client,
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
		h.reporter.Fail(context.Background(), client, job, started, h.toStandardError(err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidQuery)
	}

	q := queries.VehicleQuery{
		Index:        h.config.Index,
		Text:         input.Query,
		BodyTypes:    input.Filters.BodyTypes,
		FuelTypes:    input.Filters.FuelTypes,
		Transmission: input.Filters.Transmission,
		Condition:    input.Filters.Condition,
		PriceRange:   input.Filters.PriceRange,
		MinYear:      input.Filters.MinYear,
		SortBy:       input.SortBy,
	}
	if input.Pagination != nil {
		q.From = input.Pagination.From
		q.Size = input.Pagination.Size
	}
	q.Normalize()

	ctx, end := h.obs.StartSpan(ctx, "search-vehicles",
		attribute.String("index", q.Index),
		attribute.Int("size", q.Size),
	)
	result, err := queries.Execute(ctx, h.client, q)
	end(err)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, ErrSearchTimeout
		case errors.Is(err, queries.ErrIndexNotFound), errors.Is(err, queries.ErrMissingIndex):
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, q.Index)
		case errors.Is(err, queries.ErrUnknownSort), errors.Is(err, queries.ErrInvalidPriceRange):
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
		}
	}

	h.logger.Info("vehicle search completed", map[string]interface{}{
		"query":     input.Query,
		"totalHits": result.TotalHits,
		"returned":  len(result.Hits),
		"tookMs":    result.Took,
	})

	return &Output{
		Results:   result.Hits,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
		From:      q.From,
		Size:      q.Size,
	}, nil
}

func (h *Handler) toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrSearchTimeout):
		return apperrors.NewSearchTimeoutError()
	case errors.Is(err, ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(h.config.Index)
	case errors.Is(err, ErrInvalidQuery):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, ErrSearchQueryFailed):
		return apperrors.NewSearchQueryFailedError(err)
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
