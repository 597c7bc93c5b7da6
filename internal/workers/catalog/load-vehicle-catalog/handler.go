package loadvehiclecatalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cotiza-workers/internal/common/camunda"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "load-vehicle-catalog"
)

var (
	ErrCatalogLoadFailed = errors.New("CATALOG_LOAD_FAILED")
	ErrInvalidCondition  = errors.New("invalid condition")
)

type VehicleCatalog interface {
	Vehicles(ctx context.Context, condition models.Condition) ([]models.Vehicle, error)
}

type Handler struct {
	config   *Config
	catalog  VehicleCatalog
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, catalog VehicleCatalog, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		catalog:  catalog,
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
	switch input.Condition {
	case "", models.ConditionNew, models.ConditionUsed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCondition, input.Condition)
	}

	start := time.Now()
	vehicles, err := h.catalog.Vehicles(ctx, input.Condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoadFailed, err)
	}

	if len(input.VehicleIDs) > 0 {
		wanted := make(map[string]bool, len(input.VehicleIDs))
		for _, id := range input.VehicleIDs {
			wanted[id] = true
		}
		selected := make([]models.Vehicle, 0, len(input.VehicleIDs))
		for _, v := range vehicles {
			if wanted[v.ID] {
				selected = append(selected, v)
			}
		}
		vehicles = selected
	}

	h.logger.Info("vehicle catalog loaded", map[string]interface{}{
		"condition":    string(input.Condition),
		"vehicleCount": len(vehicles),
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return &Output{
		Vehicles:     vehicles,
		VehicleCount: len(vehicles),
		LoadedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func toStandardError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCondition):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, ErrCatalogLoadFailed):
		return apperrors.NewCatalogLoadFailedError("vehicles", err)
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
