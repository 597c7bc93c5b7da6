package loadinsurancequotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cotiza-workers/internal/catalog"
	"cotiza-workers/internal/common/camunda"
	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/observability"
	"cotiza-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "load-insurance-quotes"
)

var (
	ErrMissingVehicleID    = errors.New("vehicleId is required")
	ErrVehicleNotFound     = errors.New("VEHICLE_NOT_FOUND")
	ErrCatalogLoadFailed   = errors.New("CATALOG_LOAD_FAILED")
	ErrPremiumLookupFailed = errors.New("PREMIUM_LOOKUP_FAILED")
)

type QuoteCatalog interface {
	Vehicle(ctx context.Context, id string) (*models.Vehicle, error)
	InsuranceProducts(ctx context.Context) ([]models.InsuranceProduct, error)
	Premiums(ctx context.Context, vehicleID string) ([]models.Premium, error)
}

type Handler struct {
	config   *Config
	catalog  QuoteCatalog
	reporter *camunda.Reporter
	logger   logger.Logger
}

func NewHandler(config *Config, catalog QuoteCatalog, obs *observability.Observability, log logger.Logger) *Handler {
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
		h.reporter.Fail(context.Background(), client, job, started, toStandardError(input.VehicleID, err))
		return
	}

	h.reporter.Complete(context.Background(), client, job, started, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.VehicleID == "" {
		return nil, ErrMissingVehicleID
	}

	vehicle, err := h.catalog.Vehicle(ctx, input.VehicleID)
	if errors.Is(err, catalog.ErrVehicleNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, input.VehicleID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoadFailed, err)
	}

	products, err := h.catalog.InsuranceProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoadFailed, err)
	}

	premiums, err := h.catalog.Premiums(ctx, input.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPremiumLookupFailed, err)
	}

	priced := pricedProducts(products, premiums)
	if priced == 0 && h.config.RequirePremiums {
		return nil, fmt.Errorf("%w: no premium rows for vehicle %s", ErrPremiumLookupFailed, input.VehicleID)
	}

	h.logger.Info("insurance quotes loaded", map[string]interface{}{
		"vehicleId":    input.VehicleID,
		"productCount": len(products),
		"pricedCount":  priced,
	})

	return &Output{
		Vehicle:           vehicle,
		InsuranceProducts: products,
		Premiums:          premiums,
		ProductCount:      len(products),
		PricedCount:       priced,
	}, nil
}

// pricedProducts counts the products that have at least one premium row.
func pricedProducts(products []models.InsuranceProduct, premiums []models.Premium) int {
	withPremium := make(map[string]bool, len(premiums))
	for _, p := range premiums {
		withPremium[p.ProductID] = true
	}
	n := 0
	for _, p := range products {
		if withPremium[p.ID] {
			n++
		}
	}
	return n
}

func toStandardError(vehicleID string, err error) error {
	switch {
	case errors.Is(err, ErrMissingVehicleID):
		return apperrors.NewInvalidAnswersError(err.Error())
	case errors.Is(err, ErrVehicleNotFound):
		return apperrors.NewVehicleNotFoundError(vehicleID)
	case errors.Is(err, ErrPremiumLookupFailed):
		return apperrors.NewPremiumLookupFailedError(vehicleID, err)
	case errors.Is(err, ErrCatalogLoadFailed):
		return apperrors.NewCatalogLoadFailedError("insurance", err)
	default:
		return err
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
