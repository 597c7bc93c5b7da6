package rankvehicles

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "cotiza-workers/internal/common/errors"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	vehicles  []models.Vehicle
	err       error
	calls     int
	condition models.Condition
}

func (f *fakeCatalog) Vehicles(_ context.Context, condition models.Condition) ([]models.Vehicle, error) {
	f.calls++
	f.condition = condition
	if f.err != nil {
		return nil, f.err
	}
	return f.vehicles, nil
}

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func budget(min, max float64) *models.Range {
	r := models.NewRange(min, max)
	return &r
}

func sedan() models.Vehicle {
	return models.Vehicle{
		ID: "veh-sedan", Brand: "Toyota", Model: "Corolla", Year: 2024, PriceCLP: 18_000_000,
		BodyType: models.BodyTypeSedan, FuelType: models.FuelTypeGasoline, Transmission: models.TransmissionAutomatic,
		SafetyRating: 4, Seats: 5, Condition: models.ConditionNew,
	}
}

func pickup() models.Vehicle {
	return models.Vehicle{
		ID: "veh-pickup", Brand: "Ford", Model: "Ranger", Year: 2024, PriceCLP: 35_000_000,
		BodyType: models.BodyTypePickup, FuelType: models.FuelTypeDiesel, Transmission: models.TransmissionManual,
		SafetyRating: 4, Seats: 5, Condition: models.ConditionUsed,
	}
}

func hatchback(i int, price float64) models.Vehicle {
	return models.Vehicle{
		ID: fmt.Sprintf("veh-hatch-%d", i), Brand: "Suzuki", Model: "Swift", Year: 2024, PriceCLP: price,
		BodyType: models.BodyTypeHatchback, FuelType: models.FuelTypeGasoline, Transmission: models.TransmissionManual,
		SafetyRating: 3, Seats: 5, Condition: models.ConditionNew,
	}
}

func TestHandler_Execute_InlineVehicles(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, nil, nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{
		Answers: models.VehicleAnswers{
			MonthlyBudget: budget(300_000, 500_000),
			BodyTypes:     []models.BodyType{models.BodyTypeSedan},
		},
		Vehicles: []models.Vehicle{pickup(), sedan()},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.CandidateCount)
	assert.Equal(t, 1, output.EligibleCount)
	require.Len(t, output.Recommendations, 1)

	rec := output.Recommendations[0]
	assert.Equal(t, "veh-sedan", rec.Vehicle.ID)
	assert.Equal(t, 71, rec.Score)
	assert.Contains(t, rec.Reasons, "Carrocería Sedán")
	assert.InDelta(t, 586833.04, rec.MonthlyEstimateCLP, 0.01)
	assert.False(t, output.FromCache)
	assert.NotEmpty(t, output.RankedAt)
}

func TestHandler_Execute_InlineVehiclesFilteredByCondition(t *testing.T) {
	catalog := &fakeCatalog{}
	h := NewHandler(createTestConfig(), catalog, nil, nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{
		Answers:  models.VehicleAnswers{Condition: models.ConditionUsed},
		Vehicles: []models.Vehicle{pickup(), sedan()},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, catalog.calls)
	assert.Equal(t, 1, output.CandidateCount)
	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, "veh-pickup", output.Recommendations[0].Vehicle.ID)
}

func TestHandler_Execute_CatalogFallback(t *testing.T) {
	catalog := &fakeCatalog{vehicles: []models.Vehicle{sedan()}}
	h := NewHandler(createTestConfig(), catalog, nil, nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{
		Answers: models.VehicleAnswers{Condition: models.ConditionNew},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, models.ConditionNew, catalog.condition)
	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, "veh-sedan", output.Recommendations[0].Vehicle.ID)
}

func TestHandler_Execute_CatalogError(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection refused")}
	h := NewHandler(createTestConfig(), catalog, nil, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogLoadFailed)

	stdErr := apperrors.AsStandardError(toStandardError(err))
	assert.Equal(t, apperrors.ErrCodeCatalogLoadFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_TruncatesToMaxResults(t *testing.T) {
	var vehicles []models.Vehicle
	for i := 0; i < 6; i++ {
		vehicles = append(vehicles, hatchback(i, 9_000_000+float64(i)*500_000))
	}

	tests := []struct {
		name       string
		configured int
		requested  int
		want       int
	}{
		{"config limit", 4, 0, 4},
		{"smaller request wins", 4, 2, 2},
		{"larger request capped", 4, 50, 4},
		{"fewer candidates than limit", 10, 0, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.MaxResults = tt.configured
			h := NewHandler(cfg, nil, nil, nil, logger.NewTestLogger(t))

			output, err := h.Execute(context.Background(), &Input{
				Answers:    models.VehicleAnswers{MonthlyBudget: budget(250_000, 450_000)},
				Vehicles:   vehicles,
				MaxResults: tt.requested,
			})
			require.NoError(t, err)
			assert.Len(t, output.Recommendations, tt.want)
			assert.Equal(t, 6, output.EligibleCount)
			for i := 1; i < len(output.Recommendations); i++ {
				assert.GreaterOrEqual(t, output.Recommendations[i-1].Score, output.Recommendations[i].Score)
			}
		})
	}
}

func TestHandler_Execute_ResultCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	catalog := &fakeCatalog{vehicles: []models.Vehicle{sedan(), hatchback(1, 10_000_000)}}
	h := NewHandler(createTestConfig(), catalog, rdb, nil, logger.NewTestLogger(t))
	input := &Input{Answers: models.VehicleAnswers{MonthlyBudget: budget(300_000, 600_000)}}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Len(t, mr.Keys(), 1)

	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, 2, catalog.calls)

	// different answers miss the cache
	third, err := h.Execute(context.Background(), &Input{Answers: models.VehicleAnswers{MonthlyBudget: budget(300_000, 700_000)}})
	require.NoError(t, err)
	assert.False(t, third.FromCache)
	assert.Len(t, mr.Keys(), 2)
}

func TestHandler_Execute_CacheDownStillRanks(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	h := NewHandler(createTestConfig(), nil, rdb, nil, logger.NewTestLogger(t))
	output, err := h.Execute(context.Background(), &Input{Vehicles: []models.Vehicle{sedan()}})
	require.NoError(t, err)
	assert.Len(t, output.Recommendations, 1)
}

func TestHandler_Execute_EmptyCandidates(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, nil, nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, output.Recommendations)
	assert.Empty(t, output.Recommendations)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, nil, nil, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}
