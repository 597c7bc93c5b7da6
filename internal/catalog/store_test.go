package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vehicleColumns = []string{
	"id", "brand", "model", "version", "year", "price_clp", "body_type", "fuel_type",
	"transmission", "safety_rating", "seats", "features", "condition", "mileage_km",
}

func setup(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewStore(db, rdb, time.Minute, logger.NewTestLogger(t)), mock, mr
}

func vehicleRows() *sqlmock.Rows {
	return sqlmock.NewRows(vehicleColumns).
		AddRow("veh-1", "Toyota", "Corolla", "XEI", 2024, 18000000.0, "sedan", "gasoline", "automatic", 5.0, 5, []byte(`["carplay","abs"]`), "new", nil).
		AddRow("veh-2", "Ford", "Ranger", nil, 2023, 35000000.0, "pickup", "diesel", "manual", 4.0, 5, nil, "new", 1200)
}

func TestStore_Vehicles(t *testing.T) {
	store, mock, mr := setup(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT (.+) FROM vehicles WHERE active = true AND condition = \$1 ORDER BY id`).
		WithArgs("new").
		WillReturnRows(vehicleRows())

	vehicles, err := store.Vehicles(ctx, models.ConditionNew)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)

	assert.Equal(t, "XEI", vehicles[0].Version)
	assert.Equal(t, models.BodyTypeSedan, vehicles[0].BodyType)
	assert.Equal(t, []string{"carplay", "abs"}, vehicles[0].Features)
	assert.Equal(t, "", vehicles[1].Version)
	assert.Equal(t, 1200, vehicles[1].MileageKm)
	assert.Nil(t, vehicles[1].Features)

	assert.True(t, mr.Exists("catalog:vehicles:new"))
	assert.Equal(t, time.Minute, mr.TTL("catalog:vehicles:new"))

	// second read is served from redis
	again, err := store.Vehicles(ctx, models.ConditionNew)
	require.NoError(t, err)
	assert.Equal(t, vehicles, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Vehicles_AllConditions(t *testing.T) {
	store, mock, _ := setup(t)

	mock.ExpectQuery(`SELECT (.+) FROM vehicles WHERE active = true ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(vehicleColumns))

	vehicles, err := store.Vehicles(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, vehicles)
	assert.NotNil(t, vehicles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Vehicles_QueryError(t *testing.T) {
	store, mock, mr := setup(t)

	mock.ExpectQuery(`SELECT (.+) FROM vehicles`).WillReturnError(errors.New("connection reset"))

	_, err := store.Vehicles(context.Background(), models.ConditionUsed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query vehicles")
	assert.False(t, mr.Exists("catalog:vehicles:used"))
}

func TestStore_CorruptCacheEntryFallsBackToDatabase(t *testing.T) {
	store, mock, mr := setup(t)
	require.NoError(t, mr.Set("catalog:vehicles:all", "{not json"))

	mock.ExpectQuery(`SELECT (.+) FROM vehicles`).WillReturnRows(vehicleRows())

	vehicles, err := store.Vehicles(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RedisDownStillServesDatabase(t *testing.T) {
	store, mock, mr := setup(t)
	mr.Close()

	mock.ExpectQuery(`SELECT (.+) FROM vehicles`).WillReturnRows(vehicleRows())

	vehicles, err := store.Vehicles(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
}

func TestStore_Vehicle(t *testing.T) {
	store, mock, _ := setup(t)

	mock.ExpectQuery(`SELECT (.+) FROM vehicles WHERE id = \$1`).
		WithArgs("veh-1").
		WillReturnRows(sqlmock.NewRows(vehicleColumns).
			AddRow("veh-1", "Toyota", "Corolla", "XEI", 2024, 18000000.0, "sedan", "gasoline", "automatic", 5.0, 5, nil, "new", nil))
	mock.ExpectQuery(`SELECT (.+) FROM vehicles WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(vehicleColumns))

	v, err := store.Vehicle(context.Background(), "veh-1")
	require.NoError(t, err)
	assert.Equal(t, "Corolla", v.Model)

	_, err = store.Vehicle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsuranceProducts(t *testing.T) {
	store, mock, mr := setup(t)

	rows := sqlmock.NewRows([]string{
		"id", "insurer", "name", "plan", "deductible_uf", "glass_deductible_uf", "rc_limit_uf",
		"own_damage", "theft", "glass", "natural_disasters", "workshop_type",
		"replacement_car", "road_assistance", "international_cover",
	}).
		AddRow("ins-a", "Aseguradora Uno", "Full", "premium", 5.0, 0.0, 1000.0, true, true, true, false, "brand", true, true, false).
		AddRow("ins-b", "Aseguradora Dos", "Básico", nil, 10.0, 3.0, nil, true, false, false, false, "multibrand", false, true, false)
	mock.ExpectQuery(`SELECT (.+) FROM insurance_products WHERE active = true ORDER BY id`).WillReturnRows(rows)

	products, err := store.InsuranceProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, 1000.0, products[0].Coverages.CivilLiabilityUF)
	assert.Equal(t, models.WorkshopBrand, products[0].WorkshopType)
	assert.Equal(t, "premium", products[0].Plan)
	assert.Equal(t, 0.0, products[1].Coverages.CivilLiabilityUF)
	assert.Equal(t, "", products[1].Plan)

	raw, err := mr.Get("catalog:insurance:products")
	require.NoError(t, err)
	var cached []models.InsuranceProduct
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, products, cached)
}

func TestStore_Premiums(t *testing.T) {
	store, mock, _ := setup(t)

	mock.ExpectQuery(`SELECT product_id, vehicle_id, monthly_clp, annual_clp FROM insurance_premiums WHERE vehicle_id = \$1 ORDER BY product_id`).
		WithArgs("veh-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "vehicle_id", "monthly_clp", "annual_clp"}).
			AddRow("ins-a", "veh-1", 42000.0, 504000.0).
			AddRow("ins-b", "veh-1", 38000.0, 456000.0))

	premiums, err := store.Premiums(context.Background(), "veh-1")
	require.NoError(t, err)
	assert.Equal(t, []models.Premium{
		{ProductID: "ins-a", VehicleID: "veh-1", MonthlyCLP: 42000, AnnualCLP: 504000},
		{ProductID: "ins-b", VehicleID: "veh-1", MonthlyCLP: 38000, AnnualCLP: 456000},
	}, premiums)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithoutRedis(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, nil, 0, logger.NewNoOpLogger())
	assert.Equal(t, defaultTTL, store.ttl)

	mock.ExpectQuery(`SELECT (.+) FROM insurance_premiums`).
		WithArgs("veh-9").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "vehicle_id", "monthly_clp", "annual_clp"}))
	premiums, err := store.Premiums(context.Background(), "veh-9")
	require.NoError(t, err)
	assert.Empty(t, premiums)
}
