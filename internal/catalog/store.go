// Package catalog reads the vehicle and insurance catalogs from postgres,
// keeping a JSON snapshot of every read in redis.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cotiza-workers/internal/common/database"
	"cotiza-workers/internal/common/logger"
	"cotiza-workers/internal/common/metrics"
	"cotiza-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
)

const (
	keyVehicles = "catalog:vehicles:"
	keyVehicle  = "catalog:vehicle:"
	keyProducts = "catalog:insurance:products"
	keyPremiums = "catalog:premiums:"
	allVehicles = "all"
	vehicleCols = `id, brand, model, version, year, price_clp, body_type, fuel_type, transmission, safety_rating, seats, features, condition, mileage_km`
	productCols = `id, insurer, name, plan, deductible_uf, glass_deductible_uf, rc_limit_uf, own_damage, theft, glass, natural_disasters, workshop_type, replacement_car, road_assistance, international_cover`
	premiumCols = `product_id, vehicle_id, monthly_clp, annual_clp`
	defaultTTL  = 10 * time.Minute
)

// Store is safe for concurrent use. A nil redis client disables caching.
type Store struct {
	db     *sql.DB
	cache  *database.JSONCache
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		db:     db,
		cache:  database.NewJSONCache(rdb, ttl),
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// Vehicles lists active vehicles, optionally restricted to one condition.
func (s *Store) Vehicles(ctx context.Context, condition models.Condition) ([]models.Vehicle, error) {
	key := keyVehicles + allVehicles
	if condition != "" {
		key = keyVehicles + string(condition)
	}

	var vehicles []models.Vehicle
	if s.cached(ctx, key, metrics.KindVehicle, &vehicles) {
		return vehicles, nil
	}

	query := `SELECT ` + vehicleCols + ` FROM vehicles WHERE active = true`
	args := []interface{}{}
	if condition != "" {
		query += ` AND condition = $1`
		args = append(args, string(condition))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles = []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}

	s.store(ctx, key, vehicles)
	return vehicles, nil
}

// Vehicle loads one vehicle by id, active or not.
func (s *Store) Vehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	key := keyVehicle + id
	var cached models.Vehicle
	if s.cached(ctx, key, metrics.KindVehicle, &cached) {
		return &cached, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+vehicleCols+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, v)
	return v, nil
}

func (s *Store) InsuranceProducts(ctx context.Context) ([]models.InsuranceProduct, error) {
	var products []models.InsuranceProduct
	if s.cached(ctx, keyProducts, metrics.KindInsurance, &products) {
		return products, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+productCols+` FROM insurance_products WHERE active = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query insurance products: %w", err)
	}
	defer rows.Close()

	products = []models.InsuranceProduct{}
	for rows.Next() {
		var (
			p       models.InsuranceProduct
			plan    sql.NullString
			rcLimit sql.NullFloat64
		)
		err := rows.Scan(
			&p.ID, &p.Insurer, &p.Name, &plan, &p.DeductibleUF, &p.GlassDeductibleUF, &rcLimit,
			&p.Coverages.OwnDamage, &p.Coverages.Theft, &p.Coverages.Glass, &p.Coverages.NaturalDisasters,
			&p.WorkshopType, &p.ReplacementCar, &p.RoadAssistance, &p.InternationalCover,
		)
		if err != nil {
			return nil, fmt.Errorf("scan insurance product: %w", err)
		}
		p.Plan = plan.String
		p.Coverages.CivilLiabilityUF = rcLimit.Float64
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insurance products: %w", err)
	}

	s.store(ctx, keyProducts, products)
	return products, nil
}

// Premiums returns the premium table for one vehicle.
func (s *Store) Premiums(ctx context.Context, vehicleID string) ([]models.Premium, error) {
	key := keyPremiums + vehicleID
	var premiums []models.Premium
	if s.cached(ctx, key, metrics.KindInsurance, &premiums) {
		return premiums, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+premiumCols+` FROM insurance_premiums WHERE vehicle_id = $1 ORDER BY product_id`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("query premiums: %w", err)
	}
	defer rows.Close()

	premiums = []models.Premium{}
	for rows.Next() {
		var p models.Premium
		if err := rows.Scan(&p.ProductID, &p.VehicleID, &p.MonthlyCLP, &p.AnnualCLP); err != nil {
			return nil, fmt.Errorf("scan premium: %w", err)
		}
		premiums = append(premiums, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate premiums: %w", err)
	}

	s.store(ctx, key, premiums)
	return premiums, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(row scanner) (*models.Vehicle, error) {
	var (
		v        models.Vehicle
		version  sql.NullString
		features []byte
		mileage  sql.NullInt64
	)
	err := row.Scan(
		&v.ID, &v.Brand, &v.Model, &version, &v.Year, &v.PriceCLP,
		&v.BodyType, &v.FuelType, &v.Transmission, &v.SafetyRating, &v.Seats,
		&features, &v.Condition, &mileage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	v.Version = version.String
	v.MileageKm = int(mileage.Int64)
	if len(features) > 0 {
		if err := json.Unmarshal(features, &v.Features); err != nil {
			v.Features = nil
		}
	}
	return &v, nil
}

// cached loads key into out. Cache errors count as misses.
func (s *Store) cached(ctx context.Context, key, kind string, out interface{}) bool {
	if !s.cache.Enabled() {
		return false
	}
	hit, err := s.cache.Get(ctx, key, out)
	if err != nil {
		s.logger.Warn("catalog cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	metrics.ObserveCache(kind, hit)
	return hit
}

func (s *Store) store(ctx context.Context, key string, v interface{}) {
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.logger.Warn("catalog cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
