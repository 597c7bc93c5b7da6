// internal/workers/catalog/search-vehicles/models.go
package searchvehicles

import (
	"cotiza-workers/internal/models"
	"cotiza-workers/internal/workers/catalog/search-vehicles/queries"
)

type Input struct {
	Query      string      `json:"query"`
	Filters    Filters     `json:"filters"`
	SortBy     string      `json:"sortBy,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Filters struct {
	BodyTypes    []models.BodyType   `json:"bodyTypes,omitempty"`
	FuelTypes    []models.FuelType   `json:"fuelTypes,omitempty"`
	Transmission models.Transmission `json:"transmission,omitempty"`
	Condition    models.Condition    `json:"condition,omitempty"`
	PriceRange   *models.Range       `json:"priceRange,omitempty"`
	MinYear      int                 `json:"minYear,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Results   []queries.Hit `json:"searchResults"`
	TotalHits int64         `json:"totalHits"`
	MaxScore  float64       `json:"maxScore"`
	Took      int64         `json:"took"`
	From      int           `json:"from"`
	Size      int           `json:"size"`
}
