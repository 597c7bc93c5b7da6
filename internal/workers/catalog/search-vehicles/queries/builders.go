package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"cotiza-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex      = errors.New("index name is required")
	ErrUnknownSort       = errors.New("unknown sort")
	ErrInvalidPriceRange = errors.New("price range minimum exceeds maximum")
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Sort orders accepted by BuildQuery. Relevance is the default.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearDesc  = "year_desc"
)

// VehicleQuery is a free-text search over the vehicle index with optional
// structured filters.
type VehicleQuery struct {
	Index        string
	Text         string
	BodyTypes    []models.BodyType
	FuelTypes    []models.FuelType
	Transmission models.Transmission
	Condition    models.Condition
	PriceRange   *models.Range
	MinYear      int
	SortBy       string
	From         int
	Size         int
}

// Normalize clamps the pagination window.
func (q *VehicleQuery) Normalize() {
	if q.From < 0 {
		q.From = 0
	}
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	if q.SortBy == "" {
		q.SortBy = SortRelevance
	}
}

// BuildQuery builds the search request for q.
func BuildQuery(q VehicleQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}
	q.Normalize()

	body, err := BuildBody(q)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	return &esapi.SearchRequest{
		Index:          []string{q.Index},
		Body:           bytes.NewReader(raw),
		From:           &q.From,
		Size:           &q.Size,
		TrackTotalHits: true,
	}, nil
}

// BuildBody returns the query DSL document for q.
func BuildBody(q VehicleQuery) (map[string]interface{}, error) {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.Text,
				"fields":    []string{"brand^3", "model^3", "version^2", "features"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	filter = append(filter, map[string]interface{}{
		"term": map[string]interface{}{"active": true},
	})
	if len(q.BodyTypes) > 0 {
		filter = append(filter, terms("bodyType", q.BodyTypes))
	}
	if len(q.FuelTypes) > 0 {
		filter = append(filter, terms("fuelType", q.FuelTypes))
	}
	if q.Transmission != "" && q.Transmission != models.TransmissionAny {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"transmission": q.Transmission},
		})
	}
	if q.Condition != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"condition": q.Condition},
		})
	}
	if q.PriceRange != nil {
		if q.PriceRange.Min() > q.PriceRange.Max() {
			return nil, ErrInvalidPriceRange
		}
		bounds := map[string]interface{}{"lte": q.PriceRange.Max()}
		if q.PriceRange.Min() > 0 {
			bounds["gte"] = q.PriceRange.Min()
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"priceCLP": bounds},
		})
	}
	if q.MinYear > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"year": map[string]interface{}{"gte": q.MinYear}},
		})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	switch q.SortBy {
	case "", SortRelevance:
	case SortPriceAsc:
		body["sort"] = []interface{}{map[string]interface{}{"priceCLP": "asc"}}
	case SortPriceDesc:
		body["sort"] = []interface{}{map[string]interface{}{"priceCLP": "desc"}}
	case SortYearDesc:
		body["sort"] = []interface{}{
			map[string]interface{}{"year": "desc"},
			map[string]interface{}{"priceCLP": "asc"},
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSort, q.SortBy)
	}

	return body, nil
}

func terms[T ~string](field string, values []T) map[string]interface{} {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return map[string]interface{}{
		"terms": map[string]interface{}{field: out},
	}
}
