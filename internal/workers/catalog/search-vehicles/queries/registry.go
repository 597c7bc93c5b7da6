package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cotiza-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

var (
	ErrIndexNotFound = errors.New("index not found")
)

type Hit struct {
	Vehicle models.Vehicle `json:"vehicle"`
	Score   float64        `json:"score"`
}

type QueryResult struct {
	Hits      []Hit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score  *float64       `json:"_score"`
			Source models.Vehicle `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Execute runs q against the cluster and decodes the vehicle documents.
func Execute(ctx context.Context, esClient *elasticsearch.Client, q VehicleQuery) (*QueryResult, error) {
	req, err := BuildQuery(q)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, q.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &QueryResult{
		Hits:      make([]Hit, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, h := range r.Hits.Hits {
		hit := Hit{Vehicle: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}
