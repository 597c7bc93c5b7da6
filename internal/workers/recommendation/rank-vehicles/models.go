// internal/workers/recommendation/rank-vehicles/models.go
package rankvehicles

import "cotiza-workers/internal/models"

type Input struct {
	Answers models.VehicleAnswers `json:"vehicleAnswers"`
	// Vehicles overrides the catalog when present.
	Vehicles   []models.Vehicle `json:"vehicles,omitempty"`
	MaxResults int              `json:"maxResults,omitempty"`
}

type Output struct {
	Recommendations []models.VehicleRecommendation `json:"vehicleRecommendations"`
	CandidateCount  int                            `json:"candidateCount"`
	EligibleCount   int                            `json:"eligibleCount"`
	FromCache       bool                           `json:"fromCache"`
	RankedAt        string                         `json:"rankedAt"`
}
