// internal/workers/recommendation/rank-insurance/models.go
package rankinsurance

import "cotiza-workers/internal/models"

type Input struct {
	Answers models.InsuranceAnswers `json:"insuranceAnswers"`
	// Products and Premiums override the catalog when present.
	Products   []models.InsuranceProduct `json:"insuranceProducts,omitempty"`
	Premiums   []models.Premium          `json:"premiums,omitempty"`
	MaxResults int                       `json:"maxResults,omitempty"`
}

type Output struct {
	Recommendations []models.InsuranceRecommendation `json:"insuranceRecommendations"`
	CandidateCount  int                              `json:"candidateCount"`
	EligibleCount   int                              `json:"eligibleCount"`
	FromCache       bool                             `json:"fromCache"`
	RankedAt        string                           `json:"rankedAt"`
}
