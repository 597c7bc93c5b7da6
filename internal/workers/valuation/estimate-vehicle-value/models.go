// internal/workers/valuation/estimate-vehicle-value/models.go
package estimatevehiclevalue

import "cotiza-workers/internal/models"

type Input struct {
	VehicleID string `json:"vehicleId"`
	// MileageKm overrides the catalog mileage for a trade-in quote.
	MileageKm *int `json:"mileageKm,omitempty"`
}

type Output struct {
	VehicleID         string       `json:"vehicleId"`
	EstimatedValueCLP float64      `json:"estimatedValueCLP"`
	ValueRange        models.Range `json:"valueRange"`
	ListPriceCLP      float64      `json:"listPriceCLP"`
	DepreciationPct   float64      `json:"depreciationPct"`
	Source            string       `json:"source"`
	FromCache         bool         `json:"fromCache"`
	ValuedAt          string       `json:"valuedAt"`
}

// valuationResponse is the body of GET {base}/v1/valuations.
type valuationResponse struct {
	ValueCLP float64 `json:"valueCLP"`
	MinCLP   float64 `json:"minCLP"`
	MaxCLP   float64 `json:"maxCLP"`
	Source   string  `json:"source"`
}
