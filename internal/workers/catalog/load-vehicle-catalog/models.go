// internal/workers/catalog/load-vehicle-catalog/models.go
package loadvehiclecatalog

import "cotiza-workers/internal/models"

type Input struct {
	Condition models.Condition `json:"condition,omitempty"`
	// VehicleIDs narrows the snapshot to these ids, in catalog order.
	VehicleIDs []string `json:"vehicleIds,omitempty"`
}

type Output struct {
	Vehicles     []models.Vehicle `json:"vehicles"`
	VehicleCount int              `json:"vehicleCount"`
	LoadedAt     string           `json:"loadedAt"`
}
