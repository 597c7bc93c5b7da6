// internal/workers/catalog/load-insurance-quotes/models.go
package loadinsurancequotes

import "cotiza-workers/internal/models"

type Input struct {
	VehicleID string `json:"vehicleId"`
}

type Output struct {
	Vehicle           *models.Vehicle           `json:"vehicle"`
	InsuranceProducts []models.InsuranceProduct `json:"insuranceProducts"`
	Premiums          []models.Premium          `json:"premiums"`
	ProductCount      int                       `json:"productCount"`
	PricedCount       int                       `json:"pricedCount"`
}
