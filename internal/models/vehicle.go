// internal/models/vehicle.go
package models

type BodyType string

const (
	BodyTypeSedan       BodyType = "sedan"
	BodyTypeHatchback   BodyType = "hatchback"
	BodyTypeSUV         BodyType = "suv"
	BodyTypePickup      BodyType = "pickup"
	BodyTypeCoupe       BodyType = "coupe"
	BodyTypeMinivan     BodyType = "minivan"
	BodyTypeWagon       BodyType = "wagon"
	BodyTypeConvertible BodyType = "convertible"
)

type FuelType string

const (
	FuelTypeGasoline FuelType = "gasoline"
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypeHybrid   FuelType = "hybrid"
	FuelTypeElectric FuelType = "electric"
)

type Transmission string

const (
	TransmissionAny       Transmission = "any"
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// Usage tags a buyer can pick in the vehicle wizard.
const (
	UsageCity    = "city"
	UsageFamily  = "family"
	UsageOffroad = "offroad"
	UsageSport   = "sport"
)

type Vehicle struct {
	ID           string       `json:"id"`
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Version      string       `json:"version,omitempty"`
	Year         int          `json:"year"`
	PriceCLP     float64      `json:"priceCLP"`
	BodyType     BodyType     `json:"bodyType"`
	FuelType     FuelType     `json:"fuelType"`
	Transmission Transmission `json:"transmission"`
	SafetyRating float64      `json:"safetyRating"`
	Seats        int          `json:"seats"`
	Features     []string     `json:"features,omitempty"`
	Condition    Condition    `json:"condition"`
	MileageKm    int          `json:"mileageKm,omitempty"`
}

type VehicleAnswers struct {
	MonthlyBudget *Range       `json:"monthlyBudget,omitempty"`
	DownPayment   *Range       `json:"downPayment,omitempty"`
	BodyTypes     []BodyType   `json:"bodyTypes,omitempty"`
	FuelTypes     []FuelType   `json:"fuelTypes,omitempty"`
	Transmission  Transmission `json:"transmission,omitempty"`
	Usage         []string     `json:"usage,omitempty"`
	Condition     Condition    `json:"condition,omitempty"`
	Features      []string     `json:"features,omitempty"`
}

type VehicleRecommendation struct {
	Vehicle            Vehicle  `json:"vehicle"`
	Score              int      `json:"score"`
	Reasons            []string `json:"reasons"`
	MonthlyEstimateCLP float64  `json:"monthlyEstimateCLP"`
}
