// internal/models/insurance.go
package models

type WorkshopType string

const (
	WorkshopBrand      WorkshopType = "brand"
	WorkshopMultibrand WorkshopType = "multibrand"
)

// Minimum coverages the insurance wizard can mark as mandatory.
const (
	CoverageRC1000  = "rc-1000"
	CoverageDamage  = "damage"
	CoverageTheft   = "theft"
	CoverageGlass   = "glass"
	CoverageNatural = "natural"
)

// Optional preferences that nudge the ranking without excluding products.
const (
	PreferenceBrandWorkshop       = "brand-workshop"
	PreferenceReplacementCar      = "replacement-car"
	PreferenceRoadAssistance      = "road-assistance"
	PreferenceInternational       = "international"
	PreferenceZeroDeductibleGlass = "zero-deductible-glass"
)

type Coverages struct {
	// CivilLiabilityUF is the RC limit; zero means not included.
	CivilLiabilityUF float64 `json:"civilLiabilityUF"`
	OwnDamage        bool    `json:"ownDamage"`
	Theft            bool    `json:"theft"`
	Glass            bool    `json:"glass"`
	NaturalDisasters bool    `json:"naturalDisasters"`
}

type InsuranceProduct struct {
	ID                 string       `json:"id"`
	Insurer            string       `json:"insurer"`
	Name               string       `json:"name"`
	Plan               string       `json:"plan,omitempty"`
	DeductibleUF       float64      `json:"deductibleUF"`
	GlassDeductibleUF  float64      `json:"glassDeductibleUF"`
	Coverages          Coverages    `json:"coverages"`
	WorkshopType       WorkshopType `json:"workshopType"`
	ReplacementCar     bool         `json:"replacementCar"`
	RoadAssistance     bool         `json:"roadAssistance"`
	InternationalCover bool         `json:"internationalCover"`
}

// Premium is the price of one product for one vehicle.
type Premium struct {
	ProductID  string  `json:"productId"`
	VehicleID  string  `json:"vehicleId"`
	MonthlyCLP float64 `json:"monthlyCLP"`
	AnnualCLP  float64 `json:"annualCLP"`
}

type InsuranceAnswers struct {
	VehicleID        string   `json:"vehicleId,omitempty"`
	MonthlyBudget    Range    `json:"monthlyBudget"`
	DeductibleRange  *Range   `json:"deductibleRange,omitempty"`
	MinimumCoverages []string `json:"minimumCoverages,omitempty"`
	Preferences      []string `json:"preferences,omitempty"`
}

type InsuranceRecommendation struct {
	Product            InsuranceProduct `json:"product"`
	Premium            *Premium         `json:"premium,omitempty"`
	Score              int              `json:"score"`
	Reasons            []string         `json:"reasons"`
	MonthlyEstimateCLP float64          `json:"monthlyEstimateCLP,omitempty"`
}
