package ranking

// Vehicle criterion weights. The budget block totals 0.5, split between the
// amortized monthly payment and the cash price.
const (
	VehicleBudgetPaymentWeight = 0.25
	VehicleBudgetCashWeight    = 0.25
	VehicleBodyTypeWeight      = 0.2
	VehicleFuelTypeWeight      = 0.1
	VehicleTransmissionWeight  = 0.05
	VehicleUsageWeight         = 0.1
	VehicleSafetyWeight        = 0.05
)

// Insurance criterion weights.
const (
	InsurancePriceWeight       = 0.45
	InsuranceDeductibleWeight  = 0.15
	InsuranceCoverageWeight    = 0.35
	InsurancePreferencesWeight = 0.2
)

type VehicleWeights struct {
	BudgetPayment float64 `json:"budget_payment" mapstructure:"budget_payment"`
	BudgetCash    float64 `json:"budget_cash" mapstructure:"budget_cash"`
	BodyType      float64 `json:"body_type" mapstructure:"body_type"`
	FuelType      float64 `json:"fuel_type" mapstructure:"fuel_type"`
	Transmission  float64 `json:"transmission" mapstructure:"transmission"`
	Usage         float64 `json:"usage" mapstructure:"usage"`
	Safety        float64 `json:"safety" mapstructure:"safety"`
}

type InsuranceWeights struct {
	Price       float64 `json:"price" mapstructure:"price"`
	Deductible  float64 `json:"deductible" mapstructure:"deductible"`
	Coverage    float64 `json:"coverage" mapstructure:"coverage"`
	Preferences float64 `json:"preferences" mapstructure:"preferences"`
}

func DefaultVehicleWeights() VehicleWeights {
	return VehicleWeights{
		BudgetPayment: VehicleBudgetPaymentWeight,
		BudgetCash:    VehicleBudgetCashWeight,
		BodyType:      VehicleBodyTypeWeight,
		FuelType:      VehicleFuelTypeWeight,
		Transmission:  VehicleTransmissionWeight,
		Usage:         VehicleUsageWeight,
		Safety:        VehicleSafetyWeight,
	}
}

func DefaultInsuranceWeights() InsuranceWeights {
	return InsuranceWeights{
		Price:       InsurancePriceWeight,
		Deductible:  InsuranceDeductibleWeight,
		Coverage:    InsuranceCoverageWeight,
		Preferences: InsurancePreferencesWeight,
	}
}

// MergeVehicleWeights applies the non-zero fields of override over base, so a
// calibration file can tune a single criterion.
func MergeVehicleWeights(base VehicleWeights, override *VehicleWeights) VehicleWeights {
	if override == nil {
		return base
	}
	result := base
	mergeWeight(&result.BudgetPayment, override.BudgetPayment)
	mergeWeight(&result.BudgetCash, override.BudgetCash)
	mergeWeight(&result.BodyType, override.BodyType)
	mergeWeight(&result.FuelType, override.FuelType)
	mergeWeight(&result.Transmission, override.Transmission)
	mergeWeight(&result.Usage, override.Usage)
	mergeWeight(&result.Safety, override.Safety)
	return result
}

func MergeInsuranceWeights(base InsuranceWeights, override *InsuranceWeights) InsuranceWeights {
	if override == nil {
		return base
	}
	result := base
	mergeWeight(&result.Price, override.Price)
	mergeWeight(&result.Deductible, override.Deductible)
	mergeWeight(&result.Coverage, override.Coverage)
	mergeWeight(&result.Preferences, override.Preferences)
	return result
}

func mergeWeight(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
