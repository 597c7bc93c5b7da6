package ranking

import (
	"sort"

	"cotiza-workers/internal/models"
	"cotiza-workers/internal/scoring"
)

// Partial credit for soft vehicle preferences that do not match.
const (
	BodyTypeMismatchScore     = 0.3
	FuelTypeMismatchScore     = 0.5
	TransmissionMismatchScore = 0.5
	NeutralScore              = 0.5

	// VehicleBudgetLeniency lets the pre-filter keep vehicles up to 20% over the
	// monthly budget ceiling.
	VehicleBudgetLeniency = 1.2

	MinSafetyForReason = 4
	MaxSafetyRating    = 5
)

// Usage heuristic bonuses, added over the neutral base and capped at 1.
const (
	usageCityBodyBonus    = 0.25
	usageCityFuelBonus    = 0.25
	usageFamilySeatsBonus = 0.25
	usageFamilyBodyBonus  = 0.25
	usageOffroadBonus     = 0.5
	usageSportBonus       = 0.5

	familyMinSeats = 5
)

type VehicleRanker struct {
	Terms   FinanceTerms
	Weights VehicleWeights
}

func NewVehicleRanker() *VehicleRanker {
	return &VehicleRanker{
		Terms:   DefaultFinanceTerms,
		Weights: DefaultVehicleWeights(),
	}
}

var defaultVehicleRanker = NewVehicleRanker()

func RankVehicles(candidates []models.Vehicle, answers models.VehicleAnswers) []models.VehicleRecommendation {
	return defaultVehicleRanker.Rank(candidates, answers)
}

func FilterVehiclesByBudget(candidates []models.Vehicle, monthlyBudget, downPayment *models.Range) []models.Vehicle {
	return defaultVehicleRanker.FilterByBudget(candidates, monthlyBudget, downPayment)
}

// Rank scores every candidate and returns them best first. Candidates with equal
// scores keep their input order.
func (r *VehicleRanker) Rank(candidates []models.Vehicle, answers models.VehicleAnswers) []models.VehicleRecommendation {
	recs := make([]models.VehicleRecommendation, 0, len(candidates))
	for _, v := range candidates {
		eval := r.Evaluate(v, answers)
		recs = append(recs, models.VehicleRecommendation{
			Vehicle:            v,
			Score:              eval.Score(),
			Reasons:            Reasons(eval.Signals, MaxVehicleReasons),
			MonthlyEstimateCLP: r.MonthlyEstimate(v, answers.DownPayment),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}

// MonthlyEstimate amortizes the price minus the smallest down payment the buyer
// is willing to make.
func (r *VehicleRanker) MonthlyEstimate(v models.Vehicle, downPayment *models.Range) float64 {
	principal := v.PriceCLP
	if downPayment != nil {
		principal -= downPayment.Min()
	}
	return MonthlyPayment(principal, r.Terms)
}

func (r *VehicleRanker) Evaluate(v models.Vehicle, answers models.VehicleAnswers) Evaluation {
	var eval Evaluation
	w := r.Weights

	payment := r.MonthlyEstimate(v, answers.DownPayment)
	eval.add(r.budgetScore(payment, answers.MonthlyBudget, &eval), w.BudgetPayment, CriterionBudget)
	eval.add(cashScore(v.PriceCLP, answers.DownPayment), w.BudgetCash, CriterionCash)

	if len(answers.BodyTypes) > 0 {
		score := BodyTypeMismatchScore
		if contains(answers.BodyTypes, v.BodyType) {
			score = 1
			eval.match(CriterionBodyType, string(v.BodyType))
		}
		eval.add(score, w.BodyType, CriterionBodyType)
	} else {
		eval.add(1, w.BodyType, CriterionBodyType)
	}

	if len(answers.FuelTypes) > 0 {
		score := FuelTypeMismatchScore
		if contains(answers.FuelTypes, v.FuelType) {
			score = 1
			eval.match(CriterionFuelType, string(v.FuelType))
		}
		eval.add(score, w.FuelType, CriterionFuelType)
	} else {
		eval.add(1, w.FuelType, CriterionFuelType)
	}

	if answers.Transmission != "" && answers.Transmission != models.TransmissionAny {
		score := TransmissionMismatchScore
		if v.Transmission == answers.Transmission {
			score = 1
			eval.match(CriterionTransmission, string(v.Transmission))
		}
		eval.add(score, w.Transmission, CriterionTransmission)
	}

	eval.add(usageScore(v, answers.Usage, &eval), w.Usage, CriterionUsage)

	eval.add(scoring.Normalize(v.SafetyRating, 0, MaxSafetyRating), w.Safety, CriterionSafety)
	if v.SafetyRating >= MinSafetyForReason {
		eval.match(CriterionSafety, formatNumber(v.SafetyRating))
	}

	return eval
}

func (r *VehicleRanker) budgetScore(payment float64, budget *models.Range, eval *Evaluation) float64 {
	if budget == nil {
		return NeutralScore
	}
	if budget.Contains(payment) {
		eval.match(CriterionBudget, "")
		return 1
	}
	return scoring.NormalizeInverse(budget.DistanceFromMid(payment), 0, budget.Max())
}

func cashScore(price float64, downPayment *models.Range) float64 {
	if downPayment != nil && price <= downPayment.Max() {
		return 1
	}
	return NeutralScore
}

func usageScore(v models.Vehicle, usage []string, eval *Evaluation) float64 {
	score := NeutralScore
	for _, tag := range usage {
		switch tag {
		case models.UsageCity:
			if v.BodyType == models.BodyTypeHatchback {
				score += usageCityBodyBonus
			}
			if v.FuelType == models.FuelTypeHybrid || v.FuelType == models.FuelTypeElectric {
				score += usageCityFuelBonus
			}
		case models.UsageFamily:
			roomy := v.Seats >= familyMinSeats
			familyBody := v.BodyType == models.BodyTypeSUV || v.BodyType == models.BodyTypeMinivan
			if roomy {
				score += usageFamilySeatsBonus
			}
			if familyBody {
				score += usageFamilyBodyBonus
			}
			if roomy && familyBody {
				eval.match(CriterionFamily, "")
			}
		case models.UsageOffroad:
			if v.BodyType == models.BodyTypePickup || v.BodyType == models.BodyTypeSUV {
				score += usageOffroadBonus
				eval.match(CriterionOffroad, "")
			}
		case models.UsageSport:
			if v.BodyType == models.BodyTypeCoupe || v.BodyType == models.BodyTypeConvertible {
				score += usageSportBonus
			}
		}
	}
	return scoring.Clamp(score, 0, 1)
}

// FilterByBudget drops vehicles whose payment, financed with the largest down
// payment on offer, exceeds the budget ceiling plus the leniency band. A nil
// budget keeps everything.
func (r *VehicleRanker) FilterByBudget(candidates []models.Vehicle, monthlyBudget, downPayment *models.Range) []models.Vehicle {
	if monthlyBudget == nil {
		return candidates
	}
	ceiling := monthlyBudget.Max() * VehicleBudgetLeniency

	var out []models.Vehicle
	for _, v := range candidates {
		principal := v.PriceCLP
		if downPayment != nil {
			principal -= downPayment.Max()
		}
		if MonthlyPayment(principal, r.Terms) <= ceiling {
			out = append(out, v)
		}
	}
	return out
}

// FilterVehiclesByCondition keeps exact matches. An empty condition is a no-op.
func FilterVehiclesByCondition(candidates []models.Vehicle, condition models.Condition) []models.Vehicle {
	if condition == "" {
		return candidates
	}
	var out []models.Vehicle
	for _, v := range candidates {
		if v.Condition == condition {
			out = append(out, v)
		}
	}
	return out
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
