package ranking

import (
	"sort"

	"cotiza-workers/internal/models"
	"cotiza-workers/internal/scoring"
)

const (
	DeductibleMismatchScore = 0.3

	// InsuranceBudgetLeniency is looser than the vehicle band; premiums vary more
	// between insurers for the same vehicle.
	InsuranceBudgetLeniency = 1.3

	// RCMinimumUF is the civil liability limit required by the rc-1000 coverage.
	RCMinimumUF = 1000
)

// Scores for soft preferences the product does not satisfy. A satisfied
// preference always scores 1.
var preferenceMissScores = map[string]float64{
	models.PreferenceBrandWorkshop:       0.4,
	models.PreferenceReplacementCar:      0.3,
	models.PreferenceRoadAssistance:      0.2,
	models.PreferenceInternational:       0.5,
	models.PreferenceZeroDeductibleGlass: 0.4,
}

type InsuranceRanker struct {
	Weights InsuranceWeights
}

func NewInsuranceRanker() *InsuranceRanker {
	return &InsuranceRanker{Weights: DefaultInsuranceWeights()}
}

var defaultInsuranceRanker = NewInsuranceRanker()

func RankInsurance(candidates []models.InsuranceProduct, premiums []models.Premium, answers models.InsuranceAnswers) []models.InsuranceRecommendation {
	return defaultInsuranceRanker.Rank(candidates, premiums, answers)
}

// Rank returns priced products best first. Products without a premium score 0
// and are left out.
func (r *InsuranceRanker) Rank(candidates []models.InsuranceProduct, premiums []models.Premium, answers models.InsuranceAnswers) []models.InsuranceRecommendation {
	index := indexPremiums(premiums, answers.VehicleID)

	recs := make([]models.InsuranceRecommendation, 0, len(candidates))
	for _, p := range candidates {
		rec := r.score(p, index[p.ID], answers)
		if rec.Score > 0 {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}

// Score builds the unfiltered recommendation for one product, including the
// zero-score record of an unpriced product.
func (r *InsuranceRanker) Score(product models.InsuranceProduct, premiums []models.Premium, answers models.InsuranceAnswers) models.InsuranceRecommendation {
	return r.score(product, indexPremiums(premiums, answers.VehicleID)[product.ID], answers)
}

func (r *InsuranceRanker) score(product models.InsuranceProduct, premium *models.Premium, answers models.InsuranceAnswers) models.InsuranceRecommendation {
	if premium == nil {
		return models.InsuranceRecommendation{
			Product: product,
			Score:   0,
			Reasons: []string{ReasonNoPremium},
		}
	}

	priced := *premium
	eval := r.Evaluate(product, priced, answers)
	return models.InsuranceRecommendation{
		Product:            product,
		Premium:            &priced,
		Score:              eval.Score(),
		Reasons:            Reasons(eval.Signals, MaxInsuranceReasons),
		MonthlyEstimateCLP: premium.MonthlyCLP,
	}
}

func (r *InsuranceRanker) Evaluate(product models.InsuranceProduct, premium models.Premium, answers models.InsuranceAnswers) Evaluation {
	var eval Evaluation
	w := r.Weights

	budget := answers.MonthlyBudget
	priceScore := scoring.NormalizeInverse(budget.DistanceFromMid(premium.MonthlyCLP), 0, budget.Max()*2)
	if budget.Contains(premium.MonthlyCLP) {
		priceScore = 1
		eval.match(CriterionPrice, "")
	}
	eval.add(priceScore, w.Price, CriterionPrice)

	deductibleScore := NeutralScore
	if answers.DeductibleRange != nil {
		deductibleScore = DeductibleMismatchScore
		if answers.DeductibleRange.Contains(product.DeductibleUF) {
			deductibleScore = 1
			eval.match(CriterionDeductible, formatNumber(product.DeductibleUF))
		}
	}
	eval.add(deductibleScore, w.Deductible, CriterionDeductible)

	eval.add(coverageScore(product, answers.MinimumCoverages, &eval), w.Coverage, CriterionCoverage)
	eval.add(preferenceScore(product, answers.Preferences, &eval), w.Preferences, CriterionPreference)

	return eval
}

func coverageScore(product models.InsuranceProduct, required []string, eval *Evaluation) float64 {
	var hits, total float64
	for _, c := range required {
		covered, known := HasCoverage(product, c)
		if !known {
			continue
		}
		total++
		if covered {
			hits++
			eval.match(CriterionCoverage, c)
		}
	}
	if total == 0 {
		return 0
	}
	return hits / total
}

func preferenceScore(product models.InsuranceProduct, prefs []string, eval *Evaluation) float64 {
	var sum, total float64
	for _, pref := range prefs {
		miss, known := preferenceMissScores[pref]
		if !known {
			continue
		}
		total++
		if SatisfiesPreference(product, pref) {
			sum++
			eval.match(CriterionPreference, pref)
		} else {
			sum += miss
		}
	}
	if total == 0 {
		return NeutralScore
	}
	return sum / total
}

// HasCoverage reports whether product includes the named minimum coverage. The
// second result is false for coverage keys it does not know.
func HasCoverage(product models.InsuranceProduct, coverage string) (covered bool, known bool) {
	c := product.Coverages
	switch coverage {
	case models.CoverageRC1000:
		return c.CivilLiabilityUF >= RCMinimumUF, true
	case models.CoverageDamage:
		return c.OwnDamage, true
	case models.CoverageTheft:
		return c.Theft, true
	case models.CoverageGlass:
		return c.Glass, true
	case models.CoverageNatural:
		return c.NaturalDisasters, true
	}
	return false, false
}

func SatisfiesPreference(product models.InsuranceProduct, pref string) bool {
	switch pref {
	case models.PreferenceBrandWorkshop:
		return product.WorkshopType == models.WorkshopBrand
	case models.PreferenceReplacementCar:
		return product.ReplacementCar
	case models.PreferenceRoadAssistance:
		return product.RoadAssistance
	case models.PreferenceInternational:
		return product.InternationalCover
	case models.PreferenceZeroDeductibleGlass:
		return product.Coverages.Glass && product.GlassDeductibleUF == 0
	}
	return false
}

// FilterInsuranceByBudget keeps priced products whose monthly premium is within
// the budget ceiling plus the leniency band.
func FilterInsuranceByBudget(candidates []models.InsuranceProduct, premiums []models.Premium, monthlyBudget models.Range) []models.InsuranceProduct {
	index := indexPremiums(premiums, "")
	ceiling := monthlyBudget.Max() * InsuranceBudgetLeniency

	var out []models.InsuranceProduct
	for _, p := range candidates {
		premium := index[p.ID]
		if premium != nil && premium.MonthlyCLP <= ceiling {
			out = append(out, p)
		}
	}
	return out
}

// indexPremiums keys the first premium per product. When vehicleID is set only
// that vehicle's premiums are considered.
func indexPremiums(premiums []models.Premium, vehicleID string) map[string]*models.Premium {
	index := make(map[string]*models.Premium, len(premiums))
	for i := range premiums {
		p := &premiums[i]
		if vehicleID != "" && p.VehicleID != vehicleID {
			continue
		}
		if _, ok := index[p.ProductID]; !ok {
			index[p.ProductID] = p
		}
	}
	return index
}
