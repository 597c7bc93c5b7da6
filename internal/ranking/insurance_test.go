package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotiza-workers/internal/models"
)

func productA() models.InsuranceProduct {
	return models.InsuranceProduct{
		ID:           "insA",
		Insurer:      "Aseguradora Uno",
		Name:         "Full Cobertura",
		DeductibleUF: 5,
		Coverages: models.Coverages{
			CivilLiabilityUF: 1000,
			OwnDamage:        true,
			Theft:            true,
			Glass:            true,
		},
		GlassDeductibleUF: 0,
		WorkshopType:      models.WorkshopBrand,
		ReplacementCar:    true,
	}
}

func productB() models.InsuranceProduct {
	return models.InsuranceProduct{
		ID:           "insB",
		Insurer:      "Aseguradora Dos",
		Name:         "Básico",
		DeductibleUF: 20,
		Coverages: models.Coverages{
			CivilLiabilityUF: 500,
			OwnDamage:        true,
		},
		WorkshopType: models.WorkshopMultibrand,
	}
}

func productX() models.InsuranceProduct {
	return models.InsuranceProduct{ID: "insX", Insurer: "Sin Tarifa", Name: "Desconocido"}
}

func testPremiums() []models.Premium {
	return []models.Premium{
		{ProductID: "insA", VehicleID: "veh-1", MonthlyCLP: 40_000, AnnualCLP: 480_000},
		{ProductID: "insB", VehicleID: "veh-1", MonthlyCLP: 60_000, AnnualCLP: 720_000},
	}
}

func baseInsuranceAnswers() models.InsuranceAnswers {
	return models.InsuranceAnswers{
		MonthlyBudget:    models.NewRange(30_000, 50_000),
		DeductibleRange:  budget(3, 10),
		MinimumCoverages: []string{models.CoverageDamage, models.CoverageTheft},
	}
}

func TestRankInsurance(t *testing.T) {
	recs := RankInsurance([]models.InsuranceProduct{productB(), productX(), productA()}, testPremiums(), baseInsuranceAnswers())
	require.Len(t, recs, 2)

	assert.Equal(t, "insA", recs[0].Product.ID)
	// (0.45 + 0.15 + 0.35 + 0.2*0.5) / 1.15
	assert.Equal(t, 91, recs[0].Score)
	require.NotNil(t, recs[0].Premium)
	assert.Equal(t, 40_000.0, recs[0].MonthlyEstimateCLP)

	assert.Equal(t, "insB", recs[1].Product.ID)
	// (0.45*0.8 + 0.15*0.3 + 0.35*0.5 + 0.2*0.5) / 1.15
	assert.Equal(t, 59, recs[1].Score)
}

func TestRankInsurance_MissingPremium(t *testing.T) {
	r := NewInsuranceRanker()

	rec := r.Score(productX(), testPremiums(), baseInsuranceAnswers())
	assert.Equal(t, 0, rec.Score)
	assert.Equal(t, []string{"Sin tarifa disponible"}, rec.Reasons)
	assert.Nil(t, rec.Premium)

	recs := r.Rank([]models.InsuranceProduct{productX()}, testPremiums(), baseInsuranceAnswers())
	assert.Empty(t, recs)
}

func TestRankInsurance_PremiumForSelectedVehicle(t *testing.T) {
	premiums := []models.Premium{
		{ProductID: "insA", VehicleID: "veh-1", MonthlyCLP: 100_000},
		{ProductID: "insA", VehicleID: "veh-2", MonthlyCLP: 40_000},
	}

	answers := baseInsuranceAnswers()
	answers.VehicleID = "veh-2"
	recs := RankInsurance([]models.InsuranceProduct{productA()}, premiums, answers)
	require.Len(t, recs, 1)
	assert.Equal(t, 40_000.0, recs[0].Premium.MonthlyCLP)

	answers.VehicleID = "veh-3"
	assert.Empty(t, RankInsurance([]models.InsuranceProduct{productA()}, premiums, answers))
}

func TestRankInsurance_DoesNotAliasPremiums(t *testing.T) {
	premiums := testPremiums()
	recs := RankInsurance([]models.InsuranceProduct{productA()}, premiums, baseInsuranceAnswers())
	require.Len(t, recs, 1)

	recs[0].Premium.MonthlyCLP = 1
	assert.Equal(t, 40_000.0, premiums[0].MonthlyCLP)
}

func TestRankInsurance_StableTies(t *testing.T) {
	first := productA()
	first.ID = "first"
	second := productA()
	second.ID = "second"

	premiums := []models.Premium{
		{ProductID: "first", MonthlyCLP: 45_000},
		{ProductID: "second", MonthlyCLP: 45_000},
	}

	recs := RankInsurance([]models.InsuranceProduct{second, first}, premiums, baseInsuranceAnswers())
	require.Len(t, recs, 2)
	assert.Equal(t, recs[0].Score, recs[1].Score)
	assert.Equal(t, "second", recs[0].Product.ID)
	assert.Equal(t, "first", recs[1].Product.ID)
}

func TestRankInsurance_Reasons(t *testing.T) {
	answers := baseInsuranceAnswers()
	answers.MinimumCoverages = []string{models.CoverageDamage, models.CoverageTheft, models.CoverageGlass}
	answers.Preferences = []string{models.PreferenceBrandWorkshop, models.PreferenceReplacementCar}

	recs := RankInsurance([]models.InsuranceProduct{productA()}, testPremiums(), answers)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{
		"Prima dentro de tu presupuesto",
		"Deducible de 5 UF",
		"Incluye Daños propios",
		"Incluye Robo",
	}, recs[0].Reasons)
}

func valueFor(eval Evaluation, c Criterion) float64 {
	for _, s := range eval.Scores {
		if s.Label == string(c) {
			return s.Value
		}
	}
	return -1
}

func TestInsuranceRanker_Evaluate(t *testing.T) {
	r := NewInsuranceRanker()
	premium := models.Premium{ProductID: "insB", MonthlyCLP: 40_000}

	tests := []struct {
		name      string
		answers   models.InsuranceAnswers
		criterion Criterion
		expected  float64
	}{
		{"no deductible preference is neutral", models.InsuranceAnswers{MonthlyBudget: models.NewRange(0, 50_000)}, CriterionDeductible, 0.5},
		{"no coverages requested", models.InsuranceAnswers{MonthlyBudget: models.NewRange(0, 50_000)}, CriterionCoverage, 0},
		{
			"rc-1000 requires the full limit",
			models.InsuranceAnswers{MinimumCoverages: []string{models.CoverageRC1000, models.CoverageDamage}},
			CriterionCoverage, 0.5,
		},
		{
			"unknown coverage keys are ignored",
			models.InsuranceAnswers{MinimumCoverages: []string{"roadside-pets", models.CoverageDamage}},
			CriterionCoverage, 1,
		},
		{"no preferences is neutral", models.InsuranceAnswers{}, CriterionPreference, 0.5},
		{
			"missing replacement car is penalised softly",
			models.InsuranceAnswers{Preferences: []string{models.PreferenceReplacementCar}},
			CriterionPreference, 0.3,
		},
		{
			"preference scores are averaged",
			models.InsuranceAnswers{Preferences: []string{models.PreferenceReplacementCar, models.PreferenceInternational}},
			CriterionPreference, 0.4,
		},
		{
			"unknown preference tags are ignored",
			models.InsuranceAnswers{Preferences: []string{"free-coffee"}},
			CriterionPreference, 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := r.Evaluate(productB(), premium, tt.answers)
			assert.InDelta(t, tt.expected, valueFor(eval, tt.criterion), 1e-9)
		})
	}
}

func TestSatisfiesPreference(t *testing.T) {
	a := productA()
	assert.True(t, SatisfiesPreference(a, models.PreferenceBrandWorkshop))
	assert.True(t, SatisfiesPreference(a, models.PreferenceReplacementCar))
	assert.True(t, SatisfiesPreference(a, models.PreferenceZeroDeductibleGlass))
	assert.False(t, SatisfiesPreference(a, models.PreferenceRoadAssistance))

	a.GlassDeductibleUF = 1
	assert.False(t, SatisfiesPreference(a, models.PreferenceZeroDeductibleGlass))
}

func TestFilterInsuranceByBudget(t *testing.T) {
	premiums := append(testPremiums(), models.Premium{ProductID: "insC", MonthlyCLP: 70_000})
	productC := models.InsuranceProduct{ID: "insC"}

	out := FilterInsuranceByBudget(
		[]models.InsuranceProduct{productA(), productB(), productC, productX()},
		premiums,
		models.NewRange(30_000, 50_000),
	)

	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"insA", "insB"}, ids)
}

func TestMergeInsuranceWeights(t *testing.T) {
	merged := MergeInsuranceWeights(DefaultInsuranceWeights(), &InsuranceWeights{Price: 0.9})
	assert.Equal(t, 0.9, merged.Price)
	assert.Equal(t, InsuranceCoverageWeight, merged.Coverage)
	assert.Equal(t, DefaultInsuranceWeights(), MergeInsuranceWeights(DefaultInsuranceWeights(), nil))
}
