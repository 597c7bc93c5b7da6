package ranking

import "cotiza-workers/internal/scoring"

// Criterion names a scoring dimension. Signals carry the criterion that matched
// and an optional detail (the body type, the coverage key); phrasing them for
// the user happens in reasons.go.
type Criterion string

const (
	CriterionBudget       Criterion = "budget"
	CriterionCash         Criterion = "cash"
	CriterionBodyType     Criterion = "body_type"
	CriterionFuelType     Criterion = "fuel_type"
	CriterionTransmission Criterion = "transmission"
	CriterionFamily       Criterion = "family"
	CriterionOffroad      Criterion = "offroad"
	CriterionUsage        Criterion = "usage"
	CriterionSafety       Criterion = "safety"

	CriterionPrice      Criterion = "price"
	CriterionDeductible Criterion = "deductible"
	CriterionCoverage   Criterion = "coverage"
	CriterionPreference Criterion = "preference"
)

type Signal struct {
	Criterion Criterion `json:"criterion"`
	Detail    string    `json:"detail,omitempty"`
}

// Evaluation is the language-neutral result of scoring one candidate.
type Evaluation struct {
	Scores  []scoring.WeightedScore `json:"scores"`
	Signals []Signal                `json:"signals"`
}

func (e *Evaluation) add(value, weight float64, label Criterion) {
	e.Scores = append(e.Scores, scoring.WeightedScore{
		Value:  value,
		Weight: weight,
		Label:  string(label),
	})
}

func (e *Evaluation) match(c Criterion, detail string) {
	e.Signals = append(e.Signals, Signal{Criterion: c, Detail: detail})
}

func (e Evaluation) Score() int {
	return scoring.WeightedSum(e.Scores)
}

// Matched reports whether any signal for c was raised.
func (e Evaluation) Matched(c Criterion) bool {
	for _, s := range e.Signals {
		if s.Criterion == c {
			return true
		}
	}
	return false
}
