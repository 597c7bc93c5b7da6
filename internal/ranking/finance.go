package ranking

import "math"

const (
	DefaultMonthlyRate = 0.02
	DefaultTermMonths  = 48
)

// FinanceTerms parameterise the amortization used to turn a vehicle price into
// a monthly payment.
type FinanceTerms struct {
	MonthlyRate float64 `json:"monthlyRate"`
	Months      int     `json:"months"`
}

var DefaultFinanceTerms = FinanceTerms{
	MonthlyRate: DefaultMonthlyRate,
	Months:      DefaultTermMonths,
}

// MonthlyPayment is the French amortization installment
// principal · r(1+r)^n / ((1+r)^n − 1). A non-positive principal costs nothing.
func MonthlyPayment(principal float64, terms FinanceTerms) float64 {
	if principal <= 0 || terms.Months <= 0 {
		return 0
	}
	n := float64(terms.Months)
	r := terms.MonthlyRate
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}
