package pipeline

import (
	"fmt"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultRiskThreshold is the ratio, in percent, above which spending is
// flagged. A ratio exactly at the threshold is safe.
const DefaultRiskThreshold = 10.0

var hundred = decimal.NewFromInt(100)

// EvaluateRisk compares an estimated spend with the available balance.
// A non-positive balance or a non-finite threshold yields RiskIndeterminate
// rather than an error.
func EvaluateRisk(estimate, balance decimal.Decimal, threshold float64) model.RiskAssessment {
	if estimate.IsNegative() {
		estimate = decimal.Zero
	}
	a := model.RiskAssessment{
		Level:     model.RiskIndeterminate,
		Estimate:  estimate,
		Balance:   balance,
		Threshold: threshold,
	}
	if !balance.IsPositive() || !finite(threshold) {
		return a
	}

	ratio := estimate.Mul(hundred).Div(balance)
	a.Ratio = ratio.InexactFloat64()
	if ratio.GreaterThan(decimal.NewFromFloat(threshold)) {
		a.Level = model.RiskAtRisk
	} else {
		a.Level = model.RiskSafe
	}
	return a
}

// Risk evaluates a weekly spend against the total of the session balances.
// A NaN or infinite weekly spend or threshold is rejected with
// ErrInvalidAmount.
func Risk(b model.Balances, weekly float64, threshold float64) (model.RiskAssessment, error) {
	if !finite(weekly) {
		return model.RiskAssessment{}, fmt.Errorf("weekly spend %v: %w", weekly, ErrInvalidAmount)
	}
	if !finite(threshold) {
		return model.RiskAssessment{}, fmt.Errorf("risk threshold %v: %w", threshold, ErrInvalidAmount)
	}
	return EvaluateRisk(decimal.NewFromFloat(weekly), b.Total(), threshold), nil
}
