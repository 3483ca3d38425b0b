package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ForecastResult holds a linear trend fitted over the defined periods of a
// series and its projection to the following period.
type ForecastResult struct {
	Category   string    `json:"category"`
	Periods    []Period  `json:"periods"`
	Observed   []float64 `json:"observed"`
	Fitted     []float64 `json:"fitted"`
	Slope      float64   `json:"slope"`
	Intercept  float64   `json:"intercept"`
	RSquared   float64   `json:"r_squared"`
	NextPeriod Period    `json:"next_period"`
	NextValue  float64   `json:"next_value"`
}

// SimulationResult is a series shifted by a uniform extra amount.
type SimulationResult struct {
	Category   string           `json:"category"`
	Delta      float64          `json:"delta"`
	Series     AggregatedSeries `json:"series"`
	PeakPeriod Period           `json:"peak_period"`
	PeakValue  float64          `json:"peak_value"`
}

// RiskLevel classifies spending against the available balance.
type RiskLevel int

const (
	// RiskIndeterminate means no balance is known yet; callers should prompt
	// for one instead of showing a ratio.
	RiskIndeterminate RiskLevel = iota
	RiskSafe
	RiskAtRisk
)

func (l RiskLevel) String() string {
	switch l {
	case RiskSafe:
		return "SAFE"
	case RiskAtRisk:
		return "AT_RISK"
	default:
		return "INDETERMINATE"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *RiskLevel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "SAFE":
		*l = RiskSafe
	case "AT_RISK":
		*l = RiskAtRisk
	case "INDETERMINATE":
		*l = RiskIndeterminate
	default:
		return fmt.Errorf("unknown risk level %q", string(b))
	}
	return nil
}

// RiskAssessment is the outcome of comparing a weekly spend estimate with
// the total available balance. Ratio is a percentage and is zero when the
// level is indeterminate.
type RiskAssessment struct {
	Level     RiskLevel       `json:"level"`
	Ratio     float64         `json:"ratio"`
	Estimate  decimal.Decimal `json:"estimate"`
	Balance   decimal.Decimal `json:"balance"`
	Threshold float64         `json:"threshold"`
}

// Overview bundles everything one dashboard render needs for a category.
// ForecastErr is set instead of Forecast when no forecast is available.
type Overview struct {
	Series      AggregatedSeries
	PeakPeriod  Period
	PeakValue   float64
	HasPeak     bool
	Forecast    *ForecastResult
	ForecastErr error
	Simulation  *SimulationResult
}
