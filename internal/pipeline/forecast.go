package pipeline

import (
	"fmt"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Forecast fits an ordinary least squares line over the defined periods of
// series and predicts the next one. Defined periods are indexed 0..k-1 in
// chronological order; gaps do not advance the index.
func Forecast(series model.AggregatedSeries) (model.ForecastResult, error) {
	pts := series.DefinedPoints()
	if len(pts) < 2 {
		return model.ForecastResult{}, fmt.Errorf("forecasting %q: %d defined period(s), need 2: %w",
			series.Category, len(pts), ErrInsufficientData)
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	periods := make([]model.Period, len(pts))
	for i, pt := range pts {
		xs[i] = float64(i)
		ys[i] = pt.Value
		periods[i] = pt.Period
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	fitted := make([]float64, len(pts))
	for i, x := range xs {
		fitted[i] = intercept + slope*x
	}

	return model.ForecastResult{
		Category:   series.Category,
		Periods:    periods,
		Observed:   ys,
		Fitted:     fitted,
		Slope:      slope,
		Intercept:  intercept,
		RSquared:   rSquared(fitted, ys),
		NextPeriod: periods[len(periods)-1].Next(),
		NextValue:  intercept + slope*float64(len(pts)),
	}, nil
}

// rSquared is 1 when the observations are constant, since the line then
// fits them exactly.
func rSquared(fitted, observed []float64) float64 {
	_, variance := stat.MeanVariance(observed, nil)
	if variance == 0 {
		return 1
	}
	return stat.RSquaredFrom(fitted, observed, nil)
}

// ForecastPolicy decides which categories are offered a forecast at all.
type ForecastPolicy struct {
	Exempt []string
}

// DefaultForecastPolicy exempts the Total pseudo-category.
func DefaultForecastPolicy() ForecastPolicy {
	return ForecastPolicy{Exempt: []string{model.TotalCategory}}
}

// IsExempt reports whether category is excluded from forecasting.
func (p ForecastPolicy) IsExempt(category string) bool {
	for _, c := range p.Exempt {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// Forecast applies the exemption list before fitting.
func (p ForecastPolicy) Forecast(series model.AggregatedSeries) (model.ForecastResult, error) {
	if p.IsExempt(series.Category) {
		return model.ForecastResult{}, fmt.Errorf("forecasting %q: %w", series.Category, ErrForecastExempt)
	}
	return Forecast(series)
}
