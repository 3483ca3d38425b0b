package pipeline

import (
	"github.com/letmecheque/letmecheque/internal/model"
)

// BuildOverview runs one computation pass for a category: series, peak,
// forecast and simulation. Only an unknown category fails the pass; a
// missing forecast is recorded in ForecastErr.
func BuildOverview(ds *model.Dataset, category string, delta float64, policy ForecastPolicy) (model.Overview, error) {
	series, err := Aggregate(ds, category)
	if err != nil {
		return model.Overview{}, err
	}

	ov := model.Overview{Series: series}
	ov.PeakPeriod, ov.PeakValue, ov.HasPeak = series.Peak()

	if fc, err := policy.Forecast(series); err != nil {
		ov.ForecastErr = err
	} else {
		ov.Forecast = &fc
	}

	if sim, err := Simulate(series, delta); err == nil {
		ov.Simulation = &sim
	}
	return ov, nil
}
