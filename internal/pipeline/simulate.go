package pipeline

import (
	"fmt"

	"github.com/letmecheque/letmecheque/internal/model"
)

// Simulate adds delta to every defined period of series and reports the
// peak of the adjusted series. Undefined periods stay undefined.
func Simulate(series model.AggregatedSeries, delta float64) (model.SimulationResult, error) {
	if !finite(delta) {
		return model.SimulationResult{}, fmt.Errorf("simulating %q with %v: %w", series.Category, delta, ErrInvalidAmount)
	}
	if delta < 0 {
		return model.SimulationResult{}, fmt.Errorf("simulating %q with %.2f: %w", series.Category, delta, ErrNegativeDelta)
	}

	adjusted := series
	for i := range adjusted.Points {
		if adjusted.Points[i].Defined {
			adjusted.Points[i].Value += delta
		}
	}

	period, value, ok := adjusted.Peak()
	if !ok {
		return model.SimulationResult{}, fmt.Errorf("simulating %q: no defined periods: %w", series.Category, ErrInsufficientData)
	}

	return model.SimulationResult{
		Category:   series.Category,
		Delta:      delta,
		Series:     adjusted,
		PeakPeriod: period,
		PeakValue:  value,
	}, nil
}
