// Package pipeline is the spending aggregation and forecasting engine, plus
// the load orchestration that feeds it.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Aggregate computes the mean amount per period for one category.
// For model.TotalCategory each source row is first summed across all
// categories into a single per-record total.
func Aggregate(ds *model.Dataset, category string) (model.AggregatedSeries, error) {
	if category != model.TotalCategory && !ds.HasCategory(category) {
		return model.AggregatedSeries{}, fmt.Errorf("aggregating %q: %w", category, ErrUnknownCategory)
	}

	var obs [model.PeriodCount][]float64
	if category == model.TotalCategory {
		type rowKey struct {
			row    int
			period model.Period
		}
		totals := make(map[rowKey]float64)
		for _, r := range ds.Records {
			if !r.Period.Valid() {
				continue
			}
			totals[rowKey{r.Row, r.Period}] += r.Amount
		}
		for k, v := range totals {
			obs[k.period.Index()] = append(obs[k.period.Index()], v)
		}
	} else {
		for _, r := range ds.Records {
			if r.Category != category || !r.Period.Valid() {
				continue
			}
			obs[r.Period.Index()] = append(obs[r.Period.Index()], r.Amount)
		}
	}

	series := model.NewSeries(category)
	for i, vals := range obs {
		if len(vals) == 0 {
			continue
		}
		// Sorted so the sum is independent of record order.
		sort.Float64s(vals)
		series.Set(model.Periods[i], stat.Mean(vals, nil))
	}
	return series, nil
}

// AggregateAll returns the Total series followed by one series per
// category in schema order.
func AggregateAll(ds *model.Dataset) []model.AggregatedSeries {
	names := ds.Selectable()
	out := make([]model.AggregatedSeries, 0, len(names))
	for _, name := range names {
		s, err := Aggregate(ds, name)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ResolveCategory maps a user-supplied name to the schema spelling,
// case-insensitively. Unknown names are returned unchanged so Aggregate
// can report them.
func ResolveCategory(ds *model.Dataset, name string) string {
	name = strings.TrimSpace(name)
	for _, c := range ds.Selectable() {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}
