package model

import (
	"encoding/json"

	"gonum.org/v1/gonum/stat"
)

// SeriesPoint is the aggregated value for one period. Points with
// Defined == false had no observations and carry no value.
type SeriesPoint struct {
	Period  Period
	Value   float64
	Defined bool
}

type seriesPointJSON struct {
	Period Period   `json:"period"`
	Value  *float64 `json:"value"`
}

// MarshalJSON renders undefined points with a null value.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	out := seriesPointJSON{Period: p.Period}
	if p.Defined {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *SeriesPoint) UnmarshalJSON(b []byte) error {
	var in seriesPointJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	p.Period = in.Period
	p.Defined = in.Value != nil
	p.Value = 0
	if in.Value != nil {
		p.Value = *in.Value
	}
	return nil
}

// AggregatedSeries holds one point per calendar period in canonical order.
type AggregatedSeries struct {
	Category string                   `json:"category"`
	Points   [PeriodCount]SeriesPoint `json:"points"`
}

// NewSeries returns a series with every period present and undefined.
func NewSeries(category string) AggregatedSeries {
	s := AggregatedSeries{Category: category}
	for i, p := range Periods {
		s.Points[i].Period = p
	}
	return s
}

// Set defines the value for period p.
func (s *AggregatedSeries) Set(p Period, v float64) {
	s.Points[p.Index()] = SeriesPoint{Period: p, Value: v, Defined: true}
}

// At returns the value for p and whether it is defined.
func (s AggregatedSeries) At(p Period) (float64, bool) {
	pt := s.Points[p.Index()]
	return pt.Value, pt.Defined
}

// DefinedPoints returns the defined points in chronological order.
func (s AggregatedSeries) DefinedPoints() []SeriesPoint {
	var out []SeriesPoint
	for _, pt := range s.Points {
		if pt.Defined {
			out = append(out, pt)
		}
	}
	return out
}

// Values returns the defined values in chronological order.
func (s AggregatedSeries) Values() []float64 {
	pts := s.DefinedPoints()
	out := make([]float64, len(pts))
	for i, pt := range pts {
		out[i] = pt.Value
	}
	return out
}

// Defined returns the number of defined periods.
func (s AggregatedSeries) Defined() int {
	n := 0
	for _, pt := range s.Points {
		if pt.Defined {
			n++
		}
	}
	return n
}

// Mean returns the mean of the defined values, or 0 when none are defined.
func (s AggregatedSeries) Mean() float64 {
	vals := s.Values()
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// Peak returns the period holding the maximum defined value. Ties resolve
// to the earliest period. ok is false when nothing is defined.
func (s AggregatedSeries) Peak() (period Period, value float64, ok bool) {
	for _, pt := range s.Points {
		if !pt.Defined {
			continue
		}
		if !ok || pt.Value > value {
			period, value, ok = pt.Period, pt.Value, true
		}
	}
	return period, value, ok
}
