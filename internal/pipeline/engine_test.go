package pipeline

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// dataset builds a dataset where each record sits on its own source row.
func dataset(categories []string, recs ...model.SpendingRecord) *model.Dataset {
	for i := range recs {
		if recs[i].Row == 0 {
			recs[i].Row = i + 1
		}
	}
	return &model.Dataset{Categories: categories, Records: recs}
}

func rec(row int, p model.Period, category string, amount float64) model.SpendingRecord {
	return model.SpendingRecord{Row: row, Entity: "S", Period: p, Category: category, Amount: amount}
}

// seriesOf builds a series from a period -> value map.
func seriesOf(category string, vals map[model.Period]float64) model.AggregatedSeries {
	s := model.NewSeries(category)
	for p, v := range vals {
		s.Set(p, v)
	}
	return s
}

func TestAggregate_CanonicalOrder(t *testing.T) {
	ds := dataset([]string{"Food"},
		rec(1, model.December, "Food", 5),
		rec(2, model.April, "Food", 7),
		rec(3, model.August, "Food", 9),
		rec(4, model.January, "Food", 3),
	)
	s, err := Aggregate(ds, "Food")
	require.NoError(t, err)

	for i, pt := range s.Points {
		if pt.Period != model.Periods[i] {
			t.Fatalf("Points[%d].Period = %v, want %v", i, pt.Period, model.Periods[i])
		}
	}
	assert.Equal(t, []model.Period{model.January, model.April, model.August, model.December}, definedPeriods(s))
}

func TestAggregate_ShuffleInvariant(t *testing.T) {
	var recs []model.SpendingRecord
	for i := 0; i < 60; i++ {
		p := model.Periods[i%7]
		recs = append(recs,
			rec(i+1, p, "Food", float64(i)*1.37+0.1),
			rec(i+1, p, "Rent", float64(100-i)*2.11),
		)
	}
	base := dataset([]string{"Food", "Rent"}, recs...)
	want, err := Aggregate(base, model.TotalCategory)
	require.NoError(t, err)
	wantFood, err := Aggregate(base, "Food")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]model.SpendingRecord(nil), recs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		ds := dataset([]string{"Food", "Rent"}, shuffled...)

		gotFood, err := Aggregate(ds, "Food")
		require.NoError(t, err)
		assert.Equal(t, wantFood, gotFood, "category series must not depend on record order")

		got, err := Aggregate(ds, model.TotalCategory)
		require.NoError(t, err)
		for i := range want.Points {
			assert.Equal(t, want.Points[i].Defined, got.Points[i].Defined)
			assert.InDelta(t, want.Points[i].Value, got.Points[i].Value, eps)
		}
	}
}

func TestAggregate_ConstantMeanIsValueNotOverTwelve(t *testing.T) {
	var recs []model.SpendingRecord
	for _, p := range []model.Period{model.February, model.June, model.November} {
		for i := 0; i < 4; i++ {
			recs = append(recs, rec(len(recs)+1, p, "Food", 75))
		}
	}
	s, err := Aggregate(dataset([]string{"Food"}, recs...), "Food")
	require.NoError(t, err)

	for _, pt := range s.Points {
		if !pt.Defined {
			continue
		}
		if pt.Value != 75 {
			t.Errorf("%v = %v, want 75", pt.Period, pt.Value)
		}
	}
	assert.Equal(t, 3, s.Defined())
	assert.Equal(t, 75.0, s.Mean())
}

func TestAggregate_MeanOverRecordsPresent(t *testing.T) {
	ds := dataset([]string{"Food"},
		rec(1, model.January, "Food", 50),
		rec(2, model.January, "Food", 150),
		rec(3, model.February, "Food", 60),
	)
	s, err := Aggregate(ds, "Food")
	require.NoError(t, err)

	v, ok := s.At(model.January)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
	_, ok = s.At(model.March)
	assert.False(t, ok, "March has no observations")
}

func TestAggregate_TotalSumsPerRecord(t *testing.T) {
	ds := dataset([]string{"Food", "Rent"},
		rec(1, model.January, "Food", 100),
		rec(1, model.January, "Rent", 400),
		rec(2, model.January, "Food", 50),
		rec(2, model.January, "Rent", 250),
	)
	s, err := Aggregate(ds, model.TotalCategory)
	require.NoError(t, err)
	v, _ := s.At(model.January)
	assert.Equal(t, 400.0, v, "mean of per-record totals 500 and 300")
}

func TestAggregate_UnknownCategory(t *testing.T) {
	_, err := Aggregate(dataset([]string{"Food"}), "Yachts")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
	assert.Equal(t, "UnknownCategory", Condition(err))
}

func TestAggregateAll(t *testing.T) {
	ds := dataset([]string{"Food", "Rent"}, rec(1, model.May, "Food", 1))
	all := AggregateAll(ds)
	require.Len(t, all, 3)
	assert.Equal(t, model.TotalCategory, all[0].Category)
	assert.Equal(t, "Food", all[1].Category)
	assert.Equal(t, 0, all[2].Defined())
}

func TestForecast_LinearProgression(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{
		model.January: 10, model.February: 20, model.March: 30, model.April: 40,
	})
	fc, err := Forecast(s)
	require.NoError(t, err)

	assert.InDelta(t, 50, fc.NextValue, eps)
	assert.InDelta(t, 10, fc.Slope, eps)
	assert.InDelta(t, 10, fc.Intercept, eps)
	assert.InDelta(t, 1, fc.RSquared, eps)
	assert.Equal(t, model.May, fc.NextPeriod)
	for i, f := range fc.Fitted {
		assert.InDelta(t, fc.Observed[i], f, eps)
	}
}

func TestForecast_JanFebMar(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{
		model.January: 50, model.February: 60, model.March: 70,
	})
	fc, err := Forecast(s)
	require.NoError(t, err)
	assert.Equal(t, model.April, fc.NextPeriod)
	assert.InDelta(t, 80, fc.NextValue, eps)
}

func TestForecast_GapsKeepConsecutiveIndices(t *testing.T) {
	// January and June are consecutive samples 0 and 1, so the line rises
	// by 10 per defined period regardless of the calendar gap.
	s := seriesOf("Food", map[model.Period]float64{model.January: 10, model.June: 20})
	fc, err := Forecast(s)
	require.NoError(t, err)
	assert.InDelta(t, 30, fc.NextValue, eps)
	assert.Equal(t, model.July, fc.NextPeriod)
	assert.Equal(t, []model.Period{model.January, model.June}, fc.Periods)
}

func TestForecast_DecemberWraps(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{model.November: 1, model.December: 2})
	fc, err := Forecast(s)
	require.NoError(t, err)
	assert.Equal(t, model.January, fc.NextPeriod)
}

func TestForecast_TranslationConsistency(t *testing.T) {
	vals := map[model.Period]float64{
		model.January: 12, model.March: 31, model.April: 18, model.July: 44, model.October: 27,
	}
	base, err := Forecast(seriesOf("Food", vals))
	require.NoError(t, err)

	const c = 125.5
	shifted := make(map[model.Period]float64, len(vals))
	for p, v := range vals {
		shifted[p] = v + c
	}
	moved, err := Forecast(seriesOf("Food", shifted))
	require.NoError(t, err)

	assert.InDelta(t, base.NextValue+c, moved.NextValue, 1e-6)
	assert.InDelta(t, base.Slope, moved.Slope, 1e-9)
}

func TestForecast_InsufficientData(t *testing.T) {
	for _, vals := range []map[model.Period]float64{
		{},
		{model.March: 42},
	} {
		_, err := Forecast(seriesOf("Food", vals))
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Forecast(%d points) err = %v, want ErrInsufficientData", len(vals), err)
		}
	}
}

func TestForecast_ConstantSeriesRSquared(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{model.May: 9, model.June: 9, model.July: 9})
	fc, err := Forecast(s)
	require.NoError(t, err)
	assert.Equal(t, 1.0, fc.RSquared)
	assert.InDelta(t, 9, fc.NextValue, eps)
}

func TestForecastPolicy(t *testing.T) {
	total := seriesOf(model.TotalCategory, map[model.Period]float64{model.January: 1, model.February: 2})

	_, err := DefaultForecastPolicy().Forecast(total)
	require.ErrorIs(t, err, ErrForecastExempt)
	assert.Equal(t, "ForecastExempt", Condition(err))

	fc, err := ForecastPolicy{}.Forecast(total)
	require.NoError(t, err, "empty exemption list forecasts Total")
	assert.InDelta(t, 3, fc.NextValue, eps)

	food := seriesOf("Food", map[model.Period]float64{model.January: 1, model.February: 2})
	_, err = ForecastPolicy{Exempt: []string{"food"}}.Forecast(food)
	assert.ErrorIs(t, err, ErrForecastExempt, "exemption is case-insensitive")
}

func TestSimulate_PeakShiftsByDelta(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{
		model.January: 50, model.March: 90, model.June: 70,
	})
	for _, delta := range []float64{0, 10, 250, 500, 1200} {
		sim, err := Simulate(s, delta)
		require.NoError(t, err)
		assert.Equal(t, model.March, sim.PeakPeriod)
		assert.InDelta(t, 90+delta, sim.PeakValue, eps)
		assert.Equal(t, s.Defined(), sim.Series.Defined(), "undefined periods stay undefined")
		v, _ := sim.Series.At(model.January)
		assert.InDelta(t, 50+delta, v, eps)
	}
	// Input is untouched.
	v, _ := s.At(model.January)
	assert.Equal(t, 50.0, v)
}

func TestSimulate_TieResolvesToEarliest(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{model.February: 80, model.August: 80})
	sim, err := Simulate(s, 20)
	require.NoError(t, err)
	assert.Equal(t, model.February, sim.PeakPeriod)
	assert.Equal(t, 100.0, sim.PeakValue)
}

func TestSimulate_Errors(t *testing.T) {
	s := seriesOf("Food", map[model.Period]float64{model.January: 1})
	_, err := Simulate(s, -10)
	assert.ErrorIs(t, err, ErrNegativeDelta)

	_, err = Simulate(model.NewSeries("Food"), 10)
	assert.ErrorIs(t, err, ErrInsufficientData)

	for _, delta := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = Simulate(s, delta)
		assert.ErrorIs(t, err, ErrInvalidAmount, "delta %v", delta)
		assert.Equal(t, "InvalidAmount", Condition(err))
	}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestEvaluateRisk(t *testing.T) {
	tests := []struct {
		name      string
		estimate  string
		balance   string
		wantLevel model.RiskLevel
		wantRatio float64
	}{
		{"exactly at threshold is safe", "100", "1000", model.RiskSafe, 10},
		{"just above threshold", "100.01", "1000", model.RiskAtRisk, 10.001},
		{"twelve percent", "60", "500", model.RiskAtRisk, 12},
		{"well under", "20", "1000", model.RiskSafe, 2},
		{"zero estimate", "0", "1000", model.RiskSafe, 0},
		{"zero balance", "0", "0", model.RiskIndeterminate, 0},
		{"negative balance", "50", "-10", model.RiskIndeterminate, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateRisk(d(tt.estimate), d(tt.balance), DefaultRiskThreshold)
			if got.Level != tt.wantLevel {
				t.Fatalf("Level = %v, want %v", got.Level, tt.wantLevel)
			}
			if math.Abs(got.Ratio-tt.wantRatio) > eps {
				t.Fatalf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
		})
	}
}

func TestEvaluateRisk_ClampsNegativeEstimate(t *testing.T) {
	got := EvaluateRisk(d("-30"), d("100"), DefaultRiskThreshold)
	assert.Equal(t, model.RiskSafe, got.Level)
	assert.True(t, got.Estimate.IsZero())
}

func TestRisk_SumsSubBalances(t *testing.T) {
	b := model.Balances{Revolut: d("200"), Bank: d("250"), Cash: d("50")}
	got, err := Risk(b, 60, DefaultRiskThreshold)
	require.NoError(t, err)
	assert.Equal(t, model.RiskAtRisk, got.Level)
	assert.InDelta(t, 12, got.Ratio, eps)
	assert.True(t, got.Balance.Equal(d("500")))

	got, err = Risk(model.Balances{}, 300, DefaultRiskThreshold)
	require.NoError(t, err)
	assert.Equal(t, model.RiskIndeterminate, got.Level)
}

func TestRisk_RejectsNonFiniteAmounts(t *testing.T) {
	b := model.Balances{Bank: d("500")}
	for _, weekly := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Risk(b, weekly, DefaultRiskThreshold)
		assert.ErrorIs(t, err, ErrInvalidAmount, "weekly %v", weekly)
	}
	_, err := Risk(b, 50, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, "Enter an amount in euro, for example 250", Prompt(err))

	got := EvaluateRisk(d("50"), d("500"), math.Inf(1))
	assert.Equal(t, model.RiskIndeterminate, got.Level)
}

func TestRankPlatforms(t *testing.T) {
	in := []model.Platform{
		{Name: "A", AvgSpendPerUser: 20},
		{Name: "B", AvgSpendPerUser: 80},
		{Name: "C", AvgSpendPerUser: 20},
		{Name: "D", AvgSpendPerUser: 55},
	}
	got := RankPlatforms(in)
	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"B", "D", "A", "C"}, names)
	assert.Equal(t, "A", in[0].Name, "input not mutated")
}

func TestClassifyLocation(t *testing.T) {
	high := []string{"Nightclub", "Temple Bar"}
	assert.True(t, ClassifyLocation("temple bar", high).HighSpend)
	assert.False(t, ClassifyLocation("Home", high).HighSpend)
	assert.Equal(t, "Nightclub", ClassifyLocation("  Nightclub ", high).Location)
}

func TestBuildOverview(t *testing.T) {
	ds := dataset([]string{"Food"},
		rec(1, model.January, "Food", 50),
		rec(2, model.February, "Food", 60),
		rec(3, model.March, "Food", 70),
	)
	ov, err := BuildOverview(ds, "Food", 100, DefaultForecastPolicy())
	require.NoError(t, err)
	require.NotNil(t, ov.Forecast)
	assert.InDelta(t, 80, ov.Forecast.NextValue, eps)
	assert.True(t, ov.HasPeak)
	assert.Equal(t, model.March, ov.PeakPeriod)
	require.NotNil(t, ov.Simulation)
	assert.InDelta(t, 170, ov.Simulation.PeakValue, eps)

	ov, err = BuildOverview(ds, model.TotalCategory, 0, DefaultForecastPolicy())
	require.NoError(t, err)
	assert.Nil(t, ov.Forecast)
	assert.ErrorIs(t, ov.ForecastErr, ErrForecastExempt)

	_, err = BuildOverview(ds, "Nope", 0, DefaultForecastPolicy())
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestPrompt(t *testing.T) {
	_, err := Forecast(model.NewSeries("Food"))
	assert.Equal(t, "Not enough months of data to forecast", Prompt(err))
	assert.Equal(t, "", Prompt(nil))
}

func definedPeriods(s model.AggregatedSeries) []model.Period {
	var out []model.Period
	for _, pt := range s.DefinedPoints() {
		out = append(out, pt.Period)
	}
	return out
}

func TestResolveCategory(t *testing.T) {
	ds := dataset([]string{"Food Delivery"})
	assert.Equal(t, "Food Delivery", ResolveCategory(ds, "food delivery "))
	assert.Equal(t, model.TotalCategory, ResolveCategory(ds, "TOTAL"))
	assert.Equal(t, "Boats", ResolveCategory(ds, "Boats"))
}
