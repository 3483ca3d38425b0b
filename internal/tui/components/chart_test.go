package components

import (
	"strings"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/tui/theme"
)

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 1},
		{50, 10},
		{120, 20},
		{400, 50},
		{900, 200},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0.5, "€0.50"},
		{40, "€40"},
		{2000, "€2k"},
		{2500, "€2.5k"},
		{3e6, "€3M"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.v); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSeriesChartLabelsMonths(t *testing.T) {
	theme.SetActive("terminal")

	s := model.NewSeries("Food")
	s.Set(model.January, 120)
	s.Set(model.March, 300)

	out := SeriesChart(s, theme.Active.Blue, 80, 8)
	if out == "" {
		t.Fatal("SeriesChart returned nothing")
	}
	if !strings.Contains(out, "Jan") {
		t.Errorf("chart missing first month label:\n%s", out)
	}
	if !strings.Contains(out, "€") {
		t.Errorf("chart axis missing currency labels:\n%s", out)
	}
}
