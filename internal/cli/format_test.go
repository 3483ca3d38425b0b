package cli

import (
	"strings"
	"testing"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func TestFormatEuro(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4.5, "€4.50"},
		{42.26, "€42.3"},
		{180.4, "€180"},
		{1234.4, "€1,234"},
		{-12.5, "-€12.5"},
	}
	for _, tt := range tests {
		if got := FormatEuro(tt.in); got != tt.want {
			t.Errorf("FormatEuro(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "€0.00"},
		{"1234.5", "€1,234.50"},
		{"1000000", "€1,000,000.00"},
		{"-75.125", "-€75.13"},
	}
	for _, tt := range tests {
		if got := FormatDecimal(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatDecimal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-999); got != "-999" {
		t.Errorf("FormatNumber(-999) = %q", got)
	}
}

func TestFormatRatioAndSlope(t *testing.T) {
	if got := FormatRatio(12); got != "12.0%" {
		t.Errorf("FormatRatio(12) = %q", got)
	}
	if got := FormatPercent(0.125); got != "12.5%" {
		t.Errorf("FormatPercent(0.125) = %q", got)
	}
	if got := FormatSlope(-10); got != "-€10.0/mo" {
		t.Errorf("FormatSlope(-10) = %q", got)
	}
	if got := FormatDelta(50, 80); got != "-€30.0" {
		t.Errorf("FormatDelta(50, 80) = %q", got)
	}
}

func TestRenderSeriesSparkline_MarksGaps(t *testing.T) {
	s := model.NewSeries("Food")
	s.Set(model.January, 10)
	s.Set(model.March, 80)
	got := RenderSeriesSparkline(s)
	if n := strings.Count(got, "·"); n != 10 {
		t.Errorf("gap markers = %d, want 10 in %q", n, got)
	}
	if !strings.Contains(got, "█") {
		t.Errorf("peak month should render a full block: %q", got)
	}
}

func TestRenderTable_SeparatorRow(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Month", "Mean"},
		Rows:    [][]string{{"January", "€50.0"}, {"---"}, {"Total", "€50.0"}},
	})
	if strings.Count(out, "├") != 2 {
		t.Errorf("want header and body separators, got:\n%s", out)
	}
}

func TestRenderTable_AlignsMultibyteCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Mean"},
		Rows:    [][]string{{"Food", "€1,234"}, {"Rent", "€5"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := lipgloss.Width(lines[0])
	for _, l := range lines {
		if got := lipgloss.Width(l); got != want {
			t.Errorf("line %q has width %d, want %d", l, got, want)
		}
	}
}

func TestRenderRiskLevel(t *testing.T) {
	if got := RenderRiskLevel(model.RiskAtRisk); !strings.Contains(got, "AT RISK") {
		t.Errorf("at-risk label: %q", got)
	}
	if got := RenderRiskLevel(model.RiskSafe); !strings.Contains(got, "SAFE") {
		t.Errorf("safe label: %q", got)
	}
}
