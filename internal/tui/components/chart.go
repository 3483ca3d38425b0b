package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// eighths are partial cell fills, index = filled eighths.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	runes := make([]rune, len(values))
	for i, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		runes[i] = sparkBlocks[min(max(idx, 0), len(sparkBlocks)-1)]
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(string(runes))
}

// SeriesChart renders a twelve-column month chart of s. The peak month is
// highlighted and months without data show a dot on the axis.
func SeriesChart(s model.AggregatedSeries, color lipgloss.Color, width, height int) string {
	var values [model.PeriodCount]float64
	var defined [model.PeriodCount]bool
	for i, pt := range s.Points {
		values[i], defined[i] = pt.Value, pt.Defined
	}
	peakIdx := -1
	if p, _, ok := s.Peak(); ok {
		peakIdx = p.Index()
	}

	if width < 30 || height < 3 {
		return Sparkline(values[:], color)
	}
	return monthChart(values, defined, peakIdx, color, width, height)
}

// yScale fits a tick step and ceiling to maxVal so at most height/2
// intervals are drawn.
type yScale struct {
	step        float64
	ceiling     float64
	intervals   int
	rowsPerTick int
}

func newYScale(maxVal float64, height int) yScale {
	if maxVal <= 0 {
		maxVal = 1
	}
	step := chartTickStep(maxVal)
	limit := max(height/2, 2)
	for int(math.Ceil(maxVal/step)) > limit {
		step *= 2
	}
	ceiling := math.Ceil(maxVal/step) * step
	intervals := max(int(math.Round(ceiling/step)), 1)
	return yScale{
		step:        step,
		ceiling:     ceiling,
		intervals:   intervals,
		rowsPerTick: max(height/intervals, 2),
	}
}

func (y yScale) rows() int { return y.rowsPerTick * y.intervals }

// label returns the axis label for a row, or "" between ticks.
func (y yScale) label(row int) string {
	if row%y.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(y.step * float64(row/y.rowsPerTick))
}

func monthChart(values [model.PeriodCount]float64, defined [model.PeriodCount]bool, peakIdx int, color lipgloss.Color, width, height int) string {
	t := theme.Active

	maxVal := 0.0
	for i, v := range values {
		if defined[i] {
			maxVal = math.Max(maxVal, v)
		}
	}
	ys := newYScale(maxVal, height)

	labelW := max(lipgloss.Width(formatChartLabel(ys.ceiling))+1, 4)
	plotW := max(width-labelW-1, model.PeriodCount*2)
	const gap = 1
	barW := min(max((plotW-(model.PeriodCount-1)*gap)/model.PeriodCount, 1), 6)
	axisLen := model.PeriodCount*barW + (model.PeriodCount-1)*gap

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	peak := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	var b strings.Builder
	chartH := ys.rows()
	for row := chartH; row >= 1; row-- {
		top := ys.ceiling * float64(row) / float64(chartH)
		bottom := ys.ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axis.Render(fmt.Sprintf("%*s│", labelW, ys.label(row))))
		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			style := bar
			if i == peakIdx {
				style = peak
			}
			switch {
			case !defined[i] || v <= bottom:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			case v >= top:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			default:
				idx := min(max(int((v-bottom)/(top-bottom)*8), 1), 8)
				b.WriteString(style.Render(strings.Repeat(string(eighths[idx]), barW)))
			}
		}
		b.WriteString("\n")
	}

	// Axis line; undefined months are marked under their column.
	b.WriteString(axis.Render(fmt.Sprintf("%*s└", labelW, "0")))
	for i := range values {
		if i > 0 {
			b.WriteString(axis.Render(strings.Repeat("─", gap)))
		}
		if defined[i] {
			b.WriteString(axis.Render(strings.Repeat("─", barW)))
		} else {
			b.WriteString(axis.Render("·" + strings.Repeat("─", barW-1)))
		}
	}
	b.WriteString("\n")

	// Month labels, shortened to fit the bar width.
	var labels strings.Builder
	for i, p := range model.Periods {
		if i > 0 {
			labels.WriteString(strings.Repeat(" ", gap))
		}
		name := p.Short()
		if barW < len(name) {
			name = name[:barW]
		}
		fmt.Fprintf(&labels, "%-*s", barW, name)
	}
	b.WriteString(blank.Render(strings.Repeat(" ", labelW+1)))
	b.WriteString(axis.Render(fmt.Sprintf("%-*s", axisLen, strings.TrimRight(labels.String(), " "))))

	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))

	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	unit := func(scaled float64, suffix string) string {
		if scaled == math.Trunc(scaled) {
			return fmt.Sprintf("€%.0f%s", scaled, suffix)
		}
		return fmt.Sprintf("€%.1f%s", scaled, suffix)
	}
	switch {
	case v >= 1e6:
		return unit(v/1e6, "M")
	case v >= 1e3:
		return unit(v/1e3, "k")
	case v >= 1:
		return fmt.Sprintf("€%.0f", v)
	default:
		return fmt.Sprintf("€%.2f", v)
	}
}
