// Package charts renders the five per-person report charts as PNG files.
package charts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"salescli/internal/kpi"
)

// Chart name keys returned by GenerateAll. Callers (the email template in
// particular) rely on all five being present.
const (
	ChartKPIMetrics       = "kpi_metrics"
	ChartConversionFunnel = "conversion_funnel"
	ChartDailyTrends      = "daily_trends"
	ChartTeamComparison   = "team_comparison"
	ChartConversionRates  = "conversion_rates"
)

// defaultPalette mirrors the report's house colors.
var defaultPalette = map[string]string{
	"primary":   "#2E86AB",
	"secondary": "#A23B72",
	"success":   "#06A77D",
	"warning":   "#F18F01",
	"danger":    "#C73E1D",
}

// Generator renders charts into a per-person output directory.
type Generator struct {
	outputDir string
	width     int
	height    int
	colors    map[string]string
	logger    *slog.Logger
	nowFn     func() time.Time
}

// NewGenerator creates a chart generator. Colors missing from the palette
// fall back to the defaults; zero dimensions fall back to 1280x800.
func NewGenerator(outputDir string, width, height int, colors map[string]string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 800
	}

	palette := make(map[string]string, len(defaultPalette))
	for key, value := range defaultPalette {
		palette[key] = value
	}
	for key, value := range colors {
		if value != "" {
			palette[key] = value
		}
	}

	return &Generator{
		outputDir: outputDir,
		width:     width,
		height:    height,
		colors:    palette,
		logger:    logger,
		nowFn:     time.Now,
	}
}

// GenerateAll renders the five charts for one person and returns a map from
// chart name to file path. The five keys are always present on success.
func (g *Generator) GenerateAll(
	personName string,
	totals kpi.Totals,
	rates kpi.Rates,
	daily []kpi.DailyBucket,
	comparison kpi.Comparison,
	dateRange string,
) (map[string]string, error) {
	dir, err := g.ensureOutputDir(personName)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]string, 5)

	renderers := []struct {
		name   string
		render func(path, title string) error
	}{
		{ChartKPIMetrics, func(path, title string) error {
			return g.renderKPIMetrics(path, title, totals)
		}},
		{ChartConversionFunnel, func(path, title string) error {
			return g.renderConversionFunnel(path, title, totals)
		}},
		{ChartDailyTrends, func(path, title string) error {
			return g.renderDailyTrends(path, title, daily)
		}},
		{ChartTeamComparison, func(path, title string) error {
			return g.renderTeamComparison(path, title, comparison)
		}},
		{ChartConversionRates, func(path, title string) error {
			return g.renderConversionRates(path, title, rates)
		}},
	}

	for _, r := range renderers {
		path := filepath.Join(dir, r.name+".png")
		title := fmt.Sprintf("%s - %s (%s)", chartTitle(r.name), personName, dateRange)
		if err := r.render(path, title); err != nil {
			return nil, fmt.Errorf("failed to render %s chart: %w", r.name, err)
		}
		paths[r.name] = path
		g.logger.Debug("chart created", slog.String("chart", r.name), slog.String("path", path))
	}

	g.logger.Info("charts generated",
		slog.String("person", personName),
		slog.Int("count", len(paths)),
		slog.String("dir", dir))

	return paths, nil
}

// chartTitle maps a chart key to its display title.
func chartTitle(name string) string {
	switch name {
	case ChartKPIMetrics:
		return "Performance Metrics"
	case ChartConversionFunnel:
		return "Sales Funnel"
	case ChartDailyTrends:
		return "Daily Performance Trends"
	case ChartTeamComparison:
		return "Performance vs Team Average"
	case ChartConversionRates:
		return "Conversion Rates"
	default:
		return name
	}
}

// ensureOutputDir creates output/<safe_name>_<date>/ and returns it.
func (g *Generator) ensureOutputDir(personName string) (string, error) {
	dir := filepath.Join(g.outputDir,
		fmt.Sprintf("%s_%s", safeName(personName), g.nowFn().Format("2006-01-02")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart output directory %s: %w", dir, err)
	}
	return dir, nil
}

// safeName turns a person name into a filesystem-safe lowercase slug.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '_':
			b.WriteRune('_')
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (g *Generator) color(key string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(g.colors[key], "#"))
}

// counterColors is the color order applied to the four funnel counters.
func (g *Generator) counterColors() []drawing.Color {
	return []drawing.Color{
		g.color("primary"),
		g.color("warning"),
		g.color("success"),
		g.color("secondary"),
	}
}

var counterLabels = []string{"Doors Knocked", "Homeowners Talked", "Qualified Leads", "Appointments Set"}

func counterValues(t kpi.Totals) []float64 {
	return []float64{t.DoorsKnocked, t.HomeownersTalked, t.QualifiedLeads, t.AppointmentsSet}
}

// renderKPIMetrics draws one bar per funnel counter.
func (g *Generator) renderKPIMetrics(path, title string, totals kpi.Totals) error {
	return g.renderBars(path, title, counterLabels, counterValues(totals), g.counterColors(), "")
}

// renderConversionFunnel draws each stage as its share of the first stage,
// so the drop-off between stages is visible regardless of scale.
func (g *Generator) renderConversionFunnel(path, title string, totals kpi.Totals) error {
	values := counterValues(totals)
	normalized := make([]float64, len(values))
	labels := make([]string, len(values))
	for i, v := range values {
		if values[0] > 0 {
			normalized[i] = v / values[0] * 100
		}
		labels[i] = fmt.Sprintf("%s: %.0f", counterLabels[i], v)
	}
	return g.renderBars(path, title, labels, normalized, g.counterColors(), "%")
}

// renderConversionRates draws the four rates as percentage bars.
func (g *Generator) renderConversionRates(path, title string, rates kpi.Rates) error {
	labels := []string{"Talk Rate", "Qualification Rate", "Appointment Rate", "Overall Conversion"}
	values := []float64{rates.TalkRate, rates.QualificationRate, rates.AppointmentRate, rates.OverallConversion}
	return g.renderBars(path, title, labels, values, g.counterColors(), "%")
}

// renderTeamComparison draws individual vs team-average bars side by side
// for each counter.
func (g *Generator) renderTeamComparison(path, title string, cmp kpi.Comparison) error {
	metrics := []kpi.MetricComparison{
		cmp.DoorsKnocked, cmp.HomeownersTalked, cmp.QualifiedLeads, cmp.AppointmentsSet,
	}

	bars := make([]chart.Value, 0, len(metrics)*2)
	for i, m := range metrics {
		bars = append(bars,
			chart.Value{
				Label: counterLabels[i] + " (You)",
				Value: m.Individual,
				Style: chart.Style{FillColor: g.color("primary"), StrokeColor: g.color("primary")},
			},
			chart.Value{
				Label: counterLabels[i] + " (Team)",
				Value: m.TeamAverage,
				Style: chart.Style{FillColor: g.color("secondary"), StrokeColor: g.color("secondary")},
			},
		)
	}

	values := make([]float64, 0, len(bars))
	for _, bar := range bars {
		values = append(values, bar.Value)
	}

	bc := chart.BarChart{
		Title:    title,
		Width:    g.width,
		Height:   g.height,
		BarWidth: 40,
		Bars:     bars,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
	}
	bc.YAxis = yAxisFor(values)

	return g.renderToFile(path, func(f *os.File) error {
		return bc.Render(chart.PNG, f)
	})
}

// renderDailyTrends draws one time series per counter over the daily
// buckets. Single-bucket inputs get a flat two-point series so the renderer
// has a drawable range.
func (g *Generator) renderDailyTrends(path, title string, daily []kpi.DailyBucket) error {
	if len(daily) == 0 {
		return fmt.Errorf("no daily buckets to plot")
	}

	xs := make([]time.Time, 0, len(daily))
	doors := make([]float64, 0, len(daily))
	talked := make([]float64, 0, len(daily))
	qualified := make([]float64, 0, len(daily))
	appointments := make([]float64, 0, len(daily))

	for _, bucket := range daily {
		xs = append(xs, bucket.Date)
		doors = append(doors, bucket.Totals.DoorsKnocked)
		talked = append(talked, bucket.Totals.HomeownersTalked)
		qualified = append(qualified, bucket.Totals.QualifiedLeads)
		appointments = append(appointments, bucket.Totals.AppointmentsSet)
	}

	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		doors = append(doors, doors[0])
		talked = append(talked, talked[0])
		qualified = append(qualified, qualified[0])
		appointments = append(appointments, appointments[0])
	}

	colors := g.counterColors()
	series := []chart.Series{
		chart.TimeSeries{Name: counterLabels[0], XValues: xs, YValues: doors, Style: chart.Style{StrokeColor: colors[0], StrokeWidth: 2}},
		chart.TimeSeries{Name: counterLabels[1], XValues: xs, YValues: talked, Style: chart.Style{StrokeColor: colors[1], StrokeWidth: 2}},
		chart.TimeSeries{Name: counterLabels[2], XValues: xs, YValues: qualified, Style: chart.Style{StrokeColor: colors[2], StrokeWidth: 2}},
		chart.TimeSeries{Name: counterLabels[3], XValues: xs, YValues: appointments, Style: chart.Style{StrokeColor: colors[3], StrokeWidth: 2}},
	}

	graph := chart.Chart{
		Title:  title,
		Width:  g.width,
		Height: g.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:  yAxisFor(append(append(append(append([]float64{}, doors...), talked...), qualified...), appointments...)),
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return g.renderToFile(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// renderBars is the shared bar chart renderer. suffix is appended to the
// value labels ("%" for rate charts).
func (g *Generator) renderBars(path, title string, labels []string, values []float64, colors []drawing.Color, suffix string) error {
	bars := make([]chart.Value, 0, len(values))
	for i, value := range values {
		label := fmt.Sprintf("%s (%.0f%s)", labels[i], value, suffix)
		bars = append(bars, chart.Value{
			Label: label,
			Value: value,
			Style: chart.Style{FillColor: colors[i%len(colors)], StrokeColor: colors[i%len(colors)]},
		})
	}

	bc := chart.BarChart{
		Title:    title,
		Width:    g.width,
		Height:   g.height,
		BarWidth: 80,
		Bars:     bars,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
	}
	bc.YAxis = yAxisFor(values)

	return g.renderToFile(path, func(f *os.File) error {
		return bc.Render(chart.PNG, f)
	})
}

// yAxisFor pins the y range when every value is zero; go-chart cannot render
// a zero-height range.
func yAxisFor(values []float64) chart.YAxis {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}}
	}
	return chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1}}
}

// renderToFile creates the file and runs the renderer against it.
func (g *Generator) renderToFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return render(f)
}
