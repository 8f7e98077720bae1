// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mtgbinder/mtgbinder/internal/deck"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string
	Height   string
	Theme    string
	Colors   []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// colorNames maps mana symbols to display names and pie slice colors.
var colorNames = []struct {
	Symbol string
	Name   string
	Hex    string
}{
	{"W", "White", "#F8F6D8"},
	{"U", "Blue", "#C1D7E9"},
	{"B", "Black", "#BAB1AB"},
	{"R", "Red", "#E49977"},
	{"G", "Green", "#A3C095"},
}

// ManaCurveChart builds a bar chart of the deck's mana curve.
func ManaCurveChart(stats deck.Stats, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithColorsOpts(opts.Colors{config.Colors[0]}),
	)

	labels := make([]string, len(stats.ManaCurve))
	data := make([]opts.BarData, len(stats.ManaCurve))
	for i, count := range stats.ManaCurve {
		if i == len(stats.ManaCurve)-1 {
			labels[i] = fmt.Sprintf("%d+", i)
		} else {
			labels[i] = fmt.Sprintf("%d", i)
		}
		data[i] = opts.BarData{Value: count}
	}

	bar.SetXAxis(labels).AddSeries("Cards", data)
	return bar
}

// ColorDistributionChart builds a pie chart of the deck's mana symbol
// distribution.
func ColorDistributionChart(stats deck.Stats, config ChartConfig) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
	)

	var data []opts.PieData
	for _, c := range colorNames {
		count := stats.ColorDistribution[c.Symbol]
		if count == 0 {
			continue
		}
		data = append(data, opts.PieData{
			Name:      c.Name,
			Value:     count,
			ItemStyle: &opts.ItemStyle{Color: c.Hex},
		})
	}

	pie.AddSeries("Mana Symbols", data)
	return pie
}

// RenderDeckCharts writes a standalone HTML page with the deck's mana
// curve and color distribution charts.
func RenderDeckCharts(w io.Writer, d *deck.Deck) error {
	stats := deck.ComputeStats(d.Entries)

	curveConfig := DefaultChartConfig()
	curveConfig.Title = d.Name
	curveConfig.Subtitle = "Mana Curve"

	colorConfig := DefaultChartConfig()
	colorConfig.Subtitle = "Color Distribution"

	page := components.NewPage()
	page.SetPageTitle(d.Name)
	page.AddCharts(
		ManaCurveChart(stats, curveConfig),
		ColorDistributionChart(stats, colorConfig),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}
