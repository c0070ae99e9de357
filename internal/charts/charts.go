// Package charts renders collection statistics as interactive HTML
// chart pages.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cardbinder/cardbinder/internal/library"
)

// ChartConfig holds presentation options shared by every chart.
type ChartConfig struct {
	Title      string
	Subtitle   string
	Width      string
	Height     string
	Theme      string
	ShowLegend bool
	Colors     []string
}

// DefaultChartConfig returns the standard chart appearance.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single labeled value in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// RenderBarChart writes an interactive bar chart as HTML.
func RenderBarChart(data []DataPoint, config ChartConfig, w io.Writer) error {
	bar := newBar(data, config)
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderStatsPage writes a single HTML page with one chart per
// collection statistic: counts by type, counts by rarity, set
// completion, and the price histogram.
func RenderStatsPage(stats library.Stats, w io.Writer) error {
	page := components.NewPage()
	page.SetPageTitle("Collection Statistics")

	base := DefaultChartConfig()

	typeCfg := base
	typeCfg.Title = "Owned Cards by Type"
	typeCfg.Subtitle = fmt.Sprintf("%d cards owned, %d distinct", stats.TotalOwned, stats.DistinctOwned)
	page.AddCharts(newBar(bucketPoints(stats.ByType), typeCfg))

	rarityCfg := base
	rarityCfg.Title = "Owned Cards by Rarity"
	page.AddCharts(newBar(bucketPoints(stats.ByRarity), rarityCfg))

	setCfg := base
	setCfg.Title = "Set Completion"
	setCfg.Subtitle = fmt.Sprintf("Estimated value $%.2f", stats.TotalValue)
	setPoints := make([]DataPoint, 0, len(stats.SetProgress))
	for _, sp := range stats.SetProgress {
		pct := 0.0
		if sp.Total > 0 {
			pct = float64(sp.Owned) / float64(sp.Total) * 100
		}
		setPoints = append(setPoints, DataPoint{Label: sp.Code, Value: pct})
	}
	page.AddCharts(newBar(setPoints, setCfg))

	priceCfg := base
	priceCfg.Title = "Collection by Price Range"
	pricePoints := make([]DataPoint, 0, len(stats.PriceHistogram))
	for _, pb := range stats.PriceHistogram {
		pricePoints = append(pricePoints, DataPoint{Label: pb.Label, Value: float64(pb.Count)})
	}
	page.AddCharts(newBar(pricePoints, priceCfg))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render stats page: %w", err)
	}
	return nil
}

func newBar(data []DataPoint, config ChartConfig) *charts.Bar {
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
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
	)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Count", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
	return bar
}

func bucketPoints(buckets []library.CountBucket) []DataPoint {
	points := make([]DataPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, DataPoint{Label: b.Name, Value: float64(b.Count)})
	}
	return points
}
