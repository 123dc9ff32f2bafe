package output

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// PlotPasses renders a stacked bar chart with the zero and one block sizes of
// every pass to an HTML file.
func PlotPasses(passes []PassResult, filename string) error {
	bits := make([]string, len(passes))
	zeros := make([]opts.BarData, len(passes))
	ones := make([]opts.BarData, len(passes))
	for i, p := range passes {
		bits[i] = fmt.Sprintf("bit %d", p.Bit)
		zeros[i] = opts.BarData{Value: p.Zeros, Name: fmt.Sprintf("mask %#x", p.Mask)}
		ones[i] = opts.BarData{Value: p.Ones, Name: fmt.Sprintf("mask %#x", p.Mask)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "Radix passes",
			Width:           "160vh",
			Height:          "90vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Elements per block and bit",
			Left:  "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Pass",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Elements",
		}),
	)

	bar.SetXAxis(bits).
		AddSeries("zeros", zeros, charts.WithBarChartOpts(opts.BarChart{Stack: "block"})).
		AddSeries("ones", ones, charts.WithBarChartOpts(opts.BarChart{Stack: "block"}))

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(bar)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create plot file %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering plot: %w", err)
	}
	return nil
}
