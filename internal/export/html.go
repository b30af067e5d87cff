package export

import (
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// HTML writes a page with one zoomable line chart per series.
func HTML(w io.Writer, title string, series []Series) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	page := components.NewPage()
	page.SetPageTitle(title)
	for _, s := range series {
		page.AddCharts(lineChart(title, s))
	}
	return page.Render(w)
}

func lineChart(title string, s Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    s.Name,
			Subtitle: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Time [s]",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	xs := make([]string, len(s.T))
	items := make([]opts.LineData, len(s.Values))
	for i := range s.T {
		xs[i] = strconv.FormatFloat(s.T[i], 'g', 6, 64)
	}
	for i, v := range s.Values {
		items[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(xs).AddSeries(s.Name, items,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func SaveHTML(path, title string, series []Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return HTML(f, title, series)
}
