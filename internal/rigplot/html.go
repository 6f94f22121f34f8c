package rigplot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/mazecapture/internal/capture"
)

// RenderHTML writes an interactive scatter page of eye positions, one series
// per direction. Hovering a point shows the image path it produces.
func RenderHTML(w io.Writer, title string, jobs []capture.RenderJob) error {
	if len(jobs) == 0 {
		return ErrNoJobs
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("jobs=%d", len(jobs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Model X (in)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Model Y (in)", NameLocation: "middle", NameGap: 30}),
	)

	order, groups := byDirection(jobs)
	for _, d := range order {
		group := groups[d]
		data := make([]opts.ScatterData, 0, len(group))
		for _, j := range group {
			data = append(data, opts.ScatterData{
				Name:  j.Path,
				Value: []interface{}{j.Pose.Position.X, j.Pose.Position.Y},
			})
		}
		scatter.AddSeries(d.String(), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
