package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/ndt/internal/ndt/raster"
)

// viridis is the colour ramp of the intensity visual map.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WritePointCloudHTML renders a top view of cloud (X/Y, coloured by
// intensity) as a self-contained go-echarts page.
func WritePointCloudHTML(w io.Writer, cloud raster.PointCloud, title string) error {
	data := make([]opts.ScatterData, 0, len(cloud))
	maxIntensity := float32(0)
	for _, p := range cloud {
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Intensity}})
		maxIntensity = max(maxIntensity, p.Intensity)
	}

	pad := 1.0
	if lo, hi, ok := cloud.Bounds(); ok {
		for a := 0; a < 2; a++ {
			pad = math.Max(pad, math.Max(math.Abs(float64(lo[a])), math.Abs(float64(hi[a])))+0.5)
		}
	}
	pad = math.Ceil(pad)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("points=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        max(maxIntensity, 1e-6),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("points", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render point cloud chart: %w", err)
	}
	return nil
}
