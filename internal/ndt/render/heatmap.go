package render

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/ndt/internal/ndt/raster"
)

// ErrEmptyGrid is returned when there is nothing to plot.
var ErrEmptyGrid = errors.New("grid has no cells")

// HeatMapSize is the edge of the rendered square image.
var HeatMapSize = 8 * vg.Inch

// gridXYZ adapts a ProbabilityGrid to plotter.GridXYZ in grid-frame metres.
type gridXYZ struct {
	g *raster.ProbabilityGrid
}

func (a gridXYZ) Dims() (c, r int)   { return a.g.Width, a.g.Height }
func (a gridXYZ) Z(c, r int) float64 { return a.g.At(c, r) }
func (a gridXYZ) X(c int) float64    { return (float64(c) + 0.5) * a.g.Resolution }
func (a gridXYZ) Y(r int) float64    { return (float64(r) + 0.5) * a.g.Resolution }

func heatMapPlot(g *raster.ProbabilityGrid, title string) (*plot.Plot, error) {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, ErrEmptyGrid
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	hm := plotter.NewHeatMap(gridXYZ{g: g}, palette.Heat(64, 1))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)
	return p, nil
}

// SavePNG renders g to a PNG file at path.
func SavePNG(g *raster.ProbabilityGrid, title, path string) error {
	p, err := heatMapPlot(g, title)
	if err != nil {
		return err
	}
	if err := p.Save(HeatMapSize, HeatMapSize, path); err != nil {
		return fmt.Errorf("failed to save heat map %s: %w", path, err)
	}
	return nil
}

// WritePNG renders g as PNG to w.
func WritePNG(w io.Writer, g *raster.ProbabilityGrid, title string) error {
	p, err := heatMapPlot(g, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(HeatMapSize, HeatMapSize, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write heat map: %w", err)
	}
	return nil
}
