// Package raster holds the dense outputs produced from the sparse NDT maps:
// probability grids, likelihood fields and point clouds.
package raster

import (
	"math"

	"github.com/banshee-data/ndt/internal/ndt/geom"
)

// ProbabilityGrid is a dense row-major raster of values in [0,1]. Cell
// (x, y) covers [x, x+1)·Resolution by [y, y+1)·Resolution in the frame
// given by Origin.
type ProbabilityGrid struct {
	Origin     geom.Transform
	Resolution float64
	Width      int
	Height     int
	Data       []float64
}

// NewProbabilityGrid allocates a width by height grid filled with fill.
func NewProbabilityGrid(origin geom.Transform, resolution float64, width, height int, fill float64) *ProbabilityGrid {
	g := &ProbabilityGrid{
		Origin:     origin,
		Resolution: resolution,
		Width:      width,
		Height:     height,
		Data:       make([]float64, width*height),
	}
	if fill != 0 {
		for i := range g.Data {
			g.Data[i] = fill
		}
	}
	return g
}

// InBounds reports whether (x, y) is a cell of g.
func (g *ProbabilityGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the value of cell (x, y). It panics when out of bounds.
func (g *ProbabilityGrid) At(x, y int) float64 { return g.Data[y*g.Width+x] }

// Set stores v at cell (x, y). It panics when out of bounds.
func (g *ProbabilityGrid) Set(x, y int, v float64) { g.Data[y*g.Width+x] = v }

// CellCenter returns the world position of the centre of cell (x, y).
func (g *ProbabilityGrid) CellCenter(x, y int) geom.Point {
	return g.Origin.Apply(geom.Pt2((float64(x)+0.5)*g.Resolution, (float64(y)+0.5)*g.Resolution))
}

// ToCell returns the cell containing the world point p and whether it lies
// inside the grid.
func (g *ProbabilityGrid) ToCell(p geom.Point) (x, y int, ok bool) {
	pm := g.Origin.Inverse().Apply(p)
	x = int(math.Floor(pm[0] / g.Resolution))
	y = int(math.Floor(pm[1] / g.Resolution))
	return x, y, g.InBounds(x, y)
}

// LikelihoodField is a probability grid of measurement likelihoods derived
// from distances to the nearest obstacle.
type LikelihoodField struct {
	ProbabilityGrid
	MaximumDistance float64
	SigmaHit        float64
}

// Likelihood returns the likelihood at the world point p. Points outside
// the field get the likelihood of MaximumDistance.
func (f *LikelihoodField) Likelihood(p geom.Point) float64 {
	if x, y, ok := f.ToCell(p); ok {
		return f.At(x, y)
	}
	return math.Exp(-f.MaximumDistance * f.MaximumDistance / (2 * f.SigmaHit * f.SigmaHit))
}

// PointXYZI is a point with an intensity channel.
type PointXYZI struct {
	X, Y, Z   float32
	Intensity float32
}

// PointCloud is an unordered set of points.
type PointCloud []PointXYZI

// Bounds returns the per-axis minimum and maximum of the cloud. ok is false
// for an empty cloud.
func (c PointCloud) Bounds() (lo, hi [3]float32, ok bool) {
	if len(c) == 0 {
		return lo, hi, false
	}
	lo = [3]float32{c[0].X, c[0].Y, c[0].Z}
	hi = lo
	for _, p := range c[1:] {
		for a, v := range [3]float32{p.X, p.Y, p.Z} {
			lo[a] = min(lo[a], v)
			hi[a] = max(hi[a], v)
		}
	}
	return lo, hi, true
}
