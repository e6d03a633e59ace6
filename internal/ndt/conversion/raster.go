package conversion

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/gridmap"
	"github.com/banshee-data/ndt/internal/ndt/raster"
)

var (
	// ErrInvalidSamplingResolution is returned for a non-positive or
	// non-finite sampling resolution.
	ErrInvalidSamplingResolution = errors.New("sampling resolution must be positive and finite")
	// ErrUnsupportedDims is returned when a conversion is applied to a map
	// of the wrong dimensionality.
	ErrUnsupportedDims = errors.New("conversion does not support this map dimensionality")
)

// planarSource is the part of a map shared by both map kinds that the
// raster conversions need.
type planarSource interface {
	ID() string
	Dims() int
	Empty() bool
	Origin() geom.Transform
	BundleResolution() float64
	Width() float64
	Height() float64
	BundleIndices() []gridmap.Index
}

// sampleFunc evaluates a map at the world point p inside bundle bi.
type sampleFunc func(p geom.Point, bi gridmap.Index) float64

func checkPlanar(src planarSource, samplingResolution float64) error {
	if !(samplingResolution > 0) || math.IsInf(samplingResolution, 0) {
		opsf("map %s: rejecting sampling resolution %v", src.ID(), samplingResolution)
		return fmt.Errorf("sampling resolution %v: %w", samplingResolution, ErrInvalidSamplingResolution)
	}
	if src.Dims() != 2 {
		opsf("map %s: rejecting raster of a %d-dimensional map", src.ID(), src.Dims())
		return fmt.Errorf("raster of a %d-dimensional map: %w", src.Dims(), ErrUnsupportedDims)
	}
	return nil
}

// rasterize builds a grid covering the extent of src at samplingResolution,
// filled with fill, and writes value(sample) into every cell whose centre
// lies inside a materialized bundle. Cell centres are the sample positions.
func rasterize(src planarSource, samplingResolution, fill float64, sample sampleFunc, value func(float64) float64) *raster.ProbabilityGrid {
	width := max(1, int(math.Round(src.Width()/samplingResolution)))
	height := max(1, int(math.Round(src.Height()/samplingResolution)))
	dst := raster.NewProbabilityGrid(src.Origin(), samplingResolution, width, height, fill)

	bundleResolution := src.BundleResolution()
	origin := src.Origin()

	var samples, skipped int
	for _, bi := range src.BundleIndices() {
		x0, x1 := coveredCells(bi[0], bundleResolution, samplingResolution)
		y0, y1 := coveredCells(bi[1], bundleResolution, samplingResolution)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if !dst.InBounds(x, y) {
					skipped++
					continue
				}
				pm := geom.Pt2((float64(x)+0.5)*samplingResolution, (float64(y)+0.5)*samplingResolution)
				dst.Set(x, y, value(sample(origin.Apply(pm), bi)))
				samples++
			}
		}
	}
	tracef("map %s: raster %dx%d at %.3f, %d samples, %d outside", src.ID(), width, height, samplingResolution, samples, skipped)
	return dst
}

// coveredCells returns the half-open range of raster cells along one axis
// whose centres fall in [i·bundleResolution, (i+1)·bundleResolution).
// Neighbouring bundles share their boundary term, so the ranges tile the axis.
func coveredCells(i int, bundleResolution, samplingResolution float64) (lo, hi int) {
	first := func(i int) int {
		return int(math.Ceil(float64(i)*bundleResolution/samplingResolution - 0.5))
	}
	return first(i), first(i + 1)
}

func identity(v float64) float64 { return v }
