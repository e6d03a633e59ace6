package conversion

import (
	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/gridmap"
	"github.com/banshee-data/ndt/internal/ndt/raster"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
)

// ProbabilityGridFromGridmap resamples a planar NDT map into a probability
// grid: every covered cell holds the bundle-averaged non-normalized density
// at its centre. A nil or empty source yields a nil grid and no error.
func ProbabilityGridFromGridmap(src *gridmap.Gridmap, samplingResolution float64) (*raster.ProbabilityGrid, error) {
	if src == nil {
		return nil, nil
	}
	if err := checkPlanar(src, samplingResolution); err != nil {
		return nil, err
	}
	if src.Empty() {
		diagf("map %s: empty, no probability grid", src.ID())
		return nil, nil
	}
	return rasterize(src, samplingResolution, 0, src.SampleNonNormalizedAt, identity), nil
}

// ProbabilityGridFromOccupancy is ProbabilityGridFromGridmap for occupancy
// maps; samples are weighted by the occupancy under ivm.
func ProbabilityGridFromOccupancy(src *gridmap.OccupancyGridmap, samplingResolution float64, ivm *sensor.InverseModel) (*raster.ProbabilityGrid, error) {
	if src == nil {
		return nil, nil
	}
	if ivm == nil {
		return nil, gridmap.ErrNoInverseModel
	}
	if err := checkPlanar(src, samplingResolution); err != nil {
		return nil, err
	}
	if src.Empty() {
		diagf("map %s: empty, no probability grid", src.ID())
		return nil, nil
	}
	return rasterize(src, samplingResolution, 0, occupancySampler(src, ivm), identity), nil
}

func occupancySampler(src *gridmap.OccupancyGridmap, ivm *sensor.InverseModel) sampleFunc {
	return func(p geom.Point, bi gridmap.Index) float64 {
		// ivm is checked by the caller, so the error is always nil.
		v, _ := src.SampleNonNormalizedAt(p, bi, ivm)
		return v
	}
}
