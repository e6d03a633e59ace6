package conversion

import (
	"fmt"

	"github.com/banshee-data/ndt/internal/ndt/gridmap"
	"github.com/banshee-data/ndt/internal/ndt/raster"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
	"github.com/banshee-data/ndt/internal/ndt/stats"
)

// DefaultPointCloudThreshold is the minimum bundle occupancy for a point to
// be emitted by PointCloudFromOccupancy.
const DefaultPointCloudThreshold = 0.169

// PointCloudFromGridmap emits one point per materialized bundle of a
// volumetric NDT map: the mean of its merged sub-cells, with the
// non-normalized density at that mean as intensity. Bundles without samples
// are skipped. A nil source yields nil.
func PointCloudFromGridmap(src *gridmap.Gridmap) (raster.PointCloud, error) {
	if src == nil {
		return nil, nil
	}
	if src.Dims() != 3 {
		return nil, fmt.Errorf("point cloud of a %d-dimensional map: %w", src.Dims(), ErrUnsupportedDims)
	}

	cloud := raster.PointCloud{}
	src.Traverse(func(bi gridmap.Index, b *gridmap.DistributionBundle) {
		d := stats.NewDistribution(3)
		for _, c := range b.Cells() {
			d.Merge(c.Snapshot())
		}
		if d.N() == 0 {
			return
		}
		mean := d.Mean()
		cloud = append(cloud, point(mean, src.SampleNonNormalizedAt(mean, bi)))
	})
	tracef("map %s: point cloud of %d points", src.ID(), len(cloud))
	return cloud, nil
}

// PointCloudFromOccupancy is PointCloudFromGridmap for occupancy maps.
// Bundles whose mean sub-cell occupancy under ivm is below threshold are
// skipped too, and intensities are occupancy weighted.
func PointCloudFromOccupancy(src *gridmap.OccupancyGridmap, ivm *sensor.InverseModel, threshold float64) (raster.PointCloud, error) {
	if src == nil {
		return nil, nil
	}
	if ivm == nil {
		return nil, gridmap.ErrNoInverseModel
	}
	if src.Dims() != 3 {
		return nil, fmt.Errorf("point cloud of a %d-dimensional map: %w", src.Dims(), ErrUnsupportedDims)
	}

	cloud := raster.PointCloud{}
	src.Traverse(func(bi gridmap.Index, b *gridmap.OccupancyBundle) {
		d := stats.NewDistribution(3)
		var occupancy float64
		for _, c := range b.Cells() {
			occupancy += c.Occupancy(ivm) / float64(b.Len())
			if cd := c.Distribution(); cd != nil {
				d.Merge(cd)
			}
		}
		if d.N() == 0 || occupancy < threshold {
			return
		}
		mean := d.Mean()
		v, _ := src.SampleNonNormalizedAt(mean, bi, ivm)
		cloud = append(cloud, point(mean, v))
	})
	tracef("map %s: point cloud of %d points", src.ID(), len(cloud))
	return cloud, nil
}

func point(p [3]float64, intensity float64) raster.PointXYZI {
	return raster.PointXYZI{
		X:         float32(p[0]),
		Y:         float32(p[1]),
		Z:         float32(p[2]),
		Intensity: float32(intensity),
	}
}
