package gridmap

import (
	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/stats"
)

// DistributionBundle is a bundle of plain NDT cells.
type DistributionBundle = Bundle[stats.LockedDistribution]

// Gridmap is a plain NDT map: every sub-grid cell keeps the Gaussian of the
// points that fell into it, without free space evidence.
type Gridmap struct {
	*engine[stats.LockedDistribution]
}

// NewGridmap2D creates a planar NDT map.
func NewGridmap2D(origin geom.Transform, resolution float64, size [2]int) (*Gridmap, error) {
	return newGridmap(2, origin, resolution, Index{size[0], size[1], 0})
}

// NewGridmap3D creates a volumetric NDT map.
func NewGridmap3D(origin geom.Transform, resolution float64, size [3]int) (*Gridmap, error) {
	return newGridmap(3, origin, resolution, Index(size))
}

func newGridmap(dims int, origin geom.Transform, resolution float64, size Index) (*Gridmap, error) {
	e, err := newEngine(dims, origin, resolution, size, func() *stats.LockedDistribution {
		return stats.NewLockedDistribution(dims)
	})
	if err != nil {
		return nil, err
	}
	return &Gridmap{engine: e}, nil
}

// DistributionBundle returns the bundle at bi, allocating it if absent.
func (m *Gridmap) DistributionBundle(bi Index) *DistributionBundle {
	return m.bundle(bi)
}

// Add inserts the world point p into every cell of its bundle.
// Non-finite points are ignored.
func (m *Gridmap) Add(p geom.Point) {
	if !p.IsFinite() {
		return
	}
	for _, c := range m.bundle(m.ToBundleIndex(p)).Cells() {
		c.Add(p)
	}
}

// Insert adds a scan taken from origin, merging hits per bundle first.
func (m *Gridmap) Insert(origin geom.Transform, points []geom.Point) {
	local := m.accumulate(origin, points)
	for _, bi := range local.order {
		d := local.at(bi)
		for _, c := range m.bundle(bi).Cells() {
			c.Merge(d)
		}
	}
}

// Sample evaluates the bundle-averaged normalized density at p.
func (m *Gridmap) Sample(p geom.Point) float64 {
	return m.SampleAt(p, m.ToBundleIndex(p))
}

// SampleAt is Sample with a precomputed bundle index.
func (m *Gridmap) SampleAt(p geom.Point, bi Index) float64 {
	w := 1.0 / float64(m.arity)
	var s float64
	for _, c := range m.bundle(bi).Cells() {
		s += w * c.Sample(p)
	}
	return s
}

// SampleNonNormalized evaluates the bundle-averaged density at p without
// the normalization constant.
func (m *Gridmap) SampleNonNormalized(p geom.Point) float64 {
	return m.SampleNonNormalizedAt(p, m.ToBundleIndex(p))
}

// SampleNonNormalizedAt is SampleNonNormalized with a precomputed bundle index.
func (m *Gridmap) SampleNonNormalizedAt(p geom.Point, bi Index) float64 {
	w := 1.0 / float64(m.arity)
	var s float64
	for _, c := range m.bundle(bi).Cells() {
		s += w * c.SampleNonNormalized(p)
	}
	return s
}
