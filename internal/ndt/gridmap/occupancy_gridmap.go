package gridmap

import (
	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/raytrace"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
	"github.com/banshee-data/ndt/internal/ndt/stats"
)

// OccupancyBundle is a bundle of occupancy cells.
type OccupancyBundle = Bundle[stats.OccupancyDistribution]

// OccupancyGridmap is an NDT occupancy map: every sub-grid cell keeps a
// Gaussian of its hits plus free/occupied counters, interpreted through an
// inverse sensor model at query time.
type OccupancyGridmap struct {
	*engine[stats.OccupancyDistribution]
}

// NewOccupancyGridmap2D creates a planar map. origin is the map -> world
// pose, resolution the cell edge in metres and size the cell count.
func NewOccupancyGridmap2D(origin geom.Transform, resolution float64, size [2]int) (*OccupancyGridmap, error) {
	return newOccupancyGridmap(2, origin, resolution, Index{size[0], size[1], 0})
}

// NewOccupancyGridmap3D creates a volumetric map.
func NewOccupancyGridmap3D(origin geom.Transform, resolution float64, size [3]int) (*OccupancyGridmap, error) {
	return newOccupancyGridmap(3, origin, resolution, Index(size))
}

func newOccupancyGridmap(dims int, origin geom.Transform, resolution float64, size Index) (*OccupancyGridmap, error) {
	e, err := newEngine(dims, origin, resolution, size, func() *stats.OccupancyDistribution {
		return stats.NewOccupancyDistribution(dims)
	})
	if err != nil {
		return nil, err
	}
	return &OccupancyGridmap{engine: e}, nil
}

// DistributionBundle returns the bundle at bi, allocating it if absent.
func (m *OccupancyGridmap) DistributionBundle(bi Index) *OccupancyBundle {
	return m.bundle(bi)
}

// Add inserts a single beam: the bundle at end becomes occupied by end, and
// every bundle the beam crosses before it receives one free observation.
func (m *OccupancyGridmap) Add(start, end geom.Point) {
	m.updateOccupiedPoint(m.ToBundleIndex(end), end)

	it := raytrace.NewIterator(m.mTw.Apply(start), m.mTw.Apply(end), m.bundleResolution, m.dims)
	for ; !it.Done(); it.Next() {
		m.updateFree(it.Index(), 1)
	}
}

// Insert adds a scan taken from origin. points are in the sensor frame;
// non-finite points are dropped. Hits are first merged per bundle, then
// each hit bundle gets one occupied update and one ray of free updates
// weighted by the number of merged hits.
func (m *OccupancyGridmap) Insert(origin geom.Transform, points []geom.Point) {
	local := m.accumulate(origin, points)
	start := m.mTw.Apply(origin.Translation())
	for _, bi := range local.order {
		d := local.at(bi)
		m.updateOccupied(bi, d)

		n := d.N()
		it := raytrace.NewIterator(start, m.mTw.Apply(d.Mean()), m.bundleResolution, m.dims)
		for ; !it.Done(); it.Next() {
			m.updateFree(it.Index(), n)
		}
	}
}

// InsertVisible is Insert with occlusion handling. Each ray carries a
// visibility that starts at 1 and is multiplied, per crossed bundle, by
//
//	pFree·o + pOccupied·(1-o)
//
// where o is the lower occupancy (under ivm) of the two neighbours that lie
// one bundle closer to the sensor along X and along Y, and pFree/pOccupied
// come from ivmVisibility. The ray stops as soon as visibility drops below
// ivmVisibility's prior; the hit is only recorded if visibility, after the
// same step at the end bundle, still reaches the prior.
func (m *OccupancyGridmap) InsertVisible(origin geom.Transform, points []geom.Point, ivm, ivmVisibility *sensor.InverseModel) error {
	if ivm == nil || ivmVisibility == nil {
		return ErrNoInverseModel
	}

	startBI := m.ToBundleIndex(origin.Translation())
	occupancy := func(bi Index) float64 {
		var o float64
		for _, c := range m.bundle(bi).Cells() {
			o += c.Occupancy(ivm)
		}
		return o / float64(m.arity)
	}
	towardSensor := func(v, s int) int {
		if v > s {
			return -1
		}
		return 1
	}
	visibility := func(bi Index) float64 {
		nx, ny := bi, bi
		nx[0] += towardSensor(bi[0], startBI[0])
		ny[1] += towardSensor(bi[1], startBI[1])
		o := min(occupancy(nx), occupancy(ny))
		return ivmVisibility.ProbFree()*o + ivmVisibility.ProbOccupied()*(1.0-o)
	}
	prior := ivmVisibility.ProbPrior()

	local := m.accumulate(origin, points)
	start := m.mTw.Apply(origin.Translation())
	var occluded int
	for _, bi := range local.order {
		d := local.at(bi)
		n := d.N()
		v := 1.0

		it := raytrace.NewIterator(start, m.mTw.Apply(d.Mean()), m.bundleResolution, m.dims)
		blocked := false
		for ; !it.Done(); it.Next() {
			cur := Index(it.Index())
			if v *= visibility(cur); v < prior {
				blocked = true
				break
			}
			m.updateFree(cur, n)
		}
		if blocked {
			occluded++
			continue
		}
		if v *= visibility(bi); v >= prior {
			m.updateOccupied(bi, d)
		} else {
			occluded++
		}
	}
	tracef("map %s: visible insert of %d cells, %d occluded", m.id, len(local.order), occluded)
	return nil
}

// Sample evaluates the occupancy-weighted normalized density at p.
func (m *OccupancyGridmap) Sample(p geom.Point, ivm *sensor.InverseModel) (float64, error) {
	return m.SampleAt(p, m.ToBundleIndex(p), ivm)
}

// SampleAt is Sample with a precomputed bundle index.
func (m *OccupancyGridmap) SampleAt(p geom.Point, bi Index, ivm *sensor.InverseModel) (float64, error) {
	if ivm == nil {
		return 0, ErrNoInverseModel
	}
	w := 1.0 / float64(m.arity)
	var s float64
	for _, c := range m.bundle(bi).Cells() {
		s += w * c.Sample(p, ivm)
	}
	return s, nil
}

// SampleNonNormalized evaluates the occupancy-weighted density at p without
// the Gaussian normalization constant.
func (m *OccupancyGridmap) SampleNonNormalized(p geom.Point, ivm *sensor.InverseModel) (float64, error) {
	return m.SampleNonNormalizedAt(p, m.ToBundleIndex(p), ivm)
}

// SampleNonNormalizedAt is SampleNonNormalized with a precomputed bundle index.
func (m *OccupancyGridmap) SampleNonNormalizedAt(p geom.Point, bi Index, ivm *sensor.InverseModel) (float64, error) {
	if ivm == nil {
		return 0, ErrNoInverseModel
	}
	w := 1.0 / float64(m.arity)
	var s float64
	for _, c := range m.bundle(bi).Cells() {
		s += w * c.SampleNonNormalized(p, ivm)
	}
	return s, nil
}

func (m *OccupancyGridmap) updateFree(bi Index, n uint64) {
	for _, c := range m.bundle(bi).Cells() {
		c.UpdateFree(n)
	}
}

func (m *OccupancyGridmap) updateOccupiedPoint(bi Index, p geom.Point) {
	for _, c := range m.bundle(bi).Cells() {
		c.UpdateOccupiedPoint(p)
	}
}

func (m *OccupancyGridmap) updateOccupied(bi Index, d *stats.Distribution) {
	for _, c := range m.bundle(bi).Cells() {
		c.UpdateOccupied(d)
	}
}
