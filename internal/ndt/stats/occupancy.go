package stats

import (
	"sync"

	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
)

// OccupancyDistribution is one occupancy map cell: an optional Distribution
// of the occupied hits plus free and occupied hit counters. All methods are
// safe for concurrent use.
type OccupancyDistribution struct {
	mu          sync.Mutex
	dim         int
	dist        *Distribution
	numFree     uint64
	numOccupied uint64
}

// NewOccupancyDistribution returns an empty cell of the given dimension.
func NewOccupancyDistribution(dim int) *OccupancyDistribution {
	return &OccupancyDistribution{dim: dim}
}

// UpdateFree adds n free observations.
func (o *OccupancyDistribution) UpdateFree(n uint64) {
	o.mu.Lock()
	o.numFree += n
	o.mu.Unlock()
}

// UpdateOccupiedPoint records a single hit at p.
func (o *OccupancyDistribution) UpdateOccupiedPoint(p geom.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dist == nil {
		o.dist = NewDistribution(o.dim)
	}
	o.dist.Add(p)
	o.numOccupied++
}

// UpdateOccupied merges a batch of hits summarised by d.
func (o *OccupancyDistribution) UpdateOccupied(d *Distribution) {
	if d == nil || d.N() == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dist == nil {
		o.dist = NewDistribution(o.dim)
	}
	o.dist.Merge(d)
	o.numOccupied += d.N()
}

// NumFree returns the free hit count.
func (o *OccupancyDistribution) NumFree() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.numFree
}

// NumOccupied returns the occupied hit count.
func (o *OccupancyDistribution) NumOccupied() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.numOccupied
}

// Distribution returns a snapshot copy of the hit distribution, or nil if
// the cell was never hit.
func (o *OccupancyDistribution) Distribution() *Distribution {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dist == nil {
		return nil
	}
	return o.dist.Clone()
}

// Occupancy maps the hit counters through model. A nil model yields 0.
func (o *OccupancyDistribution) Occupancy(model *sensor.InverseModel) float64 {
	if model == nil {
		return 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return model.Occupancy(o.numFree, o.numOccupied)
}

// Sample returns the normalized density at p weighted by the occupancy
// under model. Cells without a distribution contribute 0.
func (o *OccupancyDistribution) Sample(p geom.Point, model *sensor.InverseModel) float64 {
	return o.sample(p, model, true)
}

// SampleNonNormalized is Sample without the Gaussian normalization constant.
func (o *OccupancyDistribution) SampleNonNormalized(p geom.Point, model *sensor.InverseModel) float64 {
	return o.sample(p, model, false)
}

func (o *OccupancyDistribution) sample(p geom.Point, model *sensor.InverseModel, normalized bool) float64 {
	if model == nil {
		return 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dist == nil {
		return 0
	}
	occ := model.Occupancy(o.numFree, o.numOccupied)
	if normalized {
		return o.dist.Sample(p) * occ
	}
	return o.dist.SampleNonNormalized(p) * occ
}

// LockedDistribution is a plain NDT map cell: a Distribution guarded for
// concurrent updates and sampling.
type LockedDistribution struct {
	mu   sync.Mutex
	dist Distribution
}

// NewLockedDistribution returns an empty cell of the given dimension.
func NewLockedDistribution(dim int) *LockedDistribution {
	return &LockedDistribution{dist: *NewDistribution(dim)}
}

// Add folds p into the cell.
func (l *LockedDistribution) Add(p geom.Point) {
	l.mu.Lock()
	l.dist.Add(p)
	l.mu.Unlock()
}

// Merge folds d into the cell.
func (l *LockedDistribution) Merge(d *Distribution) {
	l.mu.Lock()
	l.dist.Merge(d)
	l.mu.Unlock()
}

// Snapshot returns a copy of the current statistics.
func (l *LockedDistribution) Snapshot() *Distribution {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dist.Clone()
}

// N returns the sample count.
func (l *LockedDistribution) N() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dist.N()
}

// Sample evaluates the normalized density at p.
func (l *LockedDistribution) Sample(p geom.Point) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dist.Sample(p)
}

// SampleNonNormalized evaluates the non-normalized density at p.
func (l *LockedDistribution) SampleNonNormalized(p geom.Point) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dist.SampleNonNormalized(p)
}
