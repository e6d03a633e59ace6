package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
)

func TestOccupancyDistribution_Counters(t *testing.T) {
	o := NewOccupancyDistribution(2)
	assert.Nil(t, o.Distribution())

	o.UpdateFree(3)
	o.UpdateOccupiedPoint(geom.Pt2(1, 1))

	batch := NewDistribution(2)
	batch.Add(geom.Pt2(0, 0))
	batch.Add(geom.Pt2(2, 0))
	o.UpdateOccupied(batch)

	assert.Equal(t, uint64(3), o.NumFree())
	assert.Equal(t, uint64(3), o.NumOccupied())
	d := o.Distribution()
	require.NotNil(t, d)
	assert.Equal(t, uint64(3), d.N())

	// The snapshot must not alias the cell.
	d.Add(geom.Pt2(5, 5))
	assert.Equal(t, uint64(3), o.Distribution().N())
}

func TestOccupancyDistribution_OccupancyRange(t *testing.T) {
	model := sensor.DefaultInverseModel()
	o := NewOccupancyDistribution(2)
	assert.Zero(t, o.Occupancy(nil))
	for i := 0; i < 200; i++ {
		o.UpdateOccupiedPoint(geom.Pt2(float64(i%5), float64(i%7)))
		occ := o.Occupancy(model)
		require.GreaterOrEqual(t, occ, 0.0)
		require.LessOrEqual(t, occ, 1.0)
	}
	assert.Greater(t, o.Occupancy(model), 0.99)
}

func TestOccupancyDistribution_SampleWeightedByOccupancy(t *testing.T) {
	model := sensor.DefaultInverseModel()
	o := NewOccupancyDistribution(2)
	for _, p := range []geom.Point{geom.Pt2(0, 0), geom.Pt2(2, 0), geom.Pt2(0, 2), geom.Pt2(2, 2)} {
		o.UpdateOccupiedPoint(p)
	}
	o.UpdateFree(2)

	p := geom.Pt2(1.2, 0.9)
	d := o.Distribution()
	occ := o.Occupancy(model)
	assert.InDelta(t, d.Sample(p)*occ, o.Sample(p, model), 1e-12)
	assert.InDelta(t, d.SampleNonNormalized(p)*occ, o.SampleNonNormalized(p, model), 1e-12)
	assert.Zero(t, o.Sample(p, nil))
	assert.Zero(t, NewOccupancyDistribution(2).Sample(p, model))
}

func TestOccupancyDistribution_ConcurrentUpdates(t *testing.T) {
	o := NewOccupancyDistribution(3)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				o.UpdateFree(1)
				o.UpdateOccupiedPoint(geom.Pt3(float64(id), float64(i%3), float64(i%5)))
				_ = o.SampleNonNormalized(geom.Pt3(0, 0, 0), sensor.DefaultInverseModel())
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, uint64(4000), o.NumFree())
	assert.Equal(t, uint64(4000), o.NumOccupied())
}

func TestLockedDistribution(t *testing.T) {
	l := NewLockedDistribution(2)
	for _, p := range []geom.Point{geom.Pt2(0, 0), geom.Pt2(2, 0), geom.Pt2(0, 2), geom.Pt2(2, 2)} {
		l.Add(p)
	}
	snap := l.Snapshot()
	assert.Equal(t, uint64(4), l.N())
	assert.InDelta(t, snap.Sample(geom.Pt2(1, 1)), l.Sample(geom.Pt2(1, 1)), 1e-12)
	assert.InDelta(t, 1.0, l.SampleNonNormalized(geom.Pt2(1, 1)), 1e-12)

	other := NewDistribution(2)
	other.Add(geom.Pt2(1, 1))
	l.Merge(other)
	assert.Equal(t, uint64(5), l.N())
}
