package gridmap

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ndt/internal/ndt/geom"
)

func newTestOccupancyMap(t *testing.T) *OccupancyGridmap {
	t.Helper()
	m, err := NewOccupancyGridmap2D(geom.Identity(), 1.0, [2]int{40, 40})
	require.NoError(t, err)
	return m
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := NewOccupancyGridmap2D(geom.Identity(), 0, [2]int{1, 1})
	assert.True(t, errors.Is(err, ErrInvalidResolution))
	_, err = NewGridmap3D(geom.Identity(), math.Inf(1), [3]int{1, 1, 1})
	assert.True(t, errors.Is(err, ErrInvalidResolution))
	_, err = NewOccupancyGridmap3D(geom.Identity(), 0.5, [3]int{4, 0, 4})
	assert.True(t, errors.Is(err, ErrInvalidSize))

	sheared := geom.Identity()
	sheared.T[0] = 2
	_, err = NewGridmap2D(sheared, 1.0, [2]int{4, 4})
	assert.True(t, errors.Is(err, ErrInvalidOrigin))
	_, err = NewOccupancyGridmap3D(geom.NewPose3D(1, 2, 3, 0.1, 0.2, 0.3), 1.0, [3]int{4, 4, 4})
	assert.NoError(t, err)
}

func TestEngine_Introspection(t *testing.T) {
	origin := geom.NewPose2D(1, 2, 0.3)
	m, err := NewOccupancyGridmap2D(origin, 0.5, [2]int{10, 20})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Dims())
	assert.Equal(t, origin, m.Origin())
	assert.Equal(t, 0.5, m.Resolution())
	assert.Equal(t, 0.25, m.BundleResolution())
	assert.Equal(t, Index{10, 20, 0}, m.Size())
	assert.Equal(t, Index{20, 40, 0}, m.BundleSize())
	assert.InDelta(t, 5.0, m.Width(), 1e-12)
	assert.InDelta(t, 10.0, m.Height(), 1e-12)
	assert.Zero(t, m.Depth())
	assert.NotEmpty(t, m.ID())

	// Accessors are pure.
	assert.True(t, m.Empty())
	assert.Zero(t, m.NumBundles())
	assert.Equal(t, EmptyMinIndex, m.MinBundleIndex())
	assert.Equal(t, EmptyMaxIndex, m.MaxBundleIndex())
	assert.Greater(t, m.ByteSize(), 0)
}

func TestToBundleIndex_UsesMapFrame(t *testing.T) {
	m, err := NewOccupancyGridmap2D(geom.NewPose2D(10, 0, 0), 1.0, [2]int{4, 4})
	require.NoError(t, err)
	assert.Equal(t, Index{0, 0, 0}, m.ToBundleIndex(geom.Pt2(10.1, 0.1)))
	assert.Equal(t, Index{1, 1, 0}, m.ToBundleIndex(geom.Pt2(10.6, 0.6)))
	assert.Equal(t, Index{-1, -1, 0}, m.ToBundleIndex(geom.Pt2(9.9, -0.1)))
}

func TestSubgridIndex_Decomposition(t *testing.T) {
	cases := []struct {
		bi   Index
		want [4]Index
	}{
		{Index{0, 0, 0}, [4]Index{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
		{Index{1, 0, 0}, [4]Index{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}, {1, 0, 0}}},
		{Index{1, 1, 0}, [4]Index{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
		{Index{-1, 2, 0}, [4]Index{{-1, 1, 0}, {0, 1, 0}, {-1, 1, 0}, {0, 1, 0}}},
		{Index{-2, -3, 0}, [4]Index{{-1, -2, 0}, {-1, -2, 0}, {-1, -1, 0}, {-1, -1, 0}}},
	}
	for _, tc := range cases {
		for g := 0; g < 4; g++ {
			assert.Equal(t, tc.want[g], subgridIndex(tc.bi, g, 2), "bundle %v sub-grid %d", tc.bi, g)
		}
	}

	// Volumetric: sub-grid 7 is shifted on every axis.
	assert.Equal(t, Index{1, 1, 1}, subgridIndex(Index{1, 1, 1}, 7, 3))
	assert.Equal(t, Index{0, 0, 1}, subgridIndex(Index{1, 1, 1}, 4, 3))
}

func TestBundle_SharesSubgridCells(t *testing.T) {
	m := newTestOccupancyMap(t)
	a := m.DistributionBundle(Index{0, 0, 0})
	b := m.DistributionBundle(Index{1, 0, 0})
	require.Equal(t, 4, a.Len())

	// Both bundles lie in unshifted cell (0,0); they differ in the X-shifted grid.
	assert.Same(t, a.At(0), b.At(0))
	assert.NotSame(t, a.At(1), b.At(1))
	assert.Same(t, a.At(2), b.At(2))

	again := m.DistributionBundle(Index{0, 0, 0})
	assert.Same(t, a, again)
	assert.Equal(t, 2, m.NumBundles())
	assert.Equal(t, Index{0, 0, 0}, m.MinBundleIndex())
	assert.Equal(t, Index{1, 0, 0}, m.MaxBundleIndex())
}

func TestDistributionBundle_ConcurrentAllocationIsAtomic(t *testing.T) {
	m, err := NewOccupancyGridmap3D(geom.Identity(), 1.0, [3]int{8, 8, 8})
	require.NoError(t, err)

	const workers = 64
	bi := Index{3, -5, 7}
	results := make([]*OccupancyBundle, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			b := m.DistributionBundle(bi)
			for _, c := range b.Cells() {
				if c == nil {
					t.Errorf("worker %d observed an unpopulated slot", w)
				}
			}
			results[w] = b
		}(w)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, m.NumBundles())
	for g := 0; g < 8; g++ {
		assert.Equal(t, 1, m.storages[g].Len(), "sub-grid %d", g)
	}
	for _, b := range results {
		assert.Same(t, results[0], b)
		assert.Equal(t, 8, b.Len())
	}
}

func TestTraverse_DoesNotAllocate(t *testing.T) {
	m := newTestOccupancyMap(t)
	m.Add(geom.Pt2(0.1, 0.1), geom.Pt2(3.1, 0.1))
	before := m.NumBundles()
	require.Greater(t, before, 0)

	var visited []Index
	m.Traverse(func(bi Index, b *OccupancyBundle) {
		visited = append(visited, bi)
		assert.Equal(t, 4, b.Len())
	})
	assert.Equal(t, before, m.NumBundles())
	assert.Equal(t, m.BundleIndices(), visited)
	assert.Equal(t, before, m.NumBundles())

	_, ok := m.PeekBundle(Index{30, 30, 0})
	assert.False(t, ok)
	assert.Equal(t, before, m.NumBundles())
}
