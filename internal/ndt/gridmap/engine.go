package gridmap

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/google/uuid"

	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/storage"
)

// maxCapacityHint caps the storage pre-size so that large maps stay sparse.
const maxCapacityHint = 1 << 12

// engine is the storage core shared by Gridmap and OccupancyGridmap: the
// map geometry, one storage per staggered sub-grid and the bundle storage.
type engine[C any] struct {
	id    string
	dims  int
	arity int

	resolution          float64
	bundleResolution    float64
	bundleResolutionInv float64
	wTm                 geom.Transform // map -> world
	mTw                 geom.Transform // world -> map
	size                Index

	newCell  func() *C
	storages [8]*storage.Storage[Index, C]
	bundles  *storage.Storage[Index, Bundle[C]]

	boundsMu sync.Mutex
	minIndex Index
	maxIndex Index
}

func newEngine[C any](dims int, origin geom.Transform, resolution float64, size Index, newCell func() *C) (*engine[C], error) {
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		opsf("rejecting map: resolution %v", resolution)
		return nil, fmt.Errorf("resolution %v: %w", resolution, ErrInvalidResolution)
	}
	for a := 0; a < dims; a++ {
		if size[a] <= 0 {
			opsf("rejecting map: size %v", size[:dims])
			return nil, fmt.Errorf("size %v: %w", size[:dims], ErrInvalidSize)
		}
	}
	if !origin.IsValid() {
		opsf("rejecting map: origin %v", origin.T)
		return nil, fmt.Errorf("origin %v: %w", origin.T, ErrInvalidOrigin)
	}
	for a := dims; a < 3; a++ {
		size[a] = 0
	}

	e := &engine[C]{
		id:                  uuid.NewString(),
		dims:                dims,
		arity:               1 << dims,
		resolution:          resolution,
		bundleResolution:    0.5 * resolution,
		bundleResolutionInv: 2.0 / resolution,
		wTm:                 origin,
		mTw:                 origin.Inverse(),
		size:                size,
		newCell:             newCell,
		minIndex:            EmptyMinIndex,
		maxIndex:            EmptyMaxIndex,
	}

	// Sub-grid 0 covers the map; shifted sub-grids need one extra cell per
	// axis for the boundary overlap; bundles are twice as dense.
	for g := 0; g < e.arity; g++ {
		e.storages[g] = storage.New[Index, C](e.capacity(func(a int) int {
			if g == 0 {
				return size[a]
			}
			return size[a] + 1
		}), compareIndex)
	}
	e.bundles = storage.New[Index, Bundle[C]](e.capacity(func(a int) int { return 2 * size[a] }), compareIndex)

	diagf("map %s: created dims=%d resolution=%.3f bundle_resolution=%.3f size=%v",
		e.id, dims, resolution, e.bundleResolution, size[:dims])
	return e, nil
}

func (e *engine[C]) capacity(extent func(a int) int) int {
	c := 1
	for a := 0; a < e.dims; a++ {
		c *= extent(a)
		if c >= maxCapacityHint {
			return maxCapacityHint
		}
	}
	return c
}

// ID returns the instance identifier used in log lines.
func (e *engine[C]) ID() string { return e.id }

// Dims returns 2 for planar maps and 3 for volumetric maps.
func (e *engine[C]) Dims() int { return e.dims }

// Origin returns the map -> world transform.
func (e *engine[C]) Origin() geom.Transform { return e.wTm }

// Resolution returns the sub-grid cell edge in metres.
func (e *engine[C]) Resolution() float64 { return e.resolution }

// BundleResolution returns the bundle edge, half the resolution.
func (e *engine[C]) BundleResolution() float64 { return e.bundleResolution }

// Size returns the cell count per axis.
func (e *engine[C]) Size() Index { return e.size }

// BundleSize returns the bundle count per axis.
func (e *engine[C]) BundleSize() Index {
	var s Index
	for a := 0; a < e.dims; a++ {
		s[a] = 2 * e.size[a]
	}
	return s
}

// Width returns the X extent in metres.
func (e *engine[C]) Width() float64 { return float64(e.size[0]) * e.resolution }

// Height returns the Y extent in metres.
func (e *engine[C]) Height() float64 { return float64(e.size[1]) * e.resolution }

// Depth returns the Z extent in metres, 0 for planar maps.
func (e *engine[C]) Depth() float64 { return float64(e.size[2]) * e.resolution }

// ToBundleIndex returns the bundle containing the world point p.
func (e *engine[C]) ToBundleIndex(p geom.Point) Index {
	return e.mapToBundleIndex(e.mTw.Apply(p))
}

func (e *engine[C]) mapToBundleIndex(pm geom.Point) Index {
	var bi Index
	for a := 0; a < e.dims; a++ {
		bi[a] = int(math.Floor(pm[a] * e.bundleResolutionInv))
	}
	return bi
}

// cell returns the sub-grid g cell at i, creating it when absent.
func (e *engine[C]) cell(g int, i Index) *C {
	c, _ := e.storages[g].GetOrCreate(i, e.newCell)
	return c
}

// bundle returns the bundle at bi, creating it and its sub-grid cells when
// absent. The bundle guard is held until every slot is set and the bundle
// is published.
func (e *engine[C]) bundle(bi Index) *Bundle[C] {
	b, _ := e.bundles.GetOrCreate(bi, func() *Bundle[C] {
		nb := &Bundle[C]{n: e.arity}
		for g := 0; g < e.arity; g++ {
			nb.cells[g] = e.cell(g, subgridIndex(bi, g, e.dims))
		}
		e.growBounds(bi)
		return nb
	})
	return b
}

func (e *engine[C]) growBounds(bi Index) {
	e.boundsMu.Lock()
	defer e.boundsMu.Unlock()
	for a := 0; a < e.dims; a++ {
		e.minIndex[a] = min(e.minIndex[a], bi[a])
		e.maxIndex[a] = max(e.maxIndex[a], bi[a])
	}
	for a := e.dims; a < 3; a++ {
		e.minIndex[a], e.maxIndex[a] = 0, 0
	}
}

// PeekBundle returns the bundle at bi without allocating it.
func (e *engine[C]) PeekBundle(bi Index) (*Bundle[C], bool) {
	return e.bundles.Get(bi)
}

// MinBundleIndex returns the smallest materialized bundle index per axis,
// EmptyMinIndex while no bundle exists.
func (e *engine[C]) MinBundleIndex() Index {
	e.boundsMu.Lock()
	defer e.boundsMu.Unlock()
	return e.minIndex
}

// MaxBundleIndex returns the largest materialized bundle index per axis
// (inclusive), EmptyMaxIndex while no bundle exists.
func (e *engine[C]) MaxBundleIndex() Index {
	e.boundsMu.Lock()
	defer e.boundsMu.Unlock()
	return e.maxIndex
}

// Empty reports whether no bundle has been materialized.
func (e *engine[C]) Empty() bool {
	return IsEmptyBounds(e.MinBundleIndex(), e.MaxBundleIndex(), e.dims)
}

// NumBundles returns the number of materialized bundles.
func (e *engine[C]) NumBundles() int { return e.bundles.Len() }

// BundleIndices returns the indices of all materialized bundles in index
// order. It never allocates bundles.
func (e *engine[C]) BundleIndices() []Index { return e.bundles.Keys() }

// Traverse visits every materialized bundle in index order. Bundles created
// by concurrent writers during the traversal may be missed; callers needing
// a consistent view must not write concurrently.
func (e *engine[C]) Traverse(visit func(bi Index, b *Bundle[C])) {
	e.bundles.Traverse(visit)
}

// ByteSize estimates the memory held by the map.
func (e *engine[C]) ByteSize() int {
	n := int(unsafe.Sizeof(*e)) + e.bundles.ByteSize()
	for g := 0; g < e.arity; g++ {
		n += e.storages[g].ByteSize()
	}
	return n
}
