package gridmap

import (
	"cmp"
	"errors"
	"math"
)

var (
	// ErrNoInverseModel is returned when an occupancy operation is called
	// without the inverse sensor model it needs.
	ErrNoInverseModel = errors.New("inverse sensor model not set")
	// ErrInvalidResolution is returned for a non-positive or non-finite resolution.
	ErrInvalidResolution = errors.New("resolution must be positive and finite")
	// ErrInvalidSize is returned when a map dimension is not positive.
	ErrInvalidSize = errors.New("map size must be positive in every dimension")
	// ErrInvalidOrigin is returned when the map origin is not a rigid transform.
	ErrInvalidOrigin = errors.New("map origin must be a rigid transform")
)

// Index identifies a cell of a sub-grid or a bundle. Planar maps leave the
// third component at 0.
type Index [3]int

// EmptyMinIndex and EmptyMaxIndex are the bounds reported by a map without
// materialized bundles.
var (
	EmptyMinIndex = Index{math.MaxInt, math.MaxInt, math.MaxInt}
	EmptyMaxIndex = Index{math.MinInt, math.MinInt, math.MinInt}
)

// IsEmptyBounds reports whether min/max are the sentinels of an empty map
// in any of the first dims components.
func IsEmptyBounds(min, max Index, dims int) bool {
	for a := 0; a < dims; a++ {
		if min[a] == math.MaxInt || max[a] == math.MinInt {
			return true
		}
	}
	return false
}

func compareIndex(a, b Index) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}
	if c := cmp.Compare(a[1], b[1]); c != 0 {
		return c
	}
	return cmp.Compare(a[2], b[2])
}

// floorDiv2 and floorMod2 implement the even/odd bundle decomposition with
// floor semantics so negative indices split the same way as positive ones.
func floorDiv2(v int) int { return v >> 1 }
func floorMod2(v int) int { return v & 1 }

// subgridIndex returns the cell of sub-grid g that bundle bi overlaps. Bit a
// of g set means sub-grid g is shifted by half a cell along axis a; the
// bundle then selects the cell offset by the bundle's parity on that axis.
func subgridIndex(bi Index, g, dims int) Index {
	var out Index
	for a := 0; a < dims; a++ {
		out[a] = floorDiv2(bi[a])
		if g&(1<<a) != 0 {
			out[a] += floorMod2(bi[a])
		}
	}
	return out
}
