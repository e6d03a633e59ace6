// Package raytrace walks the integer cells crossed by a sensor beam.
//
// The walk is the voxel traversal of Amanatides and Woo: starting at the
// cell containing the beam origin it steps one face-adjacent cell at a time
// and stops before the cell that contains the beam end point.
package raytrace

import (
	"math"

	"github.com/banshee-data/ndt/internal/ndt/geom"
)

// Iterator enumerates the cells between two points. The end cell itself is
// never yielded; callers treat it as the hit.
type Iterator struct {
	dims      int
	cur       [3]int
	end       [3]int
	step      [3]int
	tMax      [3]float64
	tDelta    [3]float64
	remaining int
}

// NewIterator prepares a walk from start to end over cells of edge
// resolution. dims is 2 for planar maps (Z is ignored) or 3.
func NewIterator(start, end geom.Point, resolution float64, dims int) *Iterator {
	if dims < 1 || dims > 3 {
		dims = 3
	}
	it := &Iterator{dims: dims}
	inv := 1.0 / resolution
	delta := end.Sub(start).Scale(inv)
	for a := 0; a < dims; a++ {
		s := start[a] * inv
		it.cur[a] = int(math.Floor(s))
		it.end[a] = int(math.Floor(end[a] * inv))

		d := delta[a]
		switch {
		case it.cur[a] == it.end[a]:
			it.tMax[a] = math.Inf(1)
		case d > 0:
			it.step[a] = 1
			it.tDelta[a] = 1.0 / d
			it.tMax[a] = (float64(it.cur[a]+1) - s) / d
		default:
			it.step[a] = -1
			it.tDelta[a] = -1.0 / d
			it.tMax[a] = (s - float64(it.cur[a])) / -d
		}
		it.remaining += abs(it.end[a] - it.cur[a])
	}
	return it
}

// Done reports whether the walk has reached the end cell.
func (it *Iterator) Done() bool { return it.remaining <= 0 }

// Index returns the current cell.
func (it *Iterator) Index() [3]int { return it.cur }

// Len returns the number of cells still to be yielded, the current one included.
func (it *Iterator) Len() int { return it.remaining }

// Next advances to the next cell. Axes already aligned with the end cell
// are never stepped, so floating point drift cannot overshoot the target.
func (it *Iterator) Next() {
	if it.Done() {
		return
	}
	axis := -1
	for a := 0; a < it.dims; a++ {
		if it.cur[a] == it.end[a] {
			continue
		}
		if axis < 0 || it.tMax[a] < it.tMax[axis] {
			axis = a
		}
	}
	it.cur[axis] += it.step[axis]
	it.tMax[axis] += it.tDelta[axis]
	if it.cur[axis] == it.end[axis] {
		it.tMax[axis] = math.Inf(1)
	}
	it.remaining--
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
