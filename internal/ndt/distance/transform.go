// Package distance computes bounded Euclidean distance fields over dense
// rasters.
package distance

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRaster is returned when the raster shape does not match its width.
var ErrInvalidRaster = errors.New("raster length must be a positive multiple of width")

// ErrInvalidParameter is returned for a non-positive resolution or maximum distance.
var ErrInvalidParameter = errors.New("resolution and maximum distance must be positive")

// Transform turns a value raster into a distance raster. Cells with a value
// at or below Threshold are obstacles; every other cell receives the
// distance in metres to the closest obstacle, clamped to MaxDistance.
type Transform struct {
	Resolution  float64
	MaxDistance float64
	Threshold   float64
}

// Apply returns the distance raster for values laid out row-major with the
// given width. values is not modified.
func (t Transform) Apply(values []float64, width int) ([]float64, error) {
	if !(t.Resolution > 0) || !(t.MaxDistance > 0) {
		return nil, fmt.Errorf("resolution %v max distance %v: %w", t.Resolution, t.MaxDistance, ErrInvalidParameter)
	}
	if width <= 0 || len(values) == 0 || len(values)%width != 0 {
		return nil, fmt.Errorf("%d cells, width %d: %w", len(values), width, ErrInvalidRaster)
	}
	height := len(values) / width

	// Squared distances in cells. Anything beyond the clamp behaves as
	// infinitely far, which keeps the envelope arithmetic finite.
	limit := t.MaxDistance / t.Resolution
	far := (limit + 1) * (limit + 1)
	sq := make([]float64, len(values))
	for i, v := range values {
		if v <= t.Threshold {
			sq[i] = 0
		} else {
			sq[i] = far
		}
	}

	n := max(width, height)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for y := 0; y < height; y++ {
		row := sq[y*width : (y+1)*width]
		copy(f, row)
		envelope(f[:width], d[:width], v, z)
		copy(row, d[:width])
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			f[y] = sq[y*width+x]
		}
		envelope(f[:height], d[:height], v, z)
		for y := 0; y < height; y++ {
			sq[y*width+x] = d[y]
		}
	}

	out := sq
	for i, s := range sq {
		out[i] = min(math.Sqrt(s)*t.Resolution, t.MaxDistance)
	}
	return out, nil
}

// envelope is the one-dimensional squared distance transform of f
// (lower envelope of parabolas rooted at every sample). v and z are scratch
// space of at least len(f) and len(f)+1 entries.
func envelope(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, v[k], q)
		for s <= z[k] {
			k--
			s = intersect(f, v[k], q)
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		d[q] = float64((q-p)*(q-p)) + f[p]
	}
}

// intersect returns where the parabolas rooted at p and q cross.
func intersect(f []float64, p, q int) float64 {
	return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*(q-p))
}
