// Package testutil provides shared scan fixtures for the NDT map tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/banshee-data/ndt/internal/ndt/geom"
)

// Lattice returns a regular lattice of points centred on c: 5x5 for planar
// maps and 5x5x3 for volumetric maps, spaced by pitch. Its sample
// covariance is positive definite in every axis used.
func Lattice(c geom.Point, pitch float64, dims int) []geom.Point {
	layers := []int{0}
	if dims == 3 {
		layers = []int{-1, 0, 1}
	}
	out := make([]geom.Point, 0, 25*len(layers))
	for i := -2; i <= 2; i++ {
		for j := -2; j <= 2; j++ {
			for _, k := range layers {
				out = append(out, c.Add(geom.Pt3(float64(i)*pitch, float64(j)*pitch, float64(k)*pitch)))
			}
		}
	}
	return out
}

// Ring returns n planar beam endpoints at distance radius around the
// sensor, evenly spaced in bearing.
func Ring(n int, radius float64) []geom.Point {
	out := make([]geom.Point, n)
	for i := range out {
		a := float64(i) / float64(n) * 2 * math.Pi
		out[i] = geom.Pt2(radius*math.Cos(a), radius*math.Sin(a))
	}
	return out
}

// UniformPoints returns n points drawn uniformly from the box [lo, hi) in
// the first dims axes.
func UniformPoints(r *rand.Rand, n, dims int, lo, hi geom.Point) []geom.Point {
	out := make([]geom.Point, n)
	for i := range out {
		for a := 0; a < dims; a++ {
			out[i][a] = lo[a] + r.Float64()*(hi[a]-lo[a])
		}
	}
	return out
}
