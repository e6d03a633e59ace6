package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/ndt/internal/ndt/geom"
)

func TestLattice(t *testing.T) {
	c := geom.Pt3(1, 2, 3)
	planar := Lattice(geom.Pt2(1, 2), 0.1, 2)
	assert.Len(t, planar, 25)
	vol := Lattice(c, 0.1, 3)
	assert.Len(t, vol, 75)

	var sum geom.Point
	for _, p := range vol {
		sum = sum.Add(p)
	}
	mean := sum.Scale(1 / float64(len(vol)))
	for a := 0; a < 3; a++ {
		assert.InDelta(t, c[a], mean[a], 1e-12)
	}
	for _, p := range planar {
		assert.Zero(t, p.Z())
	}
}

func TestRing(t *testing.T) {
	pts := Ring(16, 3)
	assert.Len(t, pts, 16)
	for _, p := range pts {
		assert.InDelta(t, 3, math.Hypot(p.X(), p.Y()), 1e-12)
	}
	assert.InDelta(t, 3, pts[0].X(), 1e-12)
	assert.InDelta(t, 3, pts[4].Y(), 1e-12)
}

func TestUniformPoints(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	pts := UniformPoints(r, 200, 2, geom.Pt2(-1, 2), geom.Pt2(1, 3))
	for _, p := range pts {
		if p.X() < -1 || p.X() >= 1 || p.Y() < 2 || p.Y() >= 3 || p.Z() != 0 || math.IsNaN(p.X()) {
			t.Errorf("point %v outside box", p)
		}
	}
}
