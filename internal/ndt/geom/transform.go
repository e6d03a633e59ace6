package geom

import "math"

// MatrixValidationTolerance is the tolerance for checking rotation matrix validity.
const MatrixValidationTolerance = 0.01

// Point is a Cartesian position in metres. Planar maps leave Z at 0.
type Point [3]float64

// Pt2 builds a planar point.
func Pt2(x, y float64) Point { return Point{x, y, 0} }

// Pt3 builds a volumetric point.
func Pt3(x, y, z float64) Point { return Point{x, y, z} }

// X returns the first component.
func (p Point) X() float64 { return p[0] }

// Y returns the second component.
func (p Point) Y() float64 { return p[1] }

// Z returns the third component.
func (p Point) Z() float64 { return p[2] }

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{p[0] + o[0], p[1] + o[1], p[2] + o[2]} }

// Sub returns p-o.
func (p Point) Sub(o Point) Point { return Point{p[0] - o[0], p[1] - o[1], p[2] - o[2]} }

// Scale returns p*s.
func (p Point) Scale(s float64) Point { return Point{p[0] * s, p[1] * s, p[2] * s} }

// IsFinite reports whether no component is NaN or infinite.
func (p Point) IsFinite() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Transform is a rigid transform (frame A -> frame B).
// T is 4x4 row-major (m00..m03, m10..m13, m20..m23, m30..m33).
type Transform struct {
	T [16]float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{T: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}}
}

// NewPose2D returns the planar pose (x, y, phi) as a rotation about Z.
func NewPose2D(x, y, phi float64) Transform {
	c, s := math.Cos(phi), math.Sin(phi)
	return Transform{T: [16]float64{
		c, -s, 0, x,
		s, c, 0, y,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// NewPose3D returns the pose with translation (x, y, z) and the rotation
// Rz(yaw)·Ry(pitch)·Rx(roll).
func NewPose3D(x, y, z, roll, pitch, yaw float64) Transform {
	cr, sr := math.Cos(roll), math.Sin(roll)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	return Transform{T: [16]float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr, x,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr, y,
		-sp, cp * sr, cp * cr, z,
		0, 0, 0, 1,
	}}
}

// Translate returns the pure translation by p.
func Translate(p Point) Transform {
	t := Identity()
	t.T[3], t.T[7], t.T[11] = p[0], p[1], p[2]
	return t
}

// Apply transforms p.
func (t Transform) Apply(p Point) Point {
	T := t.T
	return Point{
		T[0]*p[0] + T[1]*p[1] + T[2]*p[2] + T[3],
		T[4]*p[0] + T[5]*p[1] + T[6]*p[2] + T[7],
		T[8]*p[0] + T[9]*p[1] + T[10]*p[2] + T[11],
	}
}

// Translation returns the translational component.
func (t Transform) Translation() Point { return Point{t.T[3], t.T[7], t.T[11]} }

// Inverse returns the inverse rigid transform (R^T, -R^T t).
func (t Transform) Inverse() Transform {
	T := t.T
	var inv Transform
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			inv.T[r*4+c] = T[c*4+r]
		}
	}
	for r := 0; r < 3; r++ {
		inv.T[r*4+3] = -(inv.T[r*4]*T[3] + inv.T[r*4+1]*T[7] + inv.T[r*4+2]*T[11])
	}
	inv.T[15] = 1
	return inv
}

// IsValid checks that T is a proper rigid transform: rotation determinant
// close to 1 and last row [0 0 0 1].
func (t Transform) IsValid() bool {
	T := t.T
	r00, r01, r02 := T[0], T[1], T[2]
	r10, r11, r12 := T[4], T[5], T[6]
	r20, r21, r22 := T[8], T[9], T[10]

	det := r00*(r11*r22-r12*r21) - r01*(r10*r22-r12*r20) + r02*(r10*r21-r11*r20)
	if math.Abs(det-1.0) > MatrixValidationTolerance {
		return false
	}
	if T[12] != 0 || T[13] != 0 || T[14] != 0 || math.Abs(T[15]-1.0) > 0.001 {
		return false
	}
	return true
}
