package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/ndt/internal/ndt/geom"
)

// minDeterminant rejects covariances too flat to be inverted reliably.
const minDeterminant = 1e-18

// Distribution accumulates the sufficient statistics of a 2D or 3D Gaussian:
// sample count, running mean and the scatter matrix sum((x-mean)(x-mean)^T).
//
// A Distribution is not safe for concurrent use; map cells wrap it in
// OccupancyDistribution or LockedDistribution.
type Distribution struct {
	dim     int
	n       uint64
	mean    [3]float64
	scatter [9]float64 // row-major dim x dim in the top-left block

	// Cached density parameters, recomputed after mutation.
	dirty  bool
	valid  bool
	invCov [9]float64
	norm   float64
}

// NewDistribution returns an empty distribution of the given dimension (2 or 3).
func NewDistribution(dim int) *Distribution {
	if dim != 2 {
		dim = 3
	}
	return &Distribution{dim: dim, dirty: true}
}

// Dim returns 2 or 3.
func (d *Distribution) Dim() int { return d.dim }

// N returns the number of samples.
func (d *Distribution) N() uint64 { return d.n }

// Mean returns the sample mean. Planar distributions report Z = 0.
func (d *Distribution) Mean() geom.Point { return geom.Point(d.mean) }

// Clone returns an independent copy.
func (d *Distribution) Clone() *Distribution {
	c := *d
	return &c
}

// Add folds one sample into the statistics (Welford update).
func (d *Distribution) Add(p geom.Point) {
	d.n++
	var delta, delta2 [3]float64
	inv := 1.0 / float64(d.n)
	for i := 0; i < d.dim; i++ {
		delta[i] = p[i] - d.mean[i]
		d.mean[i] += delta[i] * inv
		delta2[i] = p[i] - d.mean[i]
	}
	for i := 0; i < d.dim; i++ {
		for j := 0; j < d.dim; j++ {
			d.scatter[i*3+j] += delta[i] * delta2[j]
		}
	}
	d.dirty = true
}

// Merge folds o into d. The combination is exact, associative and
// commutative, so the order in which cells are merged does not matter.
func (d *Distribution) Merge(o *Distribution) {
	if o == nil || o.n == 0 {
		return
	}
	if d.n == 0 {
		dim := d.dim
		*d = *o
		d.dim = dim
		d.dirty = true
		return
	}
	na := float64(d.n)
	nb := float64(o.n)
	n := na + nb
	var delta [3]float64
	for i := 0; i < d.dim; i++ {
		delta[i] = o.mean[i] - d.mean[i]
	}
	for i := 0; i < d.dim; i++ {
		for j := 0; j < d.dim; j++ {
			d.scatter[i*3+j] += o.scatter[i*3+j] + delta[i]*delta[j]*na*nb/n
		}
	}
	for i := 0; i < d.dim; i++ {
		d.mean[i] += delta[i] * nb / n
	}
	d.n += o.n
	d.dirty = true
}

// Covariance returns the unbiased sample covariance, or nil with fewer
// than two samples.
func (d *Distribution) Covariance() *mat.SymDense {
	if d.n < 2 {
		return nil
	}
	cov := mat.NewSymDense(d.dim, nil)
	inv := 1.0 / float64(d.n-1)
	for i := 0; i < d.dim; i++ {
		for j := i; j < d.dim; j++ {
			cov.SetSym(i, j, d.scatter[i*3+j]*inv)
		}
	}
	return cov
}

// Valid reports whether the distribution has enough well spread samples to
// be evaluated: at least dim+1 samples and a positive-definite covariance.
func (d *Distribution) Valid() bool {
	d.update()
	return d.valid
}

// Sample evaluates the normalized Gaussian density at p. Invalid
// distributions evaluate to 0.
func (d *Distribution) Sample(p geom.Point) float64 {
	d.update()
	if !d.valid {
		return 0
	}
	return d.norm * math.Exp(-0.5*d.mahalanobis(p))
}

// SampleNonNormalized evaluates exp(-½ (p-μ)^T Σ^-1 (p-μ)), dropping the
// normalization constant. Only relative magnitudes are meaningful.
func (d *Distribution) SampleNonNormalized(p geom.Point) float64 {
	d.update()
	if !d.valid {
		return 0
	}
	return math.Exp(-0.5 * d.mahalanobis(p))
}

func (d *Distribution) mahalanobis(p geom.Point) float64 {
	var q [3]float64
	for i := 0; i < d.dim; i++ {
		q[i] = p[i] - d.mean[i]
	}
	var s float64
	for i := 0; i < d.dim; i++ {
		for j := 0; j < d.dim; j++ {
			s += q[i] * d.invCov[i*3+j] * q[j]
		}
	}
	return s
}

func (d *Distribution) update() {
	if !d.dirty {
		return
	}
	d.dirty = false
	d.valid = false
	if d.n < uint64(d.dim+1) {
		return
	}
	cov := d.Covariance()
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return
	}
	det := chol.Det()
	if !(det > minDeterminant) {
		return
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return
	}
	for i := 0; i < d.dim; i++ {
		for j := 0; j < d.dim; j++ {
			d.invCov[i*3+j] = inv.At(i, j)
		}
	}
	d.norm = 1.0 / math.Sqrt(math.Pow(2*math.Pi, float64(d.dim))*det)
	d.valid = true
}
