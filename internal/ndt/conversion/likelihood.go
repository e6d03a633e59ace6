package conversion

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/ndt/internal/ndt/distance"
	"github.com/banshee-data/ndt/internal/ndt/gridmap"
	"github.com/banshee-data/ndt/internal/ndt/raster"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
)

// ErrInvalidLikelihoodOptions is returned for a threshold outside [0,1] or
// a non-positive distance clamp or sigma.
var ErrInvalidLikelihoodOptions = errors.New("invalid likelihood field options")

// LikelihoodOptions parameterise the likelihood field conversion.
type LikelihoodOptions struct {
	// MaximumDistance clamps the obstacle distance in metres.
	MaximumDistance float64
	// SigmaHit is the standard deviation of the measurement kernel.
	SigmaHit float64
	// Threshold binarises the inverted raster: cells at or below it are
	// obstacles.
	Threshold float64
}

// DefaultLikelihoodOptions returns MaximumDistance 2, SigmaHit 0.5 and
// Threshold 0.5.
func DefaultLikelihoodOptions() LikelihoodOptions {
	return LikelihoodOptions{MaximumDistance: 2.0, SigmaHit: 0.5, Threshold: 0.5}
}

// Validate checks the option ranges.
func (o LikelihoodOptions) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 || math.IsNaN(o.Threshold) {
		return fmt.Errorf("threshold %v: %w", o.Threshold, ErrInvalidLikelihoodOptions)
	}
	if !(o.MaximumDistance > 0) || !(o.SigmaHit > 0) {
		return fmt.Errorf("maximum distance %v sigma hit %v: %w", o.MaximumDistance, o.SigmaHit, ErrInvalidLikelihoodOptions)
	}
	return nil
}

// LikelihoodFieldFromGridmap builds a likelihood field from a planar NDT
// map. The raster starts free (1), covered cells hold 1 minus the sampled
// density, and the distance d to the nearest obstacle cell becomes the
// likelihood exp(-d²/(2·SigmaHit²)). A nil or empty source yields nil.
func LikelihoodFieldFromGridmap(src *gridmap.Gridmap, samplingResolution float64, opts LikelihoodOptions) (*raster.LikelihoodField, error) {
	if src == nil {
		return nil, nil
	}
	if err := checkLikelihood(src, samplingResolution, opts); err != nil {
		return nil, err
	}
	if src.Empty() {
		diagf("map %s: empty, no likelihood field", src.ID())
		return nil, nil
	}
	return likelihoodField(src, samplingResolution, opts, src.SampleNonNormalizedAt)
}

// LikelihoodFieldFromOccupancy is LikelihoodFieldFromGridmap for occupancy
// maps; samples are weighted by the occupancy under ivm.
func LikelihoodFieldFromOccupancy(src *gridmap.OccupancyGridmap, samplingResolution float64, ivm *sensor.InverseModel, opts LikelihoodOptions) (*raster.LikelihoodField, error) {
	if src == nil {
		return nil, nil
	}
	if ivm == nil {
		return nil, gridmap.ErrNoInverseModel
	}
	if err := checkLikelihood(src, samplingResolution, opts); err != nil {
		return nil, err
	}
	if src.Empty() {
		diagf("map %s: empty, no likelihood field", src.ID())
		return nil, nil
	}
	return likelihoodField(src, samplingResolution, opts, occupancySampler(src, ivm))
}

func checkLikelihood(src planarSource, samplingResolution float64, opts LikelihoodOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return checkPlanar(src, samplingResolution)
}

func likelihoodField(src planarSource, samplingResolution float64, opts LikelihoodOptions, sample sampleFunc) (*raster.LikelihoodField, error) {
	grid := rasterize(src, samplingResolution, 1, sample, func(v float64) float64 { return 1 - v })

	dt := distance.Transform{
		Resolution:  samplingResolution,
		MaxDistance: opts.MaximumDistance,
		Threshold:   opts.Threshold,
	}
	dist, err := dt.Apply(grid.Data, grid.Width)
	if err != nil {
		return nil, fmt.Errorf("likelihood field of map %s: %w", src.ID(), err)
	}
	expFactor := 0.5 / (opts.SigmaHit * opts.SigmaHit)
	for i, d := range dist {
		grid.Data[i] = math.Exp(-d * d * expFactor)
	}
	return &raster.LikelihoodField{
		ProbabilityGrid: *grid,
		MaximumDistance: opts.MaximumDistance,
		SigmaHit:        opts.SigmaHit,
	}, nil
}
