package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/ndt/internal/ndt/conversion"
	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/gridmap"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for NDT mapping. Every
// field is optional; the Get* methods fall back to defaults.
type TuningConfig struct {
	// Map geometry
	Resolution *float64 `json:"resolution,omitempty"`
	SizeX      *int     `json:"size_x,omitempty"`
	SizeY      *int     `json:"size_y,omitempty"`
	SizeZ      *int     `json:"size_z,omitempty"` // 0 or absent for planar maps
	OriginX    *float64 `json:"origin_x,omitempty"`
	OriginY    *float64 `json:"origin_y,omitempty"`
	OriginZ    *float64 `json:"origin_z,omitempty"`
	OriginYaw  *float64 `json:"origin_yaw,omitempty"` // radians

	// Inverse sensor model used for occupancy
	ProbPrior    *float64 `json:"prob_prior,omitempty"`
	ProbFree     *float64 `json:"prob_free,omitempty"`
	ProbOccupied *float64 `json:"prob_occupied,omitempty"`

	// Inverse sensor model used for ray visibility
	VisibilityProbPrior    *float64 `json:"visibility_prob_prior,omitempty"`
	VisibilityProbFree     *float64 `json:"visibility_prob_free,omitempty"`
	VisibilityProbOccupied *float64 `json:"visibility_prob_occupied,omitempty"`

	// Conversion params
	SamplingResolution  *float64 `json:"sampling_resolution,omitempty"`
	MaximumDistance     *float64 `json:"maximum_distance,omitempty"`
	SigmaHit            *float64 `json:"sigma_hit,omitempty"`
	LikelihoodThreshold *float64 `json:"likelihood_threshold,omitempty"`
	PointCloudThreshold *float64 `json:"pointcloud_threshold,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to the
// value its getter falls back to.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		Resolution:             ptrFloat64(e.GetResolution()),
		SizeX:                  ptrInt(e.GetSizeX()),
		SizeY:                  ptrInt(e.GetSizeY()),
		SizeZ:                  ptrInt(e.GetSizeZ()),
		OriginX:                ptrFloat64(e.GetOriginX()),
		OriginY:                ptrFloat64(e.GetOriginY()),
		OriginZ:                ptrFloat64(e.GetOriginZ()),
		OriginYaw:              ptrFloat64(e.GetOriginYaw()),
		ProbPrior:              ptrFloat64(e.GetProbPrior()),
		ProbFree:               ptrFloat64(e.GetProbFree()),
		ProbOccupied:           ptrFloat64(e.GetProbOccupied()),
		VisibilityProbPrior:    ptrFloat64(e.GetVisibilityProbPrior()),
		VisibilityProbFree:     ptrFloat64(e.GetVisibilityProbFree()),
		VisibilityProbOccupied: ptrFloat64(e.GetVisibilityProbOccupied()),
		SamplingResolution:     ptrFloat64(e.GetSamplingResolution()),
		MaximumDistance:        ptrFloat64(e.GetMaximumDistance()),
		SigmaHit:               ptrFloat64(e.GetSigmaHit()),
		LikelihoodThreshold:    ptrFloat64(e.GetLikelihoodThreshold()),
		PointCloudThreshold:    ptrFloat64(e.GetPointCloudThreshold()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/ndt/<pkg>/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Resolution != nil && !(*c.Resolution > 0) {
		return fmt.Errorf("resolution must be positive, got %f", *c.Resolution)
	}
	if c.SizeX != nil && *c.SizeX <= 0 {
		return fmt.Errorf("size_x must be positive, got %d", *c.SizeX)
	}
	if c.SizeY != nil && *c.SizeY <= 0 {
		return fmt.Errorf("size_y must be positive, got %d", *c.SizeY)
	}
	if c.SizeZ != nil && *c.SizeZ < 0 {
		return fmt.Errorf("size_z must be non-negative, got %d", *c.SizeZ)
	}

	for _, p := range []struct {
		name string
		v    *float64
	}{
		{"prob_prior", c.ProbPrior},
		{"prob_free", c.ProbFree},
		{"prob_occupied", c.ProbOccupied},
		{"visibility_prob_prior", c.VisibilityProbPrior},
		{"visibility_prob_free", c.VisibilityProbFree},
		{"visibility_prob_occupied", c.VisibilityProbOccupied},
	} {
		if p.v != nil && (*p.v <= 0 || *p.v >= 1) {
			return fmt.Errorf("%s must be in (0, 1), got %f", p.name, *p.v)
		}
	}

	if c.SamplingResolution != nil && !(*c.SamplingResolution > 0) {
		return fmt.Errorf("sampling_resolution must be positive, got %f", *c.SamplingResolution)
	}
	if c.MaximumDistance != nil && !(*c.MaximumDistance > 0) {
		return fmt.Errorf("maximum_distance must be positive, got %f", *c.MaximumDistance)
	}
	if c.SigmaHit != nil && !(*c.SigmaHit > 0) {
		return fmt.Errorf("sigma_hit must be positive, got %f", *c.SigmaHit)
	}
	if c.LikelihoodThreshold != nil {
		if *c.LikelihoodThreshold < 0 || *c.LikelihoodThreshold > 1 {
			return fmt.Errorf("likelihood_threshold must be between 0 and 1, got %f", *c.LikelihoodThreshold)
		}
	}
	if c.PointCloudThreshold != nil {
		if *c.PointCloudThreshold < 0 || *c.PointCloudThreshold > 1 {
			return fmt.Errorf("pointcloud_threshold must be between 0 and 1, got %f", *c.PointCloudThreshold)
		}
	}

	return nil
}

// GetResolution returns the resolution value or the default.
func (c *TuningConfig) GetResolution() float64 {
	if c.Resolution == nil {
		return 1.0
	}
	return *c.Resolution
}

// GetSizeX returns the size_x value or the default.
func (c *TuningConfig) GetSizeX() int {
	if c.SizeX == nil {
		return 100
	}
	return *c.SizeX
}

// GetSizeY returns the size_y value or the default.
func (c *TuningConfig) GetSizeY() int {
	if c.SizeY == nil {
		return 100
	}
	return *c.SizeY
}

// GetSizeZ returns the size_z value or the default (planar).
func (c *TuningConfig) GetSizeZ() int {
	if c.SizeZ == nil {
		return 0
	}
	return *c.SizeZ
}

// GetOriginX returns the origin_x value or the default.
func (c *TuningConfig) GetOriginX() float64 {
	if c.OriginX == nil {
		return 0
	}
	return *c.OriginX
}

// GetOriginY returns the origin_y value or the default.
func (c *TuningConfig) GetOriginY() float64 {
	if c.OriginY == nil {
		return 0
	}
	return *c.OriginY
}

// GetOriginZ returns the origin_z value or the default.
func (c *TuningConfig) GetOriginZ() float64 {
	if c.OriginZ == nil {
		return 0
	}
	return *c.OriginZ
}

// GetOriginYaw returns the origin_yaw value or the default.
func (c *TuningConfig) GetOriginYaw() float64 {
	if c.OriginYaw == nil {
		return 0
	}
	return *c.OriginYaw
}

// GetProbPrior returns the prob_prior value or the default.
func (c *TuningConfig) GetProbPrior() float64 {
	if c.ProbPrior == nil {
		return 0.5
	}
	return *c.ProbPrior
}

// GetProbFree returns the prob_free value or the default.
func (c *TuningConfig) GetProbFree() float64 {
	if c.ProbFree == nil {
		return 0.45
	}
	return *c.ProbFree
}

// GetProbOccupied returns the prob_occupied value or the default.
func (c *TuningConfig) GetProbOccupied() float64 {
	if c.ProbOccupied == nil {
		return 0.65
	}
	return *c.ProbOccupied
}

// GetVisibilityProbPrior returns the visibility_prob_prior value or the default.
func (c *TuningConfig) GetVisibilityProbPrior() float64 {
	if c.VisibilityProbPrior == nil {
		return 0.2
	}
	return *c.VisibilityProbPrior
}

// GetVisibilityProbFree returns the visibility_prob_free value or the default.
func (c *TuningConfig) GetVisibilityProbFree() float64 {
	if c.VisibilityProbFree == nil {
		return 0.1
	}
	return *c.VisibilityProbFree
}

// GetVisibilityProbOccupied returns the visibility_prob_occupied value or the default.
func (c *TuningConfig) GetVisibilityProbOccupied() float64 {
	if c.VisibilityProbOccupied == nil {
		return 0.999
	}
	return *c.VisibilityProbOccupied
}

// GetSamplingResolution returns the sampling_resolution value or the default.
func (c *TuningConfig) GetSamplingResolution() float64 {
	if c.SamplingResolution == nil {
		return 0.05
	}
	return *c.SamplingResolution
}

// GetMaximumDistance returns the maximum_distance value or the default.
func (c *TuningConfig) GetMaximumDistance() float64 {
	if c.MaximumDistance == nil {
		return 2.0
	}
	return *c.MaximumDistance
}

// GetSigmaHit returns the sigma_hit value or the default.
func (c *TuningConfig) GetSigmaHit() float64 {
	if c.SigmaHit == nil {
		return 0.5
	}
	return *c.SigmaHit
}

// GetLikelihoodThreshold returns the likelihood_threshold value or the default.
func (c *TuningConfig) GetLikelihoodThreshold() float64 {
	if c.LikelihoodThreshold == nil {
		return 0.5
	}
	return *c.LikelihoodThreshold
}

// GetPointCloudThreshold returns the pointcloud_threshold value or the default.
func (c *TuningConfig) GetPointCloudThreshold() float64 {
	if c.PointCloudThreshold == nil {
		return conversion.DefaultPointCloudThreshold
	}
	return *c.PointCloudThreshold
}

// Origin returns the map -> world pose.
func (c *TuningConfig) Origin() geom.Transform {
	if c.GetSizeZ() > 0 {
		return geom.NewPose3D(c.GetOriginX(), c.GetOriginY(), c.GetOriginZ(), 0, 0, c.GetOriginYaw())
	}
	return geom.NewPose2D(c.GetOriginX(), c.GetOriginY(), c.GetOriginYaw())
}

// InverseModel builds the occupancy inverse sensor model.
func (c *TuningConfig) InverseModel() (*sensor.InverseModel, error) {
	return sensor.NewInverseModel(c.GetProbPrior(), c.GetProbFree(), c.GetProbOccupied())
}

// VisibilityModel builds the inverse sensor model used for ray visibility.
func (c *TuningConfig) VisibilityModel() (*sensor.InverseModel, error) {
	return sensor.NewInverseModel(c.GetVisibilityProbPrior(), c.GetVisibilityProbFree(), c.GetVisibilityProbOccupied())
}

// LikelihoodOptions returns the likelihood field parameters.
func (c *TuningConfig) LikelihoodOptions() conversion.LikelihoodOptions {
	return conversion.LikelihoodOptions{
		MaximumDistance: c.GetMaximumDistance(),
		SigmaHit:        c.GetSigmaHit(),
		Threshold:       c.GetLikelihoodThreshold(),
	}
}

// NewOccupancyGridmap2D creates a planar map from the configured geometry.
func (c *TuningConfig) NewOccupancyGridmap2D() (*gridmap.OccupancyGridmap, error) {
	return gridmap.NewOccupancyGridmap2D(c.Origin(), c.GetResolution(), [2]int{c.GetSizeX(), c.GetSizeY()})
}

// NewOccupancyGridmap3D creates a volumetric map from the configured geometry.
// size_z must be positive.
func (c *TuningConfig) NewOccupancyGridmap3D() (*gridmap.OccupancyGridmap, error) {
	return gridmap.NewOccupancyGridmap3D(c.Origin(), c.GetResolution(), [3]int{c.GetSizeX(), c.GetSizeY(), c.GetSizeZ()})
}
