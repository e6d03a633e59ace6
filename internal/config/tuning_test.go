package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ndt/internal/ndt/conversion"
	"github.com/banshee-data/ndt/internal/ndt/gridmap"
	"github.com/banshee-data/ndt/internal/ndt/sensor"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.Resolution == nil || *cfg.Resolution != 1.0 {
		t.Errorf("Expected Resolution 1.0, got %v", cfg.Resolution)
	}
	if cfg.SizeZ == nil || *cfg.SizeZ != 0 {
		t.Errorf("Expected SizeZ 0, got %v", cfg.SizeZ)
	}
	if cfg.ProbFree == nil || *cfg.ProbFree != 0.45 {
		t.Errorf("Expected ProbFree 0.45, got %v", cfg.ProbFree)
	}
	if cfg.PointCloudThreshold == nil || *cfg.PointCloudThreshold != 0.169 {
		t.Errorf("Expected PointCloudThreshold 0.169, got %v", cfg.PointCloudThreshold)
	}

	// Test getter methods
	if cfg.GetSamplingResolution() != 0.05 {
		t.Errorf("GetSamplingResolution() = %f, want 0.05", cfg.GetSamplingResolution())
	}
	if cfg.GetSigmaHit() != 0.5 {
		t.Errorf("GetSigmaHit() = %f, want 0.5", cfg.GetSigmaHit())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultTuningConfig().Validate() = %v", err)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "resolution": 0.5,
  "size_x": 40,
  "size_y": 20,
  "prob_occupied": 0.7,
  "sampling_resolution": 0.1,
  "origin_yaw": 1.5
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Resolution == nil || *cfg.Resolution != 0.5 {
		t.Errorf("Expected Resolution 0.5, got %v", cfg.Resolution)
	}
	if cfg.GetSizeX() != 40 || cfg.GetSizeY() != 20 {
		t.Errorf("Expected size 40x20, got %dx%d", cfg.GetSizeX(), cfg.GetSizeY())
	}
	if cfg.GetProbOccupied() != 0.7 {
		t.Errorf("Expected ProbOccupied 0.7, got %f", cfg.GetProbOccupied())
	}
	if cfg.GetSamplingResolution() != 0.1 {
		t.Errorf("Expected SamplingResolution 0.1, got %f", cfg.GetSamplingResolution())
	}
	if cfg.OriginX != nil {
		t.Errorf("Expected OriginX unset, got %v", *cfg.OriginX)
	}
	origin := cfg.Origin()
	assert.InDelta(t, math.Cos(1.5), origin.T[0], 1e-12)
	assert.InDelta(t, math.Sin(1.5), origin.T[4], 1e-12)
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	// Write invalid JSON
	invalidJSON := `{
  "resolution": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadTuningConfigRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_values.json")
	if err := os.WriteFile(configPath, []byte(`{"prob_prior": 1.0}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Error("Expected validation error for prob_prior 1.0, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultTuningConfig(),
			wantErr: false,
		},
		{
			name:    "empty config is valid",
			cfg:     &TuningConfig{},
			wantErr: false,
		},
		{
			name:    "zero resolution",
			cfg:     &TuningConfig{Resolution: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "NaN resolution",
			cfg:     &TuningConfig{Resolution: ptrFloat64(math.NaN())},
			wantErr: true,
		},
		{
			name:    "negative size_x",
			cfg:     &TuningConfig{SizeX: ptrInt(-1)},
			wantErr: true,
		},
		{
			name:    "zero size_y",
			cfg:     &TuningConfig{SizeY: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "negative size_z",
			cfg:     &TuningConfig{SizeZ: ptrInt(-2)},
			wantErr: true,
		},
		{
			name:    "prob free at bound",
			cfg:     &TuningConfig{ProbFree: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "visibility occupied above one",
			cfg:     &TuningConfig{VisibilityProbOccupied: ptrFloat64(1.2)},
			wantErr: true,
		},
		{
			name:    "negative sampling resolution",
			cfg:     &TuningConfig{SamplingResolution: ptrFloat64(-0.1)},
			wantErr: true,
		},
		{
			name:    "zero maximum distance",
			cfg:     &TuningConfig{MaximumDistance: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "zero sigma hit",
			cfg:     &TuningConfig{SigmaHit: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "likelihood threshold too high",
			cfg:     &TuningConfig{LikelihoodThreshold: ptrFloat64(1.5)},
			wantErr: true,
		},
		{
			name:    "pointcloud threshold too low",
			cfg:     &TuningConfig{PointCloudThreshold: ptrFloat64(-0.1)},
			wantErr: true,
		},
		{
			name:    "likelihood threshold at bound",
			cfg:     &TuningConfig{LikelihoodThreshold: ptrFloat64(1)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.defaults.json")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	// The file and the getters must agree on every value.
	assert.Equal(t, DefaultTuningConfig(), cfg, "tuning.defaults.json differs from getter defaults")
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetResolution() != 1.0 {
		t.Errorf("Expected 1.0, got %f", cfg.GetResolution())
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	// Partial config: only override sigma; everything else should keep defaults.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	partialJSON := `{
  "sigma_hit": 0.2
}`
	if err := os.WriteFile(configPath, []byte(partialJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load partial config: %v", err)
	}

	// Overridden value
	if cfg.GetSigmaHit() != 0.2 {
		t.Errorf("Expected overridden SigmaHit 0.2, got %f", cfg.GetSigmaHit())
	}
	// Default values should be preserved
	if cfg.GetMaximumDistance() != 2.0 {
		t.Errorf("Expected default MaximumDistance 2.0, got %f", cfg.GetMaximumDistance())
	}
	if cfg.GetProbPrior() != 0.5 {
		t.Errorf("Expected default ProbPrior 0.5, got %f", cfg.GetProbPrior())
	}
	if cfg.GetLikelihoodThreshold() != 0.5 {
		t.Errorf("Expected default LikelihoodThreshold 0.5, got %f", cfg.GetLikelihoodThreshold())
	}
}

func TestLoadTuningConfigRejectsPathTraversal(t *testing.T) {
	// Path traversal with ".." is allowed, but the file must still have a
	// .json extension.
	_, err := LoadTuningConfig("../../etc/passwd")
	if err == nil {
		t.Error("Expected error for non-.json path, got nil")
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	// Create a file larger than 1MB
	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestBuilders(t *testing.T) {
	cfg := EmptyTuningConfig()

	ivm, err := cfg.InverseModel()
	require.NoError(t, err)
	assert.Equal(t, sensor.DefaultInverseModel(), ivm)

	vis, err := cfg.VisibilityModel()
	require.NoError(t, err)
	assert.Equal(t, 0.2, vis.ProbPrior())
	assert.Equal(t, 0.999, vis.ProbOccupied())

	assert.Equal(t, conversion.DefaultLikelihoodOptions(), cfg.LikelihoodOptions())

	m, err := cfg.NewOccupancyGridmap2D()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dims())
	assert.Equal(t, gridmap.Index{100, 100, 0}, m.Size())

	// Volumetric maps need a depth.
	_, err = cfg.NewOccupancyGridmap3D()
	assert.True(t, errors.Is(err, gridmap.ErrInvalidSize))

	cfg.SizeZ = ptrInt(10)
	cfg.OriginZ = ptrFloat64(-1)
	m, err = cfg.NewOccupancyGridmap3D()
	require.NoError(t, err)
	assert.Equal(t, 3, m.Dims())
	assert.Equal(t, -1.0, m.Origin().Translation().Z())
}

func TestBuildersRejectInvalidModel(t *testing.T) {
	cfg := &TuningConfig{ProbFree: ptrFloat64(1.5)}
	_, err := cfg.InverseModel()
	assert.True(t, errors.Is(err, sensor.ErrInvalidProbability))
}
