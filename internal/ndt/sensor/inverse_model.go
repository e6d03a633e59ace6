// Package sensor provides the inverse sensor model that maps accumulated
// free/occupied evidence to an occupancy probability.
package sensor

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidProbability is returned when a model probability is outside (0,1).
var ErrInvalidProbability = errors.New("probability must be in the open interval (0,1)")

// InverseModel holds the prior and the per-observation free/occupied
// probabilities. Log-odds are precomputed because occupancy evaluation runs
// once per sub-cell per sample.
type InverseModel struct {
	probPrior    float64
	probFree     float64
	probOccupied float64

	logOddsPrior    float64
	logOddsFree     float64
	logOddsOccupied float64
}

// NewInverseModel validates and builds a model.
func NewInverseModel(prior, free, occupied float64) (*InverseModel, error) {
	checks := []struct {
		name string
		p    float64
	}{
		{"prior", prior},
		{"free", free},
		{"occupied", occupied},
	}
	for _, c := range checks {
		if !(c.p > 0 && c.p < 1) {
			return nil, fmt.Errorf("inverse model %s %v: %w", c.name, c.p, ErrInvalidProbability)
		}
	}
	return &InverseModel{
		probPrior:       prior,
		probFree:        free,
		probOccupied:    occupied,
		logOddsPrior:    LogOdds(prior),
		logOddsFree:     LogOdds(free),
		logOddsOccupied: LogOdds(occupied),
	}, nil
}

// DefaultInverseModel returns the model used by the mapping pipeline when
// no tuning file overrides it.
func DefaultInverseModel() *InverseModel {
	m, _ := NewInverseModel(0.5, 0.45, 0.65)
	return m
}

// ProbPrior returns the occupancy probability of a cell with no evidence.
func (m *InverseModel) ProbPrior() float64 { return m.probPrior }

// ProbFree returns the occupancy probability of one free observation.
func (m *InverseModel) ProbFree() float64 { return m.probFree }

// ProbOccupied returns the occupancy probability of one occupied observation.
func (m *InverseModel) ProbOccupied() float64 { return m.probOccupied }

// LogOddsPrior returns LogOdds(ProbPrior()).
func (m *InverseModel) LogOddsPrior() float64 { return m.logOddsPrior }

// LogOddsFree returns LogOdds(ProbFree()).
func (m *InverseModel) LogOddsFree() float64 { return m.logOddsFree }

// LogOddsOccupied returns LogOdds(ProbOccupied()).
func (m *InverseModel) LogOddsOccupied() float64 { return m.logOddsOccupied }

// Occupancy combines free and occupied hit counts into a probability in [0,1].
func (m *InverseModel) Occupancy(numFree, numOccupied uint64) float64 {
	f := float64(numFree)
	o := float64(numOccupied)
	l := f*m.logOddsFree + o*m.logOddsOccupied - (f+o-1)*m.logOddsPrior
	return FromLogOdds(l)
}

// LogOdds returns log(p/(1-p)).
func LogOdds(p float64) float64 { return math.Log(p / (1 - p)) }

// FromLogOdds inverts LogOdds.
func FromLogOdds(l float64) float64 { return 1 - 1/(1+math.Exp(l)) }
