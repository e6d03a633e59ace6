// Package stats owns the per-cell statistics of the NDT maps.
//
// Responsibilities: Gaussian sufficient statistics (Distribution),
// occupancy cells with free/occupied hit counters (OccupancyDistribution)
// and guarded plain cells (LockedDistribution).
// Covariance factorisation uses gonum/mat.
package stats
