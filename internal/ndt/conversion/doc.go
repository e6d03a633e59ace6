// Package conversion resamples sparse NDT maps into dense outputs.
//
// Responsibilities: probability grids and likelihood fields from planar
// maps, point clouds from volumetric maps.
// Key functions: ProbabilityGridFromOccupancy, LikelihoodFieldFromOccupancy,
// PointCloudFromOccupancy and their plain Gridmap counterparts.
//
// Conversions only visit materialized bundles and never allocate new ones.
// They are consistent only while no writer mutates the source.
package conversion
