// Package gridmap owns the sparse NDT maps.
//
// Responsibilities: lazily allocated staggered sub-grids, bundles that
// combine one cell of every sub-grid into an interpolated cell, ray-cast
// insertion (plain, batch weighted, visibility attenuated) and sampling.
// Key types: Gridmap, OccupancyGridmap, Bundle, Index.
//
// A planar map keeps 4 sub-grids (unshifted, shifted in X, in Y, in XY by
// half a cell); a volumetric map keeps 8. Bundles live at half the cell
// resolution, so every bundle overlaps exactly one cell of each sub-grid.
//
// All exported methods are safe for concurrent use. Cell and bundle
// creation is atomic: the bundle storage guard is held across the whole
// get-or-create, and sub-grid guards are only ever taken inside it.
package gridmap
