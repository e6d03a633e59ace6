// Package geom holds the geometry primitives shared by the NDT map packages:
// points and rigid transforms stored as 4x4 row-major matrices.
//
// Planar maps use the same types with Z fixed at 0 and rotations about Z
// only, so one transform type serves both map kinds.
package geom
