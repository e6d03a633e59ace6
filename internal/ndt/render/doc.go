// Package render exports NDT conversion outputs for inspection: probability
// grids and likelihood fields as PNG heat maps (gonum/plot), point clouds as
// HTML scatter charts (go-echarts).
package render
