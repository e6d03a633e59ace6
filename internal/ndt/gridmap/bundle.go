package gridmap

// Bundle is one interpolated map cell: a reference to one cell of each
// staggered sub-grid. The slots are set before the bundle is published and
// never change afterwards; the referenced cells keep mutating.
type Bundle[C any] struct {
	cells [8]*C
	n     int
}

// At returns the cell of sub-grid i.
func (b *Bundle[C]) At(i int) *C { return b.cells[i] }

// Len returns the number of sub-grid cells: 4 planar, 8 volumetric.
func (b *Bundle[C]) Len() int { return b.n }

// Cells returns the referenced cells in sub-grid order.
func (b *Bundle[C]) Cells() []*C { return b.cells[:b.n] }
