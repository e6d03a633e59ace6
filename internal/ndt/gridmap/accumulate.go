package gridmap

import (
	"github.com/banshee-data/ndt/internal/ndt/geom"
	"github.com/banshee-data/ndt/internal/ndt/stats"
	"github.com/banshee-data/ndt/internal/ndt/storage"
)

// scanCells holds the hits of one scan merged per bundle, before any of
// them touches the shared map.
type scanCells struct {
	cells *storage.Storage[Index, stats.Distribution]
	order []Index
}

// at returns the merged hits of bundle bi.
func (sc scanCells) at(bi Index) *stats.Distribution {
	d, _ := sc.cells.Get(bi)
	return d
}

// accumulate transforms points by origin, drops non-finite ones and merges
// the rest per bundle. order lists the hit bundles in index order so that
// insertion is deterministic.
func (e *engine[C]) accumulate(origin geom.Transform, points []geom.Point) scanCells {
	cells := storage.New[Index, stats.Distribution](min(len(points), maxCapacityHint), compareIndex)
	dropped := 0
	for _, p := range points {
		pw := origin.Apply(p)
		if !pw.IsFinite() {
			dropped++
			continue
		}
		bi := e.ToBundleIndex(pw)
		d, ok := cells.Get(bi)
		if !ok {
			d = cells.Insert(bi, *stats.NewDistribution(e.dims))
		}
		d.Add(pw)
	}
	sc := scanCells{cells: cells, order: cells.Keys()}
	tracef("map %s: scan of %d points merged into %d bundles (%d dropped)",
		e.id, len(points), len(sc.order), dropped)
	return sc
}
