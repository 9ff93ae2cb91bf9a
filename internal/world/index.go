package world

import "github.com/udisondev/bastion/internal/model"

// SpatialIndex partitions the world into square cells and tracks which
// cell each live agent occupies. Queries enumerate a candidate superset:
// every handle in the cells overlapping the query square. Callers must
// post-filter by exact squared distance.
//
// The index is mutated only in the serialized commit phase of a tick,
// so buckets are plain slices with no locking.
type SpatialIndex struct {
	bounds   Bounds
	cellSize float64
	cols     int
	rows     int

	// buckets is a flattened [rows][cols] grid of handle lists.
	buckets [][]model.Handle
	// cellOf maps a live handle to its bucket index; absence means the
	// handle is not in the index (remove is idempotent).
	cellOf map[model.Handle]int
}

// NewSpatialIndex creates an index over bounds with square cells of
// cellSize. Cell size should be at least the largest expected query
// radius so a query touches at most a 3×3 window of cells.
func NewSpatialIndex(bounds Bounds, cellSize float64) *SpatialIndex {
	cols := int(bounds.Width()/cellSize) + 1
	rows := int(bounds.Height()/cellSize) + 1
	return &SpatialIndex{
		bounds:   bounds,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		buckets:  make([][]model.Handle, cols*rows),
		cellOf:   make(map[model.Handle]int),
	}
}

// Bounds returns the world rectangle the index covers.
func (s *SpatialIndex) Bounds() Bounds { return s.bounds }

// cellAt returns the flattened bucket index owning (x, y).
func (s *SpatialIndex) cellAt(x, y float64) int {
	cx := cellIndex(x, s.bounds.MinX, s.cellSize, s.cols)
	cy := cellIndex(y, s.bounds.MinY, s.cellSize, s.rows)
	return cy*s.cols + cx
}

// Insert adds a handle at position (x, y).
// Inserting an already-present handle moves it instead.
func (s *SpatialIndex) Insert(h model.Handle, x, y float64) {
	cell := s.cellAt(x, y)
	if prev, ok := s.cellOf[h]; ok {
		if prev == cell {
			return
		}
		s.removeFromBucket(h, prev)
	}
	s.buckets[cell] = append(s.buckets[cell], h)
	s.cellOf[h] = cell
}

// Remove drops a handle from the index.
// Removing an absent handle is a no-op, not an error.
func (s *SpatialIndex) Remove(h model.Handle) {
	cell, ok := s.cellOf[h]
	if !ok {
		return
	}
	s.removeFromBucket(h, cell)
	delete(s.cellOf, h)
}

// Move updates cell membership after a position change.
// If the old and new cells are identical this is a no-op, which avoids
// bucket churn for slow-moving agents.
func (s *SpatialIndex) Move(h model.Handle, oldX, oldY, newX, newY float64) {
	oldCell := s.cellAt(oldX, oldY)
	newCell := s.cellAt(newX, newY)
	if oldCell == newCell {
		// Still register a handle the caller believes is indexed.
		if _, ok := s.cellOf[h]; !ok {
			s.buckets[newCell] = append(s.buckets[newCell], h)
			s.cellOf[h] = newCell
		}
		return
	}
	s.Remove(h)
	s.buckets[newCell] = append(s.buckets[newCell], h)
	s.cellOf[h] = newCell
}

// QueryRadius enumerates the candidate superset for a circle query:
// every handle in the cells overlapping the bounding square of radius r.
// Candidates may lie outside the circle — callers post-filter by exact
// squared distance. A negative radius yields no candidates.
// If fn returns false, enumeration stops.
func (s *SpatialIndex) QueryRadius(x, y, r float64, fn func(model.Handle) bool) {
	if r < 0 {
		return
	}
	minCX := cellIndex(x-r, s.bounds.MinX, s.cellSize, s.cols)
	maxCX := cellIndex(x+r, s.bounds.MinX, s.cellSize, s.cols)
	minCY := cellIndex(y-r, s.bounds.MinY, s.cellSize, s.rows)
	maxCY := cellIndex(y+r, s.bounds.MinY, s.cellSize, s.rows)

	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, h := range s.buckets[cy*s.cols+cx] {
				if !fn(h) {
					return
				}
			}
		}
	}
}

// Count returns the number of indexed handles.
func (s *SpatialIndex) Count() int {
	return len(s.cellOf)
}

// removeFromBucket swap-deletes h from the given bucket.
func (s *SpatialIndex) removeFromBucket(h model.Handle, cell int) {
	bucket := s.buckets[cell]
	for i, other := range bucket {
		if other == h {
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			s.buckets[cell] = bucket[:last]
			return
		}
	}
}
