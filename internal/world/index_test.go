package world

import (
	"math/rand/v2"
	"testing"

	"github.com/udisondev/bastion/internal/model"
)

func testBounds() Bounds {
	return Bounds{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}
}

// queryFiltered runs a radius query and post-filters candidates by exact
// squared distance against the given position table.
func queryFiltered(s *SpatialIndex, pos map[model.Handle]model.Vec2, x, y, r float64) map[model.Handle]bool {
	got := make(map[model.Handle]bool)
	center := model.Vec2{X: x, Y: y}
	s.QueryRadius(x, y, r, func(h model.Handle) bool {
		if pos[h].DistanceSquared(center) <= r*r {
			got[h] = true
		}
		return true
	})
	return got
}

func TestSpatialIndex_InsertQuery(t *testing.T) {
	s := NewSpatialIndex(testBounds(), 128)
	pos := map[model.Handle]model.Vec2{
		1: {X: 100, Y: 100},
		2: {X: 150, Y: 100},
		3: {X: 900, Y: 900},
	}
	for h, p := range pos {
		s.Insert(h, p.X, p.Y)
	}

	got := queryFiltered(s, pos, 100, 100, 60)
	if !got[1] || !got[2] {
		t.Errorf("query missed nearby handles: got %v", got)
	}
	if got[3] {
		t.Error("query returned far handle 3")
	}

	// Radius 0 returns exactly the handles at the query point.
	got = queryFiltered(s, pos, 100, 100, 0)
	if len(got) != 1 || !got[1] {
		t.Errorf("zero-radius query = %v, want only handle 1", got)
	}
}

func TestSpatialIndex_NegativeRadius(t *testing.T) {
	s := NewSpatialIndex(testBounds(), 128)
	s.Insert(1, 100, 100)

	count := 0
	s.QueryRadius(100, 100, -5, func(model.Handle) bool {
		count++
		return true
	})
	if count != 0 {
		t.Errorf("negative-radius query returned %d candidates, want 0", count)
	}
}

func TestSpatialIndex_RemoveIdempotent(t *testing.T) {
	s := NewSpatialIndex(testBounds(), 128)
	s.Insert(7, 500, 500)

	s.Remove(7)
	s.Remove(7) // second remove must be a no-op
	s.Remove(99)

	if s.Count() != 0 {
		t.Errorf("Count() = %d after removes, want 0", s.Count())
	}
}

func TestSpatialIndex_MoveSameCellNoChurn(t *testing.T) {
	s := NewSpatialIndex(testBounds(), 128)
	s.Insert(1, 10, 10)

	// Small move inside the same cell keeps membership.
	s.Move(1, 10, 10, 12, 14)
	if s.Count() != 1 {
		t.Fatalf("Count() = %d after same-cell move, want 1", s.Count())
	}

	// Cross-cell move keeps exactly one membership.
	s.Move(1, 12, 14, 500, 500)
	if s.Count() != 1 {
		t.Fatalf("Count() = %d after cross-cell move, want 1", s.Count())
	}

	pos := map[model.Handle]model.Vec2{1: {X: 500, Y: 500}}
	got := queryFiltered(s, pos, 500, 500, 1)
	if !got[1] {
		t.Error("handle not found at new position after move")
	}
	got = queryFiltered(s, pos, 12, 14, 1)
	if got[1] {
		t.Error("handle still found at old position after move")
	}
}

// TestSpatialIndex_NoFalseNegatives drives a random insert/move/remove
// sequence and checks every query against a brute-force reference.
func TestSpatialIndex_NoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	s := NewSpatialIndex(testBounds(), 64)
	pos := make(map[model.Handle]model.Vec2)

	randPos := func() model.Vec2 {
		return model.Vec2{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
	}

	for step := range 2000 {
		h := model.Handle(rng.IntN(200))
		switch rng.IntN(3) {
		case 0:
			p := randPos()
			s.Insert(h, p.X, p.Y)
			pos[h] = p
		case 1:
			if old, ok := pos[h]; ok {
				p := randPos()
				s.Move(h, old.X, old.Y, p.X, p.Y)
				pos[h] = p
			}
		case 2:
			s.Remove(h)
			delete(pos, h)
		}

		if step%100 != 0 {
			continue
		}

		center := randPos()
		r := rng.Float64() * 200
		got := queryFiltered(s, pos, center.X, center.Y, r)

		for h, p := range pos {
			within := p.DistanceSquared(center) <= r*r
			if within && !got[h] {
				t.Fatalf("step %d: false negative for handle %d at %v, query (%v, r=%v)", step, h, p, center, r)
			}
			if !within && got[h] {
				t.Fatalf("step %d: handle %d outside radius survived filtering", step, h)
			}
		}
	}
}

func BenchmarkSpatialIndex_QueryRadius(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 0))
	s := NewSpatialIndex(testBounds(), 128)

	// Populate with a wave-sized load.
	for h := range model.Handle(2000) {
		s.Insert(h, rng.Float64()*1000, rng.Float64()*1000)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		count := 0
		s.QueryRadius(500, 500, 120, func(model.Handle) bool {
			count++
			return true
		})
	}
}
