package world

import "github.com/udisondev/bastion/internal/model"

// Bounds describes the rectangular playable area.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the world.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the world.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether p lies inside the world rectangle.
func (b Bounds) Contains(p model.Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Center returns the midpoint of the world rectangle.
func (b Bounds) Center() model.Vec2 {
	return model.Vec2{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// cellIndex converts a world coordinate to a clamped cell index.
// Positions outside the bounds map to the nearest border cell, so the
// grid never rejects a coordinate.
func cellIndex(coord, min, cellSize float64, cells int) int {
	idx := int((coord - min) / cellSize)
	if idx < 0 {
		return 0
	}
	if idx >= cells {
		return cells - 1
	}
	return idx
}
