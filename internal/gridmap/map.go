// Package gridmap implements the fixed-size 2D tile grid bots move across.
package gridmap

import "math/rand/v2"

// Tile is one cell of the map.
type Tile uint8

const (
	Void Tile = iota
	Floor
	Wall
	Object
)

// IsVoid reports whether entering this tile kills a bot.
func (t Tile) IsVoid() bool { return t == Void }

// IsFloor reports whether a bot may occupy this tile.
func (t Tile) IsFloor() bool { return t == Floor }

// Glyph renders the tile's character for a snapshot, ignoring any bot/object
// overlay (those are applied by the caller, since the map itself doesn't
// track occupants).
func (t Tile) Glyph() byte {
	switch t {
	case Floor:
		return '.'
	case Wall:
		return '#'
	case Object:
		return '/'
	default:
		return ' '
	}
}

// Pos is an integer grid coordinate.
type Pos struct {
	X, Y int32
}

// Add returns p translated by d.
func (p Pos) Add(d Vec) Pos {
	return Pos{X: p.X + d.X, Y: p.Y + d.Y}
}

// Vec is an integer displacement.
type Vec struct {
	X, Y int32
}

// Direction is one of the four cardinal directions.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionVecs = [4]Vec{
	North: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: 1},
	West:  {X: -1, Y: 0},
}

// Vec returns the unit displacement for d.
func (d Direction) Vec() Vec { return directionVecs[d%4] }

// TurnLeft returns the direction one quarter-turn counterclockwise.
func (d Direction) TurnLeft() Direction { return (d + 3) % 4 }

// TurnRight returns the direction one quarter-turn clockwise.
func (d Direction) TurnRight() Direction { return (d + 1) % 4 }

// Turn180 returns the opposite direction.
func (d Direction) Turn180() Direction { return (d + 2) % 4 }

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Map is a rectangular W×H grid of tiles. The zero value is a 0×0 map,
// which is a valid (if unspawnable) map.
type Map struct {
	width, height int32
	tiles         []Tile
}

// New allocates a width×height map filled with Floor.
func New(width, height int32) *Map {
	m := &Map{width: width, height: height}
	if width > 0 && height > 0 {
		m.tiles = make([]Tile, int(width)*int(height))
		for i := range m.tiles {
			m.tiles[i] = Floor
		}
	}
	return m
}

// Width returns the map's width in tiles.
func (m *Map) Width() int32 { return m.width }

// Height returns the map's height in tiles.
func (m *Map) Height() int32 { return m.height }

// Size returns the map's width and height in tiles.
func (m *Map) Size() (w, h int32) { return m.width, m.height }

func (m *Map) inBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.width && p.Y < m.height
}

func (m *Map) index(p Pos) int {
	return int(p.Y)*int(m.width) + int(p.X)
}

// Get returns the tile at p, or Void if p is out of bounds.
func (m *Map) Get(p Pos) Tile {
	if !m.inBounds(p) {
		return Void
	}
	return m.tiles[m.index(p)]
}

// Set overwrites the tile at p. Out-of-bounds writes are ignored.
func (m *Map) Set(p Pos, t Tile) {
	if m.inBounds(p) {
		m.tiles[m.index(p)] = t
	}
}

// IsFloor reports whether p holds a floor tile.
func (m *Map) IsFloor(p Pos) bool { return m.Get(p).IsFloor() }

// Center returns the map's midpoint cell.
func (m *Map) Center() Pos {
	return Pos{X: m.width / 2, Y: m.height / 2}
}

// SamplePos draws a position uniformly over all in-bounds cells. It panics
// if the map has zero size; callers must check Size() first.
func (m *Map) SamplePos(rng *rand.Rand) Pos {
	if m.width == 0 || m.height == 0 {
		panic("gridmap: SamplePos on a zero-size map")
	}
	return Pos{X: int32(rng.IntN(int(m.width))), Y: int32(rng.IntN(int(m.height)))}
}

// Clone returns a deep copy, used when a Map becomes part of an immutable
// snapshot.
func (m *Map) Clone() *Map {
	clone := &Map{width: m.width, height: m.height}
	if len(m.tiles) > 0 {
		clone.tiles = make([]Tile, len(m.tiles))
		copy(clone.tiles, m.tiles)
	}
	return clone
}
