// Package spawn implements the legal-position search and placement policy
// used when a queued bot is promoted to alive (spec §4.5).
package spawn

import (
	"math/rand/v2"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
)

// MaxAttempts bounds the uniform-sampling search before giving up.
const MaxAttempts = 1024

// forbiddenNeighbors is the 20-cell filled circle of radius ≈2 around a
// candidate spawn point that must be free of alive bots, frozen by spec §6.
var forbiddenNeighbors = []gridmap.Vec{
	{X: -2, Y: -1}, {X: -2, Y: 0}, {X: -2, Y: 1},
	{X: -1, Y: -2}, {X: -1, Y: -1}, {X: -1, Y: 0}, {X: -1, Y: 1}, {X: -1, Y: 2},
	{X: 0, Y: -2}, {X: 0, Y: -1}, {X: 0, Y: 1}, {X: 0, Y: 2},
	{X: 1, Y: -2}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2},
	{X: 2, Y: -1}, {X: 2, Y: 0}, {X: 2, Y: 1},
}

// Occupied reports whether a candidate spawn position is blocked: by the
// map (not floor), by a static object, or by an alive bot within the
// position itself or the forbidden neighbor ring.
type Occupied interface {
	IsFloor(p gridmap.Pos) bool
	HasObjectAt(p gridmap.Pos) bool
	HasAliveBotAt(p gridmap.Pos) bool
}

// IsLegal reports whether pos is a legal spawn point given the current
// world state, per §4.5's definition.
func IsLegal(world Occupied, pos gridmap.Pos) bool {
	if !world.IsFloor(pos) {
		return false
	}
	if world.HasObjectAt(pos) || world.HasAliveBotAt(pos) {
		return false
	}
	for _, d := range forbiddenNeighbors {
		if world.HasAliveBotAt(pos.Add(d)) {
			return false
		}
	}
	return true
}

// Find looks for a legal spawn position. If pinned is set, only that exact
// point is tried. Otherwise it uniformly samples up to MaxAttempts
// candidates from the map. ok is false if no legal position was found.
func Find(world Occupied, m *gridmap.Map, rng *rand.Rand, pinned gridmap.Pos, hasPinned bool) (pos gridmap.Pos, ok bool) {
	if hasPinned {
		if IsLegal(world, pinned) {
			return pinned, true
		}
		return gridmap.Pos{}, false
	}

	w, h := m.Size()
	if w == 0 || h == 0 {
		return gridmap.Pos{}, false
	}

	for i := 0; i < MaxAttempts; i++ {
		candidate := m.SamplePos(rng)
		if IsLegal(world, candidate) {
			return candidate, true
		}
	}

	return gridmap.Pos{}, false
}

// Direction samples a uniform direction, used when a queued bot didn't
// pin one.
func Direction(rng *rand.Rand) gridmap.Direction {
	return gridmap.Direction(rng.IntN(4))
}
