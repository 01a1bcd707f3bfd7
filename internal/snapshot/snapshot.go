// Package snapshot implements the immutable, point-in-time view of a world
// broadcast to observers once per tick (spec §4.8). A Snapshot never
// shares mutable state with the live World — every slice here is owned by
// the snapshot alone, so a slow reader can hold one indefinitely without
// the simulator blocking or racing on it.
//
// Grounded on the original kartoffels-world's snapshots.rs: the same
// alive/dead/queued split and the same two precomputed sort orders
// (by score, by birth), realized as plain Go slices of indices into each
// bot list.
package snapshot

import (
	"sort"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
)

// Snapshot is one tick's frozen world state.
type Snapshot struct {
	Version uint64
	Map     *gridmap.Map
	Objects map[gridmap.Pos]string

	Alive  AliveBots
	Dead   DeadBots
	Queued QueuedBots
}

// AliveBot is one living bot's observable state.
type AliveBot struct {
	ID     id.Id
	Pos    gridmap.Pos
	Dir    gridmap.Direction
	Age    uint64
	Score  uint32
	Serial []byte
	Events []string
}

// AliveBots holds every living bot plus two precomputed orderings, so
// observers don't re-sort on every render (the leaderboard view sorts by
// score, the join-order view sorts by birth).
type AliveBots struct {
	entries       []AliveBot
	byID          map[id.Id]int
	idxByScore    []int
	idxByBirth    []int
}

// NewAliveBots builds an AliveBots view from a flat, unsorted bot list.
func NewAliveBots(bots []AliveBot) AliveBots {
	a := AliveBots{entries: bots, byID: make(map[id.Id]int, len(bots))}
	for i, b := range bots {
		a.byID[b.ID] = i
	}

	a.idxByScore = make([]int, len(bots))
	a.idxByBirth = make([]int, len(bots))
	for i := range bots {
		a.idxByScore[i] = i
		a.idxByBirth[i] = i
	}

	sort.SliceStable(a.idxByScore, func(i, j int) bool {
		bi, bj := bots[a.idxByScore[i]], bots[a.idxByScore[j]]
		if bi.Score != bj.Score {
			return bi.Score > bj.Score
		}
		return bi.ID < bj.ID
	})
	sort.SliceStable(a.idxByBirth, func(i, j int) bool {
		bi, bj := bots[a.idxByBirth[i]], bots[a.idxByBirth[j]]
		if bi.Age != bj.Age {
			return bi.Age > bj.Age // older bot = higher age = earlier birth
		}
		return bi.ID < bj.ID
	})

	return a
}

// Get returns the bot with the given id, if alive in this snapshot.
func (a AliveBots) Get(target id.Id) (AliveBot, bool) {
	i, ok := a.byID[target]
	if !ok {
		return AliveBot{}, false
	}
	return a.entries[i], true
}

// Len returns the number of alive bots.
func (a AliveBots) Len() int { return len(a.entries) }

// IterSortedByScore calls fn for every alive bot from highest score to
// lowest, ties broken by ascending id.
func (a AliveBots) IterSortedByScore(fn func(AliveBot)) {
	for _, i := range a.idxByScore {
		fn(a.entries[i])
	}
}

// IterSortedByBirth calls fn for every alive bot oldest-first, ties broken
// by ascending id.
func (a AliveBots) IterSortedByBirth(fn func(AliveBot)) {
	for _, i := range a.idxByBirth {
		fn(a.entries[i])
	}
}

// DeadBot is one recently-dead bot's retained state.
type DeadBot struct {
	ID     id.Id
	Reason string
	Serial []byte
	Events []string
}

// DeadBots is the id-indexed dead-bot view.
type DeadBots struct {
	entries map[id.Id]DeadBot
}

// NewDeadBots builds a DeadBots view.
func NewDeadBots(bots []DeadBot) DeadBots {
	d := DeadBots{entries: make(map[id.Id]DeadBot, len(bots))}
	for _, b := range bots {
		d.entries[b.ID] = b
	}
	return d
}

// Get returns the retained record for a dead bot, if present.
func (d DeadBots) Get(target id.Id) (DeadBot, bool) {
	b, ok := d.entries[target]
	return b, ok
}

// Len returns the number of retained dead-bot records.
func (d DeadBots) Len() int { return len(d.entries) }

// QueuedBot is one queued firmware submission's observable state.
type QueuedBot struct {
	ID       id.Id
	Place    int
	Requeued bool
	Events   []string
}

// QueuedBots is the id-indexed queued-bot view.
type QueuedBots struct {
	entries map[id.Id]QueuedBot
}

// NewQueuedBots builds a QueuedBots view.
func NewQueuedBots(bots []QueuedBot) QueuedBots {
	q := QueuedBots{entries: make(map[id.Id]QueuedBot, len(bots))}
	for _, b := range bots {
		q.entries[b.ID] = b
	}
	return q
}

// Get returns the queued record for a bot, if present.
func (q QueuedBots) Get(target id.Id) (QueuedBot, bool) {
	b, ok := q.entries[target]
	return b, ok
}

// Len returns the number of queued bots.
func (q QueuedBots) Len() int { return len(q.entries) }
