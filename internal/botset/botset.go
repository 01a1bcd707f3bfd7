// Package botset implements the three bot lifecycle containers — alive
// (indexed by id and by position), dead (id-indexed with retention TTL),
// and queued (ordered, stable place) — per spec §4.4.
package botset

import (
	"github.com/Woonters/kartoffels-for-pr/internal/bot"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
)

// Alive indexes live bots by id and by position, so both lookups the
// tick resolver needs — "who is here" and "where is X" — are O(1).
type Alive struct {
	byID  map[id.Id]*bot.Bot
	byPos map[gridmap.Pos]id.Id
}

// NewAlive constructs an empty Alive set.
func NewAlive() *Alive {
	return &Alive{byID: make(map[id.Id]*bot.Bot), byPos: make(map[gridmap.Pos]id.Id)}
}

// Add registers b as alive at its current Pos. Callers must ensure the
// position is actually free; Add does not check.
func (a *Alive) Add(b *bot.Bot) {
	a.byID[b.ID] = b
	a.byPos[b.Pos] = b.ID
}

// Remove drops id from the alive set, returning the removed bot if present.
func (a *Alive) Remove(target id.Id) (*bot.Bot, bool) {
	b, ok := a.byID[target]
	if !ok {
		return nil, false
	}
	delete(a.byID, target)
	delete(a.byPos, b.Pos)
	return b, true
}

// Relocate moves id to newPos, updating the spatial index. newPos may still
// be indexed to a bot that moves away in the same pass; that bot's own
// Relocate leaves newPos to its new occupant. Callers must ensure no two
// bots end up at the same position.
func (a *Alive) Relocate(target id.Id, newPos gridmap.Pos) {
	b, ok := a.byID[target]
	if !ok {
		return
	}
	if a.byPos[b.Pos] == target {
		delete(a.byPos, b.Pos)
	}
	b.Pos = newPos
	a.byPos[newPos] = target
}

// Get returns the bot with the given id, if alive.
func (a *Alive) Get(target id.Id) (*bot.Bot, bool) {
	b, ok := a.byID[target]
	return b, ok
}

// LookupAt returns the id of whichever bot occupies pos, if any.
func (a *Alive) LookupAt(pos gridmap.Pos) (id.Id, bool) {
	target, ok := a.byPos[pos]
	return target, ok
}

// Count returns the number of alive bots.
func (a *Alive) Count() int { return len(a.byID) }

// Iter calls fn for every alive bot. fn must not mutate the set.
func (a *Alive) Iter(fn func(*bot.Bot)) {
	for _, b := range a.byID {
		fn(b)
	}
}

// IDs returns every alive bot's id in unspecified order.
func (a *Alive) IDs() []id.Id {
	ids := make([]id.Id, 0, len(a.byID))
	for k := range a.byID {
		ids = append(ids, k)
	}
	return ids
}

// Dead indexes recently-dead bots by id with a per-entry retention TTL,
// measured in ticks.
type Dead struct {
	entries map[id.Id]*deadEntry
}

type deadEntry struct {
	reason bot.DeathReason
	serial []byte
	events []bot.Event
	ttl    int
}

// NewDead constructs an empty Dead set.
func NewDead() *Dead {
	return &Dead{entries: make(map[id.Id]*deadEntry)}
}

// Add records a death with the given retention TTL in ticks.
func (d *Dead) Add(target id.Id, reason bot.DeathReason, serial []byte, events []bot.Event, ttl int) {
	d.entries[target] = &deadEntry{reason: reason, serial: serial, events: events, ttl: ttl}
}

// Get returns the retained record for a dead bot, if still present.
func (d *Dead) Get(target id.Id) (bot.DeathReason, []byte, []bot.Event, bool) {
	e, ok := d.entries[target]
	if !ok {
		return bot.DeathReason{}, nil, nil, false
	}
	return e.reason, e.serial, e.events, true
}

// Tick decrements every entry's TTL and evicts those that reach zero.
func (d *Dead) Tick() {
	for k, e := range d.entries {
		e.ttl--
		if e.ttl <= 0 {
			delete(d.entries, k)
		}
	}
}

// Count returns the number of retained dead-bot records.
func (d *Dead) Count() int { return len(d.entries) }

// IDs returns every retained dead bot's id in unspecified order.
func (d *Dead) IDs() []id.Id {
	ids := make([]id.Id, 0, len(d.entries))
	for k := range d.entries {
		ids = append(ids, k)
	}
	return ids
}

// Queued is a stable-order FIFO of bots waiting for a spawn slot. Place in
// the queue (index from the front) is directly observable in snapshots.
type Queued struct {
	entries []*bot.QueuedBot
}

// NewQueued constructs an empty Queued set.
func NewQueued() *Queued { return &Queued{} }

// PushBack enqueues a newly submitted firmware.
func (q *Queued) PushBack(qb *bot.QueuedBot) { q.entries = append(q.entries, qb) }

// PushFront re-enqueues a bot whose spawn attempt failed and which wants to
// be retried at the head, so it doesn't lose its place behind bots
// submitted after it.
func (q *Queued) PushFront(qb *bot.QueuedBot) {
	q.entries = append([]*bot.QueuedBot{qb}, q.entries...)
}

// PopFront removes and returns the head of the queue.
func (q *Queued) PopFront() (*bot.QueuedBot, bool) {
	if len(q.entries) == 0 {
		return nil, false
	}
	qb := q.entries[0]
	q.entries = q.entries[1:]
	return qb, true
}

// Count returns the number of queued bots.
func (q *Queued) Count() int { return len(q.entries) }

// Place returns the zero-based queue position of id, if queued.
func (q *Queued) Place(target id.Id) (int, bool) {
	for i, qb := range q.entries {
		if qb.ID == target {
			return i, true
		}
	}
	return 0, false
}

// Entries returns the queue contents in front-to-back order. The returned
// slice aliases internal storage and must be treated as read-only.
func (q *Queued) Entries() []*bot.QueuedBot { return q.entries }
