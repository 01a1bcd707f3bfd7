// Package broadcast implements a bounded, lossy multicast: exactly the
// "slow observer never blocks the simulator" semantics spec §4.8 and §5
// require for both the snapshot stream and the event stream. Grounded on
// the teacher's UART device (emul/cpu.go): a bounded channel per consumer
// plus an overflow flag, generalized from one fixed consumer (stdout) to
// any number of dynamically subscribing/unsubscribing readers.
package broadcast

import "sync"

// Item wraps a published value with how many prior publishes this
// subscriber missed because its channel was full when they were sent.
type Item[T any] struct {
	Value  T
	Lagged int
}

// Broadcaster fans a sequence of published values out to any number of
// subscribers, each with its own bounded, non-blocking channel.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[int]*subscriber[T]
	nextID int
	depth  int
}

type subscriber[T any] struct {
	ch     chan Item[T]
	lagged int
}

// New constructs a Broadcaster whose subscriber channels hold up to depth
// unread items before the broadcaster starts tracking lag instead of
// blocking.
func New[T any](depth int) *Broadcaster[T] {
	if depth < 1 {
		depth = 1
	}
	return &Broadcaster[T]{subs: make(map[int]*subscriber[T]), depth: depth}
}

// Subscribe registers a new reader and returns its id (for Unsubscribe)
// and its receive-only channel.
func (b *Broadcaster[T]) Subscribe() (int, <-chan Item[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	sub := &subscriber[T]{ch: make(chan Item[T], b.depth)}
	b.subs[id] = sub

	return id, sub.ch
}

// Unsubscribe removes a reader and closes its channel.
func (b *Broadcaster[T]) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// Publish fans v out to every subscriber. A subscriber whose channel is
// currently full does not block the publisher — it accumulates lag
// instead, delivered on the item that finally fits.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		item := Item[T]{Value: v, Lagged: sub.lagged}
		select {
		case sub.ch <- item:
			sub.lagged = 0
		default:
			sub.lagged++
		}
	}
}

// SubscriberCount reports how many readers are currently attached.
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
