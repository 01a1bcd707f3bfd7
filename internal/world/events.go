package world

import "github.com/Woonters/kartoffels-for-pr/internal/id"

// Event is a world-wide occurrence published once per tick to every
// EventStream subscriber, per spec §6's "Bot events" and §5's per-tick
// ordering guarantee (deaths in attacker-id order, then births, then
// mode-specific).
type Event interface{ isEvent() }

// BotBorn is published when a queued bot is promoted to alive.
type BotBorn struct{ ID id.Id }

func (BotBorn) isEvent() {}

// BotKilled is published for every death this tick.
type BotKilled struct {
	ID        id.Id
	Reason    string
	KillerID  id.Id
	HasKiller bool
}

func (BotKilled) isEvent() {}

// BotRequeued is published when a bot's spawn attempt failed and it was
// pushed back to the front of the queue.
type BotRequeued struct{ ID id.Id }

func (BotRequeued) isEvent() {}
