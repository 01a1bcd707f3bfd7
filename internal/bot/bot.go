// Package bot implements per-bot state: its CPU, MMIO bus, position,
// direction, age, and the bounded serial/event rings observers can read.
package bot

import (
	"github.com/Woonters/kartoffels-for-pr/internal/cpu"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/mmio"
	"github.com/Woonters/kartoffels-for-pr/internal/ringbuf"
)

// Event is a bounded, per-bot log entry surfaced in snapshots, distinct
// from the world-wide EventBus (spec §4.4/§4.8): "I was born", "I killed
// X", etc., scoped to the bot that caused or suffered it.
type Event struct {
	Tick    uint64
	Message string
}

// Bot is one spawned, alive-or-recently-dead robot.
type Bot struct {
	ID  id.Id
	Cpu *cpu.Cpu
	Bus *mmio.Bus

	Pos gridmap.Pos
	Dir gridmap.Direction
	Age uint64

	Serial *ringbuf.Ring[byte]
	Events *ringbuf.Ring[Event]
}

// New constructs a freshly spawned bot from firmware, at the given
// position and direction. ramSize and ring capacities come from policy.
func New(botID id.Id, firmware []byte, pos gridmap.Pos, dir gridmap.Direction, ramSize, serialCap, eventCap int, seed uint64) (*Bot, error) {
	c, err := cpu.New(firmware, ramSize)
	if err != nil {
		return nil, err
	}

	serial := ringbuf.New[byte](serialCap)

	return &Bot{
		ID:     botID,
		Cpu:    c,
		Bus:    mmio.New(serial, seed),
		Pos:    pos,
		Dir:    dir,
		Serial: serial,
		Events: ringbuf.New[Event](eventCap),
	}, nil
}

// Record appends an observable event to this bot's bounded log.
func (b *Bot) Record(tick uint64, message string) {
	b.Events.Push(Event{Tick: tick, Message: message})
}

// QueuedBot is firmware waiting for a spawn slot.
type QueuedBot struct {
	ID       id.Id
	Firmware []byte

	// PinnedPos/PinnedDir override the world's default spawn point when
	// set; HasPinned distinguishes "spawn anywhere" from "spawn at (0,0)".
	PinnedPos  gridmap.Pos
	PinnedDir  gridmap.Direction
	HasPinned  bool
	HasDir     bool
	RequeueIfCantSpawn bool

	Events *ringbuf.Ring[Event]
}

// NewQueued constructs a queued firmware submission.
func NewQueued(botID id.Id, firmware []byte, eventCap int) *QueuedBot {
	return &QueuedBot{
		ID:                 botID,
		Firmware:           firmware,
		RequeueIfCantSpawn: true,
		Events:             ringbuf.New[Event](eventCap),
	}
}

// DeathReason is attached to a bot when it is moved from alive to dead.
type DeathReason struct {
	Message  string
	KillerID id.Id
	HasKiller bool
}
