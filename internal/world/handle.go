package world

import (
	"time"

	"github.com/Woonters/kartoffels-for-pr/internal/broadcast"
	"github.com/Woonters/kartoffels-for-pr/internal/codec"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/snapshot"
)

// Handle is the message-passing front door to a running world task, per
// §5: every external actor talks to the world only through this API, and
// every command it carries runs on the world's own goroutine in
// submission order. Handle itself holds no simulation state.
type Handle struct {
	cmds chan func(*State)
	done chan struct{}
}

// command results are delivered through a reply channel closed over by
// the caller, matching §5's "admin commands may attach a reply channel;
// dropping it cancels the reply, not the action."

// Spawn starts a world task running cfg and returns a Handle to it. The
// task runs until Shutdown is called.
func Spawn(cfg Config) *Handle {
	return spawnHandle(New(cfg))
}

// SpawnFromState starts a world task running an already-reconstructed
// State — the path store.resume takes after world.Restore, as opposed to
// Spawn's fresh-Config path.
func SpawnFromState(state *State) *Handle {
	return spawnHandle(state)
}

func spawnHandle(s *State) *Handle {
	h := &Handle{cmds: make(chan func(*State), 64), done: make(chan struct{})}
	go h.run(s)
	return h
}

func (h *Handle) run(s *State) {
	defer close(h.done)

	timer := time.NewTimer(s.Clock.interval(0))
	defer timer.Stop()

	for {
		select {
		case cmd, ok := <-h.cmds:
			if !ok {
				return
			}
			cmd(s)
			if s.shuttingDown {
				return
			}
		case <-timer.C:
			start := time.Now()
			if !s.Paused {
				s.Tick()
			}
			timer.Reset(s.Clock.interval(time.Since(start)))
		}
	}
}

// submit runs fn on the world goroutine and blocks until it completes.
func (h *Handle) submit(fn func(*State)) {
	done := make(chan struct{})
	h.cmds <- func(s *State) {
		fn(s)
		close(done)
	}
	<-done
}

// SubmitFirmware enqueues a new bot, per §6's submit_firmware.
func (h *Handle) SubmitFirmware(firmware []byte, pos gridmap.Pos, hasPos bool, dir gridmap.Direction, hasDir bool) (id.Id, error) {
	var botID id.Id
	var err error
	h.submit(func(s *State) {
		botID, err = s.EnqueueFirmware(firmware, pos, hasPos, dir, hasDir)
	})
	return botID, err
}

// DestroyBot removes a bot immediately, per §6's destroy_bot.
func (h *Handle) DestroyBot(target id.Id) error {
	var ok bool
	h.submit(func(s *State) { ok = s.DestroyBot(target) })
	if !ok {
		return ErrBotNotFound
	}
	return nil
}

// Pause suspends tick execution; admin commands keep draining.
func (h *Handle) Pause() { h.submit(func(s *State) { s.Paused = true }) }

// Resume resumes tick execution.
func (h *Handle) Resume() { h.submit(func(s *State) { s.Paused = false }) }

// Overclock changes the world's clock pacing.
func (h *Handle) Overclock(speed ClockSpeed) { h.submit(func(s *State) { s.Clock = speed }) }

// SetMap replaces the map. Takes effect between ticks, per §4.3.
func (h *Handle) SetMap(m *gridmap.Map) { h.submit(func(s *State) { s.Map = m }) }

// SetSpawnPoint sets the world's default spawn point and, optionally, a
// forced spawn direction. The forced direction is given to queued bots
// that did not pin their own. The spawn point is stored and persisted with
// the world, but the spawn pass does not read it: a bot without a pinned
// position spawns at a sampled one.
func (h *Handle) SetSpawnPoint(pos gridmap.Pos, dir gridmap.Direction, hasDir bool) {
	h.submit(func(s *State) {
		s.SpawnPos = pos
		s.SpawnDir = dir
		s.HasSpawnDir = hasDir
	})
}

// Snapshots subscribes to the world's snapshot stream.
func (h *Handle) Snapshots() (unsubscribe func(), stream <-chan broadcast.Item[*snapshot.Snapshot]) {
	var subID int
	var ch <-chan broadcast.Item[*snapshot.Snapshot]
	var bus *broadcast.Broadcaster[*snapshot.Snapshot]
	h.submit(func(s *State) {
		bus = s.snapshotBus
		subID, ch = bus.Subscribe()
	})
	return func() { bus.Unsubscribe(subID) }, ch
}

// Events subscribes to the world's event stream.
func (h *Handle) Events() (unsubscribe func(), stream <-chan broadcast.Item[Event]) {
	var subID int
	var ch <-chan broadcast.Item[Event]
	var bus *broadcast.Broadcaster[Event]
	h.submit(func(s *State) {
		bus = s.events
		subID, ch = bus.Subscribe()
	})
	return func() { bus.Unsubscribe(subID) }, ch
}

// Export renders the world's current state into a codec.Body for
// persistence, running on the world goroutine so it never races a Tick.
func (h *Handle) Export() (codec.Body, error) {
	var body codec.Body
	h.submit(func(s *State) { body = s.Export() })
	return body, nil
}

// Shutdown signals the world task to exit, then blocks until it has. Ticks
// and commands run on the same goroutine, so a tick already in progress
// completes first; no further tick runs and no extra snapshot is published
// on the way out.
func (h *Handle) Shutdown() {
	h.submit(func(s *State) { s.shuttingDown = true })
	close(h.cmds)
	<-h.done
}
