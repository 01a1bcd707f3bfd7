package world

import (
	"sort"

	"github.com/Woonters/kartoffels-for-pr/internal/bot"
	"github.com/Woonters/kartoffels-for-pr/internal/cpu"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/mmio"
	"github.com/Woonters/kartoffels-for-pr/internal/snapshot"
	"github.com/Woonters/kartoffels-for-pr/internal/spawn"
)

// radarWindow is the side length of a radar scan window for a given
// requested size, mirroring the motor/arm pattern of "request a size,
// read back a fixed square" rather than a free-form AOE shape.
func radarWindow(size int) int {
	switch size {
	case 3, 5, 7, 9:
		return size
	default:
		return 3
	}
}

// Tick advances the simulation by exactly one tick, per §4.6's eight-step
// resolution order: spawn, CPU pass, stab resolution, move resolution,
// aging, mode scoring, dead-bot eviction, event/snapshot flush. Commands
// (submit_firmware, destroy_bot, ...) must be applied by the caller before
// Tick is invoked — Tick itself never reaches outside this State.
func (s *State) Tick() {
	s.Version++
	var tickEvents []Event

	tickEvents = append(tickEvents, s.spawnPass()...)

	aliveBefore := s.Alive.IDs()
	sort.Slice(aliveBefore, func(i, j int) bool { return aliveBefore[i] < aliveBefore[j] })

	intents := s.cpuPass()

	killed := s.resolveStabs(intents)

	s.resolveMoves(intents, killed)

	s.Alive.Iter(func(b *bot.Bot) { b.Age++ })

	// Every bot alive after the spawn pass and gone now died this tick (CPU
	// trap, stuck, stab, or fall); its Dead record carries reason and killer.
	for _, botID := range aliveBefore {
		if _, ok := s.Alive.Get(botID); ok {
			continue
		}
		reason, _, _, ok := s.Dead.Get(botID)
		if !ok {
			continue
		}
		s.Mode.OnBotKilled(botID, reason.KillerID, reason.HasKiller)
		tickEvents = append(tickEvents, BotKilled{ID: botID, Reason: reason.Message, KillerID: reason.KillerID, HasKiller: reason.HasKiller})
	}

	s.Dead.Tick()

	for _, ev := range sortedEventsForPublish(tickEvents) {
		s.events.Publish(ev)
	}

	s.snapshotBus.Publish(s.buildSnapshot())
}

// spawnPass promotes queued bots into alive slots while room and legal
// spawn positions remain. Per §4.5, a bot that can't find a legal position
// this tick is requeued (at the front, so it doesn't lose its place) and
// the pass stops — a full map is full for everyone this tick, not just the
// unlucky bot at the head.
func (s *State) spawnPass() []Event {
	var events []Event

	for s.Alive.Count() < s.Policy.MaxAliveBots {
		qb, ok := s.Queued.PopFront()
		if !ok {
			break
		}

		pos, ok := spawn.Find(s, s.Map, s.rng, qb.PinnedPos, qb.HasPinned)
		if !ok {
			qb.RequeueIfCantSpawn = true
			s.Queued.PushFront(qb)
			events = append(events, BotRequeued{ID: qb.ID})
			break
		}

		dir := qb.PinnedDir
		if !qb.HasDir {
			if s.HasSpawnDir {
				dir = s.SpawnDir
			} else {
				dir = spawn.Direction(s.rng)
			}
		}

		b, err := bot.New(qb.ID, qb.Firmware, pos, dir, s.Policy.RamSize, s.Policy.SerialRingCap, s.Policy.EventRingCap, s.nextSeed())
		if err != nil {
			// firmware was already validated at submission time; a
			// failure here means policy shrank between submit and spawn.
			events = append(events, BotRequeued{ID: qb.ID})
			continue
		}

		b.Record(s.Version, "born")
		s.Alive.Add(b)
		events = append(events, BotBorn{ID: qb.ID})
	}

	return events
}

// nextSeed draws a per-bot PRNG device seed, monotonic under testing for
// reproducibility.
func (s *State) nextSeed() uint64 {
	if s.testing {
		s.idSeq++
		return s.idSeq
	}
	return s.rng.Uint64()
}

type intent struct {
	id      id.Id
	fromPos gridmap.Pos
	intents mmio.Intents
}

// cpuPass runs every alive bot's CPU for up to the policy's instruction
// budget, syncing MMIO state first and fulfilling any radar scan the bot
// issued using this tick's authoritative world state, per §4.2/§4.6.
func (s *State) cpuPass() []intent {
	ids := s.Alive.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]intent, 0, len(ids))

	for _, botID := range ids {
		b, ok := s.Alive.Get(botID)
		if !ok {
			continue // killed earlier this pass by another bot's trap handling
		}

		b.Bus.Tick()
		b.Bus.SyncState(b.Pos, b.Dir, s.Version)

		s.runCpuBudget(b)

		if scan, _, pos, ok := b.Bus.PendingRadarScan(); ok {
			glyphs, botIDs := s.radarScan(pos, scan)
			b.Bus.SetRadarResult(glyphs, botIDs)
		}

		out = append(out, intent{id: botID, fromPos: b.Pos, intents: b.Bus.Drain()})
	}

	return out
}

// runCpuBudget steps b's CPU until it yields (ebreak), faults, goes stuck,
// or exhausts the tick's instruction budget.
func (s *State) runCpuBudget(b *bot.Bot) {
	for i := 0; i < s.Policy.MaxInstructionsPerTick; i++ {
		outcome, err := b.Cpu.Step(b.Bus)
		if err != nil {
			s.killBot(b.ID, err.Error(), 0, false)
			return
		}
		if outcome == cpu.Break {
			if b.Cpu.RepeatedBreaks() >= s.Policy.StuckBreakThreshold {
				s.killBot(b.ID, "stuck", 0, false)
			}
			return
		}
	}
}

// killBot moves a bot from alive to dead and returns the BotKilled event
// for it. It is a no-op if the bot is already dead (e.g. killed earlier in
// the same pass). Tick notifies Mode and publishes the event once the
// tick's kills and moves have all been applied.
func (s *State) killBot(target id.Id, reason string, killer id.Id, hasKiller bool) (BotKilled, bool) {
	b, ok := s.Alive.Remove(target)
	if !ok {
		return BotKilled{}, false
	}

	s.Dead.Add(target, botDeathReason(reason, killer, hasKiller), b.Serial.Items(), b.Events.Items(), s.Policy.DeadRetentionTicks)

	return BotKilled{ID: target, Reason: reason, KillerID: killer, HasKiller: hasKiller}, true
}

func botDeathReason(message string, killer id.Id, hasKiller bool) bot.DeathReason {
	return bot.DeathReason{Message: message, KillerID: killer, HasKiller: hasKiller}
}

// resolveStabs applies every pending stab against this tick's
// pre-resolution positions (captured in each intent's fromPos), so stab
// legality never depends on the order bots are processed in.
func (s *State) resolveStabs(intents []intent) []BotKilled {
	posOf := make(map[gridmap.Pos]id.Id, len(intents))
	for _, in := range intents {
		posOf[in.fromPos] = in.id
	}

	var killed []BotKilled

	for _, in := range intents {
		if !in.intents.HasStab {
			continue
		}
		target := in.fromPos.Add(in.intents.StabDir.Vec())
		defender, ok := posOf[target]
		if !ok || defender == in.id {
			continue
		}
		if ev, ok := s.killBot(defender, "stabbed", in.id, true); ok {
			killed = append(killed, ev)
		}
	}

	return killed
}

// resolveMoves applies every pending move, using each bot's pre-resolution
// position so movement legality doesn't depend on processing order.
// Contending movers (two bots whose move targets the same tile) are
// resolved by ascending bot id, per §4.6's tie-break; a loser stays at its
// origin. A mover that stays put — because it lost a contention or its
// target is occupied — becomes an occupant of its own origin cell just
// like a non-mover, so this runs to a fixed point: demoting one mover to
// stationary can in turn block another mover whose target is that
// origin, which can cascade further. A bot sliding into a tile another
// bot successfully vacates this same tick is allowed (its target was
// never added to occupied); what's never allowed, by construction, is two
// bots ending the tick on the same tile.
func (s *State) resolveMoves(intents []intent, stabKilled []BotKilled) {
	deadThisTick := make(map[id.Id]bool, len(stabKilled))
	for _, k := range stabKilled {
		deadThisTick[k.ID] = true
	}

	type candidate struct {
		id      id.Id
		fromPos gridmap.Pos
		target  gridmap.Pos
	}

	occupied := make(map[gridmap.Pos]bool)
	pending := make(map[id.Id]candidate)

	for _, in := range intents {
		if deadThisTick[in.id] {
			continue
		}
		if !in.intents.HasMove {
			occupied[in.fromPos] = true
			continue
		}

		target := in.fromPos.Add(in.intents.MoveDir.Vec())

		if s.Map.Get(target).IsVoid() {
			s.killBot(in.id, "fell into the void", 0, false)
			continue
		}
		if !s.Map.IsFloor(target) || s.HasObjectAt(target) {
			occupied[in.fromPos] = true // blocked by wall or object, doesn't move
			continue
		}

		pending[in.id] = candidate{id: in.id, fromPos: in.fromPos, target: target}
	}

	for {
		byTarget := make(map[gridmap.Pos][]candidate)
		for _, c := range pending {
			byTarget[c.target] = append(byTarget[c.target], c)
		}

		changed := false
		for target, cands := range byTarget {
			sort.Slice(cands, func(i, j int) bool { return cands[i].id < cands[j].id })

			if occupied[target] {
				for _, c := range cands {
					occupied[c.fromPos] = true
					delete(pending, c.id)
				}
				changed = true
				continue
			}

			for _, loser := range cands[1:] { // ascending id, winner is cands[0]
				occupied[loser.fromPos] = true
				delete(pending, loser.id)
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	for _, c := range pending {
		s.Alive.Relocate(c.id, c.target)
	}
}

// radarScan renders a square window of glyphs/bot-ids centered on pos,
// using world state as of this tick's CPU pass. Scans don't rotate with
// the bot's facing — a deliberate simplification over the spec's silence
// on exact radar shape.
func (s *State) radarScan(center gridmap.Pos, size int) ([]byte, []uint32) {
	n := radarWindow(size)
	glyphs := make([]byte, n*n)
	botIDs := make([]uint32, n*n)

	half := n / 2
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			p := gridmap.Pos{X: center.X + int32(col-half), Y: center.Y + int32(row-half)}
			idx := row*n + col

			if botID, ok := s.Alive.LookupAt(p); ok {
				glyphs[idx] = '@'
				botIDs[idx] = uint32(botID) // window contract: 64-bit id truncated to fit the scan's wire format
				continue
			}
			if _, ok := s.Objects[p]; ok {
				glyphs[idx] = '/'
				continue
			}
			glyphs[idx] = s.Map.Get(p).Glyph()
		}
	}

	return glyphs, botIDs
}

// buildSnapshot renders the current state into an immutable Snapshot.
func (s *State) buildSnapshot() *snapshot.Snapshot {
	alive := make([]snapshot.AliveBot, 0, s.Alive.Count())
	scores := s.Mode.Scores()

	s.Alive.Iter(func(b *bot.Bot) {
		evs := b.Events.Items()
		msgs := make([]string, len(evs))
		for i, e := range evs {
			msgs[i] = e.Message
		}
		alive = append(alive, snapshot.AliveBot{
			ID:     b.ID,
			Pos:    b.Pos,
			Dir:    b.Dir,
			Age:    b.Age,
			Score:  scores[b.ID],
			Serial: b.Serial.Items(),
			Events: msgs,
		})
	})

	var dead []snapshot.DeadBot
	for _, target := range s.Dead.IDs() {
		reason, serial, events, ok := s.Dead.Get(target)
		if !ok {
			continue
		}
		msgs := make([]string, len(events))
		for i, e := range events {
			msgs[i] = e.Message
		}
		dead = append(dead, snapshot.DeadBot{ID: target, Reason: reason.Message, Serial: serial, Events: msgs})
	}

	var queued []snapshot.QueuedBot
	for i, qb := range s.Queued.Entries() {
		evs := qb.Events.Items()
		msgs := make([]string, len(evs))
		for j, e := range evs {
			msgs[j] = e.Message
		}
		queued = append(queued, snapshot.QueuedBot{ID: qb.ID, Place: i, Requeued: qb.RequeueIfCantSpawn, Events: msgs})
	}

	return &snapshot.Snapshot{
		Version: s.Version,
		Map:     s.Map.Clone(),
		Objects: cloneObjects(s.Objects),
		Alive:   snapshot.NewAliveBots(alive),
		Dead:    snapshot.NewDeadBots(dead),
		Queued:  snapshot.NewQueuedBots(queued),
	}
}

func cloneObjects(objects map[gridmap.Pos]string) map[gridmap.Pos]string {
	clone := make(map[gridmap.Pos]string, len(objects))
	for k, v := range objects {
		clone[k] = v
	}
	return clone
}
