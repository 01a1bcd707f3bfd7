package world

import (
	"fmt"

	"github.com/Woonters/kartoffels-for-pr/internal/bot"
	"github.com/Woonters/kartoffels-for-pr/internal/codec"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/mode"
)

// Export renders the current state into a codec.Body suitable for
// Save, per §4.10. Dead bots are not persisted — their retention TTL is
// an observer-facing courtesy, not durable state.
func (s *State) Export() codec.Body {
	w, h := s.Map.Size()

	tiles := make([]byte, 0, int(w)*int(h))
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			tiles = append(tiles, byte(s.Map.Get(gridmap.Pos{X: x, Y: y})))
		}
	}

	objects := make(map[gridmap.Pos]string, len(s.Objects))
	for k, v := range s.Objects {
		objects[k] = v
	}

	var alive []codec.Bot
	s.Alive.Iter(func(b *bot.Bot) {
		alive = append(alive, codec.Bot{
			ID:     b.ID,
			Pos:    b.Pos,
			Dir:    b.Dir,
			Age:    b.Age,
			Regs:   b.Cpu.Regs(),
			Pc:     b.Cpu.Pc(),
			Ram:    append([]byte(nil), b.Cpu.RAM()...),
			Serial: b.Serial.Items(),
		})
	})

	var queued []codec.QueuedBot
	for _, qb := range s.Queued.Entries() {
		queued = append(queued, codec.QueuedBot{
			ID:                 qb.ID,
			Firmware:           qb.Firmware,
			HasPinned:          qb.HasPinned,
			PinnedPos:          qb.PinnedPos,
			HasDir:             qb.HasDir,
			PinnedDir:          qb.PinnedDir,
			RequeueIfCantSpawn: qb.RequeueIfCantSpawn,
		})
	}

	modeKind, scores := exportMode(s.Mode)

	return codec.Body{
		Version:                s.Version,
		MapWidth:               w,
		MapHeight:              h,
		Tiles:                  tiles,
		Objects:                objects,
		MaxAliveBots:           int32(s.Policy.MaxAliveBots),
		MaxQueuedBots:          int32(s.Policy.MaxQueuedBots),
		MaxInstructionsPerTick: int32(s.Policy.MaxInstructionsPerTick),
		RamSize:                int32(s.Policy.RamSize),
		SerialRingCap:          int32(s.Policy.SerialRingCap),
		EventRingCap:           int32(s.Policy.EventRingCap),
		DeadRetentionTicks:     int32(s.Policy.DeadRetentionTicks),
		StuckBreakThreshold:    s.Policy.StuckBreakThreshold,
		ModeKind:               modeKind,
		ModeScores:             scores,
		SpawnPos:               s.SpawnPos,
		SpawnDir:               s.SpawnDir,
		HasSpawnDir:            s.HasSpawnDir,
		Clock:                  uint8(s.Clock),
		WorldRngSeed:           s.Seed,
		Alive:                  alive,
		Queued:                 queued,
	}
}

func exportMode(m mode.Mode) (string, map[id.Id]uint32) {
	switch md := m.(type) {
	case *mode.Deathmatch:
		return "deathmatch", md.Scores()
	default:
		return "unknown", nil
	}
}

// Restore reconstructs a State from a persisted Body. Only deathmatch mode
// is currently restorable; other ModeKinds fall back to a fresh
// Deathmatch, matching the spec's note that Mode is a small fixed set of
// implementers rather than an open plugin registry.
func Restore(body codec.Body) (*State, error) {
	m := gridmap.New(body.MapWidth, body.MapHeight)
	w, h := m.Size()
	if len(body.Tiles) != int(w)*int(h) {
		return nil, fmt.Errorf("world: restore: tile count %d does not match %dx%d map", len(body.Tiles), w, h)
	}
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			m.Set(gridmap.Pos{X: x, Y: y}, gridmap.Tile(body.Tiles[y*w+x]))
		}
	}

	md := mode.NewDeathmatch()
	if body.ModeKind == "deathmatch" && body.ModeScores != nil {
		md.RestoreScores(body.ModeScores)
	}

	s := New(Config{
		Map: m,
		Policy: Policy{
			MaxAliveBots:           int(body.MaxAliveBots),
			MaxQueuedBots:          int(body.MaxQueuedBots),
			MaxInstructionsPerTick: int(body.MaxInstructionsPerTick),
			RamSize:                int(body.RamSize),
			SerialRingCap:          int(body.SerialRingCap),
			EventRingCap:           int(body.EventRingCap),
			DeadRetentionTicks:     int(body.DeadRetentionTicks),
			StuckBreakThreshold:    body.StuckBreakThreshold,
		},
		Mode:        md,
		Seed:        body.WorldRngSeed,
		SpawnPos:    body.SpawnPos,
		SpawnDir:    body.SpawnDir,
		HasSpawnDir: body.HasSpawnDir,
	})

	s.Objects = body.Objects
	s.Version = body.Version
	s.Clock = ClockSpeed(body.Clock)

	for _, cb := range body.Alive {
		b, err := bot.New(cb.ID, nil, cb.Pos, cb.Dir, len(cb.Ram), s.Policy.SerialRingCap, s.Policy.EventRingCap, s.nextSeed())
		if err != nil {
			return nil, fmt.Errorf("world: restore bot %s: %w", cb.ID, err)
		}
		b.Cpu.RestoreState(cb.Regs, cb.Pc, append([]byte(nil), cb.Ram...))
		b.Age = cb.Age
		for _, by := range cb.Serial {
			b.Serial.Push(by)
		}
		s.Alive.Add(b)
	}

	for _, cq := range body.Queued {
		qb := bot.NewQueued(cq.ID, cq.Firmware, s.Policy.EventRingCap)
		qb.HasPinned = cq.HasPinned
		qb.PinnedPos = cq.PinnedPos
		qb.HasDir = cq.HasDir
		qb.PinnedDir = cq.PinnedDir
		qb.RequeueIfCantSpawn = cq.RequeueIfCantSpawn
		s.Queued.PushBack(qb)
	}

	return s, nil
}
