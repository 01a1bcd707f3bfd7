package world

import (
	"math/rand/v2"
	"sort"

	"github.com/Woonters/kartoffels-for-pr/internal/bot"
	"github.com/Woonters/kartoffels-for-pr/internal/botset"
	"github.com/Woonters/kartoffels-for-pr/internal/broadcast"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/mode"
	"github.com/Woonters/kartoffels-for-pr/internal/snapshot"
)

// Config configures a freshly created world.
type Config struct {
	Map    *gridmap.Map
	Policy Policy
	Mode   mode.Mode

	Seed    uint64
	Testing bool // monotonic ids instead of random, for reproducible tests

	SpawnPos    gridmap.Pos
	SpawnDir    gridmap.Direction
	HasSpawnDir bool
}

// State is the single-writer simulation state a World goroutine owns
// exclusively. Every field here is touched only from inside Tick (or from
// command handlers invoked immediately before/after a tick by the owning
// goroutine) — see Handle in handle.go for the concurrency contract.
type State struct {
	Map     *gridmap.Map
	Objects map[gridmap.Pos]string

	Alive  *botset.Alive
	Dead   *botset.Dead
	Queued *botset.Queued

	Policy Policy
	Mode   mode.Mode
	Clock  ClockSpeed

	Seed    uint64
	rng     *rand.Rand
	testing bool
	idSeq   uint64

	SpawnPos    gridmap.Pos
	SpawnDir    gridmap.Direction
	HasSpawnDir bool

	Version uint64
	Paused  bool

	shuttingDown bool

	events      *broadcast.Broadcaster[Event]
	snapshotBus *broadcast.Broadcaster[*snapshot.Snapshot]
}

// New constructs a fresh, unpaused world at tick 0.
func New(cfg Config) *State {
	m := cfg.Map
	if m == nil {
		m = gridmap.New(0, 0)
	}
	md := cfg.Mode
	if md == nil {
		md = mode.NewDeathmatch()
	}

	return &State{
		Map:         m,
		Objects:     make(map[gridmap.Pos]string),
		Alive:       botset.NewAlive(),
		Dead:        botset.NewDead(),
		Queued:      botset.NewQueued(),
		Policy:      cfg.Policy,
		Mode:        md,
		Clock:       Normal,
		Seed:        cfg.Seed,
		rng:         rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xD1B54A32D192ED03)),
		testing:     cfg.Testing,
		SpawnPos:    cfg.SpawnPos,
		SpawnDir:    cfg.SpawnDir,
		HasSpawnDir: cfg.HasSpawnDir,
		events:      broadcast.New[Event](64),
		snapshotBus: broadcast.New[*snapshot.Snapshot](8),
	}
}

// --- spawn.Occupied ---

func (s *State) IsFloor(p gridmap.Pos) bool { return s.Map.IsFloor(p) }

func (s *State) HasObjectAt(p gridmap.Pos) bool {
	_, ok := s.Objects[p]
	return ok
}

func (s *State) HasAliveBotAt(p gridmap.Pos) bool {
	_, ok := s.Alive.LookupAt(p)
	return ok
}

// nextID draws a fresh bot id: monotonic in testing mode (for
// reproducible test fixtures), random otherwise.
func (s *State) nextID() id.Id {
	if s.testing {
		return id.New(&s.idSeq)
	}
	return id.NewFromRand(s.rng)
}

// EnqueueFirmware validates and enqueues a firmware submission, returning
// its freshly minted id.
func (s *State) EnqueueFirmware(firmware []byte, pos gridmap.Pos, hasPos bool, dir gridmap.Direction, hasDir bool) (id.Id, error) {
	if s.Queued.Count() >= s.Policy.MaxQueuedBots {
		return 0, ErrQueueFull
	}
	if len(firmware) == 0 || len(firmware) > s.Policy.RamSize {
		return 0, ErrInvalidFirmware
	}

	botID := s.nextID()
	qb := bot.NewQueued(botID, firmware, s.Policy.EventRingCap)
	qb.HasPinned = hasPos
	qb.PinnedPos = pos
	qb.HasDir = hasDir
	qb.PinnedDir = dir

	s.Queued.PushBack(qb)
	return botID, nil
}

// DestroyBot removes a bot from alive or queued immediately (an admin
// operation, not a tick-resolution kill — no death reason/killer is
// recorded and Mode is not notified, matching spec §6's destroy_bot).
func (s *State) DestroyBot(target id.Id) bool {
	if _, ok := s.Alive.Remove(target); ok {
		return true
	}
	entries := s.Queued.Entries()
	for i, qb := range entries {
		if qb.ID == target {
			rest := append(append([]*bot.QueuedBot{}, entries[:i]...), entries[i+1:]...)
			s.Queued = botset.NewQueued()
			for _, e := range rest {
				s.Queued.PushBack(e)
			}
			return true
		}
	}
	return false
}

// Events returns the world's event stream.
func (s *State) Events() *broadcast.Broadcaster[Event] { return s.events }

// Snapshots returns the world's snapshot stream.
func (s *State) Snapshots() *broadcast.Broadcaster[*snapshot.Snapshot] { return s.snapshotBus }

// sortedEventsForPublish orders a tick's events per §5: deaths in
// attacker-id order, then births, then mode-specific (BotRequeued here).
func sortedEventsForPublish(evs []Event) []Event {
	var deaths, births, other []Event

	for _, e := range evs {
		switch v := e.(type) {
		case BotKilled:
			_ = v
			deaths = append(deaths, e)
		case BotBorn:
			births = append(births, e)
		default:
			other = append(other, e)
		}
	}

	sort.Slice(deaths, func(i, j int) bool {
		a, b := deaths[i].(BotKilled), deaths[j].(BotKilled)
		ak, bk := uint64(0), uint64(0)
		if a.HasKiller {
			ak = uint64(a.KillerID)
		}
		if b.HasKiller {
			bk = uint64(b.KillerID)
		}
		return ak < bk
	})

	out := make([]Event, 0, len(evs))
	out = append(out, deaths...)
	out = append(out, births...)
	out = append(out, other...)
	return out
}
