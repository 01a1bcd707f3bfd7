package world

// Policy bounds a world's resource usage: how many bots may be alive or
// queued at once, how much CPU work each bot gets per tick, and the
// capacity of its bounded rings.
type Policy struct {
	MaxAliveBots  int
	MaxQueuedBots int

	MaxInstructionsPerTick int
	RamSize                int

	SerialRingCap int
	EventRingCap  int

	DeadRetentionTicks int

	// StuckBreakThreshold is how many consecutive ebreak steps at an
	// unchanged pc the scheduler tolerates before treating the bot as
	// stuck and killing it, per §4.1's "or, if it recurs unchanged for a
	// threshold, as bot stuck, kill".
	StuckBreakThreshold uint32
}

// DefaultPolicy returns reasonable defaults matching the magnitudes named
// in spec §4.1 (128 KiB RAM) and §4.5 (1,024 spawn attempts is a spawn
// package constant, not a policy knob).
func DefaultPolicy() Policy {
	return Policy{
		MaxAliveBots:           16,
		MaxQueuedBots:          64,
		MaxInstructionsPerTick: 65536,
		RamSize:                128 * 1024,
		SerialRingCap:          4096,
		EventRingCap:           32,
		DeadRetentionTicks:     200,
		StuckBreakThreshold:    1000,
	}
}
