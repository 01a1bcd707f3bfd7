// Package mmio implements the per-bot memory-mapped peripheral bus: motor,
// radar, arm, compass, battery, timer, serial, and prng devices, addressed
// within the high band a Cpu routes out-of-RAM accesses to.
//
// The address layout below is this implementation's own choice — §4.2 of
// the spec fixes device *semantics*, not their numeric offsets — modeled
// on the way the teacher's emul/io.go keeps device plumbing as small,
// dedicated read/write helpers rather than one giant switch.
package mmio

import (
	"math/rand/v2"

	"github.com/Woonters/kartoffels-for-pr/internal/cpu"
	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/ringbuf"
)

// Base is the MMIO band's start address, matching cpu.MmioBase.
const Base = cpu.MmioBase

// Device offsets, relative to Base. Each is word-aligned with room to
// spare so a misbehaving firmware poking adjacent bytes can't bleed one
// device's registers into another's.
const (
	offMotorCmd    = 0x000
	offMotorStatus = 0x004
	offRadarCmd    = 0x008
	offRadarStatus = 0x00C
	offArmCmd      = 0x010
	offArmStatus   = 0x014
	offCompassDir  = 0x018
	offCompassPosX = 0x01C
	offCompassPosY = 0x020
	offBattery     = 0x024
	offTimer       = 0x028
	offSerialWrite = 0x02C
	offPrng        = 0x030

	offRadarGlyphs = 0x100 // up to 81 bytes (9x9)
	offRadarBotIDs = 0x200 // up to 81 * 4 bytes (9x9, uint32 each)

	bandSize = 0x400
)

// Motor commands, as stored to offMotorCmd.
const (
	MotorStepForward uint32 = 1
	MotorTurnLeft    uint32 = 2
	MotorTurnRight   uint32 = 3
	MotorTurnAround  uint32 = 4
)

// Busy durations, in world ticks, per the device contract in §4.2: issuing
// a command suspends the device for a fixed number of ticks.
const (
	motorBusyTicks = 2
	armBusyTicks   = 3
)

var radarBusyTicks = map[int]int{3: 2, 5: 4, 7: 6, 9: 8}

// Intents is what a bot's bus accumulated this tick for the world to
// resolve during tick resolution (§4.6). Turns are applied immediately by
// Bus.Drain since they never conflict spatially; only StabDir and MoveDir
// need atomic cross-bot resolution.
type Intents struct {
	StabDir  gridmap.Direction
	HasStab  bool
	MoveDir  gridmap.Direction
	HasMove  bool
}

// Bus is one bot's MMIO peripheral set.
type Bus struct {
	motorBusy int
	armBusy   int

	pendingStab bool
	pendingMove bool

	radar radarState

	serial *ringbuf.Ring[byte]
	prng   *rand.Rand

	dir     gridmap.Direction
	pos     gridmap.Pos
	battery uint32
	timer   uint32
}

// New constructs a Bus for one bot. serial is the ring the bot's serial
// writes append to — owned by the Bot, shared here so writes are visible
// to snapshot building without another layer of copying.
func New(serial *ringbuf.Ring[byte], seed uint64) *Bus {
	return &Bus{
		serial:  serial,
		prng:    rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		battery: 1_000_000,
	}
}

// SyncState is called by the world once per tick, before the CPU pass,
// so Compass/Timer reads reflect this tick's authoritative position and
// clock without the bus needing to reach back into world state itself.
func (b *Bus) SyncState(pos gridmap.Pos, dir gridmap.Direction, tick uint64) {
	b.pos = pos
	b.dir = dir
	b.timer = uint32(tick)
}

// Tick decrements device busy counters. Called once per world tick, never
// from within a CPU step, per §4.2's contract.
func (b *Bus) Tick() {
	if b.motorBusy > 0 {
		b.motorBusy--
	}
	if b.armBusy > 0 {
		b.armBusy--
	}
	b.radar.tick()
}

// Load implements cpu.Mmio.
func (b *Bus) Load(addr uint32, width cpu.Width) uint32 {
	off := addr - Base

	switch {
	case off == offMotorStatus:
		return statusOf(b.motorBusy)
	case off == offRadarStatus:
		return statusOf(b.radar.busy)
	case off == offArmStatus:
		return statusOf(b.armBusy)
	case off == offCompassDir:
		return uint32(b.dir)
	case off == offCompassPosX:
		return uint32(b.pos.X)
	case off == offCompassPosY:
		return uint32(b.pos.Y)
	case off == offBattery:
		return b.battery
	case off == offTimer:
		return b.timer
	case off == offPrng:
		return b.prng.Uint32()
	case off >= offRadarGlyphs && off < offRadarGlyphs+uint32(len(b.radar.glyphs)):
		return uint32(b.radar.glyphs[off-offRadarGlyphs])
	case off >= offRadarBotIDs && off < offRadarBotIDs+uint32(len(b.radar.botIDs))*4:
		idx := (off - offRadarBotIDs) / 4
		return b.radar.botIDs[idx]
	default:
		return 0 // undefined MMIO address reads as zero, per §4.2/§7
	}
}

// Store implements cpu.Mmio.
func (b *Bus) Store(addr uint32, width cpu.Width, value uint32) {
	off := addr - Base

	switch off {
	case offMotorCmd:
		b.storeMotor(value)
	case offRadarCmd:
		b.storeRadar(value)
	case offArmCmd:
		b.storeArm(value)
	case offSerialWrite:
		b.serial.Push(byte(value))
	default:
		// unknown MMIO address: store ignored, per §4.2/§7
	}
}

func (b *Bus) storeMotor(cmd uint32) {
	if b.motorBusy > 0 {
		return // device busy: command dropped, firmware must poll status
	}
	b.motorBusy = motorBusyTicks

	switch cmd {
	case MotorTurnLeft:
		b.dir = b.dir.TurnLeft()
	case MotorTurnRight:
		b.dir = b.dir.TurnRight()
	case MotorTurnAround:
		b.dir = b.dir.Turn180()
	case MotorStepForward:
		b.pendingMove = true
	default:
		b.motorBusy = 0 // unrecognized command doesn't consume a cycle
	}
}

func (b *Bus) storeArm(cmd uint32) {
	if b.armBusy > 0 || cmd == 0 {
		return
	}
	b.armBusy = armBusyTicks
	b.pendingStab = true
}

func (b *Bus) storeRadar(size uint32) {
	if b.radar.busy > 0 {
		return
	}
	n := int(size)
	busy, ok := radarBusyTicks[n]
	if !ok {
		return
	}
	b.radar.busy = busy
	b.radar.size = n
	b.radar.pending = true
}

func statusOf(busy int) uint32 {
	if busy > 0 {
		return 1 // busy
	}
	return 0 // ready
}

// Drain returns this tick's intents (stab/move) and clears them. Pending
// radar scans are not part of Intents; the world reads them through
// PendingRadarScan and fulfills them via SetRadarResult.
func (b *Bus) Drain() Intents {
	intents := Intents{}

	if b.pendingStab {
		intents.HasStab = true
		intents.StabDir = b.dir
		b.pendingStab = false
	}
	if b.pendingMove {
		intents.HasMove = true
		intents.MoveDir = b.dir
		b.pendingMove = false
	}

	return intents
}

// PendingRadarScan reports the size of a newly issued, not-yet-fulfilled
// radar scan, if any.
func (b *Bus) PendingRadarScan() (size int, dir gridmap.Direction, pos gridmap.Pos, ok bool) {
	if !b.radar.pending {
		return 0, 0, gridmap.Pos{}, false
	}
	b.radar.pending = false
	return b.radar.size, b.dir, b.pos, true
}

// SetRadarResult populates the glyph/bot-id windows for the most recent
// scan. glyphs and botIDs must both have length size*size.
func (b *Bus) SetRadarResult(glyphs []byte, botIDs []uint32) {
	n := copy(b.radar.glyphs[:], glyphs)
	for i := 0; i < n && i < len(botIDs); i++ {
		b.radar.botIDs[i] = botIDs[i]
	}
}
