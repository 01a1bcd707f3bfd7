package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
)

// Bot is one persisted bot's full architectural state, per §4.10: enough
// to reconstruct its Cpu and Bot wrapper exactly.
type Bot struct {
	ID     id.Id
	Pos    gridmap.Pos
	Dir    gridmap.Direction
	Age    uint64
	Regs   [32]uint32
	Pc     uint32
	Ram    []byte
	Serial []byte
}

// QueuedBot is one persisted queue entry.
type QueuedBot struct {
	ID                 id.Id
	Firmware           []byte
	HasPinned          bool
	PinnedPos          gridmap.Pos
	HasDir             bool
	PinnedDir          gridmap.Direction
	RequeueIfCantSpawn bool
}

// Body is the full persisted contents of a world file, independent of any
// live world.State — the store package converts between the two so this
// package never has to import the world package.
type Body struct {
	Version uint64

	MapWidth, MapHeight int32
	Tiles               []byte // one byte per cell, row-major, gridmap.Tile values

	Objects map[gridmap.Pos]string

	MaxAliveBots           int32
	MaxQueuedBots          int32
	MaxInstructionsPerTick int32
	RamSize                int32
	SerialRingCap          int32
	EventRingCap           int32
	DeadRetentionTicks     int32
	StuckBreakThreshold    uint32

	ModeKind   string // "deathmatch"
	ModeScores map[id.Id]uint32

	SpawnPos    gridmap.Pos
	SpawnDir    gridmap.Direction
	HasSpawnDir bool

	Clock uint8

	WorldRngSeed uint64

	Alive  []Bot
	Queued []QueuedBot
}

// Save writes header + body to w. Per §4.10, the body is length-prefixed
// and self-describing: every variable-length field carries its own byte
// count, so Load never has to guess a layout.
func Save(w io.Writer, b Body) error {
	if err := WriteHeader(w, DefaultHeader()); err != nil {
		return fmt.Errorf("codec: write header: %w", err)
	}

	bw := &byteWriter{w: w}

	bw.uint64(b.Version)
	bw.int32(b.MapWidth)
	bw.int32(b.MapHeight)
	bw.bytes(b.Tiles)

	bw.uint32(uint32(len(b.Objects)))
	for pos, kind := range b.Objects {
		bw.pos(pos)
		bw.str(kind)
	}

	bw.int32(b.MaxAliveBots)
	bw.int32(b.MaxQueuedBots)
	bw.int32(b.MaxInstructionsPerTick)
	bw.int32(b.RamSize)
	bw.int32(b.SerialRingCap)
	bw.int32(b.EventRingCap)
	bw.int32(b.DeadRetentionTicks)
	bw.uint32(b.StuckBreakThreshold)

	bw.str(b.ModeKind)
	bw.uint32(uint32(len(b.ModeScores)))
	for botID, score := range b.ModeScores {
		bw.uint64(uint64(botID))
		bw.uint32(score)
	}

	bw.pos(b.SpawnPos)
	bw.dir(b.SpawnDir)
	bw.boolean(b.HasSpawnDir)

	bw.byte(b.Clock)
	bw.uint64(b.WorldRngSeed)

	bw.uint32(uint32(len(b.Alive)))
	for _, bot := range b.Alive {
		bw.uint64(uint64(bot.ID))
		bw.pos(bot.Pos)
		bw.dir(bot.Dir)
		bw.uint64(bot.Age)
		for _, r := range bot.Regs {
			bw.uint32(r)
		}
		bw.uint32(bot.Pc)
		bw.bytes(bot.Ram)
		bw.bytes(bot.Serial)
	}

	bw.uint32(uint32(len(b.Queued)))
	for _, qb := range b.Queued {
		bw.uint64(uint64(qb.ID))
		bw.bytes(qb.Firmware)
		bw.boolean(qb.HasPinned)
		bw.pos(qb.PinnedPos)
		bw.boolean(qb.HasDir)
		bw.dir(qb.PinnedDir)
		bw.boolean(qb.RequeueIfCantSpawn)
	}

	return bw.err
}

// Load reads and validates a header, then decodes the body that follows.
func Load(r io.Reader) (Body, error) {
	if _, err := ReadHeader(r); err != nil {
		return Body{}, err
	}

	br := &byteReader{r: r}
	var b Body

	b.Version = br.uint64()
	b.MapWidth = br.int32()
	b.MapHeight = br.int32()
	b.Tiles = br.bytes()

	nObjects := br.uint32()
	if nObjects > 0 {
		b.Objects = make(map[gridmap.Pos]string, nObjects)
		for i := uint32(0); i < nObjects; i++ {
			pos := br.pos()
			b.Objects[pos] = br.str()
		}
	}

	b.MaxAliveBots = br.int32()
	b.MaxQueuedBots = br.int32()
	b.MaxInstructionsPerTick = br.int32()
	b.RamSize = br.int32()
	b.SerialRingCap = br.int32()
	b.EventRingCap = br.int32()
	b.DeadRetentionTicks = br.int32()
	b.StuckBreakThreshold = br.uint32()

	b.ModeKind = br.str()
	nScores := br.uint32()
	if nScores > 0 {
		b.ModeScores = make(map[id.Id]uint32, nScores)
		for i := uint32(0); i < nScores; i++ {
			botID := id.Id(br.uint64())
			b.ModeScores[botID] = br.uint32()
		}
	}

	b.SpawnPos = br.pos()
	b.SpawnDir = br.dir()
	b.HasSpawnDir = br.boolean()

	b.Clock = br.byte()
	b.WorldRngSeed = br.uint64()

	nAlive := br.uint32()
	b.Alive = make([]Bot, nAlive)
	for i := range b.Alive {
		bot := &b.Alive[i]
		bot.ID = id.Id(br.uint64())
		bot.Pos = br.pos()
		bot.Dir = br.dir()
		bot.Age = br.uint64()
		for j := range bot.Regs {
			bot.Regs[j] = br.uint32()
		}
		bot.Pc = br.uint32()
		bot.Ram = br.bytes()
		bot.Serial = br.bytes()
	}

	nQueued := br.uint32()
	b.Queued = make([]QueuedBot, nQueued)
	for i := range b.Queued {
		qb := &b.Queued[i]
		qb.ID = id.Id(br.uint64())
		qb.Firmware = br.bytes()
		qb.HasPinned = br.boolean()
		qb.PinnedPos = br.pos()
		qb.HasDir = br.boolean()
		qb.PinnedDir = br.dir()
		qb.RequeueIfCantSpawn = br.boolean()
	}

	if br.err != nil {
		return Body{}, fmt.Errorf("codec: corrupt body: %w", br.err)
	}

	return b, nil
}

// byteWriter accumulates the first error across a chain of writes so
// callers don't have to check one per field, mirroring the teacher's
// single-error-sticks style in its own I/O helpers.
type byteWriter struct {
	w   io.Writer
	err error
}

func (bw *byteWriter) write(p []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(p)
}

func (bw *byteWriter) byte(v uint8)     { bw.write([]byte{v}) }
func (bw *byteWriter) boolean(v bool) {
	if v {
		bw.byte(1)
	} else {
		bw.byte(0)
	}
}

func (bw *byteWriter) uint32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	bw.write(buf[:])
}

func (bw *byteWriter) int32(v int32) { bw.uint32(uint32(v)) }

func (bw *byteWriter) uint64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	bw.write(buf[:])
}

func (bw *byteWriter) bytes(v []byte) {
	bw.uint32(uint32(len(v)))
	bw.write(v)
}

func (bw *byteWriter) str(v string) { bw.bytes([]byte(v)) }

func (bw *byteWriter) pos(p gridmap.Pos) {
	bw.int32(p.X)
	bw.int32(p.Y)
}

func (bw *byteWriter) dir(d gridmap.Direction) { bw.byte(uint8(d)) }

type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) read(n int) []byte {
	if br.err != nil {
		return make([]byte, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br.r, buf); err != nil {
		br.err = err
	}
	return buf
}

func (br *byteReader) byte() uint8 {
	b := br.read(1)
	return b[0]
}

func (br *byteReader) boolean() bool { return br.byte() != 0 }

func (br *byteReader) uint32() uint32 { return binary.BigEndian.Uint32(br.read(4)) }
func (br *byteReader) int32() int32   { return int32(br.uint32()) }
func (br *byteReader) uint64() uint64 { return binary.BigEndian.Uint64(br.read(8)) }

func (br *byteReader) bytes() []byte {
	n := br.uint32()
	if br.err != nil || n == 0 {
		return nil
	}
	return br.read(int(n))
}

func (br *byteReader) str() string { return string(br.bytes()) }

func (br *byteReader) pos() gridmap.Pos { return gridmap.Pos{X: br.int32(), Y: br.int32()} }
func (br *byteReader) dir() gridmap.Direction { return gridmap.Direction(br.byte()) }
