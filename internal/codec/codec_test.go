package codec

import (
	"bytes"
	"testing"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := DefaultHeader()

	if err := WriteHeader(&buf, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 16))
	if _, err := ReadHeader(buf); err != ErrInvalidMagic {
		t.Fatalf("got %v, want ErrInvalidMagic", err)
	}
}

func TestReadHeaderRejectsTruncated(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 4))
	if _, err := ReadHeader(buf); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestReadHeaderRejectsFutureVersion(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, Header{Version: CurrentVersion + 1})

	if _, err := ReadHeader(&buf); err != ErrUnsupportedVersion {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestBodyRoundTrip(t *testing.T) {
	body := Body{
		Version:       7,
		MapWidth:      4,
		MapHeight:     4,
		Tiles:         []byte{1, 1, 1, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 1, 1, 1},
		Objects:       map[gridmap.Pos]string{{X: 1, Y: 1}: "rock"},
		MaxAliveBots:  8,
		MaxQueuedBots: 8,
		RamSize:       1024,
		ModeKind:      "deathmatch",
		ModeScores:    map[id.Id]uint32{id.Id(5): 3},
		SpawnPos:      gridmap.Pos{X: 2, Y: 2},
		HasSpawnDir:   true,
		SpawnDir:      gridmap.East,
		WorldRngSeed:  42,
		Alive: []Bot{{
			ID:     id.Id(1),
			Pos:    gridmap.Pos{X: 1, Y: 1},
			Dir:    gridmap.North,
			Age:    10,
			Pc:     4,
			Ram:    []byte{0xDE, 0xAD, 0xBE, 0xEF},
			Serial: []byte("hi"),
		}},
		Queued: []QueuedBot{{
			ID:                 id.Id(2),
			Firmware:           []byte{0x01, 0x02},
			RequeueIfCantSpawn: true,
		}},
	}

	var buf bytes.Buffer
	if err := Save(&buf, body); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Version != body.Version || got.MapWidth != body.MapWidth {
		t.Fatalf("version/map mismatch: %+v", got)
	}
	if len(got.Alive) != 1 || got.Alive[0].ID != id.Id(1) || got.Alive[0].Pc != 4 {
		t.Fatalf("alive bot mismatch: %+v", got.Alive)
	}
	if len(got.Queued) != 1 || got.Queued[0].ID != id.Id(2) {
		t.Fatalf("queued bot mismatch: %+v", got.Queued)
	}
	if got.ModeScores[id.Id(5)] != 3 {
		t.Fatalf("mode scores mismatch: %+v", got.ModeScores)
	}
	if got.Objects[gridmap.Pos{X: 1, Y: 1}] != "rock" {
		t.Fatalf("objects mismatch: %+v", got.Objects)
	}
}
