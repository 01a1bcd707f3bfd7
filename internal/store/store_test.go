package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/id"
	"github.com/Woonters/kartoffels-for-pr/internal/mode"
	"github.com/Woonters/kartoffels-for-pr/internal/world"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testWorldConfig() world.Config {
	p := world.DefaultPolicy()
	p.MaxAliveBots = 4
	p.MaxQueuedBots = 4
	return world.Config{
		Map:     gridmap.New(4, 4),
		Policy:  p,
		Mode:    mode.NewDeathmatch(),
		Testing: true,
	}
}

func TestCreatePrivateAssignsUniqueIDs(t *testing.T) {
	s := New("", testLogger())

	id1, h1, close1, err := s.CreatePrivate(true, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePrivate: %v", err)
	}
	defer close1()
	defer h1.Shutdown()

	id2, h2, close2, err := s.CreatePrivate(true, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePrivate: %v", err)
	}
	defer close2()
	defer h2.Shutdown()

	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %s twice", id1)
	}

	if got, ok := s.Get(id1); !ok || got != h1 {
		t.Fatalf("Get(%s) did not return the created handle", id1)
	}
}

func TestCreatePrivateCloseRemovesWorld(t *testing.T) {
	s := New("", testLogger())

	worldID, h, closeFn, err := s.CreatePrivate(true, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePrivate: %v", err)
	}
	defer h.Shutdown()

	closeFn()

	if _, ok := s.Get(worldID); ok {
		t.Fatalf("world %s still present after close", worldID)
	}
}

func TestCreatePrivateOverloaded(t *testing.T) {
	s := New("", testLogger())
	s.private = make(map[id.Id]*world.Handle, MaxPrivateWorlds)
	for i := 0; i < MaxPrivateWorlds; i++ {
		s.private[id.Id(i+1)] = nil
	}

	if _, _, _, err := s.CreatePrivate(true, testWorldConfig()); err != ErrOverloaded {
		t.Fatalf("got %v, want ErrOverloaded", err)
	}
}

func TestCreatePublicRejectsDuplicateID(t *testing.T) {
	s := New("", testLogger())

	worldID := id.Id(42)
	h, err := s.CreatePublic(worldID, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePublic: %v", err)
	}
	defer h.Shutdown()

	if _, err := s.CreatePublic(worldID, testWorldConfig()); err == nil {
		t.Fatal("expected error creating a duplicate public world id")
	}
}

func TestSaveAndBootRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, testLogger())

	worldID := id.Id(7)
	h, err := s.CreatePublic(worldID, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePublic: %v", err)
	}
	h.Pause() // keep the queued bot from being promoted before Save

	if _, err := h.SubmitFirmware(firmwareEbreak(), gridmap.Pos{X: 1, Y: 1}, true, gridmap.North, true); err != nil {
		t.Fatalf("SubmitFirmware: %v", err)
	}

	if err := s.Save(worldID, h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h.Shutdown()

	s2 := New(dir, testLogger())
	if err := s2.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}

	resumed, ok := s2.Get(worldID)
	if !ok {
		t.Fatalf("world %s was not resumed from disk", worldID)
	}
	defer resumed.Shutdown()

	body, err := resumed.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(body.Queued) != 1 {
		t.Fatalf("got %d queued bots, want 1", len(body.Queued))
	}
}

func TestShutdownDrainsAllWorlds(t *testing.T) {
	s := New("", testLogger())

	_, h1, close1, err := s.CreatePrivate(true, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePrivate: %v", err)
	}
	defer close1()

	_, h2, close2, err := s.CreatePrivate(true, testWorldConfig())
	if err != nil {
		t.Fatalf("CreatePrivate: %v", err)
	}
	defer close2()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	_ = h1
	_ = h2
}

func firmwareEbreak() []byte {
	word := uint32(0b000000000001_00000_000_00000_1110011)
	return []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
}
