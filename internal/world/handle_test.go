package world

import (
	"testing"
	"time"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
	"github.com/Woonters/kartoffels-for-pr/internal/mode"
)

func testConfig(w, h int32) Config {
	return Config{
		Map:     gridmap.New(w, h),
		Policy:  testPolicy(),
		Mode:    mode.NewDeathmatch(),
		Testing: true,
	}
}

func TestHandleSubmitFirmwareSpawnsBot(t *testing.T) {
	h := Spawn(testConfig(4, 4))
	defer h.Shutdown()

	botID, err := h.SubmitFirmware(firmwareEbreak(), gridmap.Pos{}, false, 0, false)
	if err != nil {
		t.Fatalf("SubmitFirmware: %v", err)
	}
	if botID == 0 {
		t.Fatal("expected non-zero bot id")
	}
}

func TestHandlePauseStopsTicksUntilResumed(t *testing.T) {
	h := Spawn(testConfig(4, 4))
	defer h.Shutdown()

	h.Pause()
	h.Overclock(Fastest)

	_, stream := h.Snapshots()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-stream:
		t.Fatal("received a snapshot while paused")
	default:
	}

	h.Resume()

	select {
	case <-stream:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a snapshot after resuming")
	}
}

func TestHandleDestroyBotUnknownReturnsError(t *testing.T) {
	h := Spawn(testConfig(4, 4))
	defer h.Shutdown()

	if err := h.DestroyBot(9999); err != ErrBotNotFound {
		t.Fatalf("got %v, want ErrBotNotFound", err)
	}
}

func TestHandleShutdownBlocksUntilWorldTaskExits(t *testing.T) {
	h := Spawn(testConfig(4, 4))

	done := make(chan struct{})
	go func() {
		h.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return")
	}
}

func TestHandleExportRoundTrips(t *testing.T) {
	h := Spawn(testConfig(4, 4))
	defer h.Shutdown()

	if _, err := h.SubmitFirmware(firmwareEbreak(), gridmap.Pos{X: 1, Y: 1}, true, gridmap.North, true); err != nil {
		t.Fatalf("SubmitFirmware: %v", err)
	}

	body, err := h.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if body.MapWidth != 4 || body.MapHeight != 4 {
		t.Fatalf("got map %dx%d, want 4x4", body.MapWidth, body.MapHeight)
	}
}
