package spawn

import (
	"math/rand/v2"
	"testing"

	"github.com/Woonters/kartoffels-for-pr/internal/gridmap"
)

type fakeWorld struct {
	m     *gridmap.Map
	bots  map[gridmap.Pos]bool
	objs  map[gridmap.Pos]bool
}

func (f *fakeWorld) IsFloor(p gridmap.Pos) bool      { return f.m.IsFloor(p) }
func (f *fakeWorld) HasObjectAt(p gridmap.Pos) bool  { return f.objs[p] }
func (f *fakeWorld) HasAliveBotAt(p gridmap.Pos) bool { return f.bots[p] }

func TestIsLegalRejectsForbiddenRing(t *testing.T) {
	w := &fakeWorld{m: gridmap.New(20, 20), bots: map[gridmap.Pos]bool{}, objs: map[gridmap.Pos]bool{}}
	center := gridmap.Pos{X: 10, Y: 10}
	w.bots[center] = true

	// every cell in the forbidden ring around center must be rejected
	for _, d := range forbiddenNeighbors {
		p := center.Add(d)
		if IsLegal(w, p) {
			t.Errorf("expected %v to be illegal (within forbidden ring of %v)", p, center)
		}
	}

	// a cell well outside the ring should be fine
	if !IsLegal(w, gridmap.Pos{X: 0, Y: 0}) {
		t.Error("expected (0,0) to be legal")
	}
}

func TestIsLegalRejectsWallAndObject(t *testing.T) {
	w := &fakeWorld{m: gridmap.New(5, 5), bots: map[gridmap.Pos]bool{}, objs: map[gridmap.Pos]bool{}}
	w.m.Set(gridmap.Pos{X: 1, Y: 1}, gridmap.Wall)
	w.objs[gridmap.Pos{X: 2, Y: 2}] = true

	if IsLegal(w, gridmap.Pos{X: 1, Y: 1}) {
		t.Error("wall tile should be illegal")
	}
	if IsLegal(w, gridmap.Pos{X: 2, Y: 2}) {
		t.Error("object tile should be illegal")
	}
}

func TestFindZeroSizeMapFails(t *testing.T) {
	w := &fakeWorld{m: gridmap.New(0, 0), bots: map[gridmap.Pos]bool{}, objs: map[gridmap.Pos]bool{}}
	rng := rand.New(rand.NewPCG(1, 2))

	if _, ok := Find(w, w.m, rng, gridmap.Pos{}, false); ok {
		t.Error("expected Find to fail on a zero-size map")
	}
}

func TestFindPinnedHonorsIllegality(t *testing.T) {
	w := &fakeWorld{m: gridmap.New(5, 5), bots: map[gridmap.Pos]bool{}, objs: map[gridmap.Pos]bool{}}
	w.bots[gridmap.Pos{X: 2, Y: 2}] = true
	rng := rand.New(rand.NewPCG(1, 2))

	if _, ok := Find(w, w.m, rng, gridmap.Pos{X: 2, Y: 2}, true); ok {
		t.Error("expected pinned occupied position to fail")
	}
	if pos, ok := Find(w, w.m, rng, gridmap.Pos{X: 0, Y: 0}, true); !ok || pos != (gridmap.Pos{X: 0, Y: 0}) {
		t.Error("expected pinned free position to succeed")
	}
}
