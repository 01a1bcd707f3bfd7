package mode

import (
	"testing"

	"github.com/Woonters/kartoffels-for-pr/internal/id"
)

func TestDeathmatchAwardsPointOnlyWithDistinctKiller(t *testing.T) {
	m := NewDeathmatch()

	m.OnBotKilled(id.Id(1), id.Id(0), false) // fell into the void, no killer
	if len(m.Scores()) != 0 {
		t.Fatal("self-kill / no-killer death should not score")
	}

	m.OnBotKilled(id.Id(1), id.Id(2), true) // stabbed by 2
	if m.Scores()[id.Id(2)] != 1 {
		t.Fatalf("scores[2] = %d, want 1", m.Scores()[id.Id(2)])
	}

	m.OnBotKilled(id.Id(3), id.Id(2), true)
	if m.Scores()[id.Id(2)] != 2 {
		t.Fatalf("scores[2] = %d, want 2", m.Scores()[id.Id(2)])
	}
}

func TestDeathmatchResetClearsScores(t *testing.T) {
	m := NewDeathmatch()
	m.OnBotKilled(id.Id(1), id.Id(2), true)
	m.Reset()

	if len(m.Scores()) != 0 {
		t.Fatal("Reset did not clear scores")
	}
}
