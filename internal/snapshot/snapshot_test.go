package snapshot

import (
	"testing"

	"github.com/Woonters/kartoffels-for-pr/internal/id"
)

func TestAliveBotsSortedByScore(t *testing.T) {
	bots := []AliveBot{
		{ID: id.Id(1), Score: 3},
		{ID: id.Id(2), Score: 7},
		{ID: id.Id(3), Score: 7},
	}
	alive := NewAliveBots(bots)

	var order []id.Id
	alive.IterSortedByScore(func(b AliveBot) { order = append(order, b.ID) })

	want := []id.Id{2, 3, 1} // higher score first, tie broken by ascending id
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("position %d: got %s, want %s", i, order[i], id)
		}
	}
}

func TestAliveBotsSortedByBirth(t *testing.T) {
	bots := []AliveBot{
		{ID: id.Id(1), Age: 5},
		{ID: id.Id(2), Age: 10},
		{ID: id.Id(3), Age: 10},
	}
	alive := NewAliveBots(bots)

	var order []id.Id
	alive.IterSortedByBirth(func(b AliveBot) { order = append(order, b.ID) })

	want := []id.Id{2, 3, 1} // oldest (highest age) first, tie broken by ascending id
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("position %d: got %s, want %s", i, order[i], id)
		}
	}
}

func TestDeadBotsGet(t *testing.T) {
	dead := NewDeadBots([]DeadBot{{ID: id.Id(42), Reason: "stabbed"}})

	b, ok := dead.Get(id.Id(42))
	if !ok || b.Reason != "stabbed" {
		t.Fatalf("expected dead bot 42 with reason 'stabbed', got %+v, ok=%v", b, ok)
	}

	if _, ok := dead.Get(id.Id(99)); ok {
		t.Fatal("expected no entry for unknown id")
	}
}

func TestQueuedBotsGet(t *testing.T) {
	queued := NewQueuedBots([]QueuedBot{{ID: id.Id(7), Place: 2}})

	b, ok := queued.Get(id.Id(7))
	if !ok || b.Place != 2 {
		t.Fatalf("expected queued bot 7 at place 2, got %+v, ok=%v", b, ok)
	}
}
