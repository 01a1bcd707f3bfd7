// Package mode implements the game-mode scoring policy. Per spec §9's
// design note, Mode is modeled as a fixed operation set behind an
// interface with (today) one concrete implementer, rather than a plugin
// system — new modes extend the set of implementers, never load at
// runtime.
package mode

import "github.com/Woonters/kartoffels-for-pr/internal/id"

// Mode is the scoring/rules policy a World delegates bot-death handling
// to.
type Mode interface {
	// OnBotKilled is called once per death, in ascending order of the killed
	// bot's id, after the tick's kills and moves have all been applied.
	OnBotKilled(killed id.Id, killer id.Id, hasKiller bool)

	// Scores returns the current per-bot score table. Callers must treat
	// the result as read-only.
	Scores() map[id.Id]uint32

	// Reset clears accumulated score state, used by Deathmatch's optional
	// round-duration expiry.
	Reset()
}

// Deathmatch awards one point per distinct-attacker kill; self-kills
// (falling into the void, with no killer) award nothing.
type Deathmatch struct {
	scores map[id.Id]uint32
}

// NewDeathmatch constructs an empty Deathmatch mode.
func NewDeathmatch() *Deathmatch {
	return &Deathmatch{scores: make(map[id.Id]uint32)}
}

// OnBotKilled implements Mode.
func (d *Deathmatch) OnBotKilled(killed id.Id, killer id.Id, hasKiller bool) {
	if !hasKiller || killer == killed {
		return
	}
	d.scores[killer]++
}

// Scores implements Mode.
func (d *Deathmatch) Scores() map[id.Id]uint32 { return d.scores }

// Reset implements Mode.
func (d *Deathmatch) Reset() { d.scores = make(map[id.Id]uint32) }

// RestoreScores replaces the score table wholesale, used when
// reconstructing a Deathmatch from a persisted world file.
func (d *Deathmatch) RestoreScores(scores map[id.Id]uint32) {
	d.scores = scores
}
