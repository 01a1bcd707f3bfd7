package mmio

// radarState holds one bot's radar device: the busy countdown, the scan
// size in flight, and the two parallel result windows a completed scan
// populates (glyph + bot id per cell, both indexed row-major from the
// scan's top-left corner).
type radarState struct {
	busy    int
	size    int
	pending bool

	glyphs  [9 * 9]byte
	botIDs  [9 * 9]uint32
}

func (r *radarState) tick() {
	if r.busy > 0 {
		r.busy--
	}
}
