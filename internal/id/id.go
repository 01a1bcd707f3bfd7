// Package id implements the opaque 64-bit handle used to name worlds and
// bots, with a stable "xxxx-xxxx-xxxx-xxxx" text form.
package id

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Id is a non-zero 64-bit handle. The zero value is invalid and must never
// be constructed directly; use New, NewFromRand, or Parse.
type Id uint64

// New returns the next id from seq, skipping the reserved zero value.
// Used in test mode, where ids must be small and monotonic across a run.
func New(seq *uint64) Id {
	*seq++
	return Id(*seq)
}

// NewFromRand draws an id from rng, retrying on the astronomically unlikely
// zero value so the result always satisfies the non-zero invariant.
func NewFromRand(rng *rand.Rand) Id {
	for {
		if v := rng.Uint64(); v != 0 {
			return Id(v)
		}
	}
}

// String renders the id as four hex-pair groups separated by dashes, e.g.
// "d640-5f89-2fef-003e".
func (id Id) String() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))

	var sb strings.Builder
	sb.Grow(19)

	for i, b := range buf {
		if i > 0 && i%2 == 0 {
			sb.WriteByte('-')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}

	return sb.String()
}

// Parse reconstructs an Id from its text form. It rejects anything that
// isn't exactly four 4-hex-digit groups joined by three dashes, and rejects
// the zero value.
func Parse(s string) (Id, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid id format: %q", s)
	}

	var buf [8]byte

	for i, part := range parts {
		if len(part) != 4 {
			return 0, fmt.Errorf("invalid id format: %q", s)
		}

		v, err := strconv.ParseUint(part, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid id format: %q: %w", s, err)
		}

		binary.BigEndian.PutUint16(buf[i*2:], uint16(v))
	}

	val := binary.BigEndian.Uint64(buf[:])
	if val == 0 {
		return 0, fmt.Errorf("invalid id format: %q: id must be non-zero", s)
	}

	return Id(val), nil
}

// MarshalText implements encoding.TextMarshaler so an Id round-trips through
// JSON/YAML as its dashed text form rather than a bare integer.
func (id Id) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Id) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
