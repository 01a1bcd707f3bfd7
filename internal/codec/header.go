// Package codec implements the on-disk world file format: a fixed 16-byte
// header followed by a versioned, length-prefixed body. Grounded on the
// original kartoffels store's header.rs — same magic, same big-endian
// version field, same single reserved padding byte — adapted from Rust's
// Read/Write traits to Go's io.Reader/io.Writer.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// CurrentVersion is the body format version this build writes and the
// highest version it will read.
const CurrentVersion uint32 = 1

var magic = [11]byte{'k', 'a', 'r', 't', 'o', 'f', 'f', 'e', 'l', 's', ':'}

// Header errors, per the spec's LoadError kinds.
var (
	ErrInvalidMagic       = errors.New("codec: invalid magic")
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
	ErrInvalidPadding     = errors.New("codec: invalid padding")
	ErrTruncated          = errors.New("codec: truncated file")
)

// Header is the fixed 16-byte prefix of every world file.
type Header struct {
	Version uint32
}

// DefaultHeader returns a header stamped with CurrentVersion.
func DefaultHeader() Header { return Header{Version: CurrentVersion} }

// ReadHeader reads and validates a 16-byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, ErrTruncated
		}
		return Header{}, fmt.Errorf("codec: read header: %w", err)
	}

	if [11]byte(buf[:11]) != magic {
		return Header{}, ErrInvalidMagic
	}

	version := binary.BigEndian.Uint32(buf[11:15])
	if version > CurrentVersion {
		return Header{}, ErrUnsupportedVersion
	}

	if buf[15] != 0 {
		return Header{}, ErrInvalidPadding
	}

	return Header{Version: version}, nil
}

// WriteHeader writes h's 16-byte encoding to w.
func WriteHeader(w io.Writer, h Header) error {
	var buf [16]byte
	copy(buf[:11], magic[:])
	binary.BigEndian.PutUint32(buf[11:15], h.Version)
	// buf[15] is the reserved padding byte, left zero.

	_, err := w.Write(buf[:])
	return err
}
