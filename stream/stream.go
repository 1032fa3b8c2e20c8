// Package stream provides the seekable byte-stream abstraction the PDU
// codec reads and writes through (spec.md §1 C1, "out of scope... a
// buffer with read/write/seek/tell/eof/close"). Buffer is the in-memory
// growable implementation every test and the CLI demo use; Serial is an
// optional real-UART-backed implementation.
//
// Grounded on the teacher's x/shmring span API (WriteAcquire/ReadAcquire
// style spans), generalised here from a fixed-capacity SPSC ring to a
// growable, seekable byte slice: the codec needs seek-to-0 and truncate
// semantics a ring buffer cannot give.
package stream

import "flexraysim/errcode"

// SeekOp selects the reference point for Seek (spec.md §4.3:
// "op ∈ {Set, Cur, End, Reset}").
type SeekOp uint8

const (
	SeekSet SeekOp = iota
	SeekCur
	SeekEnd
	SeekReset
)

// Stream is the codec's byte-stream collaborator (spec.md §1 C1).
type Stream interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Seek(pos int64, op SeekOp) (int64, error)
	Tell() int64
	Len() int64
	Truncate() error
	Close() error
}

// Buffer is a growable, seekable in-memory Stream (the default
// implementation every codec uses unless a Serial stream is supplied).
type Buffer struct {
	buf []byte
	pos int64
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Read copies from the buffer at the current position, advancing it.
// It returns io.EOF-shaped (0, nil) at end of buffer per this package's
// own convention — callers distinguish exhaustion by comparing n to
// len(p) or Tell to Len, matching how ncodec drives reads.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.buf)) {
		return 0, nil
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Write appends p at the current position, growing the buffer and
// overwriting in place when the position is before the end (spec.md
// §4.3's "flush... safe to call repeatedly (appends)").
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.buf)) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

// Seek repositions the cursor per op, clamping pos to [0, Len()]
// (spec.md §4.3). SeekReset forces both length and position to 0.
func (b *Buffer) Seek(pos int64, op SeekOp) (int64, error) {
	if op == SeekReset {
		b.buf = b.buf[:0]
		b.pos = 0
		return 0, nil
	}

	var target int64
	switch op {
	case SeekSet:
		target = pos
	case SeekCur:
		target = b.pos + pos
	case SeekEnd:
		target = int64(len(b.buf)) + pos
	default:
		return 0, &errcode.E{Op: "Seek", C: errcode.InvalidArg, Msg: "unknown seek op"}
	}

	if target < 0 {
		target = 0
	}
	if target > int64(len(b.buf)) {
		target = int64(len(b.buf))
	}
	b.pos = target
	return b.pos, nil
}

// Tell returns the current cursor position.
func (b *Buffer) Tell() int64 { return b.pos }

// Len returns the total buffered length.
func (b *Buffer) Len() int64 { return int64(len(b.buf)) }

// Truncate drops all buffered content and resets the cursor to 0
// (spec.md §4.3: "drop buffered stream content and reset position to
// 0"). Testable Property 10 requires truncate;flush to leave length 0.
func (b *Buffer) Truncate() error {
	b.buf = b.buf[:0]
	b.pos = 0
	return nil
}

// Close releases the buffer's backing storage.
func (b *Buffer) Close() error {
	b.buf = nil
	b.pos = 0
	return nil
}
