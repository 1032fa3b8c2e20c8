package stream

import (
	"time"

	"go.bug.st/serial"
)

// Serial is an optional real-UART-backed Stream: a SIL node can be
// driven over an actual serial link instead of the in-memory Buffer.
// This is still not "transport over sockets" (spec.md §1's explicit
// Non-goal) — it is a byte-stream collaborator swap, the same role
// Buffer fills, just backed by a physical port.
//
// Grounded on the teacher's internal/ecu/speeduino.go Connect/Close
// shape: open with an explicit serial.Mode, set a read timeout, track
// position locally since a serial port has no native Seek.
type Serial struct {
	port serial.Port
	pos  int64
	len  int64
}

// OpenSerial opens portPath at baudRate with 8N1 framing and a 500ms
// read timeout, matching the teacher's speeduino.Connect default.
func OpenSerial(portPath string, baudRate int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
		port.Close()
		return nil, err
	}
	return &Serial{port: port}, nil
}

func (s *Serial) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *Serial) Write(p []byte) (int, error) {
	n, err := s.port.Write(p)
	s.pos += int64(n)
	if s.pos > s.len {
		s.len = s.pos
	}
	return n, err
}

// Seek is a position-tracking no-op: a serial port has no addressable
// backing store to reposition within, so only SeekReset has any
// physical effect (it forgets the local length/position bookkeeping).
func (s *Serial) Seek(pos int64, op SeekOp) (int64, error) {
	switch op {
	case SeekReset:
		s.pos, s.len = 0, 0
	case SeekSet:
		s.pos = pos
	case SeekCur:
		s.pos += pos
	case SeekEnd:
		s.pos = s.len + pos
	}
	return s.pos, nil
}

func (s *Serial) Tell() int64 { return s.pos }
func (s *Serial) Len() int64  { return s.len }

// Truncate resets the local position/length bookkeeping; it cannot
// discard bytes already on the wire.
func (s *Serial) Truncate() error {
	s.pos, s.len = 0, 0
	return nil
}

func (s *Serial) Close() error { return s.port.Close() }
