// Package ncodec implements the codec instance (spec.md §4.3 C3): the
// framed read/write interface over a stream.Stream, binding a
// busmodel.Model and driving its Consume/Progress cycle from Read.
//
// Grounded on the teacher's services/hal/hal.go (NewHAL builds a
// fresh, independently-owned struct from explicit parameters, never
// by cloning one) and bus/bus.go's Connection (owns its own
// subscription/lifecycle state, never shares another connection's
// channel) — the companion codec here plays the same "owns its own
// stream, never shares" role.
package ncodec

import (
	"flexraysim/busmodel"
	"flexraysim/errcode"
	"flexraysim/mimeopen"
	"flexraysim/pdu"
	"flexraysim/stream"
	"flexraysim/types"
)

// Codec is one codec instance (spec.md §4.3): a stream, the TLV
// builder is simply pdu.Encode/Decode (stateless, so no separate
// builder struct is kept), parse/reader-stage flags, MIME
// identification fields, and a bound bus model plus its companion
// codec.
type Codec struct {
	BusID       uint8
	NodeID      uint8
	InterfaceID uint8
	SwcID       uint8
	EcuID       uint8
	CcID        uint8
	VcnCount    int

	stream stream.Stream
	model  *busmodel.Model

	// companion is the codec the bus model uses to emit outbound PDUs
	// on an independently owned stream (spec.md §3's Shared-resources
	// note: "the companion bus-model codec is owned by the first
	// instance").
	companion *Codec

	// Reader-stage flags (spec.md §4.3's reader state machine).
	ncodecConsumed bool
	modelProduced  bool
	modelConsumed  bool

	Logf busmodel.Logf
}

func noopLogf(string, ...any) {}

// Open parses openString (spec.md §6) and returns a fresh Codec bound
// to a new in-memory stream.Buffer. If the open string names a model
// (the "model" key), a busmodel.Model is instantiated and an
// independently constructed companion codec is attached.
func Open(openString string) (*Codec, error) {
	return OpenOnStream(openString, stream.NewBuffer())
}

// OpenOnStream is Open, but binds the codec to an already-constructed
// stream.Stream instead of allocating a fresh stream.Buffer — e.g. a
// stream.Serial, so a SIL node can be driven over a real UART link
// instead of the in-memory buffer (spec.md §1 C1's byte-stream
// abstraction is deliberately pluggable).
func OpenOnStream(openString string, s stream.Stream) (*Codec, error) {
	p, err := mimeopen.Parse(openString)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		BusID: p.BusID, NodeID: p.NodeID, InterfaceID: p.InterfaceID,
		SwcID: p.SwcID, EcuID: p.EcuID, CcID: p.CcID, VcnCount: p.VcnCount,
		stream: s,
		Logf:   noopLogf,
	}

	if p.Model != "" {
		nodeIdent := types.NodeIdent{EcuID: uint16(p.EcuID), CcID: uint16(p.CcID), SwcID: uint32(p.SwcID)}
		c.model = busmodel.New(nodeIdent, 0)
		c.companion = newCompanion(c)
		if !p.PowerOn {
			// pwr=off is only logged here: it does not change the node's
			// power state, and a Config PDU for the node still powers it
			// on.
			c.Logf("ncodec: opened %s with pwr=off", openString)
		}
	}
	return c, nil
}

// newCompanion builds the bus model's outbound codec: an explicit
// constructor that copies only the immutable MIME-derived
// identification fields and allocates an independently owned stream
// and parse state — never a shallow struct copy (spec.md §9's
// redesign note).
func newCompanion(owner *Codec) *Codec {
	return &Codec{
		BusID: owner.BusID, NodeID: owner.NodeID, InterfaceID: owner.InterfaceID,
		SwcID: owner.SwcID, EcuID: owner.EcuID, CcID: owner.CcID, VcnCount: owner.VcnCount,
		stream: stream.NewBuffer(),
		Logf:   owner.Logf,
	}
}

// SetSimStepSize sets the default simulation step size (seconds) the
// bound bus model uses on each Progress call. It is a no-op when no
// bus model is bound.
func (c *Codec) SetSimStepSize(seconds float64) {
	if c.model != nil {
		c.model.SimStepSize = seconds
	}
}

// Write serializes pdu into the stream via pdu.Encode (spec.md §4.3).
// It returns the number of payload bytes written, or fails NoStream
// when no stream is bound.
func (c *Codec) Write(p *pdu.Pdu) (int, error) {
	if c.stream == nil {
		return 0, &errcode.E{Op: "Write", C: errcode.NoStream}
	}
	return pdu.Encode(c.stream, p)
}

// Flush is a no-op beyond returning the current stream length:
// pdu.Encode already commits each frame directly to the stream, so
// "commit the builder's current frame" has nothing further to do here
// (spec.md §4.3: "safe to call repeatedly (appends)").
func (c *Codec) Flush() (int64, error) {
	if c.stream == nil {
		return 0, &errcode.E{Op: "Flush", C: errcode.NoStream}
	}
	return c.stream.Len(), nil
}

// Truncate drops buffered stream content, resets position to 0, and
// clears the reader-stage flags (spec.md §4.3: "must be called
// between the read phase and the write phase of a step"). The
// companion stream is truncated too: otherwise the next step's
// Progress output would be appended after, and replayed alongside,
// every PDU ever produced on a prior step.
func (c *Codec) Truncate() error {
	if c.stream == nil {
		return &errcode.E{Op: "Truncate", C: errcode.NoStream}
	}
	c.ncodecConsumed, c.modelProduced, c.modelConsumed = false, false, false
	if c.companion != nil {
		if err := c.companion.stream.Truncate(); err != nil {
			return err
		}
	}
	return c.stream.Truncate()
}

// Seek repositions the stream cursor (spec.md §4.3).
func (c *Codec) Seek(pos int64, op stream.SeekOp) (int64, error) {
	if c.stream == nil {
		return 0, &errcode.E{Op: "Seek", C: errcode.NoStream}
	}
	return c.stream.Seek(pos, op)
}

// Read implements spec.md §4.3's reader state machine: drain pending
// inbound PDUs through the bound bus model, run one Progress step once
// the stream is exhausted, then hand back the model's produced PDUs
// one at a time from the companion stream.
func (c *Codec) Read() (*pdu.Pdu, error) {
	if c.stream == nil {
		return nil, &errcode.E{Op: "Read", C: errcode.NoStream}
	}

	for !c.ncodecConsumed {
		p, err := pdu.Decode(c.stream)
		if err != nil {
			c.ncodecConsumed = true
			break
		}
		if c.model != nil {
			c.model.Consume(p)
		}
	}

	if c.model == nil {
		return nil, &errcode.E{Op: "Read", C: errcode.NoMessage}
	}

	if !c.modelProduced {
		for _, out := range c.model.Progress() {
			if _, err := pdu.Encode(c.companion.stream, out); err != nil {
				c.Logf("ncodec: failed to encode produced pdu: %v", err)
			}
		}
		c.companion.stream.Seek(0, stream.SeekSet)
		c.modelProduced = true
	}

	if !c.modelConsumed {
		p, err := pdu.Decode(c.companion.stream)
		if err == nil {
			return p, nil
		}
		c.modelConsumed = true
	}

	return nil, &errcode.E{Op: "Read", C: errcode.NoMessage}
}

// Close releases the stream, the bus model, and the companion codec.
func (c *Codec) Close() error {
	var err error
	if c.stream != nil {
		err = c.stream.Close()
		c.stream = nil
	}
	if c.companion != nil {
		c.companion.Close()
		c.companion = nil
	}
	c.model = nil
	return err
}
