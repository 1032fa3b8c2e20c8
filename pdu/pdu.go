// Package pdu implements the FlexRay bus simulation wire PDU (spec.md
// §2 C2, §6): a self-delimited, length-prefixed frame carrying an
// NCodecPdu-shaped record, encoded/decoded over a stream.Stream.
//
// Grounded on the teacher's drivers/ltc4015/codec.go (small, explicit
// encode/decode helper functions with field-level clamping) and
// internal/ecu/speeduino.go's msEnvelope length-prefixed frame shape.
package pdu

import (
	"flexraysim/errcode"
	"flexraysim/stream"
	"flexraysim/types"
)

// Transport is the tagged transport union carried by a Pdu (spec.md
// §6, §9 redesign note "model as a sum/tagged variant... exhaustive
// match catches missing arms at compile time"). Exactly one of the
// pointer fields is populated, selected by Type; Encode/Decode switch
// exhaustively over Type rather than relying on which pointer is nil.
type Transport struct {
	Type    types.TransportType
	Can     *CanTransport
	Ip      *IpTransport
	Struct  *StructTransport
	FlexRay *FlexRayTransport
}

// CanTransport carries a raw CAN frame ID; payload bytes live on the
// enclosing Pdu.
type CanTransport struct {
	CanID uint32
}

// IpTransport carries a raw IP/UDP-style port pair; payload bytes live
// on the enclosing Pdu.
type IpTransport struct {
	SrcPort uint16
	DstPort uint16
}

// StructTransport carries an opaque struct-schema tag; payload bytes
// live on the enclosing Pdu.
type StructTransport struct {
	SchemaID uint32
}

// FlexRayTransport is this codec's primary transport (spec.md §4.3):
// node_ident plus a tagged metadata union.
type FlexRayTransport struct {
	NodeIdent types.NodeIdent
	Metadata  Metadata
}

// Metadata is the tagged metadata union nested inside a FlexRay
// transport (spec.md §4.3, §6). Exactly one of Config/Status/Lpdu is
// populated, selected by Type.
type Metadata struct {
	Type   types.MetadataType
	Config *ConfigMetadata
	Status *StatusMetadata
	Lpdu   *LpduMetadata
}

// ConfigMetadata carries a cluster configuration plus its frame table
// and the virtual-coldstart node count to register (spec.md §4.3's
// Config consume rule).
type ConfigMetadata struct {
	CcConfig    types.CcConfig
	FrameConfig []types.LpduConfig
	VcnCount    uint32
}

// StatusMetadata carries one channel's POC command (on write, toward
// the bus model) or derived POC/tcvr state (on read, from the bus
// model) — spec.md §4.3's Status consume/emit rules. Two channels are
// carried on the wire (channel B is never evaluated, spec.md §1); only
// channel[0] is acted on.
type StatusMetadata struct {
	Channel [2]ChannelStatus
}

// ChannelStatus is one channel slot of a StatusMetadata.
type ChannelStatus struct {
	PocCommand types.PocCommand
	PocState   types.PocState
	TcvrState  types.TcvrState
	Cycle      uint8
	Macrotick  uint32
}

// LpduMetadata carries one Lpdu transfer: spec.md §4.3's Lpdu consume
// rule reads {id=slot, payload, status} off the enclosing Pdu/Metadata;
// FrameConfigIndex round-trips the client's own frame-table index.
type LpduMetadata struct {
	FrameConfigIndex uint32
	Status           types.LpduStatus
}

// Pdu is one decoded wire record (spec.md §6's NCodecPdu): {id,
// payload, swc_id, ecu_id, transport_type, transport}.
type Pdu struct {
	ID        uint32
	Payload   []byte
	SwcID     uint8
	EcuID     uint8
	Transport Transport
}

const maxPayloadLen = 254

// Encode appends pdu's length-prefixed frame to w. It returns the
// number of payload bytes written, matching spec.md §4.3's write
// return value ("bytes of payload written").
func Encode(w stream.Stream, p *Pdu) (int, error) {
	body := encodeBody(p)
	var lenBuf [4]byte
	putU32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(body); err != nil {
		return 0, err
	}
	return len(clampPayload(p.Payload)), nil
}

// Decode reads one length-prefixed frame from r and returns the
// decoded Pdu. It returns errcode.NoMessage when r is exhausted
// (spec.md §4.3: "read exhausted").
func Decode(r stream.Stream) (*Pdu, error) {
	var lenBuf [4]byte
	n, err := r.Read(lenBuf[:])
	if err != nil {
		return nil, err
	}
	if n < 4 {
		return nil, &errcode.E{Op: "Decode", C: errcode.NoMessage, Msg: "short frame length"}
	}
	frameLen := getU32(lenBuf[:])
	body := make([]byte, frameLen)
	n, err = r.Read(body)
	if err != nil {
		return nil, err
	}
	if uint32(n) < frameLen {
		return nil, &errcode.E{Op: "Decode", C: errcode.NoMessage, Msg: "short frame body"}
	}
	return decodeBody(body)
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
