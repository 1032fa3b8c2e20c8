package pdu

import (
	"flexraysim/types"
)

// TLV tags for the frame body. Kept as a single flat byte-oriented
// encoding (spec.md §6: "byte-exact layout is delegated to the
// underlying schema but must be stable across read/write round-trips
// within one implementation") — there is exactly one implementation
// here, so the tag table below is that schema.
const (
	tagID            = 1
	tagPayload       = 2
	tagSwcID         = 3
	tagEcuID         = 4
	tagTransportType = 5
	tagCanID         = 6
	tagIPSrcPort     = 7
	tagIPDstPort     = 8
	tagSchemaID      = 9
	tagNodeIdent     = 10
	tagMetadataType  = 11
	tagCcConfig      = 12
	tagFrameConfig   = 13
	tagVcnCount      = 14
	tagStatusChan    = 15
	tagLpduIndex     = 16
	tagLpduStatus    = 17
)

type writer struct{ buf []byte }

func (w *writer) u8(tag byte, v uint8) {
	w.buf = append(w.buf, tag, 1, v)
}
func (w *writer) u16(tag byte, v uint16) {
	w.buf = append(w.buf, tag, 2, byte(v), byte(v>>8))
}
func (w *writer) u32(tag byte, v uint32) {
	w.buf = append(w.buf, tag, 4, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func (w *writer) bytes(tag byte, v []byte) {
	n := len(v)
	if n > 255 {
		n = 255
	}
	w.buf = append(w.buf, tag, byte(n))
	w.buf = append(w.buf, v[:n]...)
}

func encodeBody(p *Pdu) []byte {
	w := &writer{}
	w.u32(tagID, p.ID)
	w.bytes(tagPayload, clampPayload(p.Payload))
	w.u8(tagSwcID, p.SwcID)
	w.u8(tagEcuID, p.EcuID)
	w.u8(tagTransportType, uint8(p.Transport.Type))

	switch p.Transport.Type {
	case types.TransportCan:
		if p.Transport.Can != nil {
			w.u32(tagCanID, p.Transport.Can.CanID)
		}
	case types.TransportIP:
		if p.Transport.Ip != nil {
			w.u16(tagIPSrcPort, p.Transport.Ip.SrcPort)
			w.u16(tagIPDstPort, p.Transport.Ip.DstPort)
		}
	case types.TransportStruct:
		if p.Transport.Struct != nil {
			w.u32(tagSchemaID, p.Transport.Struct.SchemaID)
		}
	case types.TransportFlexray:
		fr := p.Transport.FlexRay
		if fr != nil {
			ni := make([]byte, 8)
			ni[0], ni[1] = byte(fr.NodeIdent.EcuID), byte(fr.NodeIdent.EcuID>>8)
			ni[2], ni[3] = byte(fr.NodeIdent.CcID), byte(fr.NodeIdent.CcID>>8)
			ni[4], ni[5], ni[6], ni[7] = byte(fr.NodeIdent.SwcID), byte(fr.NodeIdent.SwcID>>8), byte(fr.NodeIdent.SwcID>>16), byte(fr.NodeIdent.SwcID>>24)
			w.bytes(tagNodeIdent, ni)
			w.u8(tagMetadataType, uint8(fr.Metadata.Type))
			encodeMetadata(w, &fr.Metadata)
		}
	}
	return w.buf
}
