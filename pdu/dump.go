package pdu

import "flexraysim/x/conv"

// DumpFrame renders a single decoded Pdu as a one-line hex summary,
// in the teacher's own style (x/conv, never fmt). It allocates the
// returned string and its buffer. It is a debugging helper: the CLI
// does not call it.
func DumpFrame(p *Pdu) string {
	var hexBuf [8]byte
	buf := make([]byte, 0, 64)
	buf = append(buf, "id="...)
	buf = append(buf, conv.U32Hex(hexBuf[:], p.ID)...)
	buf = append(buf, " len="...)
	buf = append(buf, conv.U32Hex(hexBuf[:], uint32(len(p.Payload)))...)
	buf = append(buf, " transport="...)
	buf = append(buf, conv.U32Hex(hexBuf[:], uint32(p.Transport.Type))...)
	if fr := p.Transport.FlexRay; fr != nil {
		buf = append(buf, " meta="...)
		buf = append(buf, conv.U32Hex(hexBuf[:], uint32(fr.Metadata.Type))...)
		buf = append(buf, " node="...)
		buf = append(buf, conv.U32Hex(hexBuf[:], uint32(fr.NodeIdent.Key()>>32))...)
	}
	return string(buf)
}
