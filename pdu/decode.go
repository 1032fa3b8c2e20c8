package pdu

import "flexraysim/types"

// tlv is one decoded tag/value pair of a frame body.
type tlv struct {
	tag byte
	val []byte
}

func splitTLVs(body []byte) []tlv {
	var out []tlv
	i := 0
	for i+2 <= len(body) {
		tag := body[i]
		n := int(body[i+1])
		i += 2
		if i+n > len(body) {
			break
		}
		out = append(out, tlv{tag: tag, val: body[i : i+n]})
		i += n
	}
	return out
}

func u16At(v []byte) uint16 {
	if len(v) < 2 {
		return 0
	}
	return uint16(v[0]) | uint16(v[1])<<8
}

func decodeBody(body []byte) (*Pdu, error) {
	p := &Pdu{}
	items := splitTLVs(body)

	var frameConfigIdx []types.LpduConfig
	var statusChans []ChannelStatus
	var transportType types.TransportType
	var can *CanTransport
	var ip *IpTransport
	var strct *StructTransport
	var nodeIdent types.NodeIdent
	var metaType types.MetadataType
	var cfg *ConfigMetadata
	var vcnCount uint32
	var lpduIdx uint32
	var lpduStatus types.LpduStatus
	haveLpdu := false

	for _, it := range items {
		switch it.tag {
		case tagID:
			p.ID = getU32(it.val)
		case tagPayload:
			p.Payload = append([]byte(nil), it.val...)
		case tagSwcID:
			if len(it.val) > 0 {
				p.SwcID = it.val[0]
			}
		case tagEcuID:
			if len(it.val) > 0 {
				p.EcuID = it.val[0]
			}
		case tagTransportType:
			if len(it.val) > 0 {
				transportType = types.TransportType(it.val[0])
			}
		case tagCanID:
			can = &CanTransport{CanID: getU32(it.val)}
		case tagIPSrcPort:
			if ip == nil {
				ip = &IpTransport{}
			}
			ip.SrcPort = u16At(it.val)
		case tagIPDstPort:
			if ip == nil {
				ip = &IpTransport{}
			}
			ip.DstPort = u16At(it.val)
		case tagSchemaID:
			strct = &StructTransport{SchemaID: getU32(it.val)}
		case tagNodeIdent:
			if len(it.val) >= 8 {
				nodeIdent.EcuID = uint16(it.val[0]) | uint16(it.val[1])<<8
				nodeIdent.CcID = uint16(it.val[2]) | uint16(it.val[3])<<8
				nodeIdent.SwcID = getU32(it.val[4:8])
			}
		case tagMetadataType:
			if len(it.val) > 0 {
				metaType = types.MetadataType(it.val[0])
			}
		case tagCcConfig:
			if cfg == nil {
				cfg = &ConfigMetadata{}
			}
			cfg.CcConfig = decodeCcConfig(it.val)
		case tagVcnCount:
			vcnCount = getU32(it.val)
		case tagFrameConfig:
			frameConfigIdx = append(frameConfigIdx, decodeLpduConfig(it.val))
		case tagStatusChan:
			statusChans = append(statusChans, decodeChannelStatus(it.val))
		case tagLpduIndex:
			lpduIdx = getU32(it.val)
			haveLpdu = true
		case tagLpduStatus:
			if len(it.val) > 0 {
				lpduStatus = types.LpduStatus(it.val[0])
			}
			haveLpdu = true
		}
	}

	p.Transport.Type = transportType
	switch transportType {
	case types.TransportCan:
		p.Transport.Can = can
	case types.TransportIP:
		p.Transport.Ip = ip
	case types.TransportStruct:
		p.Transport.Struct = strct
	case types.TransportFlexray:
		fr := &FlexRayTransport{NodeIdent: nodeIdent}
		fr.Metadata.Type = metaType
		switch metaType {
		case types.MetaConfig:
			if cfg == nil {
				cfg = &ConfigMetadata{}
			}
			cfg.FrameConfig = frameConfigIdx
			cfg.VcnCount = vcnCount
			fr.Metadata.Config = cfg
		case types.MetaStatus:
			st := &StatusMetadata{}
			for i := 0; i < len(statusChans) && i < 2; i++ {
				st.Channel[i] = statusChans[i]
			}
			fr.Metadata.Status = st
		case types.MetaLpdu:
			if haveLpdu {
				fr.Metadata.Lpdu = &LpduMetadata{FrameConfigIndex: lpduIdx, Status: lpduStatus}
			}
		}
		p.Transport.FlexRay = fr
	}
	return p, nil
}
