package pdu

import "flexraysim/types"

func clampPayload(p []byte) []byte {
	if len(p) > maxPayloadLen {
		return p[:maxPayloadLen]
	}
	return p
}

// encodeMetadata appends the Config/Status/Lpdu variant body for fr's
// metadata, tagged by the fr.Metadata.Type already written by the
// caller.
func encodeMetadata(w *writer, m *Metadata) {
	switch m.Type {
	case types.MetaConfig:
		if m.Config != nil {
			w.bytes(tagCcConfig, encodeCcConfig(m.Config.CcConfig))
			w.u32(tagVcnCount, m.Config.VcnCount)
			for _, lc := range m.Config.FrameConfig {
				w.bytes(tagFrameConfig, encodeLpduConfig(lc))
			}
		}
	case types.MetaStatus:
		if m.Status != nil {
			for _, ch := range m.Status.Channel {
				w.bytes(tagStatusChan, encodeChannelStatus(ch))
			}
		}
	case types.MetaLpdu:
		if m.Lpdu != nil {
			w.u32(tagLpduIndex, m.Lpdu.FrameConfigIndex)
			w.u8(tagLpduStatus, uint8(m.Lpdu.Status))
		}
	}
}

func encodeCcConfig(c types.CcConfig) []byte {
	b := make([]byte, 33)
	b[0] = uint8(c.BitRate)
	putU32(b[1:5], c.MicrotickPerCycle)
	putU32(b[5:9], c.MacrotickPerCycle)
	putU32(b[9:13], c.StaticSlotLengthMT)
	putU32(b[13:17], c.StaticSlotCount)
	putU32(b[17:21], c.MinislotLengthMT)
	putU32(b[21:25], c.MinislotCount)
	putU32(b[25:29], c.StaticSlotPayloadLen)
	putU32(b[29:33], c.NetworkIdleStart)
	return b
}

func decodeCcConfig(b []byte) types.CcConfig {
	var c types.CcConfig
	if len(b) < 33 {
		return c
	}
	c.BitRate = types.BitRate(b[0])
	c.MicrotickPerCycle = getU32(b[1:5])
	c.MacrotickPerCycle = getU32(b[5:9])
	c.StaticSlotLengthMT = getU32(b[9:13])
	c.StaticSlotCount = getU32(b[13:17])
	c.MinislotLengthMT = getU32(b[17:21])
	c.MinislotCount = getU32(b[21:25])
	c.StaticSlotPayloadLen = getU32(b[25:29])
	c.NetworkIdleStart = getU32(b[29:33])
	return c
}

func encodeLpduConfig(lc types.LpduConfig) []byte {
	b := make([]byte, 17)
	b[0], b[1] = byte(lc.SlotID), byte(lc.SlotID>>8)
	b[2] = lc.PayloadLength
	b[3] = lc.CycleRepetition
	b[4] = lc.BaseCycle
	b[5] = uint8(lc.Direction)
	b[6] = uint8(lc.Channel)
	b[7] = uint8(lc.TransmitMode)
	b[8] = uint8(lc.Status)
	putU32(b[9:13], lc.Index.FrameTable)
	putU32(b[13:17], lc.Index.LpduTable)
	return b
}

func decodeLpduConfig(b []byte) types.LpduConfig {
	var lc types.LpduConfig
	if len(b) < 17 {
		return lc
	}
	lc.SlotID = uint16(b[0]) | uint16(b[1])<<8
	lc.PayloadLength = b[2]
	lc.CycleRepetition = b[3]
	lc.BaseCycle = b[4]
	lc.Direction = types.Direction(b[5])
	lc.Channel = types.Channel(b[6])
	lc.TransmitMode = types.TransmitMode(b[7])
	lc.Status = types.LpduStatus(b[8])
	lc.Index.FrameTable = getU32(b[9:13])
	lc.Index.LpduTable = getU32(b[13:17])
	return lc
}

func encodeChannelStatus(ch ChannelStatus) []byte {
	b := make([]byte, 8)
	b[0] = uint8(ch.PocCommand)
	b[1] = uint8(ch.PocState)
	b[2] = uint8(ch.TcvrState)
	b[3] = ch.Cycle
	putU32(b[4:8], ch.Macrotick)
	return b
}

func decodeChannelStatus(b []byte) ChannelStatus {
	var ch ChannelStatus
	if len(b) < 8 {
		return ch
	}
	ch.PocCommand = types.PocCommand(b[0])
	ch.PocState = types.PocState(b[1])
	ch.TcvrState = types.TcvrState(b[2])
	ch.Cycle = b[3]
	ch.Macrotick = getU32(b[4:8])
	return ch
}
