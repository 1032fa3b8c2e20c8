package pdu

import (
	"reflect"
	"testing"

	"flexraysim/stream"
	"flexraysim/types"
)

// roundTrip encodes p into a fresh buffer, seeks to 0, and decodes it
// back.
func roundTrip(t *testing.T, p *Pdu) *Pdu {
	t.Helper()
	buf := stream.NewBuffer()
	if _, err := Encode(buf, p); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := buf.Seek(0, stream.SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

// TestRoundTripNone covers Testable Property 9 for the None transport.
func TestRoundTripNone(t *testing.T) {
	p := &Pdu{ID: 7, Payload: []byte("x"), SwcID: 1, EcuID: 2}
	got := roundTrip(t, p)
	if got.ID != p.ID || string(got.Payload) != string(p.Payload) || got.SwcID != p.SwcID || got.EcuID != p.EcuID {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestRoundTripCan(t *testing.T) {
	p := &Pdu{ID: 1, Payload: []byte{1, 2, 3}}
	p.Transport = Transport{Type: types.TransportCan, Can: &CanTransport{CanID: 0x123}}
	got := roundTrip(t, p)
	if got.Transport.Type != types.TransportCan || got.Transport.Can == nil || got.Transport.Can.CanID != 0x123 {
		t.Fatalf("got %+v", got.Transport)
	}
}

func TestRoundTripIp(t *testing.T) {
	p := &Pdu{ID: 1}
	p.Transport = Transport{Type: types.TransportIP, Ip: &IpTransport{SrcPort: 80, DstPort: 8080}}
	got := roundTrip(t, p)
	if got.Transport.Ip == nil || got.Transport.Ip.SrcPort != 80 || got.Transport.Ip.DstPort != 8080 {
		t.Fatalf("got %+v", got.Transport.Ip)
	}
}

func TestRoundTripStruct(t *testing.T) {
	p := &Pdu{ID: 1}
	p.Transport = Transport{Type: types.TransportStruct, Struct: &StructTransport{SchemaID: 99}}
	got := roundTrip(t, p)
	if got.Transport.Struct == nil || got.Transport.Struct.SchemaID != 99 {
		t.Fatalf("got %+v", got.Transport.Struct)
	}
}

func TestRoundTripFlexRayConfig(t *testing.T) {
	ni := types.NodeIdent{EcuID: 1, CcID: 2, SwcID: 3}
	cfg := types.CcConfig{BitRate: types.BitRate10M, MicrotickPerCycle: 200000, MacrotickPerCycle: 3361}
	frames := []types.LpduConfig{
		{SlotID: 7, PayloadLength: 64, Direction: types.DirTx, Index: types.LpduIndex{FrameTable: 0}},
		{SlotID: 7, PayloadLength: 64, Direction: types.DirRx, Index: types.LpduIndex{FrameTable: 1}},
	}
	p := &Pdu{ID: 0}
	p.Transport = Transport{
		Type: types.TransportFlexray,
		FlexRay: &FlexRayTransport{
			NodeIdent: ni,
			Metadata: Metadata{
				Type:   types.MetaConfig,
				Config: &ConfigMetadata{CcConfig: cfg, FrameConfig: frames, VcnCount: 2},
			},
		},
	}

	got := roundTrip(t, p)
	fr := got.Transport.FlexRay
	if fr == nil || fr.NodeIdent != ni {
		t.Fatalf("node_ident mismatch: %+v", fr)
	}
	if fr.Metadata.Type != types.MetaConfig || fr.Metadata.Config == nil {
		t.Fatalf("metadata not Config: %+v", fr.Metadata)
	}
	if fr.Metadata.Config.CcConfig != cfg {
		t.Fatalf("cc_config mismatch: got %+v want %+v", fr.Metadata.Config.CcConfig, cfg)
	}
	if !reflect.DeepEqual(fr.Metadata.Config.FrameConfig, frames) {
		t.Fatalf("frame_config mismatch: got %+v want %+v", fr.Metadata.Config.FrameConfig, frames)
	}
	if fr.Metadata.Config.VcnCount != 2 {
		t.Fatalf("vcn_count = %d, want 2", fr.Metadata.Config.VcnCount)
	}
}

func TestRoundTripFlexRayStatus(t *testing.T) {
	p := &Pdu{ID: 0}
	p.Transport = Transport{
		Type: types.TransportFlexray,
		FlexRay: &FlexRayTransport{
			Metadata: Metadata{
				Type: types.MetaStatus,
				Status: &StatusMetadata{Channel: [2]ChannelStatus{
					{PocState: types.PocNormalActive, TcvrState: types.TcvrFrameSync, Cycle: 0, Macrotick: 330},
					{},
				}},
			},
		},
	}
	got := roundTrip(t, p)
	fr := got.Transport.FlexRay
	if fr.Metadata.Type != types.MetaStatus || fr.Metadata.Status == nil {
		t.Fatalf("metadata not Status: %+v", fr.Metadata)
	}
	ch0 := fr.Metadata.Status.Channel[0]
	if ch0.PocState != types.PocNormalActive || ch0.TcvrState != types.TcvrFrameSync || ch0.Macrotick != 330 {
		t.Fatalf("channel[0] mismatch: %+v", ch0)
	}
}

func TestRoundTripFlexRayLpdu(t *testing.T) {
	p := &Pdu{ID: 7, Payload: []byte("hello world")}
	p.Transport = Transport{
		Type: types.TransportFlexray,
		FlexRay: &FlexRayTransport{
			Metadata: Metadata{
				Type: types.MetaLpdu,
				Lpdu: &LpduMetadata{FrameConfigIndex: 0, Status: types.Transmitted},
			},
		},
	}
	got := roundTrip(t, p)
	fr := got.Transport.FlexRay
	if fr.Metadata.Type != types.MetaLpdu || fr.Metadata.Lpdu == nil {
		t.Fatalf("metadata not Lpdu: %+v", fr.Metadata)
	}
	if fr.Metadata.Lpdu.Status != types.Transmitted || string(got.Payload) != "hello world" {
		t.Fatalf("got status=%v payload=%q", fr.Metadata.Lpdu.Status, got.Payload)
	}
}

func TestPayloadTruncatedToMax(t *testing.T) {
	big := make([]byte, 300)
	for i := range big {
		big[i] = byte(i)
	}
	p := &Pdu{ID: 1, Payload: big}
	got := roundTrip(t, p)
	if len(got.Payload) != maxPayloadLen {
		t.Fatalf("payload len = %d, want %d", len(got.Payload), maxPayloadLen)
	}
}

func TestDumpFrameNoPanic(t *testing.T) {
	p := &Pdu{ID: 1, Payload: []byte{1, 2}}
	p.Transport = Transport{Type: types.TransportFlexray, FlexRay: &FlexRayTransport{Metadata: Metadata{Type: types.MetaNone}}}
	s := DumpFrame(p)
	if s == "" {
		t.Fatal("DumpFrame returned empty string")
	}
}
