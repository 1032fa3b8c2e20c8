package ncodec

import (
	"testing"

	"flexraysim/pdu"
	"flexraysim/stream"
	"flexraysim/types"
)

func TestOpenParsesIdentifiers(t *testing.T) {
	c, err := Open("application/x-automotive-bus; interface=stream; type=pdu; schema=fbs; ecu_id=5")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if c.EcuID != 5 {
		t.Fatalf("EcuID = %d, want 5", c.EcuID)
	}
	if c.model != nil {
		t.Fatal("model bound without a model= key")
	}
}

func TestWriteFlushReadWithoutModel(t *testing.T) {
	c, err := Open("application/x-automotive-bus; interface=stream; type=pdu; schema=fbs")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Write(&pdu.Pdu{ID: 1, Payload: []byte("hi")}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	// No model is bound, so Read should report NoMessage once the own
	// stream is drained, rather than hang.
	if _, err := c.Seek(0, stream.SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := c.Read(); err == nil {
		t.Fatal("expected NoMessage with no bound model")
	}
}

func TestReadDrivesBusModel(t *testing.T) {
	c, err := Open("application/x-automotive-bus; interface=stream; type=pdu; schema=fbs; ecu_id=1; model=flexray")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	nodeIdent := types.NodeIdent{EcuID: 1}
	cfgPdu := &pdu.Pdu{
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaConfig,
					Config: &pdu.ConfigMetadata{
						CcConfig: types.CcConfig{
							BitRate: types.BitRate10M, MicrotickPerCycle: 200000, MacrotickPerCycle: 3361,
							StaticSlotLengthMT: 55, StaticSlotCount: 38, MinislotLengthMT: 6,
							MinislotCount: 211, NetworkIdleStart: 3355,
						},
						VcnCount: 2,
					},
				},
			},
		},
	}
	if _, err := c.Write(cfgPdu); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := c.Seek(0, stream.SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	got, err := c.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Transport.Type != types.TransportFlexray || got.Transport.FlexRay.Metadata.Type != types.MetaStatus {
		t.Fatalf("expected a Status pdu, got %+v", got)
	}
}

// TestTruncateClearsCompanionStream confirms that a second
// write/read/truncate cycle against a model-bound codec does not
// replay PDUs produced on a prior step: Truncate must reset the
// companion (output) stream, not just the inbound one.
func TestTruncateClearsCompanionStream(t *testing.T) {
	c, err := Open("application/x-automotive-bus; interface=stream; type=pdu; schema=fbs; ecu_id=1; model=flexray")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	nodeIdent := types.NodeIdent{EcuID: 1}
	cfgPdu := &pdu.Pdu{
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaConfig,
					Config: &pdu.ConfigMetadata{
						CcConfig: types.CcConfig{
							BitRate: types.BitRate10M, MicrotickPerCycle: 200000, MacrotickPerCycle: 3361,
							StaticSlotLengthMT: 55, StaticSlotCount: 38, MinislotLengthMT: 6,
							MinislotCount: 211, NetworkIdleStart: 3355,
						},
						VcnCount: 2,
					},
				},
			},
		},
	}

	readAll := func() int {
		count := 0
		for {
			if _, err := c.Read(); err != nil {
				break
			}
			count++
		}
		return count
	}

	if _, err := c.Write(cfgPdu); err != nil {
		t.Fatalf("Write: %v", err)
	}
	c.Seek(0, stream.SeekSet)
	firstCount := readAll()
	if firstCount == 0 {
		t.Fatal("first step produced no PDUs")
	}
	if err := c.Truncate(); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	// Second step: no new inbound PDU, just another Progress cycle.
	c.Seek(0, stream.SeekSet)
	secondCount := readAll()
	if secondCount != firstCount {
		t.Fatalf("second step produced %d PDUs, want %d (got stale replay from prior step)", secondCount, firstCount)
	}
}

func TestTruncateResetsReaderStage(t *testing.T) {
	c, err := Open("application/x-automotive-bus; interface=stream; type=pdu; schema=fbs")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	c.Write(&pdu.Pdu{ID: 1})
	c.ncodecConsumed = true
	if err := c.Truncate(); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if c.ncodecConsumed {
		t.Fatal("Truncate did not reset ncodecConsumed")
	}
	n, _ := c.Flush()
	if n != 0 {
		t.Fatalf("length after truncate = %d, want 0", n)
	}
}
