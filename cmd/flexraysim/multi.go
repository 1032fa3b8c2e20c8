package main

import (
	"fmt"
	"log"

	"flexraysim/medium"
	"flexraysim/ncodec"
	"flexraysim/pdu"
	"flexraysim/stream"
	"flexraysim/types"
)

// runMulti demos a three-node cold start (no virtual-coldstart nodes)
// over an in-process medium.Medium standing in for the socket
// transport spec.md §1 excludes: three simulated clients each publish
// their own Config/Status PDUs, one shared bus-model codec drains the
// medium and reports the resulting cluster-wide Status.
func runMulti() {
	m := medium.New()
	busConn := m.Connect("bus")
	nodeA := m.Connect("ecu-a")
	nodeB := m.Connect("ecu-b")
	nodeC := m.Connect("ecu-c")
	defer busConn.Disconnect()
	defer nodeA.Disconnect()
	defer nodeB.Disconnect()
	defer nodeC.Disconnect()

	identA := types.NodeIdent{EcuID: 1}
	identB := types.NodeIdent{EcuID: 2}
	identC := types.NodeIdent{EcuID: 3}

	codec, err := ncodec.Open("application/x-automotive-bus; interface=stream; type=pdu; schema=fbs; ecu_id=1; model=flexray")
	if err != nil {
		log.Fatalf("flexraysim: open: %v", err)
	}
	defer codec.Close()
	codec.Logf = func(format string, args ...any) { log.Printf(format, args...) }

	send := func(conn *medium.Connection, p *pdu.Pdu) {
		publishFrame(conn, p)
		drainMediumInto(busConn, codec)
	}

	send(nodeA, clusterConfigPdu(identA))
	// identB/identC join with a bit_rate-less Config: a pure
	// register-and-power-on, never touching the cluster configuration
	// identA already established.
	send(nodeB, minimalConfigPdu(identB))
	send(nodeC, minimalConfigPdu(identC))

	for _, n := range []struct {
		ident types.NodeIdent
		conn  *medium.Connection
	}{{identA, nodeA}, {identB, nodeB}, {identC, nodeC}} {
		send(n.conn, statusPdu(n.ident, types.CmdConfig))
		send(n.conn, statusPdu(n.ident, types.CmdReady))
		send(n.conn, statusPdu(n.ident, types.CmdRun))
	}

	if _, err := codec.Seek(0, stream.SeekSet); err != nil {
		log.Fatalf("flexraysim: seek: %v", err)
	}

	fmt.Println("-- three-node cold start --")
	for {
		p, err := codec.Read()
		if err != nil {
			break
		}
		printPdu(p)
	}
}

// clusterConfigPdu configures the shared cluster timing with no
// virtual-coldstart nodes: FrameSync here can only come from real
// nodes reaching NormalActive, which is the point of this demo.
func clusterConfigPdu(nodeIdent types.NodeIdent) *pdu.Pdu {
	return &pdu.Pdu{
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
					},
				},
			},
		},
	}
}

func minimalConfigPdu(nodeIdent types.NodeIdent) *pdu.Pdu {
	return &pdu.Pdu{
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata:  pdu.Metadata{Type: types.MetaConfig, Config: &pdu.ConfigMetadata{}},
			},
		},
	}
}

func publishFrame(conn *medium.Connection, p *pdu.Pdu) {
	buf := stream.NewBuffer()
	if _, err := pdu.Encode(buf, p); err != nil {
		log.Fatalf("flexraysim: encode: %v", err)
	}
	buf.Seek(0, stream.SeekSet)
	body := make([]byte, buf.Len())
	buf.Read(body)
	conn.Publish(body)
}

func drainMediumInto(conn *medium.Connection, codec *ncodec.Codec) {
	for {
		select {
		case f := <-conn.Receive():
			buf := stream.NewBuffer()
			buf.Write(f.Payload)
			buf.Seek(0, stream.SeekSet)
			p, err := pdu.Decode(buf)
			if err != nil {
				continue
			}
			if _, err := codec.Write(p); err != nil {
				log.Fatalf("flexraysim: write: %v", err)
			}
		default:
			return
		}
	}
}
