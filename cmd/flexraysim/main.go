// cmd/flexraysim runs a small fixed demo against the bus model: open a
// codec bound to the "flexray" bus model, drive one node through
// DefaultConfig -> NormalActive (spec.md §8 scenario S1), register one
// static-slot Tx/Rx pair (scenario S2), and print every PDU the model
// produces over a handful of simulation steps.
//
// Grounded on the teacher's cmd/boardtest and cmd/uart-test's shape
// (parse flags, construct the core objects, run a fixed loop, print
// results) — those drive physical board hardware this domain has no
// analogue of, so this demo drives ncodec.Codec instead.
package main

import (
	"flag"
	"fmt"
	"log"

	"flexraysim/ncodec"
	"flexraysim/pdu"
	"flexraysim/scenario"
	"flexraysim/stream"
	"flexraysim/types"
)

func main() {
	var (
		steps        = flag.Int("steps", 4, "number of simulation steps to run")
		stepSize     = flag.Float64("step-size", 1.0, "simulation step size in seconds")
		open         = flag.String("open", "application/x-automotive-bus; interface=stream; type=pdu; schema=fbs; ecu_id=1; cc_id=1; vcn=2; model=flexray", "codec open string")
		scenarioPath = flag.String("scenario", "", "run a YAML scenario fixture (see scenario/testdata) instead of the built-in demo")
		multi        = flag.Bool("multi", false, "run the three-node cold-start demo over an in-process medium instead of the single-node demo")
		serialPort   = flag.String("serial", "", "drive the codec over a real serial port instead of the in-memory buffer (e.g. /dev/ttyUSB0)")
		baudRate     = flag.Int("baud", 115200, "baud rate used when -serial is set")
	)
	flag.Parse()

	if *scenarioPath != "" {
		runScenario(*scenarioPath)
		return
	}
	if *multi {
		runMulti()
		return
	}

	var (
		codec *ncodec.Codec
		err   error
	)
	if *serialPort != "" {
		s, serr := stream.OpenSerial(*serialPort, *baudRate)
		if serr != nil {
			log.Fatalf("flexraysim: open serial %s: %v", *serialPort, serr)
		}
		codec, err = ncodec.OpenOnStream(*open, s)
	} else {
		codec, err = ncodec.Open(*open)
	}
	if err != nil {
		log.Fatalf("flexraysim: open: %v", err)
	}
	defer codec.Close()
	codec.Logf = func(format string, args ...any) { log.Printf(format, args...) }

	nodeIdent := types.NodeIdent{EcuID: uint16(codec.EcuID), CcID: uint16(codec.CcID)}

	write(codec, configPdu(nodeIdent))
	write(codec, statusPdu(nodeIdent, types.CmdConfig))
	write(codec, statusPdu(nodeIdent, types.CmdReady))
	write(codec, statusPdu(nodeIdent, types.CmdRun))
	write(codec, lpduPdu(nodeIdent, 7, 0, []byte("hello world")))
	if _, err := codec.Seek(0, stream.SeekSet); err != nil {
		log.Fatalf("flexraysim: seek: %v", err)
	}

	for step := 0; step < *steps; step++ {
		fmt.Printf("-- step %d --\n", step)
		runStep(codec, *stepSize)
	}
}

func runScenario(path string) {
	f, err := scenario.Load(path)
	if err != nil {
		log.Fatalf("flexraysim: load scenario: %v", err)
	}
	result, err := scenario.Run(f)
	if err != nil {
		log.Fatalf("flexraysim: run scenario: %v", err)
	}
	fmt.Printf("scenario: %s\n", f.Name)
	for i, step := range result.Steps {
		fmt.Printf("-- step %d --\n", i)
		for _, p := range step {
			printPdu(p)
		}
	}
}

func runStep(codec *ncodec.Codec, stepSize float64) {
	codec.SetSimStepSize(stepSize)
	for {
		p, err := codec.Read()
		if err != nil {
			break
		}
		printPdu(p)
	}
	if err := codec.Truncate(); err != nil {
		log.Fatalf("flexraysim: truncate: %v", err)
	}
}

func write(codec *ncodec.Codec, p *pdu.Pdu) {
	if _, err := codec.Write(p); err != nil {
		log.Fatalf("flexraysim: write: %v", err)
	}
}

func printPdu(p *pdu.Pdu) {
	fr := p.Transport.FlexRay
	if fr == nil {
		fmt.Printf("  pdu id=%d (non-flexray)\n", p.ID)
		return
	}
	switch fr.Metadata.Type {
	case types.MetaStatus:
		ch := fr.Metadata.Status.Channel[0]
		fmt.Printf("  status cycle=%d macrotick=%d poc=%d tcvr=%d\n", ch.Cycle, ch.Macrotick, ch.PocState, ch.TcvrState)
	case types.MetaLpdu:
		lm := fr.Metadata.Lpdu
		fmt.Printf("  lpdu slot=%d index=%d status=%d payload=%q\n", p.ID, lm.FrameConfigIndex, lm.Status, p.Payload)
	default:
		fmt.Printf("  pdu id=%d metadata_type=%d\n", p.ID, fr.Metadata.Type)
	}
}

func configPdu(nodeIdent types.NodeIdent) *pdu.Pdu {
	frames := []types.LpduConfig{
		{SlotID: 7, PayloadLength: 64, BaseCycle: 0, CycleRepetition: 1, Direction: types.DirTx, Index: types.LpduIndex{FrameTable: 0}},
		{SlotID: 7, PayloadLength: 64, BaseCycle: 0, CycleRepetition: 1, Direction: types.DirRx, Index: types.LpduIndex{FrameTable: 1}},
	}
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
						FrameConfig: frames,
						VcnCount:    2,
					},
				},
			},
		},
	}
}

func statusPdu(nodeIdent types.NodeIdent, cmd types.PocCommand) *pdu.Pdu {
	return &pdu.Pdu{
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata: pdu.Metadata{
					Type:   types.MetaStatus,
					Status: &pdu.StatusMetadata{Channel: [2]pdu.ChannelStatus{{PocCommand: cmd}}},
				},
			},
		},
	}
}

func lpduPdu(nodeIdent types.NodeIdent, slotID uint16, frameConfigIndex uint32, payload []byte) *pdu.Pdu {
	return &pdu.Pdu{
		ID:      uint32(slotID),
		Payload: payload,
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaLpdu,
					Lpdu: &pdu.LpduMetadata{FrameConfigIndex: frameConfigIndex, Status: types.NotTransmitted},
				},
			},
		},
	}
}
