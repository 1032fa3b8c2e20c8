// Package busmodel implements the FlexRay bus-model glue (spec.md
// §4.3 C7): dispatch inbound PDUs to the engine/node-state machine,
// and produce the outbound Status/Lpdu PDUs for one simulation step.
//
// Grounded on the teacher's services/hal/internal/core/loop.go (a
// switch-based dispatch loop over one inbound message at a time) and
// services/hal/internal/core/replies.go's reply-helper pattern: this
// package has an analogous "always produce exactly one Status PDU,
// then zero or more Lpdu PDUs" helper in Progress.
package busmodel

import (
	"flexraysim/engine"
	"flexraysim/errcode"
	"flexraysim/nodestate"
	"flexraysim/pdu"
	"flexraysim/types"
)

// Logf is an injected logging sink, defaulted to a no-op (spec.md §9's
// redesign note: "keep the core free of process-wide mutable state;
// logging is an injected sink").
type Logf func(format string, args ...any)

func noopLogf(string, ...any) {}

// Model is the bus model for one simulated FlexRay cluster: one
// BusState and one Engine, as spec.md §3's Ownership note requires.
type Model struct {
	NodeIdent   types.NodeIdent
	SimStepSize float64

	bus  nodestate.BusState
	eng  *engine.Engine
	Logf Logf
}

// New returns a bus model for the local node identity. simStepSize is
// the default step size in seconds used by Progress.
func New(nodeIdent types.NodeIdent, simStepSize float64) *Model {
	return &Model{
		NodeIdent:   nodeIdent,
		SimStepSize: simStepSize,
		eng:         engine.NewEngine(nodeIdent),
		Logf:        noopLogf,
	}
}

func (m *Model) log(format string, args ...any) {
	if m.Logf != nil {
		m.Logf(format, args...)
	}
}

// Consume dispatches one inbound Pdu by metadata type (spec.md §4.3's
// "Bus-model consume(pdu)"). Non-FlexRay transports and unrecognized
// metadata types are logged and ignored: the bus model never panics
// on missing slots or unknown metadata types (spec.md §7).
func (m *Model) Consume(p *pdu.Pdu) {
	if p == nil || p.Transport.Type != types.TransportFlexray || p.Transport.FlexRay == nil {
		m.log("busmodel: ignoring non-flexray pdu id=%d", p.ID)
		return
	}
	fr := p.Transport.FlexRay

	switch fr.Metadata.Type {
	case types.MetaConfig:
		m.consumeConfig(fr)
	case types.MetaStatus:
		m.consumeStatus(fr)
	case types.MetaLpdu:
		m.consumeLpdu(p, fr)
	default:
		m.log("busmodel: unknown metadata_type %d", fr.Metadata.Type)
	}
}

func (m *Model) consumeConfig(fr *pdu.FlexRayTransport) {
	cfg := fr.Metadata.Config
	if cfg == nil {
		return
	}
	// "force pdu.config.node_ident <- pdu.node_ident" (spec.md §4.3).
	nodeIdent := fr.NodeIdent
	if err := m.eng.ProcessConfig(cfg.CcConfig, nodeIdent, cfg.FrameConfig); err != nil {
		m.log("busmodel: process_config failed: %v", err)
		return
	}
	for i := uint32(0); i < cfg.VcnCount; i++ {
		m.bus.RegisterVCS()
	}
	m.bus.RegisterNode(nodeIdent, true, false)
}

func (m *Model) consumeStatus(fr *pdu.FlexRayTransport) {
	// Channel B is carried but never evaluated (spec.md §1 Non-goals).
	m.bus.PushNodeState(fr.NodeIdent, fr.Metadata.Status.Channel[0].PocCommand)
}

// SetNodePower implements spec.md §4.2's set_node_power for a node
// already known to this bus model, e.g. to simulate an ignition or
// power-rail event mid-simulation. Unlike Consume, there is no PDU
// carrying this: it is a direct side channel a harness or CLI uses to
// drive the scenario, not something a FlexRay node itself transmits.
func (m *Model) SetNodePower(nodeIdent types.NodeIdent, on bool) {
	m.bus.RegisterNode(nodeIdent, on, !on)
}

func (m *Model) consumeLpdu(p *pdu.Pdu, fr *pdu.FlexRayTransport) {
	lp := fr.Metadata.Lpdu
	if lp == nil {
		return
	}
	if err := m.eng.SetPayload(fr.NodeIdent.NodeID(), uint16(p.ID), lp.Status, p.Payload); err != nil {
		m.log("busmodel: set_payload failed: %v", err)
	}
}

// Progress runs one simulation step (spec.md §4.3's "Bus-model
// progress()"): recompute bus condition, spend the engine's budget
// while in FrameSync, then emit the local Status PDU followed by one
// Lpdu PDU per engine inform-list entry, in insertion order.
func (m *Model) Progress() []*pdu.Pdu {
	condition := m.bus.CalculateBusCondition()

	if condition == types.TcvrFrameSync {
		if err := m.eng.CalculateBudget(m.SimStepSize); err == nil {
			for m.eng.ConsumeSlot() == errcode.OK {
			}
		}
	}

	local := m.bus.RegisterNode(m.NodeIdent, false, false)
	out := make([]*pdu.Pdu, 0, 1+len(m.eng.InformList()))
	out = append(out, m.statusPdu(local))

	for _, lp := range m.eng.InformList() {
		out = append(out, m.lpduPdu(lp))
	}
	return out
}

func (m *Model) statusPdu(local *nodestate.NodeState) *pdu.Pdu {
	return &pdu.Pdu{
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: m.NodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaStatus,
					Status: &pdu.StatusMetadata{
						Channel: [2]pdu.ChannelStatus{
							{
								PocState:  local.PocState,
								TcvrState: local.TcvrState,
								Cycle:     m.eng.Pos.PosCycle,
								Macrotick: m.eng.Pos.PosMT,
							},
						},
					},
				},
			},
		},
	}
}

func (m *Model) lpduPdu(lp *engine.Lpdu) *pdu.Pdu {
	return &pdu.Pdu{
		ID:      uint32(lp.Config.SlotID),
		Payload: append([]byte(nil), lp.Payload...),
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: lp.NodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaLpdu,
					Lpdu: &pdu.LpduMetadata{
						FrameConfigIndex: lp.Config.Index.FrameTable,
						Status:           lp.Config.Status,
					},
				},
			},
		},
	}
}
