package nodestate

import "flexraysim/types"

// NodeState tracks one node's POC/transceiver state (spec.md §3).
type NodeState struct {
	NodeIdent types.NodeIdent
	PocState  types.PocState
	TcvrState types.TcvrState
}

// PushCommand applies a POC command and re-derives the transceiver
// state (spec.md §4.2's "after any POC transition" rule).
func (n *NodeState) PushCommand(cmd types.PocCommand) {
	n.PocState = ApplyCommand(n.PocState, cmd)
	n.TcvrState = DeriveTcvr(n.PocState, n.TcvrState)
}

// SetPower implements spec.md §4.2's set_node_power: powering off
// always forces NoPower/DefaultConfig; powering on from NoPower
// re-enters at NoConnection/DefaultConfig; any other power-on is a
// no-op.
func (n *NodeState) SetPower(on bool) {
	if !on {
		n.TcvrState = types.TcvrNoPower
		n.PocState = types.PocDefaultConfig
		return
	}
	if n.TcvrState == types.TcvrNoPower {
		n.TcvrState = types.TcvrNoConnection
		n.PocState = types.PocDefaultConfig
	}
}

// BusState is the set of NodeStates on one bus, keyed by (ecu_id,
// cc_id) — spec.md §3: "disjoint from NodeIdent.swc_id". Virtual
// coldstart nodes are tracked separately: they are always held at
// FrameSync and never transition through the POC machine.
type BusState struct {
	nodes []*NodeState
	vcs   int // count of registered virtual-coldstart nodes
}

func (b *BusState) find(key types.NodeIdent) *NodeState {
	for _, n := range b.nodes {
		if n.NodeIdent == key {
			return n
		}
	}
	return nil
}

// RegisterNode looks up (or creates, applying pwrOn/pwrOff) the
// NodeState for ident.BusKey() (spec.md §4.3's register_node_state).
func (b *BusState) RegisterNode(ident types.NodeIdent, pwrOn, pwrOff bool) *NodeState {
	key := ident.BusKey()
	n := b.find(key)
	if n == nil {
		n = &NodeState{NodeIdent: key, PocState: types.PocDefaultConfig, TcvrState: types.TcvrNoPower}
		b.nodes = append(b.nodes, n)
	}
	if pwrOn {
		n.SetPower(true)
	}
	if pwrOff {
		n.SetPower(false)
	}
	return n
}

// RegisterVCS registers one virtual-coldstart node (spec.md §4.2,
// §4.3's register_vcs_node_state): these are counted by
// CalculateBusCondition but never transition through the POC machine.
func (b *BusState) RegisterVCS() {
	b.vcs++
}

// PushNodeState applies a POC command to the NodeState for ident
// (spec.md §4.3's push_node_state, driven by a Status PDU's
// channel[i].poc_command).
func (b *BusState) PushNodeState(ident types.NodeIdent, cmd types.PocCommand) {
	n := b.RegisterNode(ident, false, false)
	n.PushCommand(cmd)
}

// Nodes returns the registered (non-virtual-coldstart) node states.
func (b *BusState) Nodes() []*NodeState { return b.nodes }

// CalculateBusCondition implements spec.md §4.2's bus_condition
// aggregate: count nodes (including virtual-coldstart ones, which are
// always held at FrameSync) whose tcvr_state == FrameSync, then apply
// the demotion side effect when that count is exactly 1. The loop
// below starts at index 0 over every registered node — spec.md §9's
// Open Question #1 calls out loops in both of the source's copies of
// this routine whose index variable was never initialised; this
// implementation has exactly one copy and counts every node.
func (b *BusState) CalculateBusCondition() types.BusCondition {
	count := b.vcs
	for i := 0; i < len(b.nodes); i++ {
		if b.nodes[i].TcvrState == types.TcvrFrameSync {
			count++
		}
	}

	var condition types.BusCondition
	switch {
	case count == 0:
		condition = types.TcvrNoSignal
	case count == 1:
		condition = types.TcvrFrameError
		for i := 0; i < len(b.nodes); i++ {
			if b.nodes[i].PocState == types.PocNormalActive {
				b.nodes[i].PocState = types.PocNormalPassive
				b.nodes[i].TcvrState = DeriveTcvr(b.nodes[i].PocState, b.nodes[i].TcvrState)
			}
		}
	default:
		condition = types.TcvrFrameSync
	}
	return condition
}
