// Package nodestate implements the FlexRay per-node Protocol Operation
// Control state machine, its transceiver-state derivation, and the
// bus-wide transceiver condition aggregate (spec.md §4.2, components
// C4 and C5). Grounded on the teacher's services/heartbeat state machine
// (services/heartbeat/heartbeat.go), which is the teacher's only other
// small closed-state-table FSM.
package nodestate

import "flexraysim/types"

// transition is one (state, command) -> state entry of the POC
// machine (spec.md §4.2). Pairs absent from the table are no-ops.
type transition struct {
	from types.PocState
	cmd  types.PocCommand
	to   types.PocState
}

var pocTable = []transition{
	{types.PocDefaultConfig, types.CmdConfig, types.PocConfig},
	{types.PocConfig, types.CmdReady, types.PocReady},
	{types.PocReady, types.CmdConfig, types.PocConfig},
	{types.PocReady, types.CmdRun, types.PocNormalActive},
	{types.PocNormalActive, types.CmdHalt, types.PocHalt},
	{types.PocNormalActive, types.CmdFreeze, types.PocFreeze},
	{types.PocHalt, types.CmdConfig, types.PocDefaultConfig},
}

// wildcardFrom lists the "--*-->" rows of spec.md §4.2: any
// command other than CmdNone/CmdNop drives these states directly to
// NormalActive.
var wildcardFrom = map[types.PocState]bool{
	types.PocWakeup:         true,
	types.PocStartup:        true,
	types.PocNormalPassive:  true,
}

// ApplyCommand runs one POC command against the current state and
// returns the resulting state (spec.md §4.2). Freeze and Undefined are
// absorbing: no command moves them.
func ApplyCommand(state types.PocState, cmd types.PocCommand) types.PocState {
	if state == types.PocFreeze || state == types.PocUndefined {
		return state
	}
	if wildcardFrom[state] && cmd != types.CmdNone && cmd != types.CmdNop {
		return types.PocNormalActive
	}
	for _, tr := range pocTable {
		if tr.from == state && tr.cmd == cmd {
			return tr.to
		}
	}
	return state
}

// pocToTcvr is spec.md §4.2's POC -> Tcvr derivation table.
var pocToTcvr = map[types.PocState]types.TcvrState{
	types.PocDefaultConfig: types.TcvrNoSignal,
	types.PocConfig:        types.TcvrNoSignal,
	types.PocReady:         types.TcvrFrameError,
	types.PocStartup:       types.TcvrFrameError,
	types.PocNormalPassive: types.TcvrFrameError,
	types.PocWakeup:        types.TcvrWUP,
	types.PocNormalActive:  types.TcvrFrameSync,
	types.PocHalt:          types.TcvrNoConnection,
	types.PocFreeze:        types.TcvrNoConnection,
	types.PocUndefined:     types.TcvrNoConnection,
}

// DeriveTcvr recomputes tcvr_state from poc_state, unless curTcvr is
// NoPower, in which case it is returned unchanged (power gates all
// activity, spec.md §4.2).
func DeriveTcvr(pocState types.PocState, curTcvr types.TcvrState) types.TcvrState {
	if curTcvr == types.TcvrNoPower {
		return curTcvr
	}
	if t, ok := pocToTcvr[pocState]; ok {
		return t
	}
	return curTcvr
}
