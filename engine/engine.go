// Package engine implements the FlexRay communication-cycle scheduler
// (spec.md §4.1, component C6): time budget accounting, slot walking
// through the static part, dynamic part and network-idle segment of a
// cycle, Tx/Rx Lpdu matching, and cycle rollover.
//
// Grounded on the teacher's services/hal/internal/core/loop.go (one
// unit of scheduled work consumed per call into the run loop) and
// services/hal/internal/core/poller.go's ordered scheduling, adapted
// from a priority heap to a sorted slot map since FlexRay's TDMA
// schedule is static, not priority-driven.
package engine

import (
	"flexraysim/errcode"
	"flexraysim/types"
	"flexraysim/x/mathx"
)

// Budget is the per-step time budget (spec.md §3). Microtick budget may
// accumulate across steps to absorb scheduling granularity.
type Budget struct {
	StepBudgetUT uint64
	StepBudgetMT uint64
}

// EnginePos is the engine's position within the current cycle (spec.md
// §3).
type EnginePos struct {
	PosMT    uint32 // 0..macrotick_per_cycle
	PosSlot  uint32 // 1-based
	PosCycle uint8  // 0..63, rolls mod 64
}

// Engine is the FlexRay communication-cycle scheduler for one node
// (spec.md §4.1). NodeIdent identifies "this" node — the one whose Rx
// Lpdus and locally-owned Tx Lpdus are reported via the inform list.
type Engine struct {
	NodeIdent types.NodeIdent

	Cfg  types.EngineConfig
	Pos  EnginePos
	Budg Budget

	// SimStepSize is the stored default step size (seconds), used by
	// CalculateBudget when called with stepSize <= 0.
	SimStepSize float64

	slots  slotMap
	inform []*Lpdu
}

// NewEngine returns a scheduler for the given local node identity. No
// configuration is applied yet; ProcessConfig must be called at least
// once before CalculateBudget/ConsumeSlot.
func NewEngine(nodeIdent types.NodeIdent) *Engine {
	return &Engine{NodeIdent: nodeIdent}
}

// InformList returns the Lpdus the bus model must publish back to its
// client at the end of the step. Valid only until the next
// CalculateBudget call, which clears it (spec.md §5).
func (e *Engine) InformList() []*Lpdu { return e.inform }

// mergeU32 applies spec.md §4.1's zero-sentinel merge rule to a single
// field: if the engine's current value is zero, accept incoming
// unconditionally; otherwise the incoming value must equal the current
// one. ok is false on conflict (cur is left untouched by the caller in
// that case — this function never mutates cur itself).
func mergeU32(cur, incoming uint32) (uint32, bool) {
	if cur == 0 {
		return incoming, true
	}
	if incoming != cur {
		return cur, false
	}
	return cur, true
}

func mergeBitRate(cur, incoming types.BitRate) (types.BitRate, bool) {
	if cur == types.BitRateNone {
		return incoming, true
	}
	if incoming != cur {
		return cur, false
	}
	return cur, true
}

// ProcessConfig merges cfg into the engine's accumulated configuration,
// derives the engine constants, and registers frameConfig's Lpdus into
// the slot map under nodeIdent (spec.md §4.1).
func (e *Engine) ProcessConfig(cfg types.CcConfig, nodeIdent types.NodeIdent, frameConfig []types.LpduConfig) error {
	// A Config message with no bit_rate set is a complete no-op: no
	// merge, no frame-table registration. This mirrors the original
	// source's `if (config->bit_rate == NCodecPduFlexrayBitrateNone)
	// return 0;` short-circuit, which runs before any other field is
	// even looked at (original_source engine.c's process_config).
	if cfg.BitRate == types.BitRateNone {
		return nil
	}
	if !cfg.BitRate.Valid() {
		return &errcode.E{Op: "ProcessConfig", C: errcode.InvalidArg, Msg: "bit_rate out of range"}
	}

	merged := e.Cfg.CcConfig
	ok := true
	var bad string

	apply := func(name string, cur *uint32, incoming uint32) {
		if !ok {
			return
		}
		v, fine := mergeU32(*cur, incoming)
		if !fine {
			ok, bad = false, name
			return
		}
		*cur = v
	}
	if br, fine := mergeBitRate(merged.BitRate, cfg.BitRate); !fine {
		ok, bad = false, "bit_rate"
	} else {
		merged.BitRate = br
	}
	apply("microtick_per_cycle", &merged.MicrotickPerCycle, cfg.MicrotickPerCycle)
	apply("macrotick_per_cycle", &merged.MacrotickPerCycle, cfg.MacrotickPerCycle)
	apply("static_slot_length_mt", &merged.StaticSlotLengthMT, cfg.StaticSlotLengthMT)
	apply("static_slot_count", &merged.StaticSlotCount, cfg.StaticSlotCount)
	apply("minislot_length_mt", &merged.MinislotLengthMT, cfg.MinislotLengthMT)
	apply("minislot_count", &merged.MinislotCount, cfg.MinislotCount)
	apply("static_slot_payload_length", &merged.StaticSlotPayloadLen, cfg.StaticSlotPayloadLen)
	apply("network_idle_start", &merged.NetworkIdleStart, cfg.NetworkIdleStart)

	if !ok {
		return &errcode.E{Op: "ProcessConfig", C: errcode.Conflict, Msg: "conflicting value for " + bad}
	}

	firstConfig := e.Cfg.MacrotickPerCycle == 0 && e.Pos.PosSlot == 0
	e.Cfg.CcConfig = merged
	e.deriveConstants()

	for _, lc := range frameConfig {
		entry := e.slots.findOrCreate(lc.SlotID)
		entry.lpdus = append(entry.lpdus, &Lpdu{NodeIdent: nodeIdent, Config: lc})
	}

	if firstConfig {
		e.Pos.PosSlot = 1
	}
	return nil
}

func (e *Engine) deriveConstants() {
	c := &e.Cfg
	if c.MacrotickPerCycle != 0 {
		c.Macro2Micro = c.MicrotickPerCycle / c.MacrotickPerCycle
	}
	c.MicrotickNS = c.BitRate.MicrotickNS()
	c.MacrotickNS = c.Macro2Micro * c.MicrotickNS
	if bitTime := c.BitRate.BitTimeNS(); bitTime != 0 {
		c.BitsPerMinislot = c.MinislotLengthMT * c.MacrotickNS / bitTime
	}
	c.OffsetStaticMT = 0
	c.OffsetDynamicMT = c.StaticSlotLengthMT * c.StaticSlotCount
	c.OffsetNetworkMT = c.NetworkIdleStart
}

// CalculateBudget adds one step's worth of budget and clears the
// inform list (spec.md §4.1).
func (e *Engine) CalculateBudget(stepSizeSeconds float64) error {
	if stepSizeSeconds <= 0 {
		stepSizeSeconds = e.SimStepSize
	}
	if stepSizeSeconds <= 0 {
		return &errcode.E{Op: "CalculateBudget", C: errcode.InvalidArg, Msg: "no step size"}
	}
	if e.Cfg.MicrotickNS == 0 || e.Cfg.Macro2Micro == 0 {
		return &errcode.E{Op: "CalculateBudget", C: errcode.InvalidArg, Msg: "engine not configured"}
	}
	e.SimStepSize = stepSizeSeconds
	addUT := uint64(stepSizeSeconds * 1e9 / float64(e.Cfg.MicrotickNS))
	e.Budg.StepBudgetUT += addUT
	e.Budg.StepBudgetMT = e.Budg.StepBudgetUT / uint64(e.Cfg.Macro2Micro)
	e.inform = e.inform[:0]
	return nil
}

func (e *Engine) isStaticPart() bool { return e.Pos.PosMT < e.Cfg.OffsetDynamicMT }

func cycleMatches(posCycle, rep, base uint8) bool {
	if rep == 0 {
		return false
	}
	return posCycle%rep == base
}

// ConsumeSlot advances the scheduler by exactly one static slot or one
// dynamic minislot group, or rolls the cycle over in the network-idle
// segment (spec.md §4.1). It returns errcode.OK when a slot/segment was
// consumed, or errcode.BudgetExhausted when the remaining step budget
// is insufficient and the caller should retry on the next step.
func (e *Engine) ConsumeSlot() errcode.Code {
	switch {
	case e.Pos.PosMT < e.Cfg.OffsetDynamicMT:
		return e.consumeStatic()
	case e.Pos.PosMT < e.Cfg.OffsetNetworkMT:
		return e.consumeDynamic()
	default:
		return e.consumeNetworkIdle()
	}
}

func (e *Engine) spend(needMT uint32) {
	needUT := uint64(needMT) * uint64(e.Cfg.Macro2Micro)
	e.Budg.StepBudgetUT -= needUT
	e.Budg.StepBudgetMT = e.Budg.StepBudgetUT / uint64(e.Cfg.Macro2Micro)
}

func (e *Engine) consumeStatic() errcode.Code {
	needMT := e.Cfg.StaticSlotLengthMT
	needUT := uint64(needMT) * uint64(e.Cfg.Macro2Micro)
	if needUT > e.Budg.StepBudgetUT {
		return errcode.BudgetExhausted
	}
	e.processSlot()
	e.spend(needMT)
	e.Pos.PosSlot++
	e.Pos.PosMT += needMT
	return errcode.OK
}

func (e *Engine) consumeDynamic() errcode.Code {
	entry := e.slots.find(uint16(e.Pos.PosSlot))
	pendingTx := e.findPendingDynamicTx(entry)

	var minislots uint32 = 1
	if pendingTx != nil {
		bits := uint32(40) + uint32(pendingTx.Config.PayloadLength)*8
		if e.Cfg.BitsPerMinislot != 0 {
			minislots = mathx.CeilDiv(bits, e.Cfg.BitsPerMinislot)
		}
	}

	needMT := minislots * e.Cfg.MinislotLengthMT
	needUT := uint64(needMT) * uint64(e.Cfg.Macro2Micro)
	if needUT > e.Budg.StepBudgetUT {
		return errcode.BudgetExhausted
	}
	if pendingTx != nil {
		e.processSlot()
	}
	e.spend(needMT)
	e.Pos.PosSlot++
	e.Pos.PosMT += needMT
	return errcode.OK
}

func (e *Engine) findPendingDynamicTx(entry *slotEntry) *Lpdu {
	if entry == nil {
		return nil
	}
	for _, l := range entry.lpdus {
		if l.Config.Direction == types.DirTx && l.Config.Status == types.NotTransmitted {
			return l
		}
	}
	return nil
}

func (e *Engine) consumeNetworkIdle() errcode.Code {
	needUT := uint64(e.Cfg.MicrotickPerCycle) - uint64(e.Pos.PosMT)*uint64(e.Cfg.Macro2Micro)
	if needUT > e.Budg.StepBudgetUT {
		return errcode.BudgetExhausted
	}
	e.Budg.StepBudgetUT -= needUT
	e.Budg.StepBudgetMT = e.Budg.StepBudgetUT / uint64(e.Cfg.Macro2Micro)
	e.Pos.PosSlot = 1
	e.Pos.PosMT = 0
	e.Pos.PosCycle = (e.Pos.PosCycle + 1) % 64
	return errcode.OK
}

// processSlot matches Tx/Rx Lpdus for the current slot and pushes
// results onto the inform list (spec.md §4.1).
func (e *Engine) processSlot() {
	entry := e.slots.find(uint16(e.Pos.PosSlot))
	if entry == nil {
		return
	}
	static := e.isStaticPart()
	localNodeID := e.NodeIdent.NodeID()

	var tx, rx *Lpdu
	for _, l := range entry.lpdus {
		switch l.Config.Direction {
		case types.DirTx:
			if tx != nil {
				continue
			}
			if static {
				if cycleMatches(e.Pos.PosCycle, l.Config.CycleRepetition, l.Config.BaseCycle) {
					tx = l
				}
			} else {
				tx = l
			}
		case types.DirRx:
			if rx != nil || l.NodeIdent.NodeID() != localNodeID {
				continue
			}
			if static {
				if cycleMatches(e.Pos.PosCycle, l.Config.CycleRepetition, l.Config.BaseCycle) {
					rx = l
				}
			} else {
				rx = l
			}
		}
	}

	if tx == nil {
		return
	}
	if tx.Config.Status != types.NotTransmitted {
		return
	}

	if tx.Config.TransmitMode != types.TransmitContinuous {
		tx.Config.Status = types.Transmitted
	}
	if tx.NodeIdent.NodeID() == localNodeID {
		e.inform = append(e.inform, tx)
	}
	if rx != nil {
		if len(rx.Payload) != int(rx.Config.PayloadLength) {
			rx.Payload = make([]byte, rx.Config.PayloadLength)
		} else {
			for i := range rx.Payload {
				rx.Payload[i] = 0
			}
		}
		n := mathx.Min(len(rx.Payload), len(tx.Payload))
		copy(rx.Payload, tx.Payload[:n])
		rx.Config.Status = types.Received
		e.inform = append(e.inform, rx)
	}
}

// ShiftCycle externally re-syncs the cycle position (spec.md §4.1). It
// returns true if accepted. Re-sync is always allowed in the static
// part; in the dynamic part it requires force (a dynamic slot may be
// in flight).
func (e *Engine) ShiftCycle(mt uint32, cycle uint8, force bool) bool {
	if mt < e.Cfg.OffsetDynamicMT {
		e.Pos.PosMT = mt
		e.Pos.PosCycle = cycle % 64
		if e.Cfg.StaticSlotLengthMT != 0 {
			e.Pos.PosSlot = mt/e.Cfg.StaticSlotLengthMT + 1
		}
		e.Budg = Budget{}
		return true
	}
	if !force {
		return false
	}
	e.Pos.PosMT = mt
	e.Pos.PosCycle = cycle % 64
	if e.Cfg.MinislotLengthMT != 0 {
		e.Pos.PosSlot = (mt-e.Cfg.OffsetDynamicMT)/e.Cfg.MinislotLengthMT + e.Cfg.StaticSlotCount + 1
	}
	e.Budg = Budget{}
	return true
}

// SetPayload copies buf (truncating or zero-padding to the Lpdu's
// configured payload length) into the Tx Lpdu for slotID owned by
// nodeID, and sets its status (spec.md §4.1).
func (e *Engine) SetPayload(nodeID uint32, slotID uint16, status types.LpduStatus, buf []byte) error {
	entry := e.slots.find(slotID)
	if entry == nil {
		return &errcode.E{Op: "SetPayload", C: errcode.InvalidArg, Msg: "unknown slot"}
	}
	for _, l := range entry.lpdus {
		if l.Config.Direction == types.DirTx && l.NodeIdent.NodeID() == nodeID {
			payload := make([]byte, l.Config.PayloadLength)
			copy(payload, buf)
			l.Payload = payload
			l.Config.Status = status
			return nil
		}
	}
	return &errcode.E{Op: "SetPayload", C: errcode.InvalidArg, Msg: "unknown tx lpdu"}
}

// ReleaseConfig frees all payloads and clears the slot map and inform
// list (spec.md §4.1).
func (e *Engine) ReleaseConfig() {
	e.slots.reset()
	e.inform = nil
}
