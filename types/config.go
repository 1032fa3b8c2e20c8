package types

// LpduIndex is opaque to the bus model: the client's own index into its
// frame table and Lpdu table, round-tripped on Lpdu PDUs so the client
// can correlate a produced Lpdu back to the configuration it registered.
type LpduIndex struct {
	FrameTable uint32
	LpduTable  uint32
}

// LpduConfig is the per-logical-PDU configuration (spec.md §3).
type LpduConfig struct {
	SlotID           uint16 // 1..2047
	PayloadLength    uint8  // 0..254
	CycleRepetition  uint8  // 0..63, 0 = never
	BaseCycle        uint8  // 0..63
	Direction        Direction
	Channel          Channel
	TransmitMode     TransmitMode
	Status           LpduStatus
	Index            LpduIndex
}

// CcConfig is the cluster/controller configuration carried by a Config
// PDU (spec.md §3, "EngineConfig (derived in process_config)"). Zero
// values mean "unset" for every field here except BitRate, which uses
// BitRateNone explicitly — these are exactly the zero-sentinelled
// fields ProcessConfig merges (spec.md §9 Open Question, resolved in
// SPEC_FULL.md §3).
type CcConfig struct {
	BitRate              BitRate
	MicrotickPerCycle    uint32
	MacrotickPerCycle    uint32
	StaticSlotLengthMT   uint32
	StaticSlotCount      uint32
	MinislotLengthMT     uint32
	MinislotCount        uint32
	StaticSlotPayloadLen uint32
	NetworkIdleStart     uint32
}

// EngineConfig holds the constants derived from a merged CcConfig by
// ProcessConfig (spec.md §3).
type EngineConfig struct {
	CcConfig

	Macro2Micro     uint32 // microtick_per_cycle / macrotick_per_cycle
	MicrotickNS     uint32
	MacrotickNS     uint32 // Macro2Micro * MicrotickNS
	BitsPerMinislot uint32

	OffsetStaticMT  uint32 // always 0
	OffsetDynamicMT uint32 // static_slot_length_mt * static_slot_count
	OffsetNetworkMT uint32 // network_idle_start
}
