package types

// Direction is an Lpdu's transfer direction relative to its owning node.
type Direction uint8

const (
	DirRx Direction = iota
	DirTx
)

// Channel selects the FlexRay channel(s) an Lpdu is carried on. Channel
// A is authoritative; channel B is carried but never evaluated
// (spec.md §1 Non-goals).
type Channel uint8

const (
	ChannelA Channel = iota
	ChannelB
	ChannelAB
)

// TransmitMode governs whether a Tx Lpdu's NotTransmitted status is
// cleared after one transmission.
type TransmitMode uint8

const (
	TransmitNone TransmitMode = iota
	TransmitContinuous
	TransmitSingleShot
)

// LpduStatus is the per-Lpdu transfer status.
type LpduStatus uint8

const (
	NotTransmitted LpduStatus = iota
	Transmitted
	NotReceived
	Received
)

// BitRate is the FlexRay cluster bit rate. Only these four values are
// valid (spec.md §3); BitRateNone means "not yet configured".
type BitRate uint8

const (
	BitRateNone BitRate = iota
	BitRate10M
	BitRate5M
	BitRate2M5
)

// MicrotickNS returns the microtick period in nanoseconds for this bit
// rate, or 0 if the rate is BitRateNone or invalid.
func (b BitRate) MicrotickNS() uint32 {
	switch b {
	case BitRate10M, BitRate5M:
		return 25
	case BitRate2M5:
		return 50
	default:
		return 0
	}
}

// BitTimeNS returns the bit period in nanoseconds for this bit rate.
func (b BitRate) BitTimeNS() uint32 {
	switch b {
	case BitRate10M:
		return 100
	case BitRate5M:
		return 200
	case BitRate2M5:
		return 400
	default:
		return 0
	}
}

// Valid reports whether b is one of the four legal bit-rate values.
func (b BitRate) Valid() bool {
	switch b {
	case BitRateNone, BitRate10M, BitRate5M, BitRate2M5:
		return true
	default:
		return false
	}
}

// PocCommand is a command issued to a node's POC state machine.
type PocCommand uint8

const (
	CmdNone PocCommand = iota
	CmdConfig
	CmdReady
	CmdWakeup
	CmdRun
	CmdAllSlots
	CmdHalt
	CmdFreeze
	CmdAllowColdstart
	CmdNop
)

// PocState is a node's Protocol Operation Control state (spec.md §4.2).
// Defined exactly once: this is the single stable encoding used both at
// the API boundary and on the wire, resolving the source's two
// conflicting enum definitions (spec.md §9).
type PocState uint8

const (
	PocDefaultConfig PocState = iota
	PocConfig
	PocReady
	PocWakeup
	PocStartup
	PocNormalActive
	PocNormalPassive
	PocHalt
	PocFreeze
	PocUndefined
)

// TcvrState is the observable transceiver state derived from POC state
// and power (spec.md §4.2). Defined exactly once, see PocState above.
type TcvrState uint8

const (
	TcvrNone TcvrState = iota
	TcvrNoPower
	TcvrNoConnection
	TcvrNoSignal
	TcvrCAS
	TcvrWUP
	TcvrFrameSync
	TcvrFrameError
)

// BusCondition is the bus-wide computed transceiver state (spec.md
// §4.2). It ranges over the same values as TcvrState.
type BusCondition = TcvrState

// MetadataType tags the FlexRay-transport metadata union carried by a
// Pdu (spec.md §4.3, §6).
type MetadataType uint8

const (
	MetaNone MetadataType = iota
	MetaConfig
	MetaStatus
	MetaLpdu
)

// TransportType tags the transport union carried by a Pdu (spec.md §6).
type TransportType uint8

const (
	TransportNone TransportType = iota
	TransportCan
	TransportIP
	TransportStruct
	TransportFlexray
)
