package scenario

import (
	"fmt"
	"strings"

	"flexraysim/types"
)

func parseBitRate(s string) types.BitRate {
	switch strings.TrimSpace(s) {
	case "10", "10M", "10Mbit":
		return types.BitRate10M
	case "5", "5M", "5Mbit":
		return types.BitRate5M
	case "2.5", "2.5M", "2.5Mbit":
		return types.BitRate2M5
	default:
		return types.BitRateNone
	}
}

func parseCommand(s string) (types.PocCommand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return types.CmdNone, nil
	case "config":
		return types.CmdConfig, nil
	case "ready":
		return types.CmdReady, nil
	case "wakeup":
		return types.CmdWakeup, nil
	case "run":
		return types.CmdRun, nil
	case "allslots":
		return types.CmdAllSlots, nil
	case "halt":
		return types.CmdHalt, nil
	case "freeze":
		return types.CmdFreeze, nil
	case "allowcoldstart":
		return types.CmdAllowColdstart, nil
	case "nop":
		return types.CmdNop, nil
	default:
		return 0, fmt.Errorf("scenario: unknown poc command %q", s)
	}
}

func parseDirection(s string) (types.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rx":
		return types.DirRx, nil
	case "tx":
		return types.DirTx, nil
	default:
		return 0, fmt.Errorf("scenario: unknown direction %q", s)
	}
}

func parseChannel(s string) types.Channel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b":
		return types.ChannelB
	case "ab":
		return types.ChannelAB
	default:
		return types.ChannelA
	}
}

func parseTransmitMode(s string) types.TransmitMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous":
		return types.TransmitContinuous
	case "singleshot", "single_shot":
		return types.TransmitSingleShot
	default:
		return types.TransmitNone
	}
}

func parseStatus(s string) (types.LpduStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nottransmitted", "not_transmitted":
		return types.NotTransmitted, nil
	case "transmitted":
		return types.Transmitted, nil
	case "notreceived", "not_received":
		return types.NotReceived, nil
	case "received":
		return types.Received, nil
	default:
		return 0, fmt.Errorf("scenario: unknown lpdu status %q", s)
	}
}
