package scenario

import (
	"fmt"

	"github.com/andreyvit/tinyjson"

	"flexraysim/types"
)

// parseFrameConfig decodes an embedded JSON array of LpduConfig
// objects using tinyjson (the teacher's own no-reflection JSON
// reader, services/config/config.go), rather than encoding/json. An
// empty string yields no Lpdus.
func parseFrameConfig(raw string) ([]types.LpduConfig, error) {
	if raw == "" {
		return nil, nil
	}
	r := tinyjson.Raw([]byte(raw))
	val := r.Value()
	r.EnsureEOF()

	items, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("frame_config_json must be a JSON array, got %T", val)
	}

	out := make([]types.LpduConfig, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("frame_config_json[%d] must be a JSON object, got %T", i, it)
		}
		lc, err := lpduConfigFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("frame_config_json[%d]: %w", i, err)
		}
		out = append(out, lc)
	}
	return out, nil
}

func lpduConfigFromMap(m map[string]any) (types.LpduConfig, error) {
	dir, err := parseDirection(asString(m["direction"]))
	if err != nil {
		return types.LpduConfig{}, err
	}
	return types.LpduConfig{
		SlotID:          uint16(asUint(m["slot_id"])),
		PayloadLength:   uint8(asUint(m["payload_length"])),
		CycleRepetition: uint8(asUint(m["cycle_repetition"])),
		BaseCycle:       uint8(asUint(m["base_cycle"])),
		Direction:       dir,
		Channel:         parseChannel(asString(m["channel"])),
		TransmitMode:    parseTransmitMode(asString(m["transmit_mode"])),
		Index: types.LpduIndex{
			FrameTable: uint32(asUint(m["frame_table_index"])),
			LpduTable:  uint32(asUint(m["lpdu_table_index"])),
		},
	}, nil
}

// asUint coerces a decoded JSON numeric value to uint64: no-reflection
// JSON readers like tinyjson commonly surface numbers as float64 (like
// encoding/json's interface{} mode) but some surface ints directly, so
// both are accepted.
func asUint(v any) uint64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case int:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case int64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case uint64:
		return n
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
