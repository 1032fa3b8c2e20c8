// Package mimeopen parses the codec-open MIME-type string (spec.md
// §6): `application/x-automotive-bus; interface=stream; type=pdu;
// schema=fbs; KEY=VAL; ...`.
//
// Grounded on the teacher's services/config/config.go and
// services/hal/config/config.go key-driven configuration style; uses
// x/strconvx (host variant) for decimal parsing instead of a
// hand-rolled digit loop, matching the teacher's own reason for having
// that package (identical parsing logic across build targets).
package mimeopen

import (
	"strings"

	"flexraysim/errcode"
	"flexraysim/x/strconvx"
	"flexraysim/x/strx"
)

// Params is the parsed result of an open string (spec.md §6).
type Params struct {
	Bus         string
	BusID       uint8
	NodeID      uint8
	InterfaceID uint8
	SwcID       uint8
	EcuID       uint8
	CcID        uint8
	Model       string // bus model to instantiate, e.g. "flexray"; empty = none
	PowerOn     bool   // pwr=on (default) or pwr=off
	VcnCount    int
	VcnFid      int
}

const mimeType = "application/x-automotive-bus"

// Parse validates the mandatory interface/type/schema keys and
// collects the recognized identifier/model/power/vcn keys (spec.md
// §6's table). It fails InvalidArg on a malformed string or a
// mandatory key with the wrong value.
func Parse(open string) (*Params, error) {
	parts := strings.Split(open, ";")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) != mimeType {
		return nil, &errcode.E{Op: "Parse", C: errcode.InvalidArg, Msg: "not an automotive-bus MIME type"}
	}

	p := &Params{PowerOn: true}
	seen := map[string]string{}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := ""
		if len(kv) == 2 {
			val = strings.TrimSpace(kv[1])
		}
		seen[key] = val
	}

	if seen["interface"] != "stream" {
		return nil, &errcode.E{Op: "Parse", C: errcode.InvalidArg, Msg: "interface must be stream"}
	}
	if seen["type"] != "pdu" {
		return nil, &errcode.E{Op: "Parse", C: errcode.InvalidArg, Msg: "type must be pdu"}
	}
	if seen["schema"] != "fbs" {
		return nil, &errcode.E{Op: "Parse", C: errcode.InvalidArg, Msg: "schema must be fbs"}
	}

	p.Bus = seen["bus"]
	p.Model = seen["model"]
	p.PowerOn = strx.Coalesce(seen["pwr"], "on") != "off"

	p.BusID = parseU8(seen["bus_id"])
	p.NodeID = parseU8(seen["node_id"])
	p.InterfaceID = parseU8(seen["interface_id"])
	p.SwcID = parseU8(seen["swc_id"])
	p.EcuID = parseU8(seen["ecu_id"])
	p.CcID = parseU8(seen["cc_id"])

	if v, ok := seen["vcn"]; ok {
		if n, err := strconvx.Atoi(v); err == nil {
			p.VcnCount = n
		}
	}
	if v, ok := seen["vcn_fid"]; ok {
		if n, err := strconvx.Atoi(v); err == nil {
			p.VcnFid = n
		}
	}
	return p, nil
}

func parseU8(s string) uint8 {
	if s == "" {
		return 0
	}
	n, err := strconvx.ParseUint(s, 10, 8)
	if err != nil {
		return 0
	}
	return uint8(n)
}
