// Package scenario turns spec.md §8's end-to-end scenarios S1 and S2
// into data-driven YAML fixtures (testdata/) and a Run function, so the
// same properties are exercised both as Go tests and as a CLI-runnable
// demo. A Fixture describes one node's config, POC commands and Lpdu
// injections; it has no field for a cycle shift or a second Config.
//
// Grounded on the teacher's sagostin-goefidash/internal/server/config.go
// Config-struct-with-yaml-tags-plus-Load idiom.
package scenario

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"flexraysim/busmodel"
	"flexraysim/pdu"
	"flexraysim/types"
)

//go:embed testdata/*.yaml
var embedded embed.FS

// Fixture is one declarative end-to-end scenario (testdata/ holds
// spec.md §8's S1 and S2).
type Fixture struct {
	Name        string          `yaml:"name"`
	EcuID       uint16          `yaml:"ecu_id"`
	CcID        uint16          `yaml:"cc_id"`
	VcnCount    uint32          `yaml:"vcn_count"`
	SimStepSize float64         `yaml:"sim_step_size"`
	CcConfig    CcConfigFixture `yaml:"cc_config"`

	// FrameConfigJSON is an embedded JSON array of LpduConfig objects,
	// parsed with tinyjson (see frameconfig.go) rather than
	// encoding/json, matching the teacher's own no-reflection choice.
	FrameConfigJSON string `yaml:"frame_config_json"`

	// Commands are POC commands applied in order via Status PDUs
	// before the step loop begins (spec.md §4.2's command names).
	Commands []string `yaml:"commands"`

	// Lpdus are Lpdu PDUs consumed before the step loop begins (spec.md
	// §8 S2's "write one Lpdu PDU").
	Lpdus []LpduFixture `yaml:"lpdus"`

	Steps int `yaml:"steps"`
}

// CcConfigFixture is the YAML-facing mirror of types.CcConfig.
type CcConfigFixture struct {
	BitRate              string `yaml:"bit_rate"`
	MicrotickPerCycle    uint32 `yaml:"microtick_per_cycle"`
	MacrotickPerCycle    uint32 `yaml:"macrotick_per_cycle"`
	StaticSlotLengthMT   uint32 `yaml:"static_slot_length_mt"`
	StaticSlotCount      uint32 `yaml:"static_slot_count"`
	MinislotLengthMT     uint32 `yaml:"minislot_length_mt"`
	MinislotCount        uint32 `yaml:"minislot_count"`
	StaticSlotPayloadLen uint32 `yaml:"static_slot_payload_length"`
	NetworkIdleStart     uint32 `yaml:"network_idle_start"`
}

// LpduFixture is one Lpdu PDU to consume before the step loop.
type LpduFixture struct {
	SlotID           uint16 `yaml:"slot_id"`
	FrameConfigIndex uint32 `yaml:"frame_config_index"`
	Status           string `yaml:"status"`
	Payload          string `yaml:"payload"`
}

// Load reads and parses a Fixture from a YAML file on disk (used by
// the CLI's -scenario flag).
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

// LoadEmbedded reads a Fixture bundled under scenario/testdata, named
// without its directory prefix (e.g. "s1_single_node_two_vcn.yaml").
// Used by this package's own tests.
func LoadEmbedded(name string) (*Fixture, error) {
	raw, err := embedded.ReadFile("testdata/" + name)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

func parse(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	return &f, nil
}

// Result is the outcome of running a Fixture: the PDUs the bus model
// produced on each simulation step, in order.
type Result struct {
	Steps [][]*pdu.Pdu
}

// LastStatus returns the StatusMetadata from the final step's first
// (Status) PDU, or nil if no step produced one.
func (r *Result) LastStatus() *pdu.StatusMetadata {
	for i := len(r.Steps) - 1; i >= 0; i-- {
		for _, p := range r.Steps[i] {
			if p.Transport.FlexRay != nil && p.Transport.FlexRay.Metadata.Type == types.MetaStatus {
				return p.Transport.FlexRay.Metadata.Status
			}
		}
	}
	return nil
}

// Lpdus returns every Lpdu PDU produced across all steps, in order.
func (r *Result) Lpdus() []*pdu.Pdu {
	var out []*pdu.Pdu
	for _, step := range r.Steps {
		for _, p := range step {
			if p.Transport.FlexRay != nil && p.Transport.FlexRay.Metadata.Type == types.MetaLpdu {
				out = append(out, p)
			}
		}
	}
	return out
}

// Run drives a single-node bus model through a Fixture (spec.md §8):
// one Config PDU, the command sequence, any Lpdu injections, then
// Steps simulation steps, collecting every PDU the model produces.
func Run(f *Fixture) (*Result, error) {
	nodeIdent := types.NodeIdent{EcuID: f.EcuID, CcID: f.CcID}
	m := busmodel.New(nodeIdent, f.SimStepSize)

	frameConfig, err := parseFrameConfig(f.FrameConfigJSON)
	if err != nil {
		return nil, fmt.Errorf("scenario: frame config: %w", err)
	}

	m.Consume(configPdu(nodeIdent, f.CcConfig, frameConfig, f.VcnCount))
	for _, cmd := range f.Commands {
		c, err := parseCommand(cmd)
		if err != nil {
			return nil, err
		}
		m.Consume(statusPdu(nodeIdent, c))
	}
	for _, l := range f.Lpdus {
		p, err := l.toPdu(nodeIdent)
		if err != nil {
			return nil, err
		}
		m.Consume(p)
	}

	result := &Result{Steps: make([][]*pdu.Pdu, 0, f.Steps)}
	for i := 0; i < f.Steps; i++ {
		result.Steps = append(result.Steps, m.Progress())
	}
	return result, nil
}

func (l LpduFixture) toPdu(nodeIdent types.NodeIdent) (*pdu.Pdu, error) {
	status, err := parseStatus(l.Status)
	if err != nil {
		return nil, err
	}
	return &pdu.Pdu{
		ID:      uint32(l.SlotID),
		Payload: []byte(l.Payload),
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaLpdu,
					Lpdu: &pdu.LpduMetadata{FrameConfigIndex: l.FrameConfigIndex, Status: status},
				},
			},
		},
	}, nil
}

func configPdu(nodeIdent types.NodeIdent, cc CcConfigFixture, frameConfig []types.LpduConfig, vcn uint32) *pdu.Pdu {
	return &pdu.Pdu{
		Transport: pdu.Transport{
			Type: types.TransportFlexray,
			FlexRay: &pdu.FlexRayTransport{
				NodeIdent: nodeIdent,
				Metadata: pdu.Metadata{
					Type: types.MetaConfig,
					Config: &pdu.ConfigMetadata{
						CcConfig: types.CcConfig{
							BitRate:              parseBitRate(cc.BitRate),
							MicrotickPerCycle:    cc.MicrotickPerCycle,
							MacrotickPerCycle:    cc.MacrotickPerCycle,
							StaticSlotLengthMT:   cc.StaticSlotLengthMT,
							StaticSlotCount:      cc.StaticSlotCount,
							MinislotLengthMT:     cc.MinislotLengthMT,
							MinislotCount:        cc.MinislotCount,
							StaticSlotPayloadLen: cc.StaticSlotPayloadLen,
							NetworkIdleStart:     cc.NetworkIdleStart,
						},
						FrameConfig: frameConfig,
						VcnCount:    vcn,
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
