package engine

import (
	"sort"

	"flexraysim/types"
)

// Lpdu is the runtime instance of a configured logical PDU (spec.md §3).
// Each Lpdu is owned by exactly one slotEntry.
type Lpdu struct {
	NodeIdent types.NodeIdent
	Config    types.LpduConfig
	Payload   []byte // nil means "no payload yet" (Option<bytes>)
}

// slotEntry is one SlotMapEntry: a slot id plus the ordered sequence of
// Lpdus registered to it (spec.md §3). The slot map itself is kept as a
// slice sorted by SlotID, per the redesign note in spec.md §9 ("replace
// [the intrusive vector] with an ordered map keyed by slot_id... binary
// search over a sorted sequence is acceptable").
type slotEntry struct {
	slotID uint16
	lpdus  []*Lpdu
}

// slotMap is the ordered sequence of slotEntry, sorted by slotID.
type slotMap struct {
	entries []*slotEntry
}

func (m *slotMap) find(slotID uint16) *slotEntry {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].slotID >= slotID })
	if i < len(m.entries) && m.entries[i].slotID == slotID {
		return m.entries[i]
	}
	return nil
}

// findOrCreate returns the entry for slotID, inserting a new one at the
// correct sorted position if none exists yet.
func (m *slotMap) findOrCreate(slotID uint16) *slotEntry {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].slotID >= slotID })
	if i < len(m.entries) && m.entries[i].slotID == slotID {
		return m.entries[i]
	}
	e := &slotEntry{slotID: slotID}
	m.entries = append(m.entries, nil)
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
	return e
}

func (m *slotMap) reset() { m.entries = nil }
