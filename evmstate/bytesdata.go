package evmstate

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// bytesState is the decoded form of one side (current or next) of a
// bytes/string variable, spec.md §4.3.
type bytesState struct {
	raw       []byte
	slots     []Slot // slots backing this side's data, in order
	truncated bool
	missing   string // canonical hex of the first missing data slot, if any
}

// isLongForm reports the low bit of the base slot value, spec.md §4.3.
func isLongForm(v Slot) bool { return v[31]&1 == 1 }

// decodeBytesSide decodes one side of a dynamic bytes/string variable
// rooted at baseSlot, given the base slot's value v and a slot lookup
// function for the long-form data region.
func decodeBytesSide(baseSlot Slot, v Slot, lookup func(Slot) (Slot, bool)) bytesState {
	if !isLongForm(v) {
		length := int(v[31] >> 1)
		return bytesState{raw: append([]byte(nil), v[:length]...), slots: []Slot{baseSlot}}
	}

	total := new(uint256.Int).SetBytes(v[:])
	total.Sub(total, uint256.NewInt(1))
	total.Div(total, uint256.NewInt(2))
	length := total.Uint64()

	out := make([]byte, 0, length)
	dataSlots := make([]Slot, 0, (length+31)/32+1)
	dataSlots = append(dataSlots, baseSlot)

	root := dynamicArrayBase(baseSlot)
	remaining := length
	i := uint64(0)
	var truncated bool
	var missing string
	for remaining > 0 {
		slot := slotAdd(root, i)
		sv, ok := lookup(slot)
		if !ok {
			truncated = true
			if missing == "" {
				missing = slot.String()
			}
			break
		}
		dataSlots = append(dataSlots, slot)
		take := remaining
		if take > 32 {
			take = 32
		}
		out = append(out, sv[:take]...)
		remaining -= take
		i++
	}
	return bytesState{raw: out, slots: dataSlots, truncated: truncated, missing: missing}
}

// decodeBytesValue renders a bytesState per its Solidity label ("bytes" or
// "string"), spec.md §4.3: string falls back to hex with a Note on invalid
// UTF-8 or an embedded replacement character.
func decodeBytesValue(label string, st bytesState) (decoded any, note string) {
	if label == "string" {
		if utf8.Valid(st.raw) && !containsReplacementChar(st.raw) {
			return string(st.raw), ""
		}
		return "0x" + hex.EncodeToString(st.raw), "invalid UTF-8 in string value, falling back to hex"
	}
	return "0x" + hex.EncodeToString(st.raw), ""
}

func containsReplacementChar(b []byte) bool {
	s := string(b)
	for _, r := range s {
		if r == utf8.RuneError {
			return true
		}
	}
	return false
}

// decodeBytesAt decodes a bytes/string variable or member rooted at
// baseSlot, emitting the two records spec.md §4.3 describes: a length
// record and a content record.
func (c *decodeCtx) decodeBytesAt(td TypeDescriptor, baseSlot Slot) ([]AccessRecord, bool, error) {
	entry, ok := c.lookup(baseSlot)
	if !ok {
		return nil, false, nil
	}

	lookup := func(s Slot) (Slot, bool) {
		e, ok := c.lookup(s)
		if !ok {
			return Slot{}, false
		}
		return e.Current, true
	}
	curState := decodeBytesSide(baseSlot, entry.Current, lookup)

	var lengthRec, contentRec AccessRecord
	c.withPath(bytesLength(), func() {
		lengthRec = AccessRecord{
			Current: newHex32(entry.Current, uint64(len(curState.raw))),
			Slots:   []Slot{baseSlot},
			Path:    clonePath(c.path),
		}
	})
	contentRec = AccessRecord{
		Slots: dedupSlots(curState.slots),
		Path:  clonePath(c.path),
	}
	curDecoded, curNote := decodeBytesValue(td.Label, curState)
	contentRec.Current = newHex32(entry.Current, curDecoded)
	if curNote != "" {
		contentRec.Note = curNote
	}
	if curState.truncated {
		contentRec.Truncated = true
		contentRec.Note = appendNote(contentRec.Note, "missing data slot "+curState.missing)
	}

	if entry.Next != nil {
		lookupNext := func(s Slot) (Slot, bool) {
			e, ok := c.lookup(s)
			if !ok {
				return Slot{}, false
			}
			if e.Next != nil {
				return *e.Next, true
			}
			return e.Current, true
		}
		nextVal := *entry.Next
		nextState := decodeBytesSide(baseSlot, nextVal, lookupNext)

		nextLen := newHex32(nextVal, uint64(len(nextState.raw)))
		lengthRec.Next = &nextLen

		nextDecoded, nextNote := decodeBytesValue(td.Label, nextState)
		nh := newHex32(nextVal, nextDecoded)
		contentRec.Next = &nh
		if nextNote != "" {
			contentRec.Note = appendNote(contentRec.Note, nextNote)
		}
		if nextState.truncated {
			contentRec.Truncated = true
			contentRec.Note = appendNote(contentRec.Note, "missing data slot "+nextState.missing)
		}
		contentRec.Slots = dedupSlots(append(contentRec.Slots, nextState.slots...))
	}

	c.claim(contentRec.Slots...)
	c.claim(baseSlot)

	if contentRec.Truncated {
		c.log.Warn("evmstate: truncated dynamic bytes/string", zapSlot(baseSlot), zap.String("note", contentRec.Note))
	}

	return []AccessRecord{lengthRec, contentRec}, true, nil
}

func appendNote(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + "; " + add
}

func dedupSlots(slots []Slot) []Slot {
	seen := make(map[Slot]bool, len(slots))
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
