package evmstate

import "github.com/tidwall/btree"

// unexploredTracker maintains the set of diff slots that no labeled
// variable has claimed yet (spec.md §4.9). It starts as every slot in the
// diff and shrinks as each resolver attributes slots to a variable.
//
// Backed by an ordered btree rather than a plain map so the final
// UnexploredSlots slice comes out in the deterministic lexical-hex order
// spec.md §5 requires, without a separate sort pass.
type unexploredTracker struct {
	set *btree.BTreeG[Slot]
}

func newUnexploredTracker(diff Diff) *unexploredTracker {
	t := &unexploredTracker{set: btree.NewBTreeG(slotLess)}
	for slot := range diff {
		t.set.Set(slot)
	}
	return t
}

func (t *unexploredTracker) claim(slots ...Slot) {
	for _, s := range slots {
		t.set.Delete(s)
	}
}

func (t *unexploredTracker) remaining() []Slot {
	out := make([]Slot, 0, t.set.Len())
	t.set.Scan(func(s Slot) bool {
		out = append(out, s)
		return true
	})
	return out
}
