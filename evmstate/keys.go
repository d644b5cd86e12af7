package evmstate

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// CandidateKey is a 32-byte padded value harvested by the caller from
// calldata, involved addresses, or the execution stack, that may unlock a
// mapping slot (spec.md §3, §6.1).
type CandidateKey struct {
	Hex     Slot
	Type    string // Solidity type label, empty if untyped
	Decoded any
}

func (k CandidateKey) typed() bool { return k.Type != "" }

// addressShaped reports whether the key's high 12 bytes are zero, the shape
// spec.md §4.6 gives top sort priority regardless of an explicit type hint.
func (k CandidateKey) addressShaped() bool {
	for i := 0; i < 12; i++ {
		if k.Hex[i] != 0 {
			return false
		}
	}
	return true
}

// dedupKeys applies spec.md §3's rule: keys are deduplicated by hex, and if
// a key appears both typed and untyped the typed one wins. Insertion order
// of the first occurrence of each hex is preserved, which together with the
// stable sort in sortCandidateKeys keeps the mapping resolver deterministic.
func dedupKeys(keys []CandidateKey) []CandidateKey {
	seenAt := make(map[Slot]int, len(keys))
	seen := mapset.NewThreadUnsafeSet[Slot]()
	out := make([]CandidateKey, 0, len(keys))

	for _, k := range keys {
		if !seen.Contains(k.Hex) {
			seen.Add(k.Hex)
			seenAt[k.Hex] = len(out)
			out = append(out, k)
			continue
		}
		idx := seenAt[k.Hex]
		if k.typed() && !out[idx].typed() {
			out[idx] = k
		}
	}
	return out
}

// sortCandidateKeys applies the stable precedence of spec.md §4.6:
// (1) address-shaped, (2) typed, (3) untyped; insertion order preserved
// within each class.
func sortCandidateKeys(keys []CandidateKey) []CandidateKey {
	out := make([]CandidateKey, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		return keyClass(out[i]) < keyClass(out[j])
	})
	return out
}

func keyClass(k CandidateKey) int {
	switch {
	case k.addressShaped():
		return 0
	case k.typed():
		return 1
	default:
		return 2
	}
}
