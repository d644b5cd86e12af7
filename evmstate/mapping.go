package evmstate

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// mappingFrontier is one element of the BFS queue described in spec.md §4.6.
type mappingFrontier struct {
	currentSlot Slot
	pathKeys    []MappingKeyValue
	depth       int
	desc        TypeDescriptor // the Mapping descriptor active at this node
}

type mappingMatch struct {
	derivedSlot Slot
	records     []AccessRecord
}

// resolveMappingAt runs the bounded BFS of spec.md §4.6 starting at baseSlot
// for a Mapping type descriptor, used both for top-level mapping variables
// and for a mapping discovered as a struct member or array element.
func (c *decodeCtx) resolveMappingAt(td TypeDescriptor, baseSlot Slot) ([]AccessRecord, bool, error) {
	queue := []mappingFrontier{{currentSlot: baseSlot, desc: td}}
	visited := mapset.NewThreadUnsafeSet[string]()
	budget := c.cfg.MappingExplorationLimit
	matches := 0
	var groups []mappingMatch

	for len(queue) > 0 && budget > 0 && matches < c.cfg.EarlyTerminationThreshold {
		elem := queue[0]
		queue = queue[1:]
		if elem.depth >= c.cfg.MaxMappingDepth {
			continue
		}

		keyTD, err := c.layout.resolve(elem.desc.KeyTypeID)
		if err != nil {
			return nil, false, err
		}
		valueTD, err := c.layout.resolve(elem.desc.ValueTypeID)
		if err != nil {
			return nil, false, err
		}

		for _, k := range orderKeysForMapping(c.keys, keyTD.Label) {
			if budget <= 0 || matches >= c.cfg.EarlyTerminationThreshold {
				break
			}
			comboID := elem.currentSlot.String() + "|" + k.Hex.String()
			if visited.Contains(comboID) {
				continue
			}
			visited.Add(comboID)
			budget--

			derived := mappingSlot(k.Hex, elem.currentSlot)
			pathKeys := make([]MappingKeyValue, len(elem.pathKeys)+1)
			copy(pathKeys, elem.pathKeys)
			pathKeys[len(elem.pathKeys)] = MappingKeyValue{Type: k.Type, Value: decodedKeyValue(k)}

			if valueTD.Kind == KindMapping {
				// Intermediate mapping slots never materialize in the diff
				// (spec.md §4.6 step 4); always descend regardless.
				queue = append(queue, mappingFrontier{currentSlot: derived, pathKeys: pathKeys, depth: elem.depth + 1, desc: valueTD})
				continue
			}

			var (
				records []AccessRecord
				touched bool
				decErr  error
			)
			c.withMappingPath(pathKeys, func() {
				records, touched, decErr = c.decodeAtSlot(elem.desc.ValueTypeID, derived, 0)
			})
			if decErr != nil {
				return nil, false, decErr
			}
			if !touched {
				continue
			}
			for i := range records {
				records[i].Keys = pathKeys
			}
			groups = append(groups, mappingMatch{derivedSlot: derived, records: records})
			matches++
		}
	}

	if budget <= 0 && len(queue) > 0 {
		c.log.Warn("evmstate: mapping exploration budget exhausted", zapSlot(baseSlot))
	}

	if len(groups) == 0 {
		return nil, false, nil
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].derivedSlot.Less(groups[j].derivedSlot) })

	var out []AccessRecord
	for _, g := range groups {
		out = append(out, g.records...)
	}
	return out, true, nil
}

// withMappingPath pushes the full resolved key chain onto the shared path
// buffer for the duration of fn, mirroring withPath's push/pop discipline.
func (c *decodeCtx) withMappingPath(keys []MappingKeyValue, fn func()) {
	saved := len(c.path)
	for _, k := range keys {
		c.path = append(c.path, mappingKey(k.Type, k.Value))
	}
	fn()
	c.path = c.path[:saved]
}

// orderKeysForMapping stably re-partitions the already globally-sorted
// candidate key list into three classes, per spec.md §4.6 step 4: keys
// whose declared type matches this mapping's key type, then typed keys of
// any other type, then untyped keys.
func orderKeysForMapping(keys []CandidateKey, keyTypeLabel string) []CandidateKey {
	var exact, typedOther, untyped []CandidateKey
	for _, k := range keys {
		switch {
		case k.typed() && k.Type == keyTypeLabel:
			exact = append(exact, k)
		case k.typed():
			typedOther = append(typedOther, k)
		default:
			untyped = append(untyped, k)
		}
	}
	out := make([]CandidateKey, 0, len(keys))
	out = append(out, exact...)
	out = append(out, typedOther...)
	out = append(out, untyped...)
	return out
}

// decodedKeyValue prefers an explicitly decoded value, falling back to a
// best-effort decode from the key's type hint, and finally the raw hex.
func decodedKeyValue(k CandidateKey) any {
	if k.Decoded != nil {
		return k.Decoded
	}
	if k.Type == "address" {
		return "0x" + hexLower(k.Hex[12:])
	}
	if v, ok := decodePrimitive(k.Type, k.Hex, 0, 32); ok && k.Type != "" {
		return v
	}
	return k.Hex.String()
}

func hexLower(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0xf]
	}
	return string(out)
}

// decodeMappingVariable is the top-level C6 entry point for a mapping
// storage variable.
func (c *decodeCtx) decodeMappingVariable(v Variable) (LabeledVariableAccess, bool, error) {
	td, err := c.layout.resolve(v.TypeID)
	if err != nil {
		return LabeledVariableAccess{}, false, err
	}
	c.path = c.path[:0]
	records, touched, err := c.resolveMappingAt(td, v.Slot)
	if err != nil {
		return LabeledVariableAccess{}, false, err
	}
	if !touched {
		return LabeledVariableAccess{}, false, nil
	}
	return LabeledVariableAccess{
		Name:  v.Label,
		Kind:  KindMapping,
		Type:  td.Label,
		Trace: records,
	}, true, nil
}
