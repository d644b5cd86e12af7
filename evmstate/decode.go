package evmstate

import "go.uber.org/zap"

// decodeCtx is the mutable working state threaded through one Decode call
// (spec.md §5): the diff, the layout, the shared path buffer, the
// unexplored-slot tracker, and the struct-layout memoizer. Nothing here
// survives past the call that created it.
type decodeCtx struct {
	diff        Diff
	layout      Layout
	cfg         Config
	log         *zap.Logger
	unexplored  *unexploredTracker
	structCache *structLayoutCache
	keys        []CandidateKey
	path        []PathSegment
}

func newDecodeCtx(req DecodeRequest, log *zap.Logger) *decodeCtx {
	return &decodeCtx{
		diff:        req.Diff,
		layout:      req.Layout,
		cfg:         req.Config,
		log:         log,
		unexplored:  newUnexploredTracker(req.Diff),
		structCache: newStructLayoutCache(64),
		keys:        sortCandidateKeys(dedupKeys(req.CandidateKeys)),
	}
}

func (c *decodeCtx) lookup(slot Slot) (DiffEntry, bool) {
	e, ok := c.diff[slot]
	return e, ok
}

func (c *decodeCtx) claim(slots ...Slot) { c.unexplored.claim(slots...) }

// withPath appends a segment for the duration of fn, then restores the
// buffer, the pattern spec.md §5 calls out ("working path buffer reused
// across descents"). Any record fn wants to keep must clonePath() before
// returning.
func (c *decodeCtx) withPath(seg PathSegment, fn func()) {
	c.path = append(c.path, seg)
	fn()
	c.path = c.path[:len(c.path)-1]
}

// Decode runs the full pipeline described in spec.md §2 and §4.8: classify
// the layout, then decode primitives, structs, bytes, arrays, and mappings
// in that order, tracking unclaimed slots throughout.
func Decode(req DecodeRequest) (*DecodeResult, error) {
	return DecodeWithLogger(req, zap.NewNop())
}

// DecodeWithLogger is Decode with an explicit logger for decode-local
// recoverable conditions (spec.md §7); Decode uses a no-op logger.
func DecodeWithLogger(req DecodeRequest, log *zap.Logger) (*DecodeResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := validateLayout(req.Layout); err != nil {
		return nil, err
	}

	groups, err := classifyLayout(req.Layout)
	if err != nil {
		return nil, err
	}

	ctx := newDecodeCtx(req, log)
	decoded := make(map[string]LabeledVariableAccess, len(req.Layout.Storage))

	for _, v := range groups.primitives {
		if lva, ok, err := ctx.decodeDirectVariable(v); err != nil {
			return nil, err
		} else if ok {
			decoded[v.Label] = lva
		}
	}
	for _, v := range groups.structs {
		if lva, ok, err := ctx.decodeDirectVariable(v); err != nil {
			return nil, err
		} else if ok {
			decoded[v.Label] = lva
		}
	}
	for _, v := range groups.bytesVars {
		if lva, ok, err := ctx.decodeDirectVariable(v); err != nil {
			return nil, err
		} else if ok {
			decoded[v.Label] = lva
		}
	}
	for _, v := range groups.arrays {
		if lva, ok, err := ctx.decodeDirectVariable(v); err != nil {
			return nil, err
		} else if ok {
			decoded[v.Label] = lva
		}
	}
	for _, v := range groups.mappings {
		lva, ok, err := ctx.decodeMappingVariable(v)
		if err != nil {
			return nil, err
		}
		if ok {
			decoded[v.Label] = lva
		}
	}

	return &DecodeResult{
		Decoded:         decoded,
		UnexploredSlots: ctx.unexplored.remaining(),
	}, nil
}

// validateLayout performs the fatal, input-consistency checks of spec.md
// §7 up front, before any decoding runs.
func validateLayout(layout Layout) error {
	for _, v := range layout.Storage {
		td, ok := layout.Types[v.TypeID]
		if !ok {
			return &LayoutError{Kind: ErrUnknownTypeID, Variable: v.Label, TypeID: v.TypeID, Message: "referenced by storage variable"}
		}
		if td.Kind == KindInplace && int(v.OffsetInSlot)+int(td.SizeBytes) > 32 {
			return &LayoutError{Kind: ErrOffsetOverflow, Variable: v.Label, Message: "offsetInSlot + sizeBytes exceeds 32"}
		}
		if td.Kind != KindInplace && v.OffsetInSlot != 0 {
			return &LayoutError{Kind: ErrInconsistentLayout, Variable: v.Label, Message: "non-primitive variable declares a non-zero offsetInSlot"}
		}
		if err := validateTypeGraph(layout, v.TypeID, make(map[TypeID]bool)); err != nil {
			return err
		}
	}
	return nil
}

func validateTypeGraph(layout Layout, id TypeID, visiting map[TypeID]bool) error {
	if visiting[id] {
		return nil // a mapping value cycling back to an ancestor type is fine; depth is bounded at decode time
	}
	visiting[id] = true
	td, ok := layout.Types[id]
	if !ok {
		return &LayoutError{Kind: ErrUnknownTypeID, TypeID: id, Message: "referenced by a nested type"}
	}
	switch td.Kind {
	case KindInplaceStruct:
		for _, m := range td.Members {
			if _, ok := layout.Types[m.TypeID]; !ok {
				return &LayoutError{Kind: ErrUnknownTypeID, TypeID: m.TypeID, Message: "referenced by struct member " + m.Label}
			}
			if err := validateTypeGraph(layout, m.TypeID, visiting); err != nil {
				return err
			}
		}
	case KindInplaceStaticArray, KindDynamicArray:
		if err := validateTypeGraph(layout, td.BaseTypeID, visiting); err != nil {
			return err
		}
	case KindMapping:
		if err := validateTypeGraph(layout, td.ValueTypeID, visiting); err != nil {
			return err
		}
	}
	return nil
}

// decodeAtSlot is the recursive core shared by the direct pass (C5), the
// array resolver (C7), and the mapping resolver (C6): given a TypeID, which
// it resolves, and a concrete base slot/offset, it decodes whatever value
// lives there, appending path segments under c.path for the duration.
func (c *decodeCtx) decodeAtSlot(typeID TypeID, baseSlot Slot, baseOffset uint8) ([]AccessRecord, bool, error) {
	td, err := c.layout.resolve(typeID)
	if err != nil {
		return nil, false, err
	}
	switch td.Kind {
	case KindInplace:
		return c.decodePrimitiveAt(td, baseSlot, baseOffset)
	case KindBytes:
		return c.decodeBytesAt(td, baseSlot)
	case KindInplaceStruct:
		return c.decodeStructAt(td, typeID, baseSlot, baseOffset)
	case KindInplaceStaticArray:
		return c.decodeStaticArrayAt(td, baseSlot, baseOffset)
	case KindDynamicArray:
		return c.decodeDynamicArrayAt(td, baseSlot)
	case KindMapping:
		return c.resolveMappingAt(td, baseSlot)
	default:
		return nil, false, nil
	}
}
