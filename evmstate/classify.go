package evmstate

import (
	"sort"

	"github.com/VictoriaMetrics/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

// classified groups a Layout's variables into the buckets C8 drives in
// order: primitives, structs, bytes/string, arrays, mappings (spec.md §4.4,
// §4.8). Mappings are additionally ordered by nesting depth ascending.
type classified struct {
	primitives []Variable
	structs    []Variable
	bytesVars  []Variable
	arrays     []Variable
	mappings   []Variable
}

func classifyLayout(layout Layout) (classified, error) {
	var c classified
	for _, v := range layout.Storage {
		td, err := layout.resolve(v.TypeID)
		if err != nil {
			return c, err
		}
		switch td.Kind {
		case KindInplace:
			c.primitives = append(c.primitives, v)
		case KindInplaceStruct:
			c.structs = append(c.structs, v)
		case KindBytes:
			c.bytesVars = append(c.bytesVars, v)
		case KindInplaceStaticArray, KindDynamicArray:
			c.arrays = append(c.arrays, v)
		case KindMapping:
			c.mappings = append(c.mappings, v)
		}
	}
	sort.SliceStable(c.mappings, func(i, j int) bool {
		return mappingNestingDepth(c.mappings[i].Label) < mappingNestingDepth(c.mappings[j].Label)
	})
	return c, nil
}

// structLayout is one resolved member of a struct, placed at a concrete
// slot/offset (spec.md §4.5).
type structLayout struct {
	member StructMember
	desc   TypeDescriptor
	slot   Slot
	offset uint8
}

func memberSize(td TypeDescriptor) uint64 {
	switch td.Kind {
	case KindMapping, KindDynamicArray, KindBytes:
		return 32 // reference types occupy exactly one pointer/length slot inline
	default:
		return td.SizeBytes
	}
}

func isReferenceType(td TypeDescriptor) bool {
	switch td.Kind {
	case KindMapping, KindDynamicArray, KindBytes:
		return true
	default:
		return false
	}
}

// structMemberOffset is one struct member's placement relative to the
// struct's own base slot (slot 0, offset baseOffset) — independent of where
// any particular occurrence of the struct actually lands.
type structMemberOffset struct {
	member     StructMember
	desc       TypeDescriptor
	slotOffset uint64
	offset     uint8
}

// resolveStructMemberOffsets walks a struct's members in declaration order
// maintaining the (currentSlotOffset, offsetInSlot) cursor of spec.md §4.5,
// relative to the struct's own start. This is what repeats identically
// across every occurrence of the same struct type (mapping values, array
// elements, ...), so it's what structLayoutCache memoizes.
func resolveStructMemberOffsets(layout Layout, baseOffset uint8, structDesc TypeDescriptor) ([]structMemberOffset, error) {
	out := make([]structMemberOffset, 0, len(structDesc.Members))
	curSlotOffset := uint64(0)
	curOffset := uint64(baseOffset)

	for _, m := range structDesc.Members {
		td, err := layout.resolve(m.TypeID)
		if err != nil {
			return nil, err
		}
		size := memberSize(td)
		needsNewSlot := curOffset+size > 32 || isReferenceType(td)
		if needsNewSlot {
			curSlotOffset++
			curOffset = 0
		}
		out = append(out, structMemberOffset{member: m, desc: td, slotOffset: curSlotOffset, offset: uint8(curOffset)})
		curOffset += size
		if curOffset >= 32 {
			curSlotOffset++
			curOffset = 0
		}
	}
	return out, nil
}

// resolveStructLayout places a struct's members at a concrete base slot by
// resolving their relative offsets and adding baseSlot.
func resolveStructLayout(layout Layout, baseSlot Slot, baseOffset uint8, structDesc TypeDescriptor) ([]structLayout, error) {
	rel, err := resolveStructMemberOffsets(layout, baseOffset, structDesc)
	if err != nil {
		return nil, err
	}
	return placeStructMembers(baseSlot, rel), nil
}

func placeStructMembers(baseSlot Slot, rel []structMemberOffset) []structLayout {
	out := make([]structLayout, len(rel))
	for i, m := range rel {
		out[i] = structLayout{member: m.member, desc: m.desc, slot: slotAdd(baseSlot, m.slotOffset), offset: m.offset}
	}
	return out
}

// structLayoutCache memoizes resolveStructMemberOffsets by (typeID,
// baseOffset): a mapping-of-struct or array-of-struct variable re-derives
// the identical relative member layout at every matched key/index, with
// only the base slot differing per occurrence, so the base slot must stay
// out of the cache key or every occurrence misses.
type structLayoutCache struct {
	cache *lru.Cache[structLayoutCacheKey, []structMemberOffset]
}

type structLayoutCacheKey struct {
	typeID TypeID
	offset uint8
}

func newStructLayoutCache(size int) *structLayoutCache {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[structLayoutCacheKey, []structMemberOffset](size)
	if err != nil {
		// lru.New only fails on a non-positive size, already coerced above;
		// this path is unreachable, but fall back to a one-entry cache.
		c, _ = lru.New[structLayoutCacheKey, []structMemberOffset](1)
	}
	return &structLayoutCache{cache: c}
}

func (s *structLayoutCache) resolve(layout Layout, baseSlot Slot, baseOffset uint8, typeID TypeID, desc TypeDescriptor) ([]structLayout, error) {
	key := structLayoutCacheKey{typeID: typeID, offset: baseOffset}
	if rel, ok := s.cache.Get(key); ok {
		metrics.GetOrCreateCounter(`evmstate_struct_layout_cache_hit_total`).Inc()
		return placeStructMembers(baseSlot, rel), nil
	}
	metrics.GetOrCreateCounter(`evmstate_struct_layout_cache_miss_total`).Inc()
	rel, err := resolveStructMemberOffsets(layout, baseOffset, desc)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, rel)
	return placeStructMembers(baseSlot, rel), nil
}

// decodeStructAt resolves a struct's member layout and recursively decodes
// each member, per spec.md §4.5: "a struct is considered touched iff at
// least one of its member slots appears in the diff."
func (c *decodeCtx) decodeStructAt(td TypeDescriptor, typeID TypeID, baseSlot Slot, baseOffset uint8) ([]AccessRecord, bool, error) {
	members, err := c.structCache.resolve(c.layout, baseSlot, baseOffset, typeID, td)
	if err != nil {
		return nil, false, err
	}

	var records []AccessRecord
	touched := false
	for _, m := range members {
		var (
			memberRecords []AccessRecord
			memberTouched bool
			memberErr     error
		)
		c.withPath(structField(m.member.Label), func() {
			memberRecords, memberTouched, memberErr = c.decodeAtSlot(m.member.TypeID, m.slot, m.offset)
		})
		if memberErr != nil {
			return nil, false, memberErr
		}
		if memberTouched {
			touched = true
			records = append(records, memberRecords...)
		}
	}
	return records, touched, nil
}
