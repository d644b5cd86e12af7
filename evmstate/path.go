package evmstate

import (
	"fmt"
	"strings"
)

// PathSegmentKind tags the variant of a PathSegment (spec.md §3).
type PathSegmentKind int

const (
	SegStructField PathSegmentKind = iota
	SegArrayIndex
	SegArrayLength
	SegBytesLength
	SegMappingKey
)

// PathSegment is one step in the access path built while descending into a
// variable (spec.md §3). Only the fields relevant to Kind are populated.
type PathSegment struct {
	Kind PathSegmentKind

	Name string // SegStructField

	Index uint64 // SegArrayIndex; big indices beyond uint64 are not representable by any array in practice since Solidity arrays are gas-bounded

	Key     any    // SegMappingKey: decoded key value
	KeyType string // SegMappingKey: Solidity type label
}

func structField(name string) PathSegment { return PathSegment{Kind: SegStructField, Name: name} }
func arrayIndex(i uint64) PathSegment      { return PathSegment{Kind: SegArrayIndex, Index: i} }
func arrayLength() PathSegment             { return PathSegment{Kind: SegArrayLength} }
func bytesLength() PathSegment             { return PathSegment{Kind: SegBytesLength} }
func mappingKey(keyType string, decoded any) PathSegment {
	return PathSegment{Kind: SegMappingKey, Key: decoded, KeyType: keyType}
}

// fullExpression renders name followed by one token per segment, per
// spec.md §6.2.
func fullExpression(name string, path []PathSegment) string {
	var b strings.Builder
	b.WriteString(name)
	for _, seg := range path {
		switch seg.Kind {
		case SegStructField:
			b.WriteByte('.')
			b.WriteString(seg.Name)
		case SegArrayIndex:
			fmt.Fprintf(&b, "[%d]", seg.Index)
		case SegMappingKey:
			fmt.Fprintf(&b, "[%s]", renderKey(seg.Key))
		case SegArrayLength, SegBytesLength:
			b.WriteString("._length")
		}
	}
	return b.String()
}

func renderKey(k any) string {
	switch v := k.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// clonePath returns a copy of the shared working path buffer, safe to store
// in an emitted AccessRecord after the buffer is reused for the next
// descent (spec.md §5 "working path buffer reused across descents").
func clonePath(path []PathSegment) []PathSegment {
	out := make([]PathSegment, len(path))
	copy(out, path)
	return out
}
