package evmstate

// AccessRecord is one observed access of a scalar, slot group, or length
// field (spec.md §3, §6.2).
type AccessRecord struct {
	Current Hex32
	Next    *Hex32 // nil iff not modified
	Slots   []Slot
	Path    []PathSegment

	// Keys is mapping-only; Note can be set on any record.
	Keys  []MappingKeyValue // populated for mapping matches, outermost first
	Index *uint64           // not set by the resolvers; an array element's index is the SegArrayIndex segment of Path
	Note  string            // decode-local recoverable condition, if any

	Truncated bool // set by C3 when a long-form bytes/string is missing a data slot
}

// MappingKeyValue is the rendered form of one resolved mapping key, exposed
// on AccessRecord.Keys (spec.md §6.2).
type MappingKeyValue struct {
	Type  string
	Value any
}

// Modified reports whether the slot(s) backing this record changed
// (spec.md §3 "equivalent to presence of next").
func (r AccessRecord) Modified() bool { return r.Next != nil }

// FullExpression renders name plus this record's path per spec.md §6.2.
func (r AccessRecord) FullExpression(name string) string { return fullExpression(name, r.Path) }

// VariableKind is the classifier bucket a variable's type descriptor
// resolves to (spec.md §3).
type VariableKind = TypeKind

// LabeledVariableAccess is the top-level output per storage variable
// (spec.md §3, §6.2). Trace holds a single record for a primitive, one
// record per touched member for a struct, a length record and a content
// record for bytes/string, and one record per observed access for arrays
// and mappings.
type LabeledVariableAccess struct {
	Name   string
	Kind   VariableKind
	Type   string
	Offset uint8 // only meaningful when non-zero; omitted by callers rendering JSON via OffsetPtr
	Trace  []AccessRecord
}

// OffsetPtr returns nil when Offset is zero, matching spec.md §6.2's
// "offset field omitted when zero".
func (v LabeledVariableAccess) OffsetPtr() *uint8 {
	if v.Offset == 0 {
		return nil
	}
	o := v.Offset
	return &o
}

// DecodeRequest is the input to Decode (spec.md §2).
type DecodeRequest struct {
	Diff          Diff
	Layout        Layout
	CandidateKeys []CandidateKey
	Config        Config
}

// DecodeResult is the total output of one decode call (spec.md §4.8).
type DecodeResult struct {
	Decoded         map[string]LabeledVariableAccess
	UnexploredSlots []Slot
}
