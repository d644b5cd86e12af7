package evmstate

// TypeID is the caller-defined opaque identifier used to cross-reference
// TypeDescriptor entries. The core only requires referential consistency
// within one Layout (spec.md §6.1).
type TypeID string

// TypeKind tags which variant of TypeDescriptor a given entry is. Go has no
// sum types, so the engine uses an explicit tag plus exhaustive case
// analysis (spec.md §9 "Dynamic dispatch across type variants") rather than
// an interface with per-kind implementations.
type TypeKind int

const (
	KindInplace TypeKind = iota
	KindInplaceStruct
	KindInplaceStaticArray
	KindBytes
	KindDynamicArray
	KindMapping
)

func (k TypeKind) String() string {
	switch k {
	case KindInplace:
		return "primitive"
	case KindInplaceStruct:
		return "struct"
	case KindInplaceStaticArray:
		return "static_array"
	case KindBytes:
		return "bytes"
	case KindDynamicArray:
		return "dynamic_array"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// StructMember describes one field of an InplaceStruct descriptor.
type StructMember struct {
	Label        string
	TypeID       TypeID
	SlotRelative uint64 // member's slot offset relative to the struct's base slot, when declared by the layout source
	OffsetInSlot uint8
}

// TypeDescriptor is the tagged union described in spec.md §3. Only the
// fields relevant to Kind are populated; callers populate Kind first.
type TypeDescriptor struct {
	Kind TypeKind

	Label     string
	SizeBytes uint64 // Inplace, InplaceStruct, InplaceStaticArray

	Members []StructMember // InplaceStruct

	BaseTypeID TypeID // InplaceStaticArray, DynamicArray

	KeyTypeID   TypeID // Mapping
	ValueTypeID TypeID // Mapping
}

// TypeDict is the type dictionary from spec.md §3: every TypeID referenced
// by a Variable or a nested TypeDescriptor must resolve here.
type TypeDict map[TypeID]TypeDescriptor

// Variable is one declared storage variable (spec.md §3).
type Variable struct {
	Label        string
	TypeID       TypeID
	Slot         Slot
	OffsetInSlot uint8
}

// Layout is the storage-layout descriptor for one contract address
// (spec.md §6.1).
type Layout struct {
	Storage []Variable
	Types   TypeDict
}

func (l Layout) resolve(id TypeID) (TypeDescriptor, error) {
	td, ok := l.Types[id]
	if !ok {
		return TypeDescriptor{}, &LayoutError{
			Kind:    ErrUnknownTypeID,
			Message: "type id " + string(id) + " not present in type dictionary",
		}
	}
	return td, nil
}

// mappingNestingDepth counts "mapping(" occurrences in a type label, the
// ordering key spec.md §4.4 uses to resolve shallow mappings first.
func mappingNestingDepth(label string) int {
	depth := 0
	for i := 0; i+len("mapping(") <= len(label); i++ {
		if label[i:i+len("mapping(")] == "mapping(" {
			depth++
		}
	}
	return depth
}
