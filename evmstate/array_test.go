package evmstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A static array packs its fixed-size elements directly into consecutive
// slots starting at the array's own base slot (spec.md §4.7).
func TestDecodeStaticArrayPacksConsecutiveSlots(t *testing.T) {
	slot7 := MustSlot("0x07")
	layout := Layout{
		Types: TypeDict{
			"t_uint256": primitiveType("uint256", 32),
			"t_arr3":    {Kind: KindInplaceStaticArray, Label: "uint256[3]", BaseTypeID: "t_uint256", SizeBytes: 96},
		},
		Storage: []Variable{
			{Label: "fixed", TypeID: "t_arr3", Slot: slot7},
		},
	}
	elem1Next := MustSlot("0x0A")
	elem2Next := MustSlot("0x0B")
	diff := Diff{
		slotAdd(slot7, 1): {Current: MustSlot("0x00"), Next: &elem1Next},
		slotAdd(slot7, 2): {Current: MustSlot("0x00"), Next: &elem2Next},
	}

	res, err := Decode(DecodeRequest{Diff: diff, Layout: layout, Config: DefaultConfig()})
	require.NoError(t, err)

	lva, ok := res.Decoded["fixed"]
	require.True(t, ok)
	require.Len(t, lva.Trace, 2) // only indices 1 and 2 appear in the diff

	require.Equal(t, uint64(1), lva.Trace[0].Path[0].Index)
	require.Equal(t, uint64(2), lva.Trace[1].Path[0].Index)
	require.Empty(t, res.UnexploredSlots)
}

func TestDecodeArrayLengthReadsLastEightBytes(t *testing.T) {
	v := MustSlot("0x2a")
	require.Equal(t, uint64(42), decodeArrayLength(v))

	v2 := MustSlot("0x0100") // 256
	require.Equal(t, uint64(256), decodeArrayLength(v2))
}
