package evmstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAccountFlattensStorageDiff(t *testing.T) {
	slot0 := MustSlot("0x00")
	layout := Layout{
		Types:   TypeDict{"t_u8": primitiveType("uint8", 1)},
		Storage: []Variable{{Label: "a", TypeID: "t_u8", Slot: slot0}},
	}
	next := MustSlot("0x07")
	acc := AccountDiff{
		Storage:   Diff{slot0: {Current: MustSlot("0x00"), Next: &next}},
		Intrinsic: map[string]any{"balance": "0x0", "nonce": uint64(1)},
	}

	res, err := DecodeAccount(acc, layout, nil, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Decoded, 1)
	require.Equal(t, uint64(7), res.Decoded["a"].Trace[0].Next.Decoded)
}
