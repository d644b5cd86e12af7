package evmstate

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestMappingSlotMatchesManualKeccak(t *testing.T) {
	key := MustSlot("0x000000000000000000000000000000000000000000000000000000000000aA")
	base := MustSlot("0x01")

	h := sha3.NewLegacyKeccak256()
	h.Write(key[:])
	h.Write(base[:])
	want := h.Sum(nil)

	got := mappingSlot(key, base)
	require.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got[:]))
}

func TestDynamicArrayBaseMatchesManualKeccak(t *testing.T) {
	base := MustSlot("0x05")
	h := sha3.NewLegacyKeccak256()
	h.Write(base[:])
	want := h.Sum(nil)

	got := dynamicArrayBase(base)
	require.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got[:]))
}

func TestSlotAddWrapsModulo2To256(t *testing.T) {
	max := MustSlot("0x" + repeat("ff", 32))
	got := slotAdd(max, 1)
	require.Equal(t, MustSlot("0x00"), got)
}

func TestSlotAddSimple(t *testing.T) {
	got := slotAdd(MustSlot("0x05"), 3)
	require.Equal(t, MustSlot("0x08"), got)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
