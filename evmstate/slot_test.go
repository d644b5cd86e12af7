package evmstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotFromHexPadsShortInput(t *testing.T) {
	s, err := SlotFromHex("0x01")
	require.NoError(t, err)
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", s.String())
	for i := 0; i < 31; i++ {
		require.Zero(t, s[i])
	}
}

func TestSlotFromHexRejectsOversizedInput(t *testing.T) {
	_, err := SlotFromHex("0x" + repeat("00", 33)) // 33 bytes of valid hex
	require.Error(t, err)
}

func TestSlotLessOrdersLexically(t *testing.T) {
	a := MustSlot("0x00")
	b := MustSlot("0x01")
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.False(t, a.Less(a))
}

func TestMustSlotPanicsOnInvalidHex(t *testing.T) {
	require.Panics(t, func() { MustSlot("zz") })
}
