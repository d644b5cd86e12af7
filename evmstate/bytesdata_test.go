package evmstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsLongFormLowBit(t *testing.T) {
	require.False(t, isLongForm(MustSlot("0x00")))
	require.False(t, isLongForm(MustSlot("0x2a"))) // 0x2a is even -> short form
	require.True(t, isLongForm(MustSlot("0x2b")))   // odd -> long form
}

func TestDecodeBytesSideShortForm(t *testing.T) {
	// Short form: the low byte holds length*2 (low bit clear), value packed left.
	raw := make([]byte, 32)
	copy(raw, []byte("hi"))
	raw[31] = byte(len("hi") * 2) // length 2, short-form marker
	var v Slot
	copy(v[:], raw)

	st := decodeBytesSide(MustSlot("0x03"), v, nil)
	require.Equal(t, "hi", string(st.raw))
	require.False(t, st.truncated)
}

func TestDecodeBytesValueFallsBackToHexOnInvalidUTF8(t *testing.T) {
	invalid := []byte{0xff, 0xfe, 0xfd}
	decoded, note := decodeBytesValue("string", bytesState{raw: invalid})
	require.Equal(t, "0xfffefd", decoded)
	require.NotEmpty(t, note)
}

func TestDecodeBytesValueBytesLabelAlwaysHex(t *testing.T) {
	decoded, note := decodeBytesValue("bytes", bytesState{raw: []byte("hi")})
	require.Equal(t, "0x6869", decoded)
	require.Empty(t, note)
}
