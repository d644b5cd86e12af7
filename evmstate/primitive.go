package evmstate

import (
	"encoding/hex"
	"strings"

	"github.com/holiman/uint256"
)

// extractBytes pulls the length bytes situated at byte positions
// [32-offset-length, 32-offset) out of a 32-byte slot value, per spec.md
// §4.2: Solidity packs low-offset bytes at the right-most positions.
func extractBytes(v Slot, offset, length int) []byte {
	start := 32 - offset - length
	end := 32 - offset
	out := make([]byte, length)
	copy(out, v[start:end])
	return out
}

// decodePrimitive decodes the length bytes at the declared offset of v into
// the Go value appropriate for the Solidity type label, per spec.md §4.2.
// Unknown labels return (nil, false): the caller attaches a Note and
// continues (spec.md §7 decode-local recoverable).
func decodePrimitive(label string, v Slot, offset, length int) (decoded any, ok bool) {
	raw := extractBytes(v, offset, length)
	switch {
	case label == "bool":
		for _, b := range raw {
			if b != 0 {
				return true, true
			}
		}
		return false, true
	case label == "address":
		return strings.ToLower("0x" + hex.EncodeToString(raw)), true
	case strings.HasPrefix(label, "uint"):
		return decodeUint(raw)
	case strings.HasPrefix(label, "int"):
		return decodeInt(raw, length)
	case strings.HasPrefix(label, "bytes") && !strings.Contains(label, "["):
		return "0x" + hex.EncodeToString(raw), true
	case strings.HasPrefix(label, "enum"):
		v, ok := decodeUint(raw)
		return v, ok
	default:
		return nil, false
	}
}

func decodeUint(raw []byte) (any, bool) {
	if len(raw) <= 8 {
		var acc uint64
		for _, b := range raw {
			acc = acc<<8 | uint64(b)
		}
		return acc, true
	}
	return new(uint256.Int).SetBytes(raw), true
}

func decodeInt(raw []byte, widthBytes int) (any, bool) {
	u := new(uint256.Int).SetBytes(raw)
	bitWidth := widthBytes * 8
	signBit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitWidth-1))
	if u.Lt(signBit) {
		// non-negative
		if widthBytes <= 8 {
			return int64(u.Uint64()), true
		}
		return u, true
	}
	// sign-extend: value - 2**bitWidth
	modulus := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitWidth))
	neg := new(uint256.Int).Sub(modulus, u) // magnitude of the negative value
	if widthBytes <= 8 {
		return -int64(neg.Uint64()), true
	}
	signed := new(uint256.Int).Sub(new(uint256.Int), neg) // 0 - neg, wraps to the 256-bit two's complement form
	return &signedBig{magnitude: neg, asUint256: signed}, true
}

// signedBig represents a >64-bit negative integer. uint256.Int has no
// signed representation, so the decoded value carries both its magnitude
// (for %v / String()) and its 256-bit two's-complement bit pattern (for
// round-trip re-encoding, spec.md §8).
type signedBig struct {
	magnitude *uint256.Int
	asUint256 *uint256.Int
}

func (s *signedBig) String() string { return "-" + s.magnitude.Dec() }

// decodePrimitiveAt decodes an Inplace variable/member at baseSlot, emitting
// one AccessRecord (spec.md §4.2, §4.5). Missing slots yield (nil, false,
// nil): the record is simply omitted, never an error.
func (c *decodeCtx) decodePrimitiveAt(td TypeDescriptor, baseSlot Slot, baseOffset uint8) ([]AccessRecord, bool, error) {
	entry, ok := c.lookup(baseSlot)
	if !ok {
		return nil, false, nil
	}
	length := int(td.SizeBytes)
	offset := int(baseOffset)

	rec := AccessRecord{
		Slots: []Slot{baseSlot},
		Path:  clonePath(c.path),
	}
	curDecoded, curOK := decodePrimitive(td.Label, entry.Current, offset, length)
	if !curOK {
		rec.Note = "unrecognized primitive type label " + td.Label
		c.log.Warn("evmstate: unrecognized primitive type", zapLabel(td.Label))
	}
	curDecoded = c.applyAddressChecksum(td.Label, curOK, curDecoded)
	rec.Current = newHex32(entry.Current, valueOrNil(curOK, curDecoded))

	if entry.Next != nil && !bytesEqualAt(entry.Current, *entry.Next, offset, length) {
		nextDecoded, nextOK := decodePrimitive(td.Label, *entry.Next, offset, length)
		nextDecoded = c.applyAddressChecksum(td.Label, nextOK, nextDecoded)
		next := newHex32(*entry.Next, valueOrNil(nextOK, nextDecoded))
		rec.Next = &next
	}

	c.claim(baseSlot)
	return []AccessRecord{rec}, true, nil
}

// applyAddressChecksum renders an address decoded value in EIP-55 mixed-case
// form when Config.AddressChecksum is set (spec.md §5 supplemented feature).
func (c *decodeCtx) applyAddressChecksum(label string, ok bool, decoded any) any {
	if !ok || label != "address" || !c.cfg.AddressChecksum {
		return decoded
	}
	s, isStr := decoded.(string)
	if !isStr || len(s) != 42 {
		return decoded
	}
	return "0x" + checksumAddress(s[2:])
}

func valueOrNil(ok bool, v any) any {
	if !ok {
		return nil
	}
	return v
}

// bytesEqualAt compares the field-width slice of two slot values, the
// byte-level equality spec.md §4.5 says is sufficient to stand in for
// semantic equality of the decoded value.
func bytesEqualAt(a, b Slot, offset, length int) bool {
	ab := extractBytes(a, offset, length)
	bb := extractBytes(b, offset, length)
	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}
	return true
}
