package evmstate

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// mappingSlot computes keccak256(paddedKey ‖ baseSlot), spec.md §4.1. Both
// operands are already canonical 32-byte big-endian values; the key is
// always hashed in its full left-padded form regardless of its semantic
// width, matching the pattern demonstrated in the pack's
// geth-11-storage solution (hash the 32-byte key, then the 32-byte slot).
func mappingSlot(key, baseSlot Slot) Slot {
	h := sha3.NewLegacyKeccak256()
	h.Write(key[:])
	h.Write(baseSlot[:])
	var out Slot
	h.Sum(out[:0])
	return out
}

// dynamicArrayBase computes keccak256(baseSlot), spec.md §4.1.
func dynamicArrayBase(baseSlot Slot) Slot {
	h := sha3.NewLegacyKeccak256()
	h.Write(baseSlot[:])
	var out Slot
	h.Sum(out[:0])
	return out
}

// slotAdd computes baseSlot + delta mod 2**256, spec.md §4.1.
func slotAdd(baseSlot Slot, delta uint64) Slot {
	base := new(uint256.Int).SetBytes(baseSlot[:])
	d := new(uint256.Int).SetUint64(delta)
	base.Add(base, d) // uint256.Int.Add wraps mod 2**256
	return Slot(base.Bytes32())
}
