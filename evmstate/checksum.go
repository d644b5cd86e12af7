package evmstate

import "golang.org/x/crypto/sha3"

// checksumAddress renders the EIP-55 mixed-case checksum form of a 20-byte
// address given as 40 lower-case hex characters without a "0x" prefix. Wired
// to Config.AddressChecksum (spec.md §5 supplemented feature).
func checksumAddress(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				c -= 'a' - 'A'
			}
		}
		out[i] = c
	}
	return string(out)
}
