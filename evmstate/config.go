package evmstate

// Config is the set of bounds and feature toggles spec.md §6.3 requires the
// implementer to expose. Zero-value Config is not valid for Decode; use
// DefaultConfig and override selectively.
type Config struct {
	// MappingExplorationLimit caps total key probes across all nested
	// mappings of one mapping variable.
	MappingExplorationLimit int
	// MaxMappingDepth bounds the BFS depth per mapping variable. This is
	// the same knob as the source's hard-coded NESTED_MAPPINGS_LIMIT
	// (spec.md §9, Open Question 2).
	MaxMappingDepth int
	// EarlyTerminationThreshold stops a mapping variable's BFS once this
	// many matches have been found.
	EarlyTerminationThreshold int
	// AddressChecksum, when true, renders addresses in EIP-55 checksum
	// form instead of lower-case.
	AddressChecksum bool
}

// DefaultConfig returns the defaults spec.md §6.3 names.
func DefaultConfig() Config {
	return Config{
		MappingExplorationLimit:   10_000,
		MaxMappingDepth:           5,
		EarlyTerminationThreshold: 1_000,
		AddressChecksum:           false,
	}
}
