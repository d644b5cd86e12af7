package evmstate

import "go.uber.org/zap"

// AccountDiff is the per-address shape an EVM environment hands a caller
// (spec.md §6.1): a flat slot diff plus intrinsic account fields this
// engine never decodes.
type AccountDiff struct {
	Storage   Diff
	Intrinsic map[string]any
}

// DecodeAccount is a convenience wrapper around Decode for the shape
// callers integrating with an EVM environment actually have in hand: an
// AccountDiff rather than a pre-flattened Diff (SPEC_FULL.md §5).
func DecodeAccount(acc AccountDiff, layout Layout, keys []CandidateKey, cfg Config) (*DecodeResult, error) {
	return DecodeAccountWithLogger(acc, layout, keys, cfg, zap.NewNop())
}

// DecodeAccountWithLogger is DecodeAccount with an explicit logger.
func DecodeAccountWithLogger(acc AccountDiff, layout Layout, keys []CandidateKey, cfg Config, log *zap.Logger) (*DecodeResult, error) {
	return DecodeWithLogger(DecodeRequest{
		Diff:          acc.Storage,
		Layout:        layout,
		CandidateKeys: keys,
		Config:        cfg,
	}, log)
}
