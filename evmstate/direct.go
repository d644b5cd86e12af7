package evmstate

// decodeDirectVariable is the C5 entry point for a top-level storage
// variable whose type is a primitive, struct, bytes/string, or array
// (spec.md §4.8 first four buckets): it resolves the variable's type once
// and delegates to the shared recursive dispatcher.
func (c *decodeCtx) decodeDirectVariable(v Variable) (LabeledVariableAccess, bool, error) {
	td, err := c.layout.resolve(v.TypeID)
	if err != nil {
		return LabeledVariableAccess{}, false, err
	}
	c.path = c.path[:0]

	records, touched, err := c.decodeAtSlot(v.TypeID, v.Slot, v.OffsetInSlot)
	if err != nil {
		return LabeledVariableAccess{}, false, err
	}
	if !touched {
		return LabeledVariableAccess{}, false, nil
	}

	return LabeledVariableAccess{
		Name:   v.Label,
		Kind:   td.Kind,
		Type:   td.Label,
		Offset: v.OffsetInSlot,
		Trace:  records,
	}, true, nil
}
