package evmstate

// decodeStaticArrayAt resolves a T[n] array, stride arithmetic over
// elements per spec.md §4.7. The element count is derived from the
// descriptor's total size divided by its element size.
func (c *decodeCtx) decodeStaticArrayAt(td TypeDescriptor, baseSlot Slot, baseOffset uint8) ([]AccessRecord, bool, error) {
	elemTD, err := c.layout.resolve(td.BaseTypeID)
	if err != nil {
		return nil, false, err
	}
	elemSize := memberSize(elemTD)
	if elemSize == 0 {
		return nil, false, nil
	}
	count := td.SizeBytes / elemSize

	var records []AccessRecord
	touched := false
	for i := uint64(0); i < count; i++ {
		byteOffset := uint64(baseOffset) + i*elemSize
		elemSlot := slotAdd(baseSlot, byteOffset/32)
		elemOffset := uint8(byteOffset % 32)

		var (
			elemRecords []AccessRecord
			elemTouched bool
			elemErr     error
		)
		c.withPath(arrayIndex(i), func() {
			elemRecords, elemTouched, elemErr = c.decodeAtSlot(td.BaseTypeID, elemSlot, elemOffset)
		})
		if elemErr != nil {
			return nil, false, elemErr
		}
		if elemTouched {
			touched = true
			records = append(records, elemRecords...)
		}
	}
	return records, touched, nil
}

// decodeDynamicArrayAt resolves a T[] array per spec.md §4.7: the length
// lives at baseSlot, elements begin at keccak256(baseSlot).
func (c *decodeCtx) decodeDynamicArrayAt(td TypeDescriptor, baseSlot Slot) ([]AccessRecord, bool, error) {
	entry, ok := c.lookup(baseSlot)
	if !ok {
		return nil, false, nil
	}

	curLen := decodeArrayLength(entry.Current)
	effectiveLen := curLen

	var lengthRec AccessRecord
	c.withPath(arrayLength(), func() {
		lengthRec = AccessRecord{
			Current: newHex32(entry.Current, curLen),
			Slots:   []Slot{baseSlot},
			Path:    clonePath(c.path),
		}
	})
	if entry.Next != nil {
		nextLen := decodeArrayLength(*entry.Next)
		if nextLen > effectiveLen {
			effectiveLen = nextLen // spec.md §4.7: max(current, next) to cover grow/shrink within one transaction
		}
		next := newHex32(*entry.Next, nextLen)
		lengthRec.Next = &next
	}
	c.claim(baseSlot)

	elemTD, err := c.layout.resolve(td.BaseTypeID)
	if err != nil {
		return nil, false, err
	}
	elemSize := memberSize(elemTD)
	if elemSize == 0 {
		return []AccessRecord{lengthRec}, true, nil
	}
	root := dynamicArrayBase(baseSlot)

	records := []AccessRecord{lengthRec}
	for i := uint64(0); i < effectiveLen; i++ {
		byteOffset := i * elemSize
		elemSlot := slotAdd(root, byteOffset/32)
		elemOffset := uint8(byteOffset % 32)

		var (
			elemRecords []AccessRecord
			elemTouched bool
			elemErr     error
		)
		c.withPath(arrayIndex(i), func() {
			elemRecords, elemTouched, elemErr = c.decodeAtSlot(td.BaseTypeID, elemSlot, elemOffset)
		})
		if elemErr != nil {
			return nil, false, elemErr
		}
		if elemTouched {
			records = append(records, elemRecords...)
		}
	}
	return records, true, nil
}

func decodeArrayLength(v Slot) uint64 {
	var acc uint64
	for _, b := range v[24:] {
		acc = acc<<8 | uint64(b)
	}
	return acc
}
