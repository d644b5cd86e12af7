package evmstate

import "go.uber.org/zap"

func zapLabel(label string) zap.Field { return zap.String("type_label", label) }

func zapSlot(slot Slot) zap.Field { return zap.Stringer("slot", slot) }

func zapVariable(name string) zap.Field { return zap.String("variable", name) }
