package i18n

// mergeEntries folds incoming into base and returns the result, leaving both
// inputs untouched. Mapping pairs merge recursively: base pair order is
// kept, keys overridden by incoming stay at their base position, and keys
// new in incoming append in incoming order. An incoming default replaces the
// base default. Any literal/mapping shape mismatch resolves to a copy of
// incoming.
func mergeEntries(base, incoming Entry) Entry {
	baseMap, baseOK := base.(*MappingEntry)
	incomingMap, incomingOK := incoming.(*MappingEntry)
	if !baseOK || !incomingOK {
		return cloneEntry(incoming)
	}

	out := baseMap.Clone()
	if incomingMap.HasDefault {
		out.DefaultText = incomingMap.DefaultText
		out.HasDefault = true
	}
	for _, pair := range incomingMap.Pairs {
		if existing, ok := out.Get(pair.Key); ok {
			out.Set(pair.Key, mergeEntries(existing, pair.Entry))
			continue
		}
		out.Set(pair.Key, cloneEntry(pair.Entry))
	}
	return out
}
