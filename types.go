package i18n

// Param is one named parameter supplied to Get. Parameters travel as a
// sequence, not a map: the caller-given order is part of cache identity.
type Param struct {
	Name  string
	Value any
}

// P builds a Param.
func P(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// Entry is one node of a locale tree: either a literal template or an
// ordered mapping. The shape is decided once while loading and is never
// re-inspected during resolution.
type Entry interface {
	isEntry()
}

// LiteralEntry is a leaf holding template text.
type LiteralEntry struct {
	Text string
}

func (*LiteralEntry) isEntry() {}

// MappingEntry is an interior node. Its pairs act as namespace children when
// a lookup path passes through them and as condition branches when the path
// stops here. Pair order is the authored order and is load-bearing: branch
// selection is first match wins.
type MappingEntry struct {
	Pairs []EntryPair

	// DefaultText carries the reserved "default" pair, used when no branch
	// matches. HasDefault distinguishes an absent default from an empty one.
	DefaultText string
	HasDefault  bool
}

func (*MappingEntry) isEntry() {}

// EntryPair is a single key/entry pair of a MappingEntry.
type EntryPair struct {
	Key   string
	Entry Entry
}

// Get returns the child entry stored under key.
func (m *MappingEntry) Get(key string) (Entry, bool) {
	if m == nil {
		return nil, false
	}
	for _, pair := range m.Pairs {
		if pair.Key == key {
			return pair.Entry, true
		}
	}
	return nil, false
}

// Set replaces the entry for key in place, or appends a new pair. Existing
// keys keep their position.
func (m *MappingEntry) Set(key string, entry Entry) {
	for i, pair := range m.Pairs {
		if pair.Key == key {
			m.Pairs[i].Entry = entry
			return
		}
	}
	m.Pairs = append(m.Pairs, EntryPair{Key: key, Entry: entry})
}

// Clone returns a deep copy.
func (m *MappingEntry) Clone() *MappingEntry {
	if m == nil {
		return nil
	}
	out := &MappingEntry{
		DefaultText: m.DefaultText,
		HasDefault:  m.HasDefault,
	}
	if len(m.Pairs) > 0 {
		out.Pairs = make([]EntryPair, len(m.Pairs))
		for i, pair := range m.Pairs {
			out.Pairs[i] = EntryPair{Key: pair.Key, Entry: cloneEntry(pair.Entry)}
		}
	}
	return out
}

func cloneEntry(entry Entry) Entry {
	switch e := entry.(type) {
	case *LiteralEntry:
		clone := *e
		return &clone
	case *MappingEntry:
		return e.Clone()
	default:
		return entry
	}
}

// LocaleData pairs a locale code with its decoded tree.
type LocaleData struct {
	Locale string
	Tree   *MappingEntry
}
