package i18n

// resolver walks an entry tree and picks the first branch whose condition
// holds. evaluate combines condition rendering with evaluation; format binds
// the caller's parameters into template text.
type resolver struct {
	evaluate func(condition string) bool
	format   func(template string) string
}

// resolve returns the formatted text for entry. inherited carries the
// nearest enclosing default: a mapping with its own default overrides it for
// everything below. A conditional with no matching branch formats the
// effective default, or yields the empty string when none exists anywhere up
// the chain.
func (r resolver) resolve(entry Entry, inherited *string) string {
	switch e := entry.(type) {
	case *LiteralEntry:
		return r.format(e.Text)
	case *MappingEntry:
		effective := inherited
		if e.HasDefault {
			text := e.DefaultText
			effective = &text
		}
		for _, pair := range e.Pairs {
			if r.evaluate(pair.Key) {
				return r.resolve(pair.Entry, effective)
			}
		}
		if effective != nil {
			return r.format(*effective)
		}
		return ""
	}
	return ""
}
