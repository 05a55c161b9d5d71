package entry

// Filter selects entries by optional attribute predicates. Zero-valued
// fields are ignored; set fields are combined with AND. Stores compile the
// filter to their native query form.
type Filter struct {
	Starred    *bool
	Source     string
	Provider   string
	Instrument string
	// Tag restricts the result to entries carrying the named tag. Tag
	// resolution is store-side; Match does not evaluate it.
	Tag string
}

// Match evaluates the attribute predicates against a single entry. The Tag
// predicate is excluded: tag associations live in the store, not on the
// entry.
func (f Filter) Match(e *Entry) bool {
	if f.Starred != nil && e.Starred != *f.Starred {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.Provider != "" && e.Provider != f.Provider {
		return false
	}
	if f.Instrument != "" && e.Instrument != f.Instrument {
		return false
	}
	return true
}
