package suite

// Filter narrows a case list before a run. Zero-value fields match everything,
// so the zero Filter is a no-op. Filters are pure: they never change the
// semantics of an individual case run.
type Filter struct {
	Category Category
	Priority Priority
	Tag      string
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.Category == "" && f.Priority == "" && f.Tag == ""
}

// Apply returns the cases matching every set criterion, preserving order.
func (f Filter) Apply(cases []Case) []Case {
	if f.Empty() {
		return cases
	}

	res := make([]Case, 0, len(cases))
	for _, c := range cases {
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.Tag != "" && !hasTag(c.Tags, f.Tag) {
			continue
		}
		res = append(res, c)
	}
	return res
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
