package completion

// RawSuffix marks the synthetic field holding the unsplit value of a
// subdelimited field.
const RawSuffix = "@raw"

// RawField returns the synthetic field name for the unsplit counterpart of a
// subdelimited field.
func RawField(field string) string {
	return field + RawSuffix
}

// ExpandHeaders rewrites every entry's headers so that each subdelimited
// field is immediately followed by its raw counterpart. It must run for all
// sources before any join is resolved, because a join may reference any other
// source's expanded headers regardless of declaration order.
//
// Expansion is idempotent and never emits a duplicate field: re-expanding an
// already-expanded entry yields the same sequence.
func (r *Registry) ExpandHeaders() *Registry {
	for _, name := range r.names {
		entry := r.entries[name]
		entry.Headers = expandHeaders(entry.Headers, entry.subdelimiters)
	}
	return r
}

func expandHeaders(headers []string, subdelimiters map[string]string) []string {
	expanded := make([]string, 0, len(headers))
	seen := make(map[string]bool, len(headers))

	for _, field := range headers {
		if !seen[field] {
			expanded = append(expanded, field)
			seen[field] = true
		}

		if _, ok := subdelimiters[field]; ok {
			raw := RawField(field)
			if !seen[raw] {
				expanded = append(expanded, raw)
				seen[raw] = true
			}
		}
	}

	return expanded
}
