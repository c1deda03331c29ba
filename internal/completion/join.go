package completion

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// ErrUnknownSource is returned when a join names a source absent from the
// registry.
var ErrUnknownSource = errors.New("unknown source")

// ResolveJoins computes every source's composite suggestions. For each join,
// the composite label is prefixed to each of the target source's headers, in
// the target's header order; results accumulate on AddHeaders in join
// declaration order.
//
// ResolveJoins must run after ExpandHeaders has processed all sources, so a
// join always observes its target's fully expanded headers. Overrides applied
// afterwards do not change composites already computed here.
func (r *Registry) ResolveJoins() (*Registry, error) {
	for _, name := range r.names {
		entry := r.entries[name]

		for _, join := range entry.joins {
			label := join.Fields.Label()

			target, ok := r.entries[join.Target()]
			if !ok {
				return nil, fmt.Errorf("source %q: join %q: %w %q", name, label, ErrUnknownSource, join.Target())
			}

			entry.AddHeaders = append(entry.AddHeaders, lo.Map(target.Headers, func(field string, _ int) string {
				return label + ":" + field
			})...)
		}
	}

	return r, nil
}
