package completion

import (
	"github.com/geodex-io/geodex/internal/sources"
)

// Derive runs the full derivation pipeline over the manifest: build the
// registry, expand every source's headers, resolve all joins, then apply the
// feed override. The stages run strictly in that order; any error aborts the
// run with no partial result.
func Derive(m *sources.Manifest) (*Registry, error) {
	registry, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	if err != nil {
		return nil, err
	}

	return registry.ApplyFeedOverride(), nil
}
