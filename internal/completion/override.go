package completion

// FeedSource is the reserved name of the stdin-backed source.
const FeedSource = "feed"

// feedHeaders are the fixed completion fields offered for the feed source.
// Piped data gets synthetic H<i> column names at load time, so the generated
// asset ships with a fixed four-column vocabulary no matter what the manifest
// declares.
var feedHeaders = []string{"H0", "H1", "H2", "H3"}

// ApplyFeedOverride replaces the feed source's derived headers with the fixed
// vocabulary, discarding whatever its declared config produced. It must run
// after ResolveJoins so that sources joining against the feed observe its
// real pre-override headers.
func (r *Registry) ApplyFeedOverride() *Registry {
	if entry, ok := r.entries[FeedSource]; ok {
		entry.Headers = append([]string{}, feedHeaders...)
	}
	return r
}
