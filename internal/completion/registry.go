// Package completion derives the completion vocabulary of every source in the
// manifest. It expands subdelimited fields into their raw counterparts,
// resolves cross-source joins into composite suggestions, and exposes the
// result as a registry consumed by the template renderer.
package completion

import (
	"github.com/geodex-io/geodex/internal/sources"
)

// Entry is the derived completion state of one source.
type Entry struct {
	// Name is the source name from the manifest.
	Name string

	// Headers are the source's own completion fields, subdelimiter-expanded.
	Headers []string

	// AddHeaders are join-derived composite suggestions, kept separate from
	// the source's own fields. Each entry has the form "<label>:<field>".
	AddHeaders []string

	subdelimiters map[string]string
	joins         []sources.JoinSpec
}

// Vocabulary returns the entry's full completion vocabulary: its own headers
// followed by its join-derived composites.
func (e *Entry) Vocabulary() []string {
	vocabulary := make([]string, 0, len(e.Headers)+len(e.AddHeaders))
	vocabulary = append(vocabulary, e.Headers...)
	return append(vocabulary, e.AddHeaders...)
}

// Registry holds the derived entry of every source, in manifest declaration
// order. It is built once per run, threaded through the derivation stages,
// and read-only at render time.
type Registry struct {
	names   []string
	entries map[string]*Entry
}

// NewRegistry builds a structurally complete registry from the manifest.
// Sources declared with an absent or null config get empty headers and joins;
// declared configs pass through with nil sequences replaced by empty ones.
// The manifest itself is never modified.
func NewRegistry(m *sources.Manifest) *Registry {
	r := &Registry{
		names:   append([]string{}, m.Names...),
		entries: make(map[string]*Entry, len(m.Names)),
	}

	for _, name := range m.Names {
		entry := &Entry{
			Name:       name,
			Headers:    []string{},
			AddHeaders: []string{},
		}

		if src := m.Sources[name]; src != nil {
			entry.Headers = append(entry.Headers, src.Headers...)
			entry.subdelimiters = src.Subdelimiters
			entry.joins = src.Join
		}

		r.entries[name] = entry
	}

	return r
}

// Names returns the source names in manifest declaration order.
func (r *Registry) Names() []string {
	return r.names
}

// Entry returns the derived entry for a source.
func (r *Registry) Entry(name string) (*Entry, bool) {
	entry, ok := r.entries[name]
	return entry, ok
}

// Entries returns all derived entries in manifest declaration order.
func (r *Registry) Entries() []*Entry {
	entries := make([]*Entry, 0, len(r.names))
	for _, name := range r.names {
		entries = append(entries, r.entries[name])
	}
	return entries
}

// Len returns the number of sources in the registry.
func (r *Registry) Len() int {
	return len(r.names)
}
