// Package fields answers field listing and lookup queries against a derived
// completion registry.
package fields

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/geodex-io/geodex/internal/completion"
)

// Match is a vocabulary field matched against a search pattern.
// MatchedIndexes are byte offsets into Field, for highlighting.
type Match struct {
	Field          string
	MatchedIndexes []int
	Score          int
}

// List returns the full vocabulary of the named source, headers first.
func List(registry *completion.Registry, source string) ([]string, error) {
	entry, ok := registry.Entry(source)
	if !ok {
		return nil, fmt.Errorf("%w %q", completion.ErrUnknownSource, source)
	}
	return entry.Vocabulary(), nil
}

// Search ranks the vocabulary of the named source against pattern. An empty
// pattern matches every field in vocabulary order.
func Search(registry *completion.Registry, source string, pattern string) ([]Match, error) {
	vocabulary, err := List(registry, source)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return lo.Map(vocabulary, func(field string, _ int) Match {
			return Match{Field: field}
		}), nil
	}

	results := fuzzy.Find(pattern, vocabulary)
	matches := make([]Match, 0, len(results))
	for _, result := range results {
		matches = append(matches, Match{
			Field:          result.Str,
			MatchedIndexes: result.MatchedIndexes,
			Score:          result.Score,
		})
	}
	return matches, nil
}
