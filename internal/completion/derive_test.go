package completion

import (
	"testing"

	"github.com/geodex-io/geodex/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEndToEnd(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A", "B"},
		Sources: map[string]*sources.Source{
			"A": {Headers: []string{"id"}},
			"B": {
				Headers:       []string{"id", "name"},
				Subdelimiters: map[string]string{"name": ","},
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"id"}, With: []string{"A"}},
				},
			},
		},
	}

	r, err := Derive(m)
	require.NoError(t, err)

	a, _ := r.Entry("A")
	assert.Equal(t, []string{"id"}, a.Headers)
	assert.Empty(t, a.AddHeaders)

	b, _ := r.Entry("B")
	assert.Equal(t, []string{"id", "name", "name@raw"}, b.Headers)
	assert.Equal(t, []string{"id:id"}, b.AddHeaders)
}

func TestDeriveFromManifestYAML(t *testing.T) {
	m, err := sources.Parse([]byte(`
airports:
  headers: [iata_code, name, city_code]
  subdelimiters:
    city_code: ","
  join:
    - fields: city_code
      with: [cities, code]
    - fields: [iata_code, city_code]
      with: [ori_por]
cities:
  headers: [code, name]
ori_por:
  headers: [iata_code]
feed:
`))
	require.NoError(t, err)

	r, err := Derive(m)
	require.NoError(t, err)

	assert.Equal(t, []string{"airports", "cities", "ori_por", "feed"}, r.Names())

	airports, _ := r.Entry("airports")
	assert.Equal(t, []string{"iata_code", "name", "city_code", "city_code@raw"}, airports.Headers)
	assert.Equal(t, []string{
		"city_code:code",
		"city_code:name",
		"iata_code/city_code:iata_code",
	}, airports.AddHeaders)

	feed, _ := r.Entry("feed")
	assert.Equal(t, []string{"H0", "H1", "H2", "H3"}, feed.Headers)
	assert.Empty(t, feed.AddHeaders)
}

func TestDeriveUnknownJoinTargetAborts(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A"},
		Sources: map[string]*sources.Source{
			"A": {
				Headers: []string{"id"},
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"id"}, With: []string{"ghost"}},
				},
			},
		},
	}

	r, err := Derive(m)
	require.Error(t, err)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestDeriveJoinAgainstLaterSource(t *testing.T) {
	// Joins may reference a source declared after the joining one; the
	// two-phase pipeline guarantees the target is already expanded.
	m := &sources.Manifest{
		Names: []string{"first", "second"},
		Sources: map[string]*sources.Source{
			"first": {
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"s"}, With: []string{"second"}},
				},
			},
			"second": {
				Headers:       []string{"v"},
				Subdelimiters: map[string]string{"v": ";"},
			},
		},
	}

	r, err := Derive(m)
	require.NoError(t, err)

	first, _ := r.Entry("first")
	assert.Equal(t, []string{"s:v", "s:v@raw"}, first.AddHeaders)
}
