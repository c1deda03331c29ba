package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
airports:
  file: data/airports.csv
  headers: [iata_code, name, city_code]
  subdelimiters:
    city_code: ","
  join:
    - fields: city_code
      with: [cities]
cities:
  file: data/cities.csv
  delimiter: "|"
  headers: [code, name]
feed:
`

func TestParsePreservesDeclarationOrder(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"airports", "cities", "feed"}, m.Names)
}

func TestParseNullSourceKeptAsNil(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	src, ok := m.Get("feed")
	assert.True(t, ok)
	assert.Nil(t, src)
}

func TestParseSourceFields(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	airports, ok := m.Get("airports")
	require.True(t, ok)
	require.NotNil(t, airports)
	assert.Equal(t, []string{"iata_code", "name", "city_code"}, airports.Headers)
	assert.Equal(t, map[string]string{"city_code": ","}, airports.Subdelimiters)
	require.Len(t, airports.Join, 1)
	assert.Equal(t, "city_code", airports.Join[0].Fields.Label())
	assert.Equal(t, "cities", airports.Join[0].Target())
}

func TestParseDefaultDelimiter(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	airports, _ := m.Get("airports")
	assert.Equal(t, "^", airports.Delimiter)

	// An explicit delimiter is kept.
	cities, _ := m.Get("cities")
	assert.Equal(t, "|", cities.Delimiter)
}

func TestParseDuplicateSourceRejected(t *testing.T) {
	_, err := Parse([]byte("a:\n  headers: [x]\na:\n  headers: [y]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source")
}

func TestParseNonMappingRejected(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}

func TestParseEmptyWithRejected(t *testing.T) {
	_, err := Parse([]byte("a:\n  headers: [x]\n  join:\n    - fields: x\n      with: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty with list")
}

func TestParseMalformedJoinFieldsRejected(t *testing.T) {
	_, err := Parse([]byte("a:\n  join:\n    - fields: {bad: shape}\n      with: [b]\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFields)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"airports", "cities", "feed"}, m.Names)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read sources manifest")
}
