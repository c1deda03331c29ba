package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/filesystem"
	"github.com/geodex-io/geodex/internal/sources"
)

const airportsData = `# iata_code^name^city_code^lat^lng
CDG^Paris Charles de Gaulle^PAR,RSY^49.012779^2.550000
ORY^Paris Orly^PAR^48.725278^2.359444

NCE^Nice Cote d'Azur^NCE^43.658411^7.215872
CDG^Roissy duplicate^PAR^49.012779^2.550000
XYZ^No city`

func airportsSource() *sources.Source {
	return &sources.Source{
		Headers:       []string{"iata_code", "name", "city_code", "lat", "lng"},
		Subdelimiters: map[string]string{"city_code": ","},
		KeyFields:     sources.FieldList{"iata_code"},
		File:          "airports.csv",
		Delimiter:     "^",
	}
}

func loadAirports(t *testing.T) *Dataset {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "airports.csv"), []byte(airportsData), 0644))

	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})
	ds, err := loader.LoadSource("airports", airportsSource(), dir)
	require.NoError(t, err)
	return ds
}

func TestLoadSourceSkipsCommentsAndBlankLines(t *testing.T) {
	ds := loadAirports(t)

	assert.Equal(t, 5, ds.Len())
}

func TestLoadSourceSplitsSubdelimitedFields(t *testing.T) {
	ds := loadAirports(t)

	row, ok := ds.Get("CDG")
	require.True(t, ok)
	assert.Equal(t, []string{"PAR", "RSY"}, row.GetAll("city_code"))
	assert.Equal(t, "PAR", row.Get("city_code"))
	assert.Equal(t, "PAR,RSY", row.Get("city_code@raw"))
}

func TestLoadSourceSuffixesDuplicateKeys(t *testing.T) {
	ds := loadAirports(t)

	assert.Equal(t, []string{"CDG", "ORY", "NCE", "CDG@1", "XYZ"}, ds.Keys())

	first, ok := ds.Get("CDG")
	require.True(t, ok)
	assert.Equal(t, "Paris Charles de Gaulle", first.Get("name"))

	dup, ok := ds.Get("CDG@1")
	require.True(t, ok)
	assert.Equal(t, "Roissy duplicate", dup.Get("name"))
}

func TestLoadSourcePadsShortRows(t *testing.T) {
	ds := loadAirports(t)

	row, ok := ds.Get("XYZ")
	require.True(t, ok)
	assert.Equal(t, "No city", row.Get("name"))
	assert.Equal(t, "", row.Get("city_code"))
	assert.Equal(t, "", row.Get("lat"))
}

func TestLoadSourceRecordsLineNumbers(t *testing.T) {
	ds := loadAirports(t)

	lines := map[string]int{}
	for _, row := range ds.Rows() {
		lines[row.Key] = row.Line
	}
	assert.Equal(t, map[string]int{"CDG": 2, "ORY": 3, "NCE": 5, "CDG@1": 6, "XYZ": 7}, lines)
}

func TestLoadSourceMissingFile(t *testing.T) {
	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})

	_, err := loader.LoadSource("airports", airportsSource(), t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "airports")
}

func TestLoadSourceWithoutDataFile(t *testing.T) {
	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})

	_, err := loader.LoadSource("feed", &sources.Source{}, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data file")
}

func TestLoadFeedDerivesSyntheticHeaders(t *testing.T) {
	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})

	ds, err := loader.LoadFeed("feed", nil, strings.NewReader("a^b^c\nd^e^f\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"H0", "H1", "H2"}, ds.Headers())
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "b", ds.Rows()[0].Get("H1"))
	assert.Equal(t, "d", ds.Rows()[1].Get("H0"))
	assert.Empty(t, ds.Keys())
}

func TestLoadFeedHonorsDeclaredDelimiter(t *testing.T) {
	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})

	ds, err := loader.LoadFeed("feed", &sources.Source{Delimiter: "|"}, strings.NewReader("x|y\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"H0", "H1"}, ds.Headers())
	assert.Equal(t, "y", ds.Rows()[0].Get("H1"))
}

func TestRowKeyJoinsMultipleKeyFields(t *testing.T) {
	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})
	src := airportsSource()
	src.KeyFields = sources.FieldList{"iata_code", "city_code"}

	ds, err := loader.load("airports", src, strings.NewReader(airportsData), src.Headers)
	require.NoError(t, err)

	// Subdelimited key fields contribute their first value.
	assert.Equal(t, "CDG+PAR", ds.Keys()[0])
}
