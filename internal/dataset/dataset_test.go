package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/filesystem"
)

func TestGeoFieldsDetection(t *testing.T) {
	ds := loadAirports(t)

	lat, lng, ok := ds.GeoFields()
	require.True(t, ok)
	assert.Equal(t, "lat", lat)
	assert.Equal(t, "lng", lng)
	assert.True(t, ds.HasGeoSupport())
}

func TestCoordinatesParsesRow(t *testing.T) {
	ds := loadAirports(t)
	row, ok := ds.Get("CDG")
	require.True(t, ok)

	lat, lng, err := ds.Coordinates(row)
	require.NoError(t, err)
	assert.InDelta(t, 49.012779, lat, 1e-9)
	assert.InDelta(t, 2.550000, lng, 1e-9)
}

func TestCoordinatesRejectsUnparsableValues(t *testing.T) {
	ds := loadAirports(t)
	row, ok := ds.Get("XYZ")
	require.True(t, ok)

	_, _, err := ds.Coordinates(row)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoGeoSupport)
	assert.Contains(t, err.Error(), "XYZ")
}

func TestCoordinatesWithoutGeoSupport(t *testing.T) {
	loader := NewLoader(zap.NewNop(), filesystem.DefaultFileSystem{})
	ds, err := loader.LoadFeed("feed", nil, strings.NewReader("a^b\n"))
	require.NoError(t, err)

	assert.False(t, ds.HasGeoSupport())
	_, _, err = ds.Coordinates(ds.Rows()[0])
	assert.ErrorIs(t, err, ErrNoGeoSupport)
}

func TestGetAllOnPlainField(t *testing.T) {
	ds := loadAirports(t)
	row, ok := ds.Get("ORY")
	require.True(t, ok)

	assert.Equal(t, []string{"Paris Orly"}, row.GetAll("name"))
	assert.Nil(t, row.GetAll("unknown"))
}

func TestHeadersFollowDeclaration(t *testing.T) {
	ds := loadAirports(t)

	assert.Equal(t, []string{"iata_code", "name", "city_code", "lat", "lng"}, ds.Headers())
}
