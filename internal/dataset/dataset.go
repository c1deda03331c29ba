// Package dataset loads the delimited data files behind the sources manifest.
//
// A loaded dataset mirrors the manifest's field declarations at the row level:
// subdelimited fields carry every split value under the field name and keep
// the unsplit text under the "<field>@raw" name, and feed input read from
// stdin gets synthetic H0..H<n> column names derived from its first row.
package dataset

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// ErrNoGeoSupport is returned when a dataset has no recognizable coordinate
// headers.
var ErrNoGeoSupport = errors.New("no geo support")

// Coordinate header names recognized across the shipped datasets.
var (
	latitudeHeaders  = []string{"lat", "latitude"}
	longitudeHeaders = []string{"lng", "lon", "longitude"}
)

// Row is one parsed record of a dataset.
type Row struct {
	// Key identifies the row when the source declares key fields. Rows
	// sharing a key get "@1", "@2", ... suffixes in file order.
	Key string

	// Line is the 1-based line number in the data file.
	Line int

	values map[string][]string
}

// Get returns the first value of a field, or "" when the field is absent.
func (r *Row) Get(field string) string {
	if values := r.values[field]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// GetAll returns every value of a field. Only subdelimited fields carry more
// than one.
func (r *Row) GetAll(field string) []string {
	return r.values[field]
}

// Dataset is the loaded content of one source.
type Dataset struct {
	Name string

	headers []string
	rows    []*Row
	byKey   map[string]*Row
}

// Headers returns the dataset's column names: the source's declared headers,
// or the synthetic H0..H<n> names for feed input.
func (d *Dataset) Headers() []string {
	return d.headers
}

// Rows returns every row in file order.
func (d *Dataset) Rows() []*Row {
	return d.rows
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

// Get returns the row stored under key.
func (d *Dataset) Get(key string) (*Row, bool) {
	row, ok := d.byKey[key]
	return row, ok
}

// Keys returns every row key in file order, skipping keyless rows.
func (d *Dataset) Keys() []string {
	return lo.FilterMap(d.rows, func(row *Row, _ int) (string, bool) {
		return row.Key, row.Key != ""
	})
}

// GeoFields returns the latitude and longitude header names of the dataset.
func (d *Dataset) GeoFields() (string, string, bool) {
	lat, latOK := lo.Find(d.headers, func(header string) bool {
		return lo.Contains(latitudeHeaders, header)
	})
	lng, lngOK := lo.Find(d.headers, func(header string) bool {
		return lo.Contains(longitudeHeaders, header)
	})
	return lat, lng, latOK && lngOK
}

// HasGeoSupport reports whether rows carry usable coordinates.
func (d *Dataset) HasGeoSupport() bool {
	_, _, ok := d.GeoFields()
	return ok
}

// Coordinates parses the row's latitude and longitude.
func (d *Dataset) Coordinates(row *Row) (float64, float64, error) {
	latField, lngField, ok := d.GeoFields()
	if !ok {
		return 0, 0, ErrNoGeoSupport
	}

	lat, err := strconv.ParseFloat(row.Get(latField), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("row %q: bad latitude: %w", row.Key, err)
	}
	lng, err := strconv.ParseFloat(row.Get(lngField), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("row %q: bad longitude: %w", row.Key, err)
	}
	return lat, lng, nil
}
