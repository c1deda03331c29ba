package dataset

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/completion"
	"github.com/geodex-io/geodex/internal/filesystem"
	"github.com/geodex-io/geodex/internal/sources"
)

// Data lines in the shipped ori_por dump run past bufio's default limit.
const maxLineBytes = 1024 * 1024

// Loader reads a source's delimited data into a Dataset.
type Loader struct {
	logger *zap.Logger
	fs     filesystem.FileSystem
}

func NewLoader(logger *zap.Logger, fs filesystem.FileSystem) *Loader {
	return &Loader{
		logger: logger,
		fs:     fs,
	}
}

// LoadSource reads the data file declared by the source. Relative file paths
// resolve against baseDir, normally the manifest's directory.
func (l *Loader) LoadSource(name string, src *sources.Source, baseDir string) (*Dataset, error) {
	if src == nil || src.File == "" {
		return nil, fmt.Errorf("source %q has no data file", name)
	}

	path := src.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	file, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file for source %q: %w", name, err)
	}
	defer file.Close()

	return l.load(name, src, file, src.Headers)
}

// LoadFeed reads delimited rows from r, naming columns H0..H<n> after the
// width of the first row. This is how piped input gets completable fields
// without a declared header list.
func (l *Loader) LoadFeed(name string, src *sources.Source, r io.Reader) (*Dataset, error) {
	return l.load(name, src, r, nil)
}

func (l *Loader) load(name string, src *sources.Source, r io.Reader, headers []string) (*Dataset, error) {
	delimiter := sources.DefaultDelimiter
	var subdelimiters map[string]string
	var keyFields []string
	if src != nil {
		if src.Delimiter != "" {
			delimiter = src.Delimiter
		}
		subdelimiters = src.Subdelimiters
		keyFields = src.KeyFields
	}

	ds := &Dataset{
		Name:    name,
		headers: headers,
		byKey:   map[string]*Row{},
	}
	duplicates := map[string]int{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		values := strings.Split(line, delimiter)
		if ds.headers == nil {
			ds.headers = syntheticHeaders(len(values))
		}
		if len(values) > len(ds.headers) {
			l.logger.Debug(
				"row has more values than headers",
				zap.String("source", name),
				zap.Int("line", lineNo),
				zap.Int("extra", len(values)-len(ds.headers)),
			)
		}

		row := newRow(lineNo, ds.headers, values, subdelimiters)
		if key := rowKey(row, keyFields); key != "" {
			if _, exists := ds.byKey[key]; exists {
				duplicates[key]++
				key = fmt.Sprintf("%s@%d", key, duplicates[key])
			}
			row.Key = key
			ds.byKey[key] = row
		}
		ds.rows = append(ds.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data for source %q: %w", name, err)
	}

	l.logger.Info(
		"loaded dataset",
		zap.String("source", name),
		zap.Int("rows", len(ds.rows)),
		zap.Int("headers", len(ds.headers)),
	)

	return ds, nil
}

// newRow maps one line's values onto the headers. Missing trailing values
// read as empty; values past the last header are dropped.
func newRow(line int, headers []string, values []string, subdelimiters map[string]string) *Row {
	row := &Row{
		Line:   line,
		values: make(map[string][]string, len(headers)),
	}
	for i, header := range headers {
		var value string
		if i < len(values) {
			value = values[i]
		}
		if sub, ok := subdelimiters[header]; ok && sub != "" {
			row.values[header] = strings.Split(value, sub)
			row.values[completion.RawField(header)] = []string{value}
		} else {
			row.values[header] = []string{value}
		}
	}
	return row
}

// rowKey joins key field values with "+". Rows with every key field empty
// stay keyless.
func rowKey(row *Row, keyFields []string) string {
	if len(keyFields) == 0 {
		return ""
	}
	parts := lo.Map(keyFields, func(field string, _ int) string {
		return row.Get(field)
	})
	if lo.EveryBy(parts, func(part string) bool { return part == "" }) {
		return ""
	}
	return strings.Join(parts, "+")
}

// syntheticHeaders names n columns H0..H<n-1>.
func syntheticHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("H%d", i)
	}
	return headers
}
