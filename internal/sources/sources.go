// Package sources defines the geodex sources manifest: the declarative
// description of every named data source, its completable fields, and its
// relationships to other sources. The manifest is the single input of the
// completion generator and of the dataset loader.
package sources

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDelimiter separates columns in a data file when a source declares
// none. The shipped datasets use "^" because their values are full of commas.
const DefaultDelimiter = "^"

// ErrMalformedFields is returned when a join's `fields` key is neither a
// string nor a sequence of strings.
var ErrMalformedFields = errors.New("malformed join fields")

// Source is the declared configuration of one data source.
type Source struct {
	// Headers are the completable field names, in declaration order.
	Headers []string `yaml:"headers"`

	// Subdelimiters maps a field name to the secondary delimiter splitting
	// its values. A subdelimited field keeps its unsplit counterpart under
	// the synthetic "<field>@raw" name.
	Subdelimiters map[string]string `yaml:"subdelimiters"`

	// Join declares relationships letting this source borrow another
	// source's fields under a composite label.
	Join []JoinSpec `yaml:"join"`

	// File is the path of the source's data file, for sources backed by a
	// local delimited file.
	File string `yaml:"file"`

	// Delimiter separates columns in the data file.
	Delimiter string `yaml:"delimiter"`

	// KeyFields name the fields whose values form a row's key.
	KeyFields FieldList `yaml:"key_fields"`
}

// JoinSpec declares one join relationship.
type JoinSpec struct {
	// Fields is the composite key label, declared as a string or a list of
	// field names.
	Fields FieldList `yaml:"fields"`

	// With names the join target. The first element is the target source;
	// an optional second element names the field on the target used when
	// joining row data.
	With []string `yaml:"with"`
}

// Target returns the name of the source this join borrows fields from.
func (j JoinSpec) Target() string {
	if len(j.With) == 0 {
		return ""
	}
	return j.With[0]
}

// TargetField returns the field on the target source used when joining row
// data, falling back to the first field of the label when not declared.
func (j JoinSpec) TargetField() string {
	if len(j.With) > 1 {
		return j.With[1]
	}
	if len(j.Fields) > 0 {
		return j.Fields[0]
	}
	return ""
}

// FieldList is an ordered list of field names that may be declared in YAML as
// either a single string or a sequence of strings. Both forms normalize to
// the list form at decode time; downstream code never branches on the
// declared shape.
type FieldList []string

// UnmarshalYAML implements custom YAML unmarshaling for FieldList.
// Accepts either a single string or a sequence of strings; anything else is
// rejected with ErrMalformedFields.
func (f *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return fmt.Errorf("line %d: %v: %w", node.Line, err, ErrMalformedFields)
		}

		if str != "" {
			*f = FieldList{str}
		} else {
			*f = FieldList{}
		}
		return nil

	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("line %d: %v: %w", node.Line, err, ErrMalformedFields)
		}

		*f = list
		return nil

	default:
		return fmt.Errorf("line %d: expected string or sequence of strings: %w", node.Line, ErrMalformedFields)
	}
}

// MarshalYAML implements custom YAML marshaling for FieldList.
// A single-element list collapses back to the string form.
func (f FieldList) MarshalYAML() (any, error) {
	if len(f) == 1 {
		return f[0], nil
	}
	return []string(f), nil
}

// Label collapses the list into the canonical composite label, joining
// multiple fields with "/". A single field passes through unchanged.
func (f FieldList) Label() string {
	return strings.Join(f, "/")
}
