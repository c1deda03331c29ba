package completion

import (
	"testing"

	"github.com/geodex-io/geodex/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJoinsCompositeOrdering(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A", "X"},
		Sources: map[string]*sources.Source{
			"A": {
				Headers: []string{"k"},
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"a", "b"}, With: []string{"X"}},
				},
			},
			"X": {Headers: []string{"h1", "h2"}},
		},
	}

	r, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.NoError(t, err)

	entry, _ := r.Entry("A")
	assert.Equal(t, []string{"a/b:h1", "a/b:h2"}, entry.AddHeaders)
}

func TestResolveJoinsSingleFieldLabel(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A", "X"},
		Sources: map[string]*sources.Source{
			"A": {
				Headers: []string{"k"},
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"c"}, With: []string{"X"}},
				},
			},
			"X": {Headers: []string{"h1"}},
		},
	}

	r, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.NoError(t, err)

	entry, _ := r.Entry("A")
	assert.Equal(t, []string{"c:h1"}, entry.AddHeaders)
}

func TestResolveJoinsSeesExpandedTargetHeaders(t *testing.T) {
	// The join target declares a subdelimited field; the composite list must
	// include its raw counterpart regardless of declaration order.
	m := &sources.Manifest{
		Names: []string{"A", "X"},
		Sources: map[string]*sources.Source{
			"A": {
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"x"}, With: []string{"X"}},
				},
			},
			"X": {
				Headers:       []string{"id", "name"},
				Subdelimiters: map[string]string{"name": ","},
			},
		},
	}

	r, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.NoError(t, err)

	entry, _ := r.Entry("A")
	assert.Equal(t, []string{"x:id", "x:name", "x:name@raw"}, entry.AddHeaders)
}

func TestResolveJoinsAccumulatesInDeclarationOrder(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A", "X", "Y"},
		Sources: map[string]*sources.Source{
			"A": {
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"x"}, With: []string{"X"}},
					{Fields: sources.FieldList{"y"}, With: []string{"Y"}},
				},
			},
			"X": {Headers: []string{"h1"}},
			"Y": {Headers: []string{"h2"}},
		},
	}

	r, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.NoError(t, err)

	entry, _ := r.Entry("A")
	assert.Equal(t, []string{"x:h1", "y:h2"}, entry.AddHeaders)
}

func TestResolveJoinsSelfJoin(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A"},
		Sources: map[string]*sources.Source{
			"A": {
				Headers: []string{"id"},
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"id"}, With: []string{"A"}},
				},
			},
		},
	}

	r, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.NoError(t, err)

	entry, _ := r.Entry("A")
	assert.Equal(t, []string{"id:id"}, entry.AddHeaders)
}

func TestResolveJoinsUnknownTarget(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A"},
		Sources: map[string]*sources.Source{
			"A": {
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"x"}, With: []string{"missing"}},
				},
			},
		},
	}

	_, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestResolveJoinsNeverTouchesHeaders(t *testing.T) {
	m := &sources.Manifest{
		Names: []string{"A", "X"},
		Sources: map[string]*sources.Source{
			"A": {
				Headers: []string{"own"},
				Join: []sources.JoinSpec{
					{Fields: sources.FieldList{"x"}, With: []string{"X"}},
				},
			},
			"X": {Headers: []string{"h1"}},
		},
	}

	r, err := NewRegistry(m).ExpandHeaders().ResolveJoins()
	require.NoError(t, err)

	entry, _ := r.Entry("A")
	assert.Equal(t, []string{"own"}, entry.Headers)
	assert.Equal(t, []string{"x:h1"}, entry.AddHeaders)
}
