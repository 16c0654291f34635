package universe

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/typejoin/pkg/typeref"
)

func TestBuilder(t *testing.T) {
	u, err := NewBuilder("Object").
		Interface("Comparable<T>").
		Class("Object").
		Class("Box<T extends Comparable<T>>", "Comparable<Box<T>>").
		Class("Number").
		Class("Int", "Number", "Comparable<Int>").
		Wrapper(typeref.Int, "Int").
		Build()
	require.NoError(t, err)

	box, ok := u.Lookup("Box")
	require.True(t, ok)
	require.Len(t, box.TypeParameters, 1)
	param := box.TypeParameters[0]
	assert.Equal(t, typeref.TypeParameter, param.Kind)
	assert.Equal(t, "Box.T", param.Identifier)
	require.Len(t, param.Supertypes, 1)
	assert.Equal(t, "Comparable<Box.T>", param.Supertypes[0].Identifier())

	require.Len(t, box.Supertypes, 1)
	assert.Equal(t, "Comparable<Box<Box.T>>", box.Supertypes[0].Identifier())

	intBox := u.MustParse("Box<Int>")
	supers := intBox.Supertypes()
	require.Len(t, supers, 1)
	assert.Equal(t, "Comparable<Box<Int>>", supers[0].Identifier())

	w, ok := u.Wrapper(typeref.Int)
	require.True(t, ok)
	assert.Equal(t, "Int", w.Identifier())

	// declaration order is kept
	names := make([]string, len(u.Types()))
	for i, raw := range u.Types() {
		names[i] = raw.Identifier
	}
	assert.Equal(t, []string{"Comparable", "Object", "Box", "Number", "Int"}, names)

	assert.Equal(t, []string{"Object"}, typeref.Types(u.ArraySupertypes()).Identifiers())
}

func TestBuilderNestedNames(t *testing.T) {
	u, err := NewBuilder("lang.Object").
		Class("lang.Object").
		Interface("util.Map$Entry<K, V>").
		Build()
	require.NoError(t, err)

	entry, ok := u.Lookup("util.Map$Entry")
	require.True(t, ok)
	assert.Equal(t, "util.Map.Entry", entry.QualifiedName)
	assert.Equal(t, "Entry", entry.SimpleName())
	assert.Equal(t, "util.Map$Entry.K", entry.TypeParameters[0].Identifier)

	ref, err := u.Reference("Entry")
	require.NoError(t, err)
	assert.Equal(t, "util.Map$Entry", ref.Identifier())
	assert.True(t, ref.(*typeref.ParameterizedType).IsRawUsage())
}

func TestBuilderErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		builder *Builder
		err     string
	}{
		{
			name:    "missing root",
			builder: NewBuilder("Object").Class("Thing"),
			err:     "root type: unresolved type: Object",
		},
		{
			name:    "interface root",
			builder: NewBuilder("Object").Interface("Object"),
			err:     "root type Object must be a class, not interface",
		},
		{
			name:    "root with supertypes",
			builder: NewBuilder("Object").Class("Object", "Thing").Class("Thing"),
			err:     "root type Object cannot have supertypes",
		},
		{
			name:    "duplicate declaration",
			builder: NewBuilder("Object").Class("Object").Class("Thing").Interface("Thing"),
			err:     "duplicate declaration of Thing",
		},
		{
			name:    "duplicate parameter",
			builder: NewBuilder("Object").Class("Object").Class("Pair<T, T>"),
			err:     "Pair: duplicate type parameter T",
		},
		{
			name:    "unresolved supertype",
			builder: NewBuilder("Object").Class("Object").Class("Thing", "Nope"),
			err:     "Thing: supertypes",
		},
		{
			name:    "unresolved bound",
			builder: NewBuilder("Object").Class("Object").Class("Thing<T extends Nope>"),
			err:     "Thing: bound of T",
		},
		{
			name:    "explicit wrapper missing",
			builder: NewBuilder("Object").Class("Object").Wrapper(typeref.Int, "Integer"),
			err:     "wrapper of int",
		},
		{
			name:    "array supertype missing",
			builder: NewBuilder("Object").Class("Object").ArraySupertypes("Cloneable"),
			err:     "array supertypes",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestBuilderCycle(t *testing.T) {
	_, err := NewBuilder("Object").
		Class("Object").
		Interface("A", "B").
		Interface("B", "C").
		Interface("C", "A").
		Build()

	var cycle CycleError
	require.True(t, errors.As(err, &cycle), "%v", err)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycle.Path)
}

func TestBuilderFBounded(t *testing.T) {
	_, err := NewBuilder("Object").
		Class("Object").
		Interface("Comparable<T>").
		Class("Enum<E extends Enum<E>>", "Comparable<E>").
		Class("Color", "Enum<Color>").
		Build()
	require.NoError(t, err)
}
