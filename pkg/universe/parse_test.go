package universe

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/typejoin/pkg/typeref"
)

func TestParse(t *testing.T) {
	u := loadLang(t)

	for _, tc := range []struct {
		expr       string
		identifier string
		str        string
	}{
		{"lang.String", "lang.String", "String"},
		{"String", "lang.String", "String"},
		{"util.List<String>", "util.List<lang.String>", "List<String>"},
		{"util.List", "util.List", "List"},
		{"Map<String, List<? extends Number>>", "util.Map<lang.String,util.List<? extends lang.Number>>", "Map<String, List<? extends Number>>"},
		{"List<?>", "util.List<?>", "List<?>"},
		{"List<? super Integer>", "util.List<? super lang.Integer>", "List<? super Integer>"},
		{"List<? extends Comparable<?> & Serializable>", "util.List<? extends lang.Comparable<?> & io.Serializable>", "List<? extends Comparable<?> & Serializable>"},
		{"int", "int", "int"},
		{"int[][]", "int[][]", "int[][]"},
		{"String[]", "lang.String[]", "String[]"},
		{"void", "void", "void"},
		{"any", "any", "any"},
		{"Serializable & Comparable<String>", "io.Serializable & lang.Comparable<lang.String>", "Serializable & Comparable<String>"},
		{"String | Integer", "lang.String | lang.Integer", "String | Integer"},
		{"(Serializable & Cloneable)[]", "(io.Serializable & lang.Cloneable)[]", "(Serializable & Cloneable)[]"},
		{"util.Map$Entry<K1, V1>", "", ""},
		{"util.Map$Entry<String, Integer>", "util.Map$Entry<lang.String,lang.Integer>", "Entry<String, Integer>"},
		{"util.Map.Entry", "util.Map$Entry", "Entry"},
		{"  List < String >  ", "util.List<lang.String>", "List<String>"},
	} {
		t.Run(tc.expr, func(t *testing.T) {
			typ, err := u.Parse(tc.expr)
			if tc.identifier == "" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.identifier, typ.Identifier())
			assert.Equal(t, tc.str, typ.String())
			assert.Same(t, u, typ.Owner())

			again, err := u.Parse(typ.Identifier())
			require.NoError(t, err)
			assert.True(t, typ.Eq(again), "identifier %q parses back to an equal type", typ.Identifier())
		})
	}
}

func TestParseErrors(t *testing.T) {
	u := loadLang(t)

	t.Run("unresolved", func(t *testing.T) {
		_, err := u.Parse("List<Nope>")
		var unresolved UnresolvedTypeError
		require.True(t, errors.As(err, &unresolved), "%v", err)
		assert.Equal(t, "Nope", unresolved.Name)
	})

	t.Run("argument count", func(t *testing.T) {
		_, err := u.Parse("Map<String>")
		var invalid typeref.InvalidArgumentError
		require.True(t, errors.As(err, &invalid), "%v", err)
		assert.Contains(t, invalid.Reason, "declares 2 type parameters, got 1")
	})

	for _, tc := range []struct {
		expr string
		msg  string
	}{
		{"List<String", `expected ">"`},
		{"String]", `unexpected "]"`},
		{"", "expected a type"},
		{"String[", `expected "]"`},
		{"(String", `expected ")"`},
		{"String &", "expected a type"},
	} {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := u.Parse(tc.expr)
			var parseErr ParseError
			require.True(t, errors.As(err, &parseErr), "%v", err)
			assert.Equal(t, tc.expr, parseErr.Expr)
			assert.Contains(t, parseErr.Msg, tc.msg)
		})
	}
}

func TestParseAmbiguous(t *testing.T) {
	u, err := NewBuilder("Object").
		Class("Object").
		Class("a.Thing").
		Class("b.Thing").
		Build()
	require.NoError(t, err)

	_, err = u.Parse("Thing")
	var ambiguous AmbiguousTypeError
	require.True(t, errors.As(err, &ambiguous), "%v", err)
	assert.ElementsMatch(t, []string{"a.Thing", "b.Thing"}, ambiguous.Candidates)

	thing, err := u.Parse("b.Thing")
	require.NoError(t, err)
	assert.Equal(t, "b.Thing", thing.Identifier())
}

func TestParseAll(t *testing.T) {
	u := loadLang(t)

	types, err := u.ParseAll([]string{"String", "int", "List<Long>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lang.String", "int", "util.List<lang.Long>"}, typeref.Types(types).Identifiers())

	_, err = u.ParseAll([]string{"String", "Nope"})
	require.Error(t, err)

	assert.Panics(t, func() { u.MustParse("Nope") })
}

func TestParseHeader(t *testing.T) {
	name, params, err := parseHeader("util.Map<K, V extends Comparable<V> & Serializable>")
	require.NoError(t, err)
	assert.Equal(t, "util.Map", name)
	require.Len(t, params, 2)
	assert.Equal(t, typeParam{name: "K"}, params[0])
	assert.Equal(t, typeParam{name: "V", bounds: []string{"Comparable<V>", "Serializable"}}, params[1])

	_, _, err = parseHeader("util.Map<K, V")
	assert.ErrorContains(t, err, "unterminated parameter list")

	_, _, err = parseHeader("util.Map<K,>")
	assert.ErrorContains(t, err, "empty type parameter")

	_, _, err = parseHeader("  ")
	assert.ErrorContains(t, err, "empty type declaration")
}
