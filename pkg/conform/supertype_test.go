package conform

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/typejoin/pkg/typeref"
	"github.com/vito/typejoin/pkg/universe"
	"golang.org/x/sync/errgroup"
)

func loadLang(t *testing.T) *universe.Universe {
	t.Helper()
	u, _, err := universe.Load(filepath.Join("..", "universe", "testdata", "lang.toml"))
	require.NoError(t, err)
	return u
}

func parseAll(t *testing.T, u *universe.Universe, exprs ...string) []Type {
	t.Helper()
	types, err := u.ParseAll(exprs)
	require.NoError(t, err)
	return types
}

type joinCase struct {
	types  []string
	expect string
}

// an empty expect means the join is undefined
var joinCases = []joinCase{
	{[]string{"String"}, "String"},
	{[]string{"String", "String"}, "String"},
	{[]string{"Object", "String"}, "Object"},
	{[]string{"Number", "Integer"}, "Number"},
	{[]string{"String", "Integer"}, "Comparable<?> & Serializable"},
	{[]string{"Integer", "Long"}, "Number & Comparable<?>"},
	{[]string{"Integer", "Long", "Double"}, "Number & Comparable<?>"},
	{[]string{"test.X", "test.Y"}, "I1 & I2"},
	{[]string{"test.A", "test.B"}, "Object"},
	{[]string{"test.A", "test.X"}, "Object"},
	{[]string{"ArrayList<String>", "LinkedList<String>"}, "List<String>"},
	{[]string{"ArrayList<String>", "LinkedList<Integer>"}, "List<? extends Comparable<?> & Serializable>"},
	{[]string{"ArrayList", "LinkedList<String>"}, "List"},
	{[]string{"HashMap<String, Integer>", "HashMap<String, Long>"}, "HashMap<String, ? extends Number & Comparable<?>>"},
	{[]string{"test.Node", "test.Leaf"}, "Comparable<? extends List<?>>"},
	{[]string{"List<? super Integer>", "List<? super Long>"}, "List<?>"},
	{[]string{"ArrayList<? super Integer>", "LinkedList<? super Long>"}, "List<?>"},
	{[]string{"String[]", "Integer[]"}, "(Comparable<?> & Serializable)[]"},
	{[]string{"Integer[][]", "Long[][]"}, "(Number & Comparable<?>)[][]"},
	{[]string{"int[]", "long[]"}, "Serializable & Cloneable"},
	{[]string{"int[]", "String[]"}, "Serializable & Cloneable"},
	{[]string{"int[]", "int[]"}, "int[]"},
	{[]string{"int", "int"}, "int"},
	{[]string{"int", "long"}, "Number & Comparable<?>"},
	{[]string{"int", "Integer"}, "Integer"},
	{[]string{"int", "String"}, "Comparable<?> & Serializable"},
	{[]string{"any", "String"}, "String"},
	{[]string{"any", "int", "long"}, "Number & Comparable<?>"},
	{[]string{"any", "any"}, "any"},
	{[]string{"void", "void"}, "void"},
	{[]string{"void", "String"}, ""},
	{[]string{"void", "int"}, ""},
	{[]string{"void", "any"}, ""},
	{[]string{"void", "void", "any"}, ""},
}

func TestCommonSuperType(t *testing.T) {
	u := loadLang(t)
	c := New()

	for _, tc := range joinCases {
		t.Run(typeref.Types(parseAll(t, u, tc.types...)).String(), func(t *testing.T) {
			types := parseAll(t, u, tc.types...)
			result, err := c.CommonSuperType(types)
			require.NoError(t, err)
			if tc.expect == "" {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			expected := u.MustParse(tc.expect)
			assert.True(t, expected.Eq(result), "expected %s, got %s", expected, result)
			assert.Equal(t, tc.expect, result.String())
		})
	}
}

func TestCommonSuperTypeIsSupertypeOfInputs(t *testing.T) {
	u := loadLang(t)
	c := New()

	for _, tc := range joinCases {
		if tc.expect == "" {
			continue
		}
		types := parseAll(t, u, tc.types...)
		result, err := c.CommonSuperType(types)
		require.NoError(t, err)
		for _, typ := range types {
			assert.True(t, c.IsConformant(result, typ), "%s is not conformant with join %s", typ, result)
		}
	}
}

func TestCommonSuperTypeIgnoresOrder(t *testing.T) {
	u := loadLang(t)
	c := New()

	for _, tc := range joinCases {
		types := parseAll(t, u, tc.types...)
		expected, err := c.CommonSuperType(types)
		require.NoError(t, err)

		for _, perm := range permutations(types) {
			result, err := c.CommonSuperType(perm)
			require.NoError(t, err)
			if expected == nil {
				assert.Nil(t, result, "%s", typeref.Types(perm))
				continue
			}
			require.NotNil(t, result, "%s", typeref.Types(perm))
			assert.True(t, expected.Eq(result), "%s: %s != %s", typeref.Types(perm), result, expected)
		}
	}
}

func permutations(types []Type) [][]Type {
	if len(types) <= 1 {
		return [][]Type{types}
	}
	var out [][]Type
	for i := range types {
		rest := make([]Type, 0, len(types)-1)
		rest = append(rest, types[:i]...)
		rest = append(rest, types[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Type{types[i]}, p...))
		}
	}
	return out
}

func TestCommonSuperTypeUnions(t *testing.T) {
	u := loadLang(t)
	c := New()

	result, err := c.CommonSuperType(parseAll(t, u, "String | Integer", "Long"))
	require.NoError(t, err)
	assert.Equal(t, "Comparable<?> & Serializable", result.String())

	result, err = c.CommonSuperType(parseAll(t, u, "Integer | Long", "Double"))
	require.NoError(t, err)
	assert.Equal(t, "Number & Comparable<?>", result.String())
}

func TestCommonSuperTypeReturnsInput(t *testing.T) {
	u := loadLang(t)
	c := New()

	types := parseAll(t, u, "Integer", "Number", "Long")
	result, err := c.CommonSuperType(types)
	require.NoError(t, err)
	assert.Same(t, types[1], result)
}

func TestCommonSuperTypeInvalidArguments(t *testing.T) {
	u := loadLang(t)
	c := New()
	str := u.MustParse("String")

	for _, tc := range []struct {
		name   string
		types  []Type
		reason string
	}{
		{"empty", nil, "types can't be empty"},
		{"nil", []Type{str, nil}, "type 1 is nil"},
		{"no owner", []Type{str, typeref.NewAny(nil)}, "type 1 (any) has no owner"},
		{"array without component", []Type{typeref.NewArray(u, nil), str}, "type 0 is an array without component type"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.CommonSuperType(tc.types)
			var invalid typeref.InvalidArgumentError
			require.True(t, errors.As(err, &invalid), "%v", err)
			assert.Equal(t, tc.reason, invalid.Reason)
		})
	}
}

func TestCommonSuperTypeConcurrent(t *testing.T) {
	u := loadLang(t)
	c := New()

	var eg errgroup.Group
	for range 8 {
		for _, tc := range joinCases {
			eg.Go(func() error {
				types, err := u.ParseAll(tc.types)
				if err != nil {
					return err
				}
				result, err := c.CommonSuperType(types)
				if err != nil {
					return err
				}
				rendered := ""
				if result != nil {
					rendered = result.String()
				}
				if rendered != tc.expect {
					return errors.Errorf("join(%v) = %q, want %q", tc.types, rendered, tc.expect)
				}
				return nil
			})
		}
	}
	require.NoError(t, eg.Wait())
}

func TestCommonSuperTypeLogging(t *testing.T) {
	u := loadLang(t)
	var buf bytes.Buffer
	c := &Computer{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	_, err := c.CommonSuperType(parseAll(t, u, "String", "Integer"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "join candidates")
	assert.Contains(t, buf.String(), "recursive join request")

	buf.Reset()
	_, err = c.CommonSuperType(parseAll(t, u, "test.Node", "test.Leaf"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "join already in progress")
}
