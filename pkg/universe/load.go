package universe

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/vito/typejoin/pkg/typeref"
)

// SupportedFormat is the range of universe file formats this package reads.
const SupportedFormat = "^1"

// File is a TOML universe description:
//
//	format = "1.0"
//	root = "lang.Object"
//	array_supertypes = ["lang.Cloneable", "io.Serializable"]
//
//	[wrappers]
//	int = "lang.Integer"
//
//	[[class]]
//	name = "lang.Integer"
//	extends = ["lang.Number", "lang.Comparable<lang.Integer>"]
//
//	[[interface]]
//	name = "lang.Comparable<T>"
//
//	[[query]]
//	name = "boxed"
//	join = ["int", "lang.Integer"]
//	expect = "Integer"
type File struct {
	// Format is the file format version; only 1.x is understood.
	Format string `toml:"format"`

	// Root names the class every reference type conforms to.
	Root string `toml:"root"`

	// ArraySupertypes are the supertypes of arrays of the root and of
	// primitives.
	ArraySupertypes []string `toml:"array_supertypes,omitempty"`

	// Wrappers maps primitive keywords to the type they box to.
	Wrappers map[string]string `toml:"wrappers,omitempty"`

	Classes    []Decl  `toml:"class"`
	Interfaces []Decl  `toml:"interface"`
	Queries    []Query `toml:"query"`
}

// Decl declares a class or interface. Name is a header that may declare
// type parameters, e.g. "util.Map<K, V extends Comparable<V>>".
type Decl struct {
	Name    string   `toml:"name"`
	Extends []string `toml:"extends,omitempty"`
}

// Query is a join or conformance check to run against the universe.
type Query struct {
	Name string `toml:"name,omitempty"`

	// Join lists the types to compute the common supertype of.
	Join []string `toml:"join,omitempty"`

	// Conform is an [expected, actual] pair.
	Conform []string `toml:"conform,omitempty"`

	// Expect is the expected rendering of the result: a type expression for
	// joins, "true" or "false" for conformance checks. Empty skips the check.
	Expect string `toml:"expect,omitempty"`
}

// Label returns the query name, or a rendering of the query itself.
func (q Query) Label() string {
	if q.Name != "" {
		return q.Name
	}
	if len(q.Conform) > 0 {
		return "conform(" + strings.Join(q.Conform, ", ") + ")"
	}
	return "join(" + strings.Join(q.Join, ", ") + ")"
}

// Validate checks that the query is either a join or a conformance check.
func (q Query) Validate() error {
	switch {
	case len(q.Join) > 0 && len(q.Conform) > 0:
		return errors.Errorf("query %s: join and conform are exclusive", q.Label())
	case len(q.Join) == 0 && len(q.Conform) == 0:
		return errors.Errorf("query %s: needs join or conform", q.Label())
	case len(q.Conform) > 0 && len(q.Conform) != 2:
		return errors.Errorf("query %s: conform takes [expected, actual], got %d types", q.Label(), len(q.Conform))
	}
	return nil
}

// LoadFile reads and validates a universe file.
func LoadFile(path string) (*File, error) {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := file.validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &file, nil
}

// Decode reads a universe file from a string.
func Decode(content string) (*File, error) {
	var file File
	if _, err := toml.Decode(content, &file); err != nil {
		return nil, errors.Wrap(err, "parsing universe")
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	if f.Format == "" {
		return errors.New("missing format")
	}
	version, err := semver.NewVersion(f.Format)
	if err != nil {
		return errors.Wrapf(err, "format %q", f.Format)
	}
	constraint, err := semver.NewConstraint(SupportedFormat)
	if err != nil {
		return errors.WithStack(err)
	}
	if !constraint.Check(version) {
		return errors.Errorf("unsupported format %s, want %s", version, SupportedFormat)
	}
	if f.Root == "" {
		return errors.New("missing root")
	}
	for _, q := range f.Queries {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Universe builds the declared universe.
func (f *File) Universe() (*Universe, error) {
	b := NewBuilder(f.Root)
	for _, decl := range f.Classes {
		b.Class(decl.Name, decl.Extends...)
	}
	for _, decl := range f.Interfaces {
		b.Interface(decl.Name, decl.Extends...)
	}
	for keyword, name := range f.Wrappers {
		kind, ok := typeref.ParsePrimitiveKind(keyword)
		if !ok {
			return nil, errors.Errorf("wrappers: unknown primitive %q", keyword)
		}
		b.Wrapper(kind, name)
	}
	if len(f.ArraySupertypes) > 0 {
		b.ArraySupertypes(f.ArraySupertypes...)
	}
	return b.Build()
}

// Load reads a universe file and builds it.
func Load(path string) (*Universe, *File, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	u, err := file.Universe()
	if err != nil {
		return nil, nil, errors.Wrap(err, path)
	}
	return u, file, nil
}
