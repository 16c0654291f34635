package universe

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/vito/typejoin/pkg/typeref"
)

// Builder collects declarations and resolves them into a Universe.
//
// Declarations are headers like "util.Map<K, V extends Comparable<V>>"
// followed by supertype expressions that may refer to the header's type
// parameters. Declaration order does not matter.
type Builder struct {
	root        string
	decls       []declaration
	wrappers    map[typeref.PrimitiveKind]string
	arraySupers []string
}

type declaration struct {
	header  string
	kind    typeref.RawKind
	extends []string
}

// NewBuilder starts a universe whose root type has the given name. The root
// must be declared as a class.
func NewBuilder(root string) *Builder {
	return &Builder{
		root:     root,
		wrappers: map[typeref.PrimitiveKind]string{},
	}
}

// Class declares a class.
func (b *Builder) Class(header string, extends ...string) *Builder {
	b.decls = append(b.decls, declaration{header: header, kind: typeref.Class, extends: extends})
	return b
}

// Interface declares an interface.
func (b *Builder) Interface(header string, extends ...string) *Builder {
	b.decls = append(b.decls, declaration{header: header, kind: typeref.Interface, extends: extends})
	return b
}

// Wrapper sets the type a primitive boxes to. By default a declared type
// whose simple name matches the primitive's wrapper name is used.
func (b *Builder) Wrapper(kind typeref.PrimitiveKind, name string) *Builder {
	b.wrappers[kind] = name
	return b
}

// ArraySupertypes sets the supertypes of arrays of the root and of
// primitives. Defaults to the root alone.
func (b *Builder) ArraySupertypes(names ...string) *Builder {
	b.arraySupers = names
	return b
}

type unresolved struct {
	decl   declaration
	raw    *typeref.RawType
	scope  map[string]*typeref.RawType
	params []typeParam
}

// Build resolves every declaration and freezes the universe.
func (b *Builder) Build() (*Universe, error) {
	u := &Universe{
		types:       map[string]*typeref.RawType{},
		byQualified: map[string]*typeref.RawType{},
		bySimple:    map[string][]*typeref.RawType{},
		wrappers:    map[typeref.PrimitiveKind]*typeref.RawType{},
	}

	pending := make([]unresolved, 0, len(b.decls))
	for _, decl := range b.decls {
		name, params, err := parseHeader(decl.header)
		if err != nil {
			return nil, err
		}
		if _, dup := u.types[name]; dup {
			return nil, errors.Errorf("duplicate declaration of %s", name)
		}
		raw := &typeref.RawType{
			Identifier:    name,
			QualifiedName: strings.ReplaceAll(name, "$", "."),
			Kind:          decl.kind,
		}
		scope := map[string]*typeref.RawType{}
		for _, param := range params {
			if _, dup := scope[param.name]; dup {
				return nil, errors.Errorf("%s: duplicate type parameter %s", name, param.name)
			}
			paramRaw := &typeref.RawType{
				Identifier:    name + "." + param.name,
				QualifiedName: param.name,
				Kind:          typeref.TypeParameter,
			}
			raw.TypeParameters = append(raw.TypeParameters, paramRaw)
			scope[param.name] = paramRaw
		}
		u.types[name] = raw
		u.byQualified[raw.QualifiedName] = raw
		u.bySimple[raw.SimpleName()] = append(u.bySimple[raw.SimpleName()], raw)
		u.order = append(u.order, raw)
		pending = append(pending, unresolved{decl: decl, raw: raw, scope: scope, params: params})
	}

	root, ok := u.resolveName(b.root)
	if !ok {
		return nil, errors.Wrap(UnresolvedTypeError{Name: b.root}, "root type")
	}
	if root.Kind != typeref.Class {
		return nil, errors.Errorf("root type %s must be a class, not %s", root.Name(), root.Kind)
	}
	u.root = root

	for _, p := range pending {
		for i, param := range p.params {
			bounds, err := u.parseEach(param.bounds, p.scope)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: bound of %s", p.raw.Name(), param.name)
			}
			p.raw.TypeParameters[i].Supertypes = bounds
		}
		supers, err := u.parseEach(p.decl.extends, p.scope)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: supertypes", p.raw.Name())
		}
		if p.raw == root {
			if len(supers) > 0 {
				return nil, errors.Errorf("root type %s cannot have supertypes", root.Name())
			}
			continue
		}
		if len(supers) == 0 {
			supers = []Type{u.reference(root)}
		}
		p.raw.Supertypes = supers
	}

	if err := u.checkCycles(); err != nil {
		return nil, err
	}

	for _, kind := range typeref.PrimitiveKinds() {
		name, explicit := b.wrappers[kind]
		if !explicit {
			name = kind.WrapperName()
		}
		raw, ok := u.resolveName(name)
		if !ok {
			if explicit {
				return nil, errors.Wrapf(UnresolvedTypeError{Name: name}, "wrapper of %s", kind)
			}
			continue
		}
		u.wrappers[kind] = raw
	}

	if len(b.arraySupers) == 0 {
		u.arraySupers = []Type{u.reference(root)}
	} else {
		for _, name := range b.arraySupers {
			t, err := u.Reference(name)
			if err != nil {
				return nil, errors.Wrap(err, "array supertypes")
			}
			u.arraySupers = append(u.arraySupers, t)
		}
	}

	return u, nil
}

func (u *Universe) parseEach(exprs []string, scope map[string]*typeref.RawType) ([]Type, error) {
	var types []Type
	for _, expr := range exprs {
		t, err := u.parse(expr, scope)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// checkCycles rejects declarations that reach themselves through their
// supertypes. Generic arguments are not followed, so F-bounded
// declarations like Foo extends Comparable<Foo> are fine.
func (u *Universe) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := map[*typeref.RawType]int{}
	var path []string
	var visit func(raw *typeref.RawType) error
	visit = func(raw *typeref.RawType) error {
		switch state[raw] {
		case visiting:
			return errors.WithStack(CycleError{Path: append(append([]string{}, path...), raw.Name())})
		case done:
			return nil
		}
		state[raw] = visiting
		path = append(path, raw.Name())
		for _, super := range raw.Supertypes {
			if next := super.Raw(); next != nil && next.Kind != typeref.Array {
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[raw] = done
		return nil
	}
	for _, raw := range u.order {
		if err := visit(raw); err != nil {
			return err
		}
	}
	return nil
}
