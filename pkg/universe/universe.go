// Package universe provides an immutable, declared type universe that owns
// type references and resolves type expressions against its declarations.
package universe

import (
	"fmt"

	"github.com/vito/typejoin/pkg/typeref"
)

type Type = typeref.Type

// Universe is a frozen set of raw type declarations. It implements
// typeref.Owner and is safe for concurrent use.
type Universe struct {
	root        *typeref.RawType
	types       map[string]*typeref.RawType
	byQualified map[string]*typeref.RawType
	bySimple    map[string][]*typeref.RawType
	order       []*typeref.RawType
	wrappers    map[typeref.PrimitiveKind]*typeref.RawType
	arraySupers []Type
}

var _ typeref.Owner = (*Universe)(nil)

func (u *Universe) Root() *typeref.RawType {
	return u.root
}

func (u *Universe) Lookup(identifier string) (*typeref.RawType, bool) {
	raw, ok := u.types[identifier]
	return raw, ok
}

func (u *Universe) Wrapper(kind typeref.PrimitiveKind) (Type, bool) {
	raw, ok := u.wrappers[kind]
	if !ok {
		return nil, false
	}
	return u.reference(raw), true
}

func (u *Universe) ArraySupertypes() []Type {
	return u.arraySupers
}

// Types returns the declared raw types in declaration order.
func (u *Universe) Types() []*typeref.RawType {
	return u.order
}

// Reference returns a raw reference to a declared type.
func (u *Universe) Reference(identifier string) (Type, error) {
	raw, ok := u.resolveName(identifier)
	if !ok {
		return nil, UnresolvedTypeError{Name: identifier}
	}
	return u.reference(raw), nil
}

func (u *Universe) reference(raw *typeref.RawType) *typeref.ParameterizedType {
	// argument-free references never fail
	p, _ := typeref.NewParameterized(u, raw)
	return p
}

// resolveName finds a type by identifier, qualified name, or unambiguous
// simple name.
func (u *Universe) resolveName(name string) (*typeref.RawType, bool) {
	if raw, ok := u.types[name]; ok {
		return raw, true
	}
	if raw, ok := u.byQualified[name]; ok {
		return raw, true
	}
	if candidates := u.bySimple[name]; len(candidates) == 1 {
		return candidates[0], true
	}
	return nil, false
}

// UnresolvedTypeError reports a name that matches no declaration.
type UnresolvedTypeError struct {
	Name string
}

func (e UnresolvedTypeError) Error() string {
	return fmt.Sprintf("unresolved type: %s", e.Name)
}

// AmbiguousTypeError reports a simple name declared more than once.
type AmbiguousTypeError struct {
	Name       string
	Candidates []string
}

func (e AmbiguousTypeError) Error() string {
	return fmt.Sprintf("ambiguous type %s: could be any of %v", e.Name, e.Candidates)
}

// CycleError reports a type that is its own supertype.
type CycleError struct {
	Path []string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("supertype cycle: %v", e.Path)
}
