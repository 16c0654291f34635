package typeref

import "strings"

// RawKind distinguishes the declarations a RawType can stand for.
type RawKind int

const (
	Class RawKind = iota
	Interface
	Array
	TypeParameter
	Primitive
	Void
)

func (k RawKind) String() string {
	switch k {
	case Class:
		return "class"
	case Interface:
		return "interface"
	case Array:
		return "array"
	case TypeParameter:
		return "type-parameter"
	case Primitive:
		return "primitive"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// RawType is a named declaration, independent of any generic arguments.
//
// Raw types are owned by the universe that declared them and must not be
// modified once it has been built.
type RawType struct {
	// Identifier is unique within a universe, e.g. "util.Map$Entry".
	Identifier string
	// QualifiedName is the dotted display name, e.g. "util.Map.Entry".
	QualifiedName string
	Kind          RawKind
	// TypeParameters are the declared generic slots, each of Kind TypeParameter.
	TypeParameters []*RawType
	// Supertypes are the direct supertypes. For a TypeParameter these are
	// its bounds.
	Supertypes []Type
	// Component is set for Array kinds only.
	Component *RawType
}

// ArrayOf derives the raw type of an array over component.
func ArrayOf(component *RawType) *RawType {
	return &RawType{
		Identifier:    component.Identifier + "[]",
		QualifiedName: component.Name() + "[]",
		Kind:          Array,
		Component:     component,
	}
}

// Name returns the qualified name, falling back to the identifier.
func (r *RawType) Name() string {
	if r.QualifiedName != "" {
		return r.QualifiedName
	}
	return r.Identifier
}

// SimpleName returns the last segment of the qualified name.
func (r *RawType) SimpleName() string {
	name := r.Name()
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// IsClass reports whether r is a class, looking through array components.
func (r *RawType) IsClass() bool {
	if r.Kind == Array {
		return r.Component.IsClass()
	}
	return r.Kind == Class
}

// IsDeclarator reports whether r can declare type parameters.
func (r *RawType) IsDeclarator() bool {
	return r.Kind == Class || r.Kind == Interface
}

func (r *RawType) String() string {
	return r.Name()
}
