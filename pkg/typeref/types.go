package typeref

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Type is a reference to a type: a raw type with generic arguments, an
// array, a wildcard, a compound, or one of the synthetic references.
//
// References are never mutated after construction.
type Type interface {
	// Owner is the context the reference was allocated in.
	Owner() Owner
	// Raw is the raw type backing the reference, or nil for compounds and
	// the unknown type.
	Raw() *RawType
	// Identifier is the fully qualified, unique rendering of the reference.
	Identifier() string
	Eq(Type) bool
	// Supertypes returns the direct supertypes with generic arguments
	// substituted.
	Supertypes() []Type
	fmt.Stringer

	reference()
}

// Types is a list of references.
type Types []Type

func (ts Types) String() string {
	strs := make([]string, len(ts))
	for i, t := range ts {
		strs[i] = t.String()
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

// Identifiers returns the identifier of every reference.
func (ts Types) Identifiers() []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.Identifier()
	}
	return ids
}

// InvalidArgumentError reports a reference or argument list that violates
// an input contract.
type InvalidArgumentError struct {
	Reason string
}

func (e InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

func invalid(format string, args ...any) error {
	return errors.WithStack(InvalidArgumentError{Reason: fmt.Sprintf(format, args...)})
}

// ParameterizedType is a raw type applied to generic arguments. An empty
// argument list on a generic raw type is a raw usage.
type ParameterizedType struct {
	owner Owner
	raw   *RawType
	args  []Type
}

var _ Type = (*ParameterizedType)(nil)

// NewParameterized references raw with the given arguments, which must be
// either empty or match the declared parameter count.
func NewParameterized(owner Owner, raw *RawType, args ...Type) (*ParameterizedType, error) {
	if owner == nil {
		return nil, invalid("reference to %s has no owner", raw)
	}
	if raw == nil {
		return nil, invalid("parameterized reference has no raw type")
	}
	if len(args) != 0 && len(args) != len(raw.TypeParameters) {
		return nil, invalid("%s declares %d type parameters, got %d arguments",
			raw.Name(), len(raw.TypeParameters), len(args))
	}
	return &ParameterizedType{owner: owner, raw: raw, args: args}, nil
}

func (t *ParameterizedType) Owner() Owner  { return t.owner }
func (t *ParameterizedType) Raw() *RawType { return t.raw }
func (t *ParameterizedType) reference()    {}

// Arguments returns the generic arguments; empty for raw usage.
func (t *ParameterizedType) Arguments() []Type {
	return t.args
}

// IsRawUsage reports whether a generic raw type is referenced without
// arguments.
func (t *ParameterizedType) IsRawUsage() bool {
	return len(t.args) == 0 && len(t.raw.TypeParameters) > 0
}

func (t *ParameterizedType) Identifier() string {
	if len(t.args) == 0 {
		return t.raw.Identifier
	}
	return t.raw.Identifier + "<" + strings.Join(Types(t.args).Identifiers(), ",") + ">"
}

func (t *ParameterizedType) String() string {
	if len(t.args) == 0 {
		return t.raw.SimpleName()
	}
	strs := make([]string, len(t.args))
	for i, a := range t.args {
		strs[i] = a.String()
	}
	return t.raw.SimpleName() + "<" + strings.Join(strs, ", ") + ">"
}

func (t *ParameterizedType) Eq(other Type) bool {
	ot, ok := other.(*ParameterizedType)
	if !ok || ot.raw.Identifier != t.raw.Identifier || len(ot.args) != len(t.args) {
		return false
	}
	for i, a := range t.args {
		if !a.Eq(ot.args[i]) {
			return false
		}
	}
	return true
}

func (t *ParameterizedType) Supertypes() []Type {
	if t.raw.Kind == TypeParameter {
		if len(t.raw.Supertypes) == 0 {
			return []Type{RootReference(t.owner)}
		}
		return t.raw.Supertypes
	}
	if len(t.raw.Supertypes) == 0 {
		return nil
	}
	supers := make([]Type, len(t.raw.Supertypes))
	if t.IsRawUsage() {
		for i, s := range t.raw.Supertypes {
			supers[i] = Erase(s)
		}
		return supers
	}
	subs := NewSubs()
	for i, param := range t.raw.TypeParameters {
		if i < len(t.args) {
			subs.Add(param, t.args[i])
		}
	}
	for i, s := range t.raw.Supertypes {
		supers[i] = subs.Apply(s)
	}
	return supers
}

// ArrayType is an array over a component type.
type ArrayType struct {
	owner     Owner
	component Type
}

var _ Type = (*ArrayType)(nil)

// NewArray creates an array of component.
func NewArray(owner Owner, component Type) *ArrayType {
	return &ArrayType{owner: owner, component: component}
}

func (t *ArrayType) Owner() Owner    { return t.owner }
func (t *ArrayType) Component() Type { return t.component }
func (t *ArrayType) reference()      {}

func (t *ArrayType) Raw() *RawType {
	component := t.component.Raw()
	if component == nil {
		return nil
	}
	return ArrayOf(component)
}

func (t *ArrayType) Identifier() string {
	return t.render(Type.Identifier)
}

func (t *ArrayType) String() string {
	return t.render(Type.String)
}

func (t *ArrayType) render(name func(Type) string) string {
	if _, ok := t.component.(*CompoundType); ok {
		return "(" + name(t.component) + ")[]"
	}
	return name(t.component) + "[]"
}

func (t *ArrayType) Eq(other Type) bool {
	ot, ok := other.(*ArrayType)
	return ok && t.component.Eq(ot.component)
}

func (t *ArrayType) Supertypes() []Type {
	componentSupers := t.component.Supertypes()
	if len(componentSupers) == 0 {
		return t.owner.ArraySupertypes()
	}
	supers := make([]Type, len(componentSupers))
	for i, s := range componentSupers {
		supers[i] = NewArray(t.owner, s)
	}
	return supers
}

// WildcardType is a bounded placeholder used as a generic argument.
type WildcardType struct {
	owner Owner
	upper []Type
	lower Type
}

var _ Type = (*WildcardType)(nil)

// NewWildcard creates a wildcard. With no upper bounds the root is used.
// Intersections among the upper bounds are flattened into separate bounds.
func NewWildcard(owner Owner, upper []Type, lower Type) *WildcardType {
	var bounds []Type
	for _, u := range upper {
		if c, ok := u.(*CompoundType); ok && c.mode == All {
			bounds = append(bounds, c.alternatives...)
			continue
		}
		bounds = append(bounds, u)
	}
	if len(bounds) == 0 {
		bounds = []Type{RootReference(owner)}
	}
	return &WildcardType{owner: owner, upper: bounds, lower: lower}
}

func (t *WildcardType) Owner() Owner       { return t.owner }
func (t *WildcardType) UpperBounds() []Type { return t.upper }
func (t *WildcardType) reference()         {}

// LowerBound returns the lower bound, or nil.
func (t *WildcardType) LowerBound() Type {
	return t.lower
}

// IsUnbounded reports whether the wildcard is "?".
func (t *WildcardType) IsUnbounded() bool {
	return t.lower == nil && len(t.upper) == 1 && IsRoot(t.upper[0])
}

func (t *WildcardType) Raw() *RawType {
	return t.upper[0].Raw()
}

func (t *WildcardType) Identifier() string {
	return t.render(Type.Identifier)
}

func (t *WildcardType) String() string {
	return t.render(Type.String)
}

func (t *WildcardType) render(name func(Type) string) string {
	if t.lower != nil {
		return "? super " + name(t.lower)
	}
	if t.IsUnbounded() {
		return "?"
	}
	strs := make([]string, len(t.upper))
	for i, u := range t.upper {
		strs[i] = name(u)
	}
	return "? extends " + strings.Join(strs, " & ")
}

func (t *WildcardType) Eq(other Type) bool {
	ot, ok := other.(*WildcardType)
	if !ok || len(ot.upper) != len(t.upper) {
		return false
	}
	if (t.lower == nil) != (ot.lower == nil) || (t.lower != nil && !t.lower.Eq(ot.lower)) {
		return false
	}
	for i, u := range t.upper {
		if !u.Eq(ot.upper[i]) {
			return false
		}
	}
	return true
}

func (t *WildcardType) Supertypes() []Type {
	supers := t.upper[0].Supertypes()
	return append(supers[:len(supers):len(supers)], t.upper[1:]...)
}

// CompoundMode selects how the alternatives of a CompoundType combine.
type CompoundMode int

const (
	// All is an intersection: a value has every alternative's type.
	All CompoundMode = iota
	// AnyOf is a union-like synonym: a value has one of the alternatives.
	AnyOf
)

func (m CompoundMode) separator() string {
	if m == All {
		return " & "
	}
	return " | "
}

// CompoundType combines several references.
type CompoundType struct {
	owner        Owner
	mode         CompoundMode
	alternatives []Type
}

var _ Type = (*CompoundType)(nil)

// NewCompound combines alternatives, flattening nested compounds of the
// same mode.
func NewCompound(owner Owner, mode CompoundMode, alternatives ...Type) (*CompoundType, error) {
	var flat []Type
	for _, alt := range alternatives {
		if c, ok := alt.(*CompoundType); ok && c.mode == mode {
			flat = append(flat, c.alternatives...)
			continue
		}
		flat = append(flat, alt)
	}
	if len(flat) == 0 {
		return nil, invalid("compound reference without alternatives")
	}
	return &CompoundType{owner: owner, mode: mode, alternatives: flat}, nil
}

func (t *CompoundType) Owner() Owner         { return t.owner }
func (t *CompoundType) Mode() CompoundMode   { return t.mode }
func (t *CompoundType) Alternatives() []Type { return t.alternatives }
func (t *CompoundType) Raw() *RawType        { return nil }
func (t *CompoundType) reference()           {}

func (t *CompoundType) Identifier() string {
	return strings.Join(Types(t.alternatives).Identifiers(), t.mode.separator())
}

func (t *CompoundType) String() string {
	strs := make([]string, len(t.alternatives))
	for i, a := range t.alternatives {
		strs[i] = a.String()
	}
	return strings.Join(strs, t.mode.separator())
}

func (t *CompoundType) Eq(other Type) bool {
	ot, ok := other.(*CompoundType)
	if !ok || ot.mode != t.mode || len(ot.alternatives) != len(t.alternatives) {
		return false
	}
	for i, a := range t.alternatives {
		if !a.Eq(ot.alternatives[i]) {
			return false
		}
	}
	return true
}

// Supertypes of an intersection are its alternatives. A union has none of
// its own.
func (t *CompoundType) Supertypes() []Type {
	if t.mode == All {
		return t.alternatives
	}
	return nil
}

// AnyType is the unknown type. It is conformant with every type and every
// type is conformant with it.
type AnyType struct {
	owner Owner
}

var _ Type = (*AnyType)(nil)

func NewAny(owner Owner) *AnyType { return &AnyType{owner: owner} }

func (t *AnyType) Owner() Owner       { return t.owner }
func (t *AnyType) Raw() *RawType      { return nil }
func (t *AnyType) Identifier() string { return "any" }
func (t *AnyType) String() string     { return "any" }
func (t *AnyType) Supertypes() []Type { return nil }
func (t *AnyType) reference()         {}

func (t *AnyType) Eq(other Type) bool {
	_, ok := other.(*AnyType)
	return ok
}

// VoidType is the primitive void.
type VoidType struct {
	owner Owner
}

var _ Type = (*VoidType)(nil)

func NewVoid(owner Owner) *VoidType { return &VoidType{owner: owner} }

func (t *VoidType) Owner() Owner       { return t.owner }
func (t *VoidType) Raw() *RawType      { return voidRaw }
func (t *VoidType) Identifier() string { return "void" }
func (t *VoidType) String() string     { return "void" }
func (t *VoidType) Supertypes() []Type { return nil }
func (t *VoidType) reference()         {}

func (t *VoidType) Eq(other Type) bool {
	_, ok := other.(*VoidType)
	return ok
}

// PrimitiveType is a numeric or boolean primitive.
type PrimitiveType struct {
	owner Owner
	kind  PrimitiveKind
}

var _ Type = (*PrimitiveType)(nil)

func NewPrimitive(owner Owner, kind PrimitiveKind) *PrimitiveType {
	return &PrimitiveType{owner: owner, kind: kind}
}

func (t *PrimitiveType) Owner() Owner        { return t.owner }
func (t *PrimitiveType) Kind() PrimitiveKind { return t.kind }
func (t *PrimitiveType) Raw() *RawType       { return t.kind.Raw() }
func (t *PrimitiveType) Identifier() string  { return t.kind.String() }
func (t *PrimitiveType) String() string      { return t.kind.String() }
func (t *PrimitiveType) Supertypes() []Type  { return nil }
func (t *PrimitiveType) reference()          {}

func (t *PrimitiveType) Eq(other Type) bool {
	ot, ok := other.(*PrimitiveType)
	return ok && ot.kind == t.kind
}

// Wrapper returns the boxed form of the primitive.
func (t *PrimitiveType) Wrapper() (Type, bool) {
	return t.owner.Wrapper(t.kind)
}

// IsPrimitive reports whether t is a primitive other than void.
func IsPrimitive(t Type) bool {
	_, ok := t.(*PrimitiveType)
	return ok
}

// IsVoid reports whether t is the primitive void.
func IsVoid(t Type) bool {
	_, ok := t.(*VoidType)
	return ok
}

// IsAny reports whether t is the unknown type.
func IsAny(t Type) bool {
	_, ok := t.(*AnyType)
	return ok
}

// WrapperIfPrimitive boxes primitives and returns every other type as is.
func WrapperIfPrimitive(t Type) Type {
	if p, ok := t.(*PrimitiveType); ok {
		if w, ok := p.Wrapper(); ok {
			return w
		}
	}
	return t
}

// Erase drops generic arguments, recursing into array components.
func Erase(t Type) Type {
	switch t := t.(type) {
	case *ParameterizedType:
		if len(t.args) == 0 {
			return t
		}
		return &ParameterizedType{owner: t.owner, raw: t.raw}
	case *ArrayType:
		return NewArray(t.owner, Erase(t.component))
	default:
		return t
	}
}
