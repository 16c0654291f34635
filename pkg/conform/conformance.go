package conform

import (
	"fmt"

	"github.com/vito/typejoin/pkg/typeref"
)

// Args tunes a conformance check.
type Args struct {
	// IgnoreGenerics compares raw types only.
	IgnoreGenerics bool
	// AsTypeArgument compares the two sides as generic arguments, where
	// wildcards express containment and everything else is invariant.
	AsTypeArgument bool
	// AllowPrimitiveConversion permits widening, boxing and unboxing.
	AllowPrimitiveConversion bool
}

// Result is the outcome of a conformance check.
type Result int

const (
	Incompatible Result = iota
	Success
	// RawConversion means the value conforms only through an unchecked
	// conversion from a raw usage.
	RawConversion
	Boxing
	Unboxing
	PrimitiveWidening
)

// IsConformant reports whether the check succeeded in any way.
func (r Result) IsConformant() bool {
	return r != Incompatible
}

func (r Result) String() string {
	switch r {
	case Incompatible:
		return "incompatible"
	case Success:
		return "conformant"
	case RawConversion:
		return "conformant (unchecked raw conversion)"
	case Boxing:
		return "conformant (boxing)"
	case Unboxing:
		return "conformant (unboxing)"
	case PrimitiveWidening:
		return "conformant (primitive widening)"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// ConformanceError is returned by Check when a value is not usable where
// the expected type is required.
type ConformanceError struct {
	Expected Type
	Actual   Type
}

func (e ConformanceError) Error() string {
	return fmt.Sprintf("%s is not conformant with %s", e.Actual, e.Expected)
}

// IsConformant reports whether a value of type right may be used where left
// is expected, allowing primitive conversions.
func (c *Computer) IsConformant(left, right Type) bool {
	return c.Conformance(left, right, Args{AllowPrimitiveConversion: true}).IsConformant()
}

// IsRawConformant is IsConformant ignoring generic arguments.
func (c *Computer) IsRawConformant(left, right Type) bool {
	return c.Conformance(left, right, Args{IgnoreGenerics: true, AllowPrimitiveConversion: true}).IsConformant()
}

// Check is IsConformant returning a ConformanceError on failure.
func (c *Computer) Check(left, right Type) (Result, error) {
	res := c.Conformance(left, right, Args{AllowPrimitiveConversion: true})
	if !res.IsConformant() {
		return res, ConformanceError{Expected: left, Actual: right}
	}
	return res, nil
}

// Conformance decides whether right may be used where left is expected.
func (c *Computer) Conformance(left, right Type, args Args) Result {
	if left == right {
		return Success
	}
	return c.conforms(left, right, args)
}

func (c *Computer) conforms(left, right Type, args Args) Result {
	if left == right {
		return Success
	}

	switch r := right.(type) {
	case *typeref.AnyType:
		return Success
	case *typeref.CompoundType:
		if r.Mode() == typeref.AnyOf {
			return c.everyAlternativeConforms(left, r, args)
		}
	}

	switch l := left.(type) {
	case *typeref.AnyType:
		return Success
	case *typeref.VoidType:
		if typeref.IsVoid(right) {
			return Success
		}
		return Incompatible
	case *typeref.CompoundType:
		return c.conformsToCompound(l, right, args)
	case *typeref.WildcardType:
		return c.conformsToWildcard(l, right, args)
	}

	switch r := right.(type) {
	case *typeref.VoidType:
		return Incompatible
	case *typeref.CompoundType:
		// an intersection conforms as soon as one of its parts does
		for _, alt := range r.Alternatives() {
			if res := c.conforms(left, alt, args); res.IsConformant() {
				return res
			}
		}
		return Incompatible
	case *typeref.WildcardType:
		if args.AsTypeArgument {
			return Incompatible
		}
		for _, upper := range r.UpperBounds() {
			if res := c.conforms(left, upper, args); res.IsConformant() {
				return res
			}
		}
		return Incompatible
	}

	switch l := left.(type) {
	case *typeref.PrimitiveType:
		return c.conformsToPrimitive(l, right, args)
	case *typeref.ArrayType:
		return c.conformsToArray(l, right, args)
	case *typeref.ParameterizedType:
		return c.conformsToParameterized(l, right, args)
	default:
		return Incompatible
	}
}

func (c *Computer) everyAlternativeConforms(left Type, right *typeref.CompoundType, args Args) Result {
	result := Success
	for _, alt := range right.Alternatives() {
		res := c.conforms(left, alt, args)
		if !res.IsConformant() {
			return Incompatible
		}
		if res != Success {
			result = res
		}
	}
	return result
}

func (c *Computer) conformsToCompound(left *typeref.CompoundType, right Type, args Args) Result {
	if left.Mode() == typeref.AnyOf {
		for _, alt := range left.Alternatives() {
			if res := c.conforms(alt, right, args); res.IsConformant() {
				return res
			}
		}
		return Incompatible
	}
	result := Success
	for _, alt := range left.Alternatives() {
		res := c.conforms(alt, right, args)
		if !res.IsConformant() {
			return Incompatible
		}
		if res != Success {
			result = res
		}
	}
	return result
}

func (c *Computer) conformsToWildcard(left *typeref.WildcardType, right Type, args Args) Result {
	inner := Args{IgnoreGenerics: args.IgnoreGenerics}
	if r, ok := right.(*typeref.WildcardType); ok {
		for _, upper := range left.UpperBounds() {
			if !c.anyConforms(upper, r.UpperBounds(), inner) {
				return Incompatible
			}
		}
		if lower := left.LowerBound(); lower != nil {
			if r.LowerBound() == nil || !c.conforms(r.LowerBound(), lower, inner).IsConformant() {
				return Incompatible
			}
		}
		return Success
	}
	for _, upper := range left.UpperBounds() {
		if !c.conforms(upper, right, inner).IsConformant() {
			return Incompatible
		}
	}
	if lower := left.LowerBound(); lower != nil {
		if !c.conforms(right, lower, inner).IsConformant() {
			return Incompatible
		}
	}
	return Success
}

func (c *Computer) anyConforms(left Type, rights []Type, args Args) bool {
	for _, right := range rights {
		if c.conforms(left, right, args).IsConformant() {
			return true
		}
	}
	return false
}

func (c *Computer) conformsToPrimitive(left *typeref.PrimitiveType, right Type, args Args) Result {
	if r, ok := right.(*typeref.PrimitiveType); ok {
		if r.Kind() == left.Kind() {
			return Success
		}
		if args.AllowPrimitiveConversion && !args.AsTypeArgument && r.Kind().WidensTo(left.Kind()) {
			return PrimitiveWidening
		}
		return Incompatible
	}
	if !args.AllowPrimitiveConversion || args.AsTypeArgument {
		return Incompatible
	}
	for _, kind := range typeref.PrimitiveKinds() {
		if kind != left.Kind() && !kind.WidensTo(left.Kind()) {
			continue
		}
		wrapper, ok := left.Owner().Wrapper(kind)
		if !ok {
			continue
		}
		if c.conforms(wrapper, right, Args{}).IsConformant() {
			return Unboxing
		}
	}
	return Incompatible
}

func (c *Computer) conformsToArray(left *typeref.ArrayType, right Type, args Args) Result {
	r, ok := right.(*typeref.ArrayType)
	if !ok {
		if p, ok := right.(*typeref.ParameterizedType); ok && p.Raw().Kind == typeref.TypeParameter {
			return c.anySupertypeConforms(left, p, args)
		}
		return Incompatible
	}
	lc, rc := left.Component(), r.Component()
	if typeref.IsPrimitive(lc) || typeref.IsPrimitive(rc) {
		if lc.Eq(rc) {
			return Success
		}
		return Incompatible
	}
	return c.conforms(lc, rc, Args{IgnoreGenerics: args.IgnoreGenerics})
}

func (c *Computer) anySupertypeConforms(left Type, right Type, args Args) Result {
	for _, super := range right.Supertypes() {
		if res := c.conforms(left, super, args); res.IsConformant() {
			return res
		}
	}
	return Incompatible
}

func (c *Computer) conformsToParameterized(left *typeref.ParameterizedType, right Type, args Args) Result {
	if r, ok := right.(*typeref.PrimitiveType); ok {
		if !args.AllowPrimitiveConversion || args.AsTypeArgument {
			return Incompatible
		}
		wrapper, ok := r.Wrapper()
		if !ok {
			return Incompatible
		}
		if c.conforms(left, wrapper, Args{IgnoreGenerics: args.IgnoreGenerics}).IsConformant() {
			return Boxing
		}
		return Incompatible
	}

	if typeref.IsRoot(left) && !args.AsTypeArgument {
		return Success
	}

	match := findSupertype(right, left.Raw())
	if match == nil {
		return Incompatible
	}
	if left.Raw().Kind == typeref.TypeParameter || args.IgnoreGenerics || len(left.Arguments()) == 0 {
		return Success
	}
	p, ok := match.(*typeref.ParameterizedType)
	if !ok {
		return Incompatible
	}
	if len(p.Arguments()) == 0 {
		return RawConversion
	}
	for i, la := range left.Arguments() {
		if !c.argumentConforms(la, p.Arguments()[i]) {
			return Incompatible
		}
	}
	return Success
}

func (c *Computer) argumentConforms(left, right Type) bool {
	args := Args{AsTypeArgument: true}
	if _, ok := left.(*typeref.WildcardType); ok {
		return c.conforms(left, right, args).IsConformant()
	}
	return c.conforms(left, right, args).IsConformant() &&
		c.conforms(right, left, args).IsConformant()
}

// findSupertype searches t and its transitive supertypes, breadth first,
// for a reference to raw.
func findSupertype(t Type, raw *typeref.RawType) Type {
	visited := map[string]bool{}
	queue := []Type{t}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		id := next.Identifier()
		if visited[id] {
			continue
		}
		visited[id] = true
		if r := next.Raw(); r != nil && r.Identifier == raw.Identifier {
			return next
		}
		queue = append(queue, next.Supertypes()...)
	}
	return nil
}
