package conform

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/vito/typejoin/pkg/typeref"
)

// CommonSuperType computes the most specific type every given type
// conforms to.
//
// A nil result without an error means the join is undefined, e.g. for void
// mixed with other types. An empty list or a malformed reference is
// reported as a typeref.InvalidArgumentError.
func (c *Computer) CommonSuperType(types []Type) (Type, error) {
	return c.commonSuperType(types, pendingJoins{})
}

func (c *Computer) commonSuperType(types []Type, pending pendingJoins) (Type, error) {
	if err := validate(types); err != nil {
		return nil, err
	}
	if len(types) == 1 {
		return types[0], nil
	}
	if every(types, typeref.IsVoid) || every(types, typeref.IsAny) {
		return types[0], nil
	}
	if flat, ok := flattenUnions(types); ok {
		return c.commonSuperType(flat, pending)
	}
	// void only joins with void
	for _, t := range types {
		if typeref.IsVoid(t) {
			return nil, nil
		}
	}

	// one of the types may already be a supertype of all the others
	for _, t := range types {
		if !typeref.IsAny(t) && c.conformsToAll(t, types) {
			return t, nil
		}
	}

	pending = pending.with(types)

	if components, ok := referenceComponents(types); ok {
		component, err := c.commonSuperType(components, pending)
		if err != nil || component == nil {
			return nil, err
		}
		return typeref.NewArray(types[0].Owner(), component), nil
	}

	if containsPrimitiveOrAny(types) {
		normalized := boxAndDropAny(types)
		if sameTypes(normalized, types) {
			return nil, nil
		}
		return c.commonSuperType(normalized, pending)
	}

	first, owner := types[0], types[0].Owner()
	refs := newReferences()
	common := collectDistances(first, refs)
	for _, t := range types[1:] {
		common = common.intersect(collectDistances(t, refs))
	}

	candidates := common.candidates()
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		// only the root is shared
		return refs.first(candidates[0].raw)
	}
	sortCandidates(candidates)

	if log := c.logger(); log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("join candidates", "types", typeref.Types(types), "candidates", describe(candidates))
	}

	var collected []Type
	tier := -1
	classSeen := false
outer:
	for _, cand := range candidates {
		var result Type
		resolved := false
		if tier == -1 {
			tier = cand.distance
		} else if tier != cand.distance {
			// a class closes off the farther tiers
			if classSeen {
				break
			}
			var err error
			result, err = c.resolveArguments(refs, cand.raw, owner, types, pending)
			if err != nil {
				return nil, err
			}
			resolved = true
			if result != nil {
				for _, prev := range collected {
					if c.Conformance(result, prev, Args{IgnoreGenerics: true, AllowPrimitiveConversion: true}).IsConformant() {
						classSeen = classSeen || cand.raw.IsClass()
						continue outer
					}
				}
			}
			tier = cand.distance
		}
		if !resolved {
			var err error
			result, err = c.resolveArguments(refs, cand.raw, owner, types, pending)
			if err != nil {
				return nil, err
			}
		}
		if result == nil {
			continue
		}
		if cand.raw.IsClass() {
			classSeen = true
			collected = append([]Type{result}, collected...)
		} else {
			collected = append(collected, result)
		}
	}

	switch len(collected) {
	case 0:
		return nil, nil
	case 1:
		return collected[0], nil
	default:
		compound, err := typeref.NewCompound(owner, typeref.All, collected...)
		if err != nil {
			return nil, err
		}
		return compound, nil
	}
}

func validate(types []Type) error {
	if len(types) == 0 {
		return invalidArgument("types can't be empty")
	}
	for i, t := range types {
		if t == nil {
			return invalidArgument("type %d is nil", i)
		}
		if t.Owner() == nil {
			return invalidArgument("type %d (%s) has no owner", i, t)
		}
		if a, ok := t.(*typeref.ArrayType); ok && a.Component() == nil {
			return invalidArgument("type %d is an array without component type", i)
		}
	}
	return nil
}

// conformsToAll checks t against every type without primitive
// conversions, so that boxing never decides which input is returned.
func (c *Computer) conformsToAll(t Type, types []Type) bool {
	for _, other := range types {
		if !c.Conformance(t, other, Args{}).IsConformant() {
			return false
		}
	}
	return true
}

func every(types []Type, pred func(Type) bool) bool {
	for _, t := range types {
		if !pred(t) {
			return false
		}
	}
	return true
}

// flattenUnions replaces every union by its alternatives.
func flattenUnions(types []Type) ([]Type, bool) {
	found := false
	var flat []Type
	for _, t := range types {
		if u, ok := t.(*typeref.CompoundType); ok && u.Mode() == typeref.AnyOf {
			found = true
			flat = append(flat, u.Alternatives()...)
			continue
		}
		flat = append(flat, t)
	}
	return flat, found
}

// referenceComponents returns the component types if every type is an
// array of references.
func referenceComponents(types []Type) ([]Type, bool) {
	components := make([]Type, len(types))
	for i, t := range types {
		a, ok := t.(*typeref.ArrayType)
		if !ok || typeref.IsPrimitive(a.Component()) {
			return nil, false
		}
		components[i] = a.Component()
	}
	return components, true
}

func containsPrimitiveOrAny(types []Type) bool {
	for _, t := range types {
		if typeref.IsPrimitive(t) || typeref.IsAny(t) {
			return true
		}
	}
	return false
}

func boxAndDropAny(types []Type) []Type {
	out := make([]Type, 0, len(types))
	for _, t := range types {
		if !typeref.IsAny(t) {
			out = append(out, typeref.WrapperIfPrimitive(t))
		}
	}
	return out
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

func describe(cs []candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.raw.Name() + "=" + strconv.Itoa(c.distance)
	}
	return out
}
