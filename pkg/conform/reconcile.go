package conform

import (
	"slices"
	"strings"

	"github.com/vito/typejoin/pkg/typeref"
)

// pendingJoins are the argument lists whose join is being computed further
// up the call stack.
type pendingJoins map[string]bool

func joinKey(types []Type) string {
	ids := typeref.Types(types).Identifiers()
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return strings.Join(ids, "\x00")
}

func (p pendingJoins) with(types []Type) pendingJoins {
	out := make(pendingJoins, len(p)+1)
	for k := range p {
		out[k] = true
	}
	out[joinKey(types)] = true
	return out
}

func (p pendingJoins) contains(types []Type) bool {
	return p[joinKey(types)]
}

// resolveArguments builds a reference to raw whose generic arguments are
// the joins of the arguments raw was reached with. It returns nil when no
// such reference can be built.
func (c *Computer) resolveArguments(refs *references, raw *typeref.RawType, owner typeref.Owner, requested []Type, pending pendingJoins) (Type, error) {
	switch {
	case raw.IsDeclarator():
		// without parameters any of the references will do
		if len(raw.TypeParameters) == 0 {
			return refs.first(raw)
		}
		observed := refs.get(raw.Identifier)
		if len(observed) == 0 {
			return nil, invariant("no reference recorded for raw type %s", raw.Name())
		}
		args := make([]Type, len(raw.TypeParameters))
		for i := range raw.TypeParameters {
			slot := make([]Type, 0, len(observed))
			for _, ref := range observed {
				p, ok := ref.(*typeref.ParameterizedType)
				if !ok {
					return nil, nil
				}
				// a raw usage wins over any parameterization
				if len(p.Arguments()) == 0 {
					return p, nil
				}
				slot = append(slot, p.Arguments()[i])
			}
			arg, err := c.commonParameterSuperType(slot, requested, owner, pending)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		p, err := typeref.NewParameterized(owner, raw, args...)
		if err != nil {
			return nil, err
		}
		return p, nil

	case raw.Kind == typeref.Array:
		observed := refs.get(raw.Identifier)
		components := make([]Type, len(observed))
		for i, ref := range observed {
			components[i] = componentOf(ref)
		}
		shifted := refs.clone()
		shifted.replace(raw.Component.Identifier, components)
		componentRequests := make([]Type, len(requested))
		for i, req := range requested {
			componentRequests[i] = componentOf(req)
		}
		component, err := c.resolveArguments(shifted, raw.Component, owner, componentRequests, pending)
		if err != nil || component == nil {
			return nil, err
		}
		return typeref.NewArray(owner, component), nil

	default:
		return nil, nil
	}
}

func componentOf(t Type) Type {
	if a, ok := t.(*typeref.ArrayType); ok {
		return a.Component()
	}
	return t
}

// commonParameterSuperType joins the arguments found in one generic slot.
// Identical arguments are kept as they are; anything else becomes a
// wildcard bounded by the join.
func (c *Computer) commonParameterSuperType(types []Type, requested []Type, owner typeref.Owner, pending pendingJoins) (Type, error) {
	names := map[string]bool{}
	for _, t := range types {
		names[t.Identifier()] = true
	}
	if len(names) == 1 {
		return types[0], nil
	}
	if len(types) == len(requested) {
		containsAll := true
		for _, req := range requested {
			if !names[req.Identifier()] {
				containsAll = false
				break
			}
		}
		if containsAll {
			c.logger().Debug("recursive join request, using root wildcard",
				"arguments", typeref.Types(types))
			return rootWildcard(owner), nil
		}
	}
	if pending.contains(types) {
		c.logger().Debug("join already in progress, using root wildcard",
			"arguments", typeref.Types(types))
		return rootWildcard(owner), nil
	}
	super, err := c.commonSuperType(types, pending)
	if err != nil {
		return nil, err
	}
	switch super := super.(type) {
	case nil:
		return rootWildcard(owner), nil
	case *typeref.WildcardType:
		return super, nil
	default:
		return typeref.NewWildcard(owner, []Type{super}, nil), nil
	}
}

func rootWildcard(owner typeref.Owner) *typeref.WildcardType {
	return typeref.NewWildcard(owner, []Type{typeref.RootReference(owner)}, nil)
}
