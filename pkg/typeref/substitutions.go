package typeref

// Subs maps declared type parameters to the arguments that replace them.
type Subs map[*RawType]Type

// NewSubs creates an empty substitution.
func NewSubs() Subs {
	return make(Subs)
}

// Add binds a type parameter and returns the updated substitution.
func (s Subs) Add(param *RawType, t Type) Subs {
	s[param] = t
	return s
}

// Get returns the binding for a type parameter.
func (s Subs) Get(param *RawType) (Type, bool) {
	t, exists := s[param]
	return t, exists
}

// Apply replaces every bound type parameter occurring in t. Unchanged
// references are returned as is.
func (s Subs) Apply(t Type) Type {
	if len(s) == 0 {
		return t
	}
	switch t := t.(type) {
	case *ParameterizedType:
		if len(t.args) == 0 {
			if bound, ok := s[t.raw]; ok {
				return bound
			}
			return t
		}
		args, changed := s.applyAll(t.args)
		if !changed {
			return t
		}
		return &ParameterizedType{owner: t.owner, raw: t.raw, args: args}
	case *ArrayType:
		component := s.Apply(t.component)
		if component == t.component {
			return t
		}
		return NewArray(t.owner, component)
	case *WildcardType:
		upper, changed := s.applyAll(t.upper)
		lower := t.lower
		if lower != nil {
			lower = s.Apply(lower)
			changed = changed || lower != t.lower
		}
		if !changed {
			return t
		}
		return &WildcardType{owner: t.owner, upper: upper, lower: lower}
	case *CompoundType:
		alts, changed := s.applyAll(t.alternatives)
		if !changed {
			return t
		}
		return &CompoundType{owner: t.owner, mode: t.mode, alternatives: alts}
	default:
		return t
	}
}

func (s Subs) applyAll(ts []Type) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, t := range ts {
		out[i] = s.Apply(t)
		if out[i] != t {
			changed = true
		}
	}
	return out, changed
}
