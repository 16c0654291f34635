package typeref

// Owner supplies identity services for the references it owns and is the
// allocation scope for references synthesized from them.
type Owner interface {
	// Root is the universal root type every reference type conforms to.
	Root() *RawType
	// Lookup finds a declared raw type by identifier.
	Lookup(identifier string) (*RawType, bool)
	// Wrapper returns the reference type a primitive boxes to.
	Wrapper(PrimitiveKind) (Type, bool)
	// ArraySupertypes are the supertypes of arrays whose component type has
	// no supertypes of its own, e.g. arrays of the root or of primitives.
	ArraySupertypes() []Type
}

// RootReference returns an unparameterized reference to the owner's root.
func RootReference(owner Owner) *ParameterizedType {
	return &ParameterizedType{owner: owner, raw: owner.Root()}
}

// IsRoot reports whether t is a reference to its owner's root type.
func IsRoot(t Type) bool {
	p, ok := t.(*ParameterizedType)
	return ok && p.owner != nil && len(p.args) == 0 &&
		p.raw.Identifier == p.owner.Root().Identifier
}
