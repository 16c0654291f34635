package typeref

import "github.com/iancoleman/strcase"

// PrimitiveKind enumerates the primitive value types.
type PrimitiveKind int

const (
	Boolean PrimitiveKind = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
)

var primitiveNames = [...]string{
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return "unknown"
}

// PrimitiveKinds lists every primitive kind in declaration order.
func PrimitiveKinds() []PrimitiveKind {
	return []PrimitiveKind{Boolean, Byte, Short, Char, Int, Long, Float, Double}
}

// ParsePrimitiveKind maps a keyword like "int" to its kind.
func ParsePrimitiveKind(name string) (PrimitiveKind, bool) {
	k, ok := primitivesByName[name]
	return k, ok
}

// WrapperName is the simple name of the reference type a primitive boxes to.
func (k PrimitiveKind) WrapperName() string {
	return wrapperNames[k]
}

// WidensTo reports whether a value of kind k converts to target without a
// cast. A kind does not widen to itself.
func (k PrimitiveKind) WidensTo(target PrimitiveKind) bool {
	return widening[k][target]
}

// Raw returns the synthetic raw backing of the primitive.
func (k PrimitiveKind) Raw() *RawType {
	return primitiveRaws[k]
}

// The tables below are filled once at package initialisation and are
// read-only afterwards.
var (
	primitivesByName = map[string]PrimitiveKind{}
	wrapperNames     = map[PrimitiveKind]string{}
	primitiveRaws    = map[PrimitiveKind]*RawType{}
	widening         = map[PrimitiveKind]map[PrimitiveKind]bool{}

	voidRaw = &RawType{Identifier: "void", Kind: Void}
)

func init() {
	for _, k := range PrimitiveKinds() {
		name := k.String()
		primitivesByName[name] = k
		primitiveRaws[k] = &RawType{Identifier: name, Kind: Primitive}
		switch k {
		case Int:
			wrapperNames[k] = "Integer"
		case Char:
			wrapperNames[k] = "Character"
		default:
			wrapperNames[k] = strcase.ToCamel(name)
		}
	}

	direct := map[PrimitiveKind][]PrimitiveKind{
		Byte:  {Short},
		Short: {Int},
		Char:  {Int},
		Int:   {Long},
		Long:  {Float},
		Float: {Double},
	}
	for _, k := range PrimitiveKinds() {
		targets := map[PrimitiveKind]bool{}
		for next := direct[k]; len(next) > 0; {
			var more []PrimitiveKind
			for _, t := range next {
				if !targets[t] {
					targets[t] = true
					more = append(more, direct[t]...)
				}
			}
			next = more
		}
		widening[k] = targets
	}
}
