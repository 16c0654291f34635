package conform

import (
	"cmp"
	"slices"
	"strings"

	"github.com/vito/typejoin/pkg/typeref"
)

type candidate struct {
	raw      *typeref.RawType
	distance int
}

// sortCandidates orders by summed distance, then classes before
// interfaces, then identifier, so the result never depends on the order
// the inputs were given in.
func sortCandidates(cs []candidate) {
	slices.SortStableFunc(cs, compareCandidates)
}

func compareCandidates(a, b candidate) int {
	if a.distance != b.distance {
		return cmp.Compare(a.distance, b.distance)
	}
	return compareRawTypes(a.raw, b.raw)
}

func compareRawTypes(a, b *typeref.RawType) int {
	if a.Kind == typeref.Array && b.Kind == typeref.Array {
		return compareRawTypes(a.Component, b.Component)
	}
	if a.IsDeclarator() && b.IsDeclarator() {
		if c := compareBool(a.Kind == typeref.Interface, b.Kind == typeref.Interface); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Identifier, b.Identifier)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
