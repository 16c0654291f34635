package conform

import "github.com/vito/typejoin/pkg/typeref"

// distances maps ancestor raw types to the maximum number of hops needed to
// reach them. Sorting by these distances yields the direct superclass
// first, then the more specific interfaces, and the root last: an interface
// that is also implemented further up the superclass chain is farther away
// than one only the type itself declares.
type distances struct {
	order []string
	hops  map[string]int
	raws  map[string]*typeref.RawType
}

func newDistances() distances {
	return distances{
		hops: map[string]int{},
		raws: map[string]*typeref.RawType{},
	}
}

func (d *distances) record(raw *typeref.RawType, hops int) {
	current, seen := d.hops[raw.Identifier]
	if !seen {
		d.order = append(d.order, raw.Identifier)
		d.raws[raw.Identifier] = raw
		d.hops[raw.Identifier] = hops
		return
	}
	if hops > current {
		d.hops[raw.Identifier] = hops
	}
}

// intersect keeps the raw types reachable from both sides and sums their
// distances.
func (d distances) intersect(other distances) distances {
	out := newDistances()
	for _, id := range d.order {
		hops, ok := other.hops[id]
		if !ok {
			continue
		}
		out.order = append(out.order, id)
		out.hops[id] = d.hops[id] + hops
		out.raws[id] = d.raws[id]
	}
	return out
}

func (d distances) candidates() []candidate {
	cs := make([]candidate, len(d.order))
	for i, id := range d.order {
		cs[i] = candidate{raw: d.raws[id], distance: d.hops[id]}
	}
	return cs
}

// references records every reference by which a raw type was reached,
// in discovery order and without duplicates.
type references struct {
	byRaw map[string][]Type
	ids   map[string]map[string]bool
}

func newReferences() *references {
	return &references{
		byRaw: map[string][]Type{},
		ids:   map[string]map[string]bool{},
	}
}

func (r *references) add(raw string, t Type) {
	ids, ok := r.ids[raw]
	if !ok {
		ids = map[string]bool{}
		r.ids[raw] = ids
	}
	id := t.Identifier()
	if ids[id] {
		return
	}
	ids[id] = true
	r.byRaw[raw] = append(r.byRaw[raw], t)
}

func (r *references) get(raw string) []Type {
	return r.byRaw[raw]
}

func (r *references) clone() *references {
	out := newReferences()
	for raw, ts := range r.byRaw {
		for _, t := range ts {
			out.add(raw, t)
		}
	}
	return out
}

func (r *references) replace(raw string, ts []Type) {
	delete(r.byRaw, raw)
	delete(r.ids, raw)
	for _, t := range ts {
		r.add(raw, t)
	}
}

// first returns the first parameterized or array reference seen for raw.
func (r *references) first(raw *typeref.RawType) (Type, error) {
	for _, t := range r.byRaw[raw.Identifier] {
		switch t.(type) {
		case *typeref.ParameterizedType, *typeref.ArrayType:
			return t, nil
		}
	}
	return nil, invariant("no usable reference recorded for raw type %s (have %v)",
		raw.Name(), typeref.Types(r.byRaw[raw.Identifier]))
}

// collectDistances walks every path from start through its supertypes,
// recording each reference seen into refs. start itself is at distance 0.
// Compounds and wildcards are walked through their parts, so only
// parameterized and array references are recorded.
// The raw type graph is acyclic, so the walk terminates.
func collectDistances(start Type, refs *references) distances {
	d := newDistances()
	var walk func(t Type, hops int)
	walk = func(t Type, hops int) {
		switch t := t.(type) {
		case *typeref.CompoundType:
			for _, alt := range t.Alternatives() {
				walk(alt, hops)
			}
			return
		case *typeref.WildcardType:
			// a wildcard stands in for its upper bounds; a lower bound
			// says nothing about the supertypes
			for _, upper := range t.UpperBounds() {
				walk(upper, hops)
			}
			return
		}
		if raw := t.Raw(); raw != nil {
			refs.add(raw.Identifier, t)
			d.record(raw, hops)
		}
		for _, super := range t.Supertypes() {
			walk(super, hops+1)
		}
	}
	walk(start, 0)
	return d
}
