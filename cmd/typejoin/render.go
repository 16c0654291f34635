package main

import (
	"context"
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"github.com/kr/pretty"
	"github.com/vito/typejoin/pkg/conform"
	"github.com/vito/typejoin/pkg/ioctx"
	"github.com/vito/typejoin/pkg/typeref"
)

type styles struct {
	ok     lipgloss.Style
	fail   lipgloss.Style
	label  lipgloss.Style
	dim    lipgloss.Style
	result lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		return styles{
			ok:     lipgloss.NewStyle(),
			fail:   lipgloss.NewStyle(),
			label:  lipgloss.NewStyle(),
			dim:    lipgloss.NewStyle(),
			result: lipgloss.NewStyle(),
		}
	}
	return styles{
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		label:  lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		result: lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
	}
}

// report prints the result of a single query.
func report(ctx context.Context, cfg Config, o outcome) error {
	w := ioctx.StdoutFromContext(ctx)
	st := newStyles(cfg.Plain)
	if _, err := lipgloss.Fprintln(w, st.result.Render(o.Rendered)); err != nil {
		return err
	}
	if cfg.Dump {
		return dump(w, o)
	}
	return nil
}

// line renders one batch entry.
func (st styles) line(o outcome) string {
	label := st.label.Render(o.Query.Label())
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s %s: %s", st.fail.Render("ERR "), label, o.Err)
	case !o.Matched:
		return fmt.Sprintf("%s %s = %s %s", st.fail.Render("FAIL"), label,
			st.result.Render(o.Rendered), st.dim.Render("(expected "+o.Query.Expect+")"))
	case o.Query.Expect == "":
		return fmt.Sprintf("%s %s = %s", st.dim.Render("-   "), label, st.result.Render(o.Rendered))
	default:
		return fmt.Sprintf("%s %s = %s", st.ok.Render("ok  "), label, st.result.Render(o.Rendered))
	}
}

// node is the dumped shape of a type reference.
type node struct {
	Kind       string
	Identifier string
	Children   []node
}

func shape(t conform.Type) node {
	n := node{Identifier: t.Identifier()}
	switch t := t.(type) {
	case *typeref.ParameterizedType:
		n.Kind = "reference"
		if raw := t.Raw(); raw != nil {
			n.Kind = raw.Kind.String()
		}
		for _, arg := range t.Arguments() {
			n.Children = append(n.Children, shape(arg))
		}
	case *typeref.ArrayType:
		n.Kind = "array"
		n.Children = []node{shape(t.Component())}
	case *typeref.WildcardType:
		n.Kind = "wildcard"
		for _, bound := range t.UpperBounds() {
			n.Children = append(n.Children, shape(bound))
		}
		if lower := t.LowerBound(); lower != nil {
			n.Children = append(n.Children, shape(lower))
		}
	case *typeref.CompoundType:
		n.Kind = "intersection"
		if t.Mode() == typeref.AnyOf {
			n.Kind = "union"
		}
		for _, alt := range t.Alternatives() {
			n.Children = append(n.Children, shape(alt))
		}
	case *typeref.PrimitiveType:
		n.Kind = "primitive"
	case *typeref.VoidType:
		n.Kind = "void"
	case *typeref.AnyType:
		n.Kind = "any"
	}
	return n
}

func dump(w io.Writer, o outcome) error {
	var v any = o.Conformance
	if len(o.Query.Join) > 0 {
		if o.Join == nil {
			_, err := fmt.Fprintln(w, undefined)
			return err
		}
		v = shape(o.Join)
	}
	_, err := fmt.Fprintf(w, "%# v\n", pretty.Formatter(v))
	return err
}
