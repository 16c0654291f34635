package universe

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/vito/typejoin/pkg/typeref"
)

// ParseError reports a malformed type expression.
type ParseError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%q at offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// Parse resolves a type expression such as
//
//	util.Map<lang.String, ? extends util.List<int[]>>
//	Serializable & Comparable<?>
//	String | Integer
//	(Serializable & Cloneable)[]
//
// against the universe. Names may be identifiers, qualified names or
// unambiguous simple names. "void", "any" and the primitive keywords are
// reserved.
func (u *Universe) Parse(expr string) (Type, error) {
	return u.parse(expr, nil)
}

// MustParse is Parse panicking on error.
func (u *Universe) MustParse(expr string) Type {
	t, err := u.Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAll parses every expression.
func (u *Universe) ParseAll(exprs []string) ([]Type, error) {
	types := make([]Type, len(exprs))
	for i, expr := range exprs {
		t, err := u.Parse(expr)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

func (u *Universe) parse(expr string, scope map[string]*typeref.RawType) (Type, error) {
	p := &parser{u: u, expr: expr, scope: scope}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.expr) {
		return nil, p.errorf("unexpected %q", p.expr[p.pos:])
	}
	return t, nil
}

type parser struct {
	u     *Universe
	expr  string
	pos   int
	scope map[string]*typeref.RawType
}

func (p *parser) errorf(format string, args ...any) error {
	return errors.WithStack(ParseError{Expr: p.expr, Pos: p.pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) skipSpace() {
	for p.pos < len(p.expr) && (p.expr[p.pos] == ' ' || p.expr[p.pos] == '\t' || p.expr[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) accept(symbol string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.expr[p.pos:], symbol) {
		p.pos += len(symbol)
		return true
	}
	return false
}

func (p *parser) expect(symbol string) error {
	if !p.accept(symbol) {
		return p.errorf("expected %q", symbol)
	}
	return nil
}

func (p *parser) acceptKeyword(keyword string) bool {
	p.skipSpace()
	start := p.pos
	name, ok := p.name()
	if ok && name == keyword {
		return true
	}
	p.pos = start
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// name scans a dotted identifier; '$' separates nested types.
func (p *parser) name() (string, bool) {
	p.skipSpace()
	start := p.pos
	for {
		if p.pos >= len(p.expr) || !isIdentStart(p.expr[p.pos]) {
			p.pos = start
			return "", false
		}
		for p.pos < len(p.expr) && isIdentPart(p.expr[p.pos]) {
			p.pos++
		}
		if p.pos+1 < len(p.expr) && (p.expr[p.pos] == '.' || p.expr[p.pos] == '$') && isIdentStart(p.expr[p.pos+1]) {
			p.pos++
			continue
		}
		return p.expr[start:p.pos], true
	}
}

func (p *parser) union() (Type, error) {
	first, err := p.intersection()
	if err != nil {
		return nil, err
	}
	alts := []Type{first}
	for p.accept("|") {
		next, err := p.intersection()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	compound, err := typeref.NewCompound(p.u, typeref.AnyOf, alts...)
	if err != nil {
		return nil, err
	}
	return compound, nil
}

func (p *parser) intersection() (Type, error) {
	first, err := p.single()
	if err != nil {
		return nil, err
	}
	alts := []Type{first}
	for p.accept("&") {
		next, err := p.single()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	compound, err := typeref.NewCompound(p.u, typeref.All, alts...)
	if err != nil {
		return nil, err
	}
	return compound, nil
}

func (p *parser) single() (Type, error) {
	if p.accept("?") {
		return p.wildcard()
	}
	var t Type
	var err error
	if p.accept("(") {
		if t, err = p.union(); err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	} else if t, err = p.base(); err != nil {
		return nil, err
	}
	for p.accept("[") {
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		t = typeref.NewArray(p.u, t)
	}
	return t, nil
}

func (p *parser) wildcard() (Type, error) {
	switch {
	case p.acceptKeyword("extends"):
		var bounds []Type
		for {
			bound, err := p.single()
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, bound)
			if !p.accept("&") {
				break
			}
		}
		return typeref.NewWildcard(p.u, bounds, nil), nil
	case p.acceptKeyword("super"):
		lower, err := p.single()
		if err != nil {
			return nil, err
		}
		return typeref.NewWildcard(p.u, nil, lower), nil
	default:
		return typeref.NewWildcard(p.u, nil, nil), nil
	}
}

func (p *parser) base() (Type, error) {
	start := p.pos
	name, ok := p.name()
	if !ok {
		return nil, p.errorf("expected a type")
	}
	switch name {
	case "void":
		return typeref.NewVoid(p.u), nil
	case "any":
		return typeref.NewAny(p.u), nil
	}
	if kind, ok := typeref.ParsePrimitiveKind(name); ok {
		return typeref.NewPrimitive(p.u, kind), nil
	}

	raw, err := p.resolve(name)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q at offset %d", p.expr, start)
	}
	var args []Type
	if p.accept("<") {
		for {
			arg, err := p.union()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
	}
	ref, err := typeref.NewParameterized(p.u, raw, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q at offset %d", p.expr, start)
	}
	return ref, nil
}

func (p *parser) resolve(name string) (*typeref.RawType, error) {
	if raw, ok := p.scope[name]; ok {
		return raw, nil
	}
	if raw, ok := p.u.resolveName(name); ok {
		return raw, nil
	}
	if candidates := p.u.bySimple[name]; len(candidates) > 1 {
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.Identifier
		}
		return nil, AmbiguousTypeError{Name: name, Candidates: ids}
	}
	return nil, UnresolvedTypeError{Name: name}
}

// typeParam is a declared generic parameter with its bound expressions.
type typeParam struct {
	name   string
	bounds []string
}

// parseHeader splits a declaration like "util.Map<K, V extends Comparable<V>>"
// into its name and parameters.
func parseHeader(header string) (string, []typeParam, error) {
	header = strings.TrimSpace(header)
	open := strings.IndexByte(header, '<')
	if open < 0 {
		if header == "" {
			return "", nil, errors.New("empty type declaration")
		}
		return header, nil, nil
	}
	if !strings.HasSuffix(header, ">") {
		return "", nil, errors.Errorf("declaration %q: unterminated parameter list", header)
	}
	name := strings.TrimSpace(header[:open])
	var params []typeParam
	for _, part := range splitTopLevel(header[open+1:len(header)-1], ',') {
		part = strings.TrimSpace(part)
		paramName, bounds, found := strings.Cut(part, " extends ")
		param := typeParam{name: strings.TrimSpace(paramName)}
		if param.name == "" {
			return "", nil, errors.Errorf("declaration %q: empty type parameter", header)
		}
		if found {
			for _, bound := range splitTopLevel(bounds, '&') {
				param.bounds = append(param.bounds, strings.TrimSpace(bound))
			}
		}
		params = append(params, param)
	}
	return name, params, nil
}

// splitTopLevel splits s at sep outside of angle brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
