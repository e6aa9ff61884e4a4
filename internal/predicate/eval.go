package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver supplies the current value of a named field. An unbound field
// resolves to nil with no error; an unknown field is an error.
type Resolver interface {
	Resolve(name string) (any, error)
}

// Bindings is a map-backed Resolver. Names missing from the map resolve to
// nil, so any identifier is accepted.
type Bindings map[string]any

// Resolve implements Resolver.
func (b Bindings) Resolve(name string) (any, error) {
	return b[name], nil
}

// Predicate is a compiled display expression.
type Predicate struct {
	source string
	expr   Expr
	idents []string
}

// Compile parses src into a Predicate. A blank source yields a nil Predicate,
// which always evaluates to true. The first syntax error is returned as a
// *ParseError.
func Compile(src string) (*Predicate, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	tokens, lexErrs := NewLexer(src).Tokenize()
	if len(lexErrs) > 0 {
		return nil, lexErrs[0]
	}
	expr, parseErrs := NewParser(tokens).Parse()
	if len(parseErrs) > 0 {
		return nil, parseErrs[0]
	}
	return &Predicate{source: src, expr: expr, idents: collectIdents(expr)}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level fixtures.
func MustCompile(src string) *Predicate {
	p, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("predicate: compile %q: %v", src, err))
	}
	return p
}

// Source returns the expression text the predicate was compiled from.
func (p *Predicate) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Expr returns the parsed expression tree.
func (p *Predicate) Expr() Expr {
	if p == nil {
		return nil
	}
	return p.expr
}

// Identifiers returns the field names referenced by the predicate in
// first-seen order.
func (p *Predicate) Identifiers() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.idents))
	copy(out, p.idents)
	return out
}

// Eval evaluates the predicate against r. A nil predicate is true. A result
// of unknown (a comparison against an unbound field that is not resolved by
// the surrounding logic) is false.
func (p *Predicate) Eval(r Resolver) (bool, error) {
	if p == nil {
		return true, nil
	}
	t, err := eval(p.expr, r)
	if err != nil {
		return false, err
	}
	return t == triTrue, nil
}

// Evaluate is a convenience wrapper around (*Predicate).Eval.
func Evaluate(p *Predicate, r Resolver) (bool, error) {
	return p.Eval(r)
}

func collectIdents(expr Expr) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Logic:
			walk(n.Left)
			walk(n.Right)
		case *Not:
			walk(n.X)
		case *Compare:
			add(n.Field)
		case *Member:
			add(n.Field)
		}
	}
	walk(expr)
	return out
}

type tri int

const (
	triFalse tri = iota
	triTrue
	triUnknown
)

func triOf(b bool) tri {
	if b {
		return triTrue
	}
	return triFalse
}

func (t tri) not() tri {
	switch t {
	case triTrue:
		return triFalse
	case triFalse:
		return triTrue
	default:
		return triUnknown
	}
}

func eval(e Expr, r Resolver) (tri, error) {
	switch n := e.(type) {
	case *Logic:
		return evalLogic(n, r)
	case *Not:
		t, err := eval(n.X, r)
		if err != nil {
			return triUnknown, err
		}
		return t.not(), nil
	case *Compare:
		v, err := r.Resolve(n.Field)
		if err != nil {
			return triUnknown, err
		}
		t := compare(v, n.Value)
		if n.Op == OpNeq {
			t = t.not()
		}
		return t, nil
	case *Member:
		v, err := r.Resolve(n.Field)
		if err != nil {
			return triUnknown, err
		}
		t := member(v, n.Values)
		if n.Negated {
			t = t.not()
		}
		return t, nil
	default:
		return triUnknown, fmt.Errorf("predicate: unsupported node %T", e)
	}
}

func evalLogic(n *Logic, r Resolver) (tri, error) {
	left, err := eval(n.Left, r)
	if err != nil {
		return triUnknown, err
	}
	if n.Op == OpAnd && left == triFalse {
		return triFalse, nil
	}
	if n.Op == OpOr && left == triTrue {
		return triTrue, nil
	}
	right, err := eval(n.Right, r)
	if err != nil {
		return triUnknown, err
	}
	switch {
	case n.Op == OpAnd && right == triFalse:
		return triFalse, nil
	case n.Op == OpOr && right == triTrue:
		return triTrue, nil
	case left == triUnknown || right == triUnknown:
		return triUnknown, nil
	default:
		return right, nil
	}
}

// compare tests a bound value against a literal. Null on either side is
// unknown. Booleans on either side compare case-insensitively.
func compare(v any, lit Literal) tri {
	if v == nil || lit.Kind == LitNull {
		return triUnknown
	}
	text := valueText(v)
	if _, isBool := v.(bool); isBool || lit.Kind == LitBool {
		return triOf(strings.EqualFold(text, lit.Text))
	}
	return triOf(text == lit.Text)
}

// member implements IN: true on any match, otherwise unknown if a null was
// involved, otherwise false.
func member(v any, values []Literal) tri {
	result := triFalse
	for _, lit := range values {
		switch compare(v, lit) {
		case triTrue:
			return triTrue
		case triUnknown:
			result = triUnknown
		}
	}
	return result
}

func valueText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
