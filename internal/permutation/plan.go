package permutation

import (
	"errors"
	"fmt"
	"math"

	"github.com/matthewbaird/permutations/internal/catalog"
	"github.com/matthewbaird/permutations/internal/predicate"
)

// maxSuggestDist bounds the edit distance for "did you mean" hints.
const maxSuggestDist = 3

// KeywordSet is the set of field names referenced by display expressions.
type KeywordSet map[string]struct{}

// Has reports whether name is in the set.
func (s KeywordSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

type plannedField struct {
	param      *catalog.ParameterDef
	display    *predicate.Predicate
	branch     bool
	candidates []any // nil unless branch-worthy and enumerable
}

type plannedOutput struct {
	def     *catalog.OutputDef
	display *predicate.Predicate
}

// plan is the validated, precomputed input to a traversal.
type plan struct {
	fields   []plannedField
	outputs  []plannedOutput
	keywords KeywordSet
	bound    int
}

// compiledLayout holds the compiled display expressions of a layout.
type compiledLayout struct {
	fields  map[string]*predicate.Predicate
	outputs map[string]*predicate.Predicate
}

func compileLayout(layout *catalog.LayoutCatalog) (*compiledLayout, error) {
	cl := &compiledLayout{
		fields:  make(map[string]*predicate.Predicate),
		outputs: make(map[string]*predicate.Predicate),
	}
	for _, e := range layout.Fields() {
		p, err := compileDisplay(e, "field")
		if err != nil {
			return nil, err
		}
		cl.fields[e.Name] = p
	}
	for _, e := range layout.Outputs() {
		p, err := compileDisplay(e, "output")
		if err != nil {
			return nil, err
		}
		cl.outputs[e.Name] = p
	}
	return cl, nil
}

func compileDisplay(e catalog.LayoutEntry, kind string) (*predicate.Predicate, error) {
	p, err := predicate.Compile(e.Display)
	if err == nil {
		return p, nil
	}
	var perr *predicate.ParseError
	if !errors.As(err, &perr) {
		perr = &predicate.ParseError{Message: err.Error(), Line: 1, Col: 1}
	}
	return nil, &SyntaxError{Owner: e.Name, Kind: kind, Expr: e.Display, Err: perr}
}

func (cl *compiledLayout) keywords() KeywordSet {
	set := KeywordSet{}
	for _, m := range []map[string]*predicate.Predicate{cl.fields, cl.outputs} {
		for _, p := range m {
			for _, id := range p.Identifiers() {
				set[id] = struct{}{}
			}
		}
	}
	return set
}

// DisplayKeywords returns the field names referenced by any field or output
// display expression in layout.
func DisplayKeywords(layout *catalog.LayoutCatalog) (KeywordSet, error) {
	cl, err := compileLayout(layout)
	if err != nil {
		return nil, err
	}
	return cl.keywords(), nil
}

// newPlan validates the catalogs against each other and precomputes field
// order, branch candidates and the permutation upper bound.
func (g *Generator) newPlan(params *catalog.ParameterCatalog, layout *catalog.LayoutCatalog) (*plan, error) {
	if params == nil {
		return nil, &ConfigError{Subject: "parameters", Reason: "catalog is missing"}
	}

	cl, err := compileLayout(layout)
	if err != nil {
		return nil, err
	}

	actionField := params.ActionField()
	if actionField != "" {
		if _, ok := params.Param(actionField); !ok {
			return nil, &ConfigError{
				Subject:    actionField,
				Reason:     "action field is not declared in the parameter catalog",
				Suggestion: predicate.SuggestFrom(actionField, params.Names(), maxSuggestDist),
			}
		}
	}

	if err := validateIdentifiers(params, layout, cl); err != nil {
		return nil, err
	}

	pl := &plan{keywords: cl.keywords(), bound: 1}

	order, err := fieldOrder(params, layout)
	if err != nil {
		return nil, err
	}
	for _, p := range order {
		f := plannedField{
			param:   p,
			display: cl.fields[p.Name],
			branch:  p.Name == actionField || pl.keywords.Has(p.Name),
		}
		if f.branch {
			f.candidates, err = g.candidates(p)
			if err != nil {
				return nil, err
			}
			if len(f.candidates) > 0 {
				pl.bound = saturatingMul(pl.bound, len(f.candidates))
			}
		}
		pl.fields = append(pl.fields, f)
	}

	known := make(map[string]bool, len(params.Outputs()))
	for _, o := range params.Outputs() {
		known[o.Name] = true
		pl.outputs = append(pl.outputs, plannedOutput{def: o, display: cl.outputs[o.Name]})
	}
	for _, e := range layout.Outputs() {
		if !known[e.Name] {
			return nil, &ConfigError{
				Subject:    e.Name,
				Reason:     "layout output is not declared in the parameter catalog",
				Suggestion: predicate.SuggestFrom(e.Name, outputNames(params), maxSuggestDist),
			}
		}
	}
	return pl, nil
}

// fieldOrder returns layout fields first, then catalog parameters the
// layout omits in catalog order.
func fieldOrder(params *catalog.ParameterCatalog, layout *catalog.LayoutCatalog) ([]*catalog.ParameterDef, error) {
	order := make([]*catalog.ParameterDef, 0, params.Len())
	seen := make(map[string]bool, params.Len())
	for _, e := range layout.Fields() {
		p, ok := params.Param(e.Name)
		if !ok {
			return nil, &ConfigError{
				Subject:    e.Name,
				Reason:     "layout field is not declared in the parameter catalog",
				Suggestion: predicate.SuggestFrom(e.Name, params.Names(), maxSuggestDist),
			}
		}
		order = append(order, p)
		seen[p.Name] = true
	}
	for _, p := range params.Params() {
		if !seen[p.Name] {
			order = append(order, p)
		}
	}
	return order, nil
}

// validateIdentifiers checks every identifier of every display expression
// against the parameter catalog, in layout order.
func validateIdentifiers(params *catalog.ParameterCatalog, layout *catalog.LayoutCatalog, cl *compiledLayout) error {
	check := func(owner, kind string, p *predicate.Predicate) error {
		for _, id := range p.Identifiers() {
			if _, ok := params.Param(id); ok {
				continue
			}
			return &ConfigError{
				Subject:    owner,
				Reason:     fmt.Sprintf("%s display expression %q references unknown field %q", kind, p.Source(), id),
				Suggestion: predicate.SuggestFrom(id, params.Names(), maxSuggestDist),
			}
		}
		return nil
	}
	for _, e := range layout.Fields() {
		if err := check(e.Name, "field", cl.fields[e.Name]); err != nil {
			return err
		}
	}
	for _, e := range layout.Outputs() {
		if err := check(e.Name, "output", cl.outputs[e.Name]); err != nil {
			return err
		}
	}
	return nil
}

// candidates returns the values a branch-worthy field is enumerated over.
// Non-enumerable types yield nil and pass through with a nil value.
func (g *Generator) candidates(p *catalog.ParameterDef) ([]any, error) {
	switch p.Type {
	case catalog.TypeBoolean:
		return []any{true, false}, nil
	case catalog.TypeChoice, catalog.TypeEditChoice:
		values := expand(p.ValidValues, g.placeholders)
		if len(values) == 0 {
			return nil, &ConfigError{
				Subject: p.Name,
				Reason:  fmt.Sprintf("%s field has no valid values after placeholder expansion", p.Type),
			}
		}
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = v
		}
		return out, nil
	default:
		return nil, nil
	}
}

func outputNames(params *catalog.ParameterCatalog) []string {
	names := make([]string, 0, len(params.Outputs()))
	for _, o := range params.Outputs() {
		names = append(names, o.Name)
	}
	return names
}

func saturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
