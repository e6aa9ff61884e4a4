package permutation

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/matthewbaird/permutations/internal/catalog"
	"github.com/matthewbaird/permutations/internal/predicate"
)

// Option configures a Generator.
type Option func(*Generator)

// WithLimit rejects catalogs whose permutation upper bound exceeds n before
// any traversal starts. n <= 0 disables the check.
func WithLimit(n int) Option {
	return func(g *Generator) { g.limit = n }
}

// WithPlaceholders replaces the placeholder expansion table.
func WithPlaceholders(table map[string][]string) Option {
	return func(g *Generator) { g.placeholders = clonePlaceholders(table) }
}

// WithLogger sets the logger used for plan summaries.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// Generator enumerates permutations. A Generator holds no per-run state and
// may be shared; every Generate call owns its own binding context.
type Generator struct {
	limit        int
	placeholders map[string][]string
	logger       *slog.Logger
}

// New creates a Generator with the default placeholder table.
func New(opts ...Option) *Generator {
	g := &Generator{placeholders: DefaultPlaceholders()}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Bound returns the upper bound on the number of permutations: the product
// of the candidate counts of all branch-worthy enumerable fields, saturating
// at math.MaxInt.
func (g *Generator) Bound(params *catalog.ParameterCatalog, layout *catalog.LayoutCatalog) (int, error) {
	pl, err := g.newPlan(params, layout)
	if err != nil {
		return 0, err
	}
	return pl.bound, nil
}

// Generate enumerates every input permutation of params under layout and
// the outputs visible for each. layout may be nil. All configuration and
// syntax errors are reported before traversal begins.
func (g *Generator) Generate(params *catalog.ParameterCatalog, layout *catalog.LayoutCatalog) (*Result, error) {
	pl, err := g.newPlan(params, layout)
	if err != nil {
		return nil, err
	}

	branching := 0
	for _, f := range pl.fields {
		if f.branch {
			branching++
		}
	}
	g.logger.Debug("permutation plan",
		"fields", len(pl.fields),
		"outputs", len(pl.outputs),
		"branch_worthy", branching,
		"keywords", len(pl.keywords),
		"bound", pl.bound,
	)

	if g.limit > 0 && pl.bound > g.limit {
		return nil, &ConfigError{
			Subject: "permutations",
			Reason:  fmt.Sprintf("upper bound %d exceeds limit %d", pl.bound, g.limit),
		}
	}

	t := &traversal{
		plan: pl,
		ctx:  &bindingContext{params: params, values: make(map[string]any)},
		res:  &Result{},
	}
	if err := t.walk(0); err != nil {
		return nil, err
	}

	g.logger.Debug("permutations generated", "count", t.res.Len())
	return t.res, nil
}

// bindingContext is the single name→value map of one traversal. It resolves
// unbound catalog fields to nil and rejects names outside the catalog.
type bindingContext struct {
	params *catalog.ParameterCatalog
	values map[string]any
}

func (c *bindingContext) Resolve(name string) (any, error) {
	if _, ok := c.params.Param(name); !ok {
		return nil, &predicate.UnknownIdentifierError{
			Name:       name,
			Suggestion: predicate.SuggestFrom(name, c.params.Names(), maxSuggestDist),
		}
	}
	return c.values[name], nil
}

type traversal struct {
	plan *plan
	ctx  *bindingContext
	path InputPermutation
	res  *Result
}

// walk visits the field at index i. Every entry it adds to the path or the
// binding context is removed before it returns.
func (t *traversal) walk(i int) error {
	if i == len(t.plan.fields) {
		return t.record()
	}

	f := &t.plan.fields[i]
	visible := f.param.Hidden
	if !visible {
		ok, err := f.display.Eval(t.ctx)
		if err != nil {
			return fmt.Errorf("evaluating display of field %q: %w", f.param.Name, err)
		}
		visible = ok
	}
	if !visible {
		return t.walk(i + 1)
	}

	if !f.branch || f.candidates == nil {
		return t.visit(i, f, nil, false)
	}
	for _, v := range f.candidates {
		if err := t.visit(i, f, v, true); err != nil {
			return err
		}
	}
	return nil
}

// visit appends f to the path, optionally binds it, and recurses.
func (t *traversal) visit(i int, f *plannedField, v any, bind bool) error {
	t.path = append(t.path, Binding{Param: f.param, Value: v})
	if bind {
		t.ctx.values[f.param.Name] = v
	}
	defer func() {
		t.path = t.path[:len(t.path)-1]
		if bind {
			delete(t.ctx.values, f.param.Name)
		}
	}()
	return t.walk(i + 1)
}

func (t *traversal) record() error {
	var outs OutputPermutation
	for _, o := range t.plan.outputs {
		ok, err := o.display.Eval(t.ctx)
		if err != nil {
			return fmt.Errorf("evaluating display of output %q: %w", o.def.Name, err)
		}
		if ok {
			outs = append(outs, o.def)
		}
	}
	t.res.Inputs = append(t.res.Inputs, slices.Clone(t.path))
	t.res.Outputs = append(t.res.Outputs, outs)
	return nil
}
