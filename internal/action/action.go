// Package action groups permutations by the value of the app's action field
// and answers which fields each action uses.
package action

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/matthewbaird/permutations/internal/catalog"
	"github.com/matthewbaird/permutations/internal/permutation"
)

// Configuration is the name-sorted, name-unique union of the parameters and
// outputs seen across every permutation of one action value.
type Configuration struct {
	Action  string
	Params  []*catalog.ParameterDef
	Outputs []*catalog.OutputDef
}

// InputNames returns the parameter names in order.
func (c *Configuration) InputNames() []string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Name
	}
	return names
}

// OutputNames returns the output names in order.
func (c *Configuration) OutputNames() []string {
	names := make([]string, len(c.Outputs))
	for i, o := range c.Outputs {
		names[i] = o.Name
	}
	return names
}

// Has reports whether name is one of the configuration's inputs or outputs.
func (c *Configuration) Has(name string) bool {
	_, in := slices.BinarySearchFunc(c.Params, name, func(p *catalog.ParameterDef, n string) int {
		return cmp.Compare(p.Name, n)
	})
	if in {
		return true
	}
	_, out := slices.BinarySearchFunc(c.Outputs, name, func(o *catalog.OutputDef, n string) int {
		return cmp.Compare(o.Name, n)
	})
	return out
}

// Grouping maps an action value to its configuration.
type Grouping map[string]*Configuration

// GroupByAction groups index-aligned permutations by the value bound to
// actionField. Permutations without a non-nil binding for the field are
// excluded. An empty actionField yields an empty grouping.
func GroupByAction(inputs []permutation.InputPermutation, outputs []permutation.OutputPermutation, actionField string) Grouping {
	g := Grouping{}
	if actionField == "" {
		return g
	}

	type acc struct {
		params  map[string]*catalog.ParameterDef
		outputs map[string]*catalog.OutputDef
	}
	accs := map[string]*acc{}

	for i, in := range inputs {
		v, ok := in.Lookup(actionField)
		if !ok || v == nil {
			continue
		}
		key := keyOf(v)
		a, ok := accs[key]
		if !ok {
			a = &acc{params: map[string]*catalog.ParameterDef{}, outputs: map[string]*catalog.OutputDef{}}
			accs[key] = a
		}
		for _, b := range in {
			if _, dup := a.params[b.Param.Name]; !dup {
				a.params[b.Param.Name] = b.Param
			}
		}
		if i < len(outputs) {
			for _, o := range outputs[i] {
				if _, dup := a.outputs[o.Name]; !dup {
					a.outputs[o.Name] = o
				}
			}
		}
	}

	for key, a := range accs {
		cfg := &Configuration{Action: key}
		for _, p := range a.params {
			cfg.Params = append(cfg.Params, p)
		}
		for _, o := range a.outputs {
			cfg.Outputs = append(cfg.Outputs, o)
		}
		slices.SortFunc(cfg.Params, func(x, y *catalog.ParameterDef) int { return cmp.Compare(x.Name, y.Name) })
		slices.SortFunc(cfg.Outputs, func(x, y *catalog.OutputDef) int { return cmp.Compare(x.Name, y.Name) })
		g[key] = cfg
	}
	return g
}

// Actions returns the action values in sorted order.
func (g Grouping) Actions() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// AppliesToAll reports whether name is an input or output of every action.
// It is false for an empty grouping.
func (g Grouping) AppliesToAll(name string) bool {
	if len(g) == 0 {
		return false
	}
	for _, cfg := range g {
		if !cfg.Has(name) {
			return false
		}
	}
	return true
}

// ActionsFor returns, in sorted order, the actions that use name as an input
// or output.
func (g Grouping) ActionsFor(name string) []string {
	var out []string
	for _, k := range g.Actions() {
		if g[k].Has(name) {
			out = append(out, k)
		}
	}
	return out
}

func keyOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
