// Package permutation enumerates every consistent assignment of values to
// the fields of an app, following the conditional visibility rules of its
// layout, and the output variables visible under each assignment.
package permutation

import "github.com/matthewbaird/permutations/internal/catalog"

// Binding is one field of an input permutation and the value it was bound
// to: bool for Boolean fields, string for Choice and EditChoice, nil
// otherwise.
type Binding struct {
	Param *catalog.ParameterDef
	Value any
}

// InputPermutation is an ordered, name-unique list of bindings.
type InputPermutation []Binding

// Names returns the bound field names in order.
func (p InputPermutation) Names() []string {
	names := make([]string, len(p))
	for i, b := range p {
		names[i] = b.Param.Name
	}
	return names
}

// Lookup returns the value bound to name.
func (p InputPermutation) Lookup(name string) (any, bool) {
	for _, b := range p {
		if b.Param.Name == name {
			return b.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is part of the permutation.
func (p InputPermutation) Has(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// OutputPermutation is the ordered list of outputs visible for an input
// permutation.
type OutputPermutation []*catalog.OutputDef

// Names returns the output names in order.
func (p OutputPermutation) Names() []string {
	names := make([]string, len(p))
	for i, o := range p {
		names[i] = o.Name
	}
	return names
}

// Result holds index-aligned input and output permutations.
type Result struct {
	Inputs  []InputPermutation
	Outputs []OutputPermutation
}

// Len returns the number of permutations.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Inputs)
}
