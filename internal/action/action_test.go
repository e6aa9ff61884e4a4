package action

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/permutations/internal/catalog"
	"github.com/matthewbaird/permutations/internal/permutation"
)

func sampleResult(t *testing.T) *permutation.Result {
	t.Helper()
	pc, err := catalog.NewParameterCatalog(
		[]catalog.ParameterDef{
			{Name: "tc_action", Type: catalog.TypeChoice, ValidValues: []string{"Update", "Create"}},
			{Name: "owner", Type: catalog.TypeString, Hidden: true},
			{Name: "tags", Type: catalog.TypeBoolean},
			{Name: "name", Type: catalog.TypeString},
			{Name: "id", Type: catalog.TypeString},
		},
		[]catalog.OutputDef{{Name: "tc.tags"}, {Name: "tc.id"}},
		"tc_action",
	)
	require.NoError(t, err)
	lc, err := catalog.NewLayoutCatalog(
		[]catalog.LayoutEntry{
			{Name: "tc_action"},
			{Name: "tags", Display: "tc_action = 'Create'"},
			{Name: "name", Display: "tc_action = 'Create'"},
			{Name: "id", Display: "tc_action = 'Update'"},
		},
		[]catalog.LayoutEntry{{Name: "tc.tags", Display: "tags = true"}},
	)
	require.NoError(t, err)

	res, err := permutation.New().Generate(pc, lc)
	require.NoError(t, err)
	return res
}

func TestGroupByAction(t *testing.T) {
	res := sampleResult(t)
	g := GroupByAction(res.Inputs, res.Outputs, "tc_action")

	assert.Equal(t, []string{"Create", "Update"}, g.Actions())

	create := g["Create"]
	require.NotNil(t, create)
	assert.Equal(t, "Create", create.Action)
	assert.Equal(t, []string{"name", "owner", "tags", "tc_action"}, create.InputNames())
	assert.Equal(t, []string{"tc.id", "tc.tags"}, create.OutputNames())

	update := g["Update"]
	require.NotNil(t, update)
	assert.Equal(t, []string{"id", "owner", "tc_action"}, update.InputNames())
	assert.Equal(t, []string{"tc.id"}, update.OutputNames())
}

func TestGroupByAction_SortedAndUnique(t *testing.T) {
	res := sampleResult(t)
	g := GroupByAction(res.Inputs, res.Outputs, "tc_action")
	for _, cfg := range g {
		names := cfg.InputNames()
		assert.True(t, slices.IsSorted(names))
		assert.Equal(t, len(names), len(slices.Compact(slices.Clone(names))))

		outs := cfg.OutputNames()
		assert.True(t, slices.IsSorted(outs))
		assert.Equal(t, len(outs), len(slices.Compact(slices.Clone(outs))))
	}
}

func TestGroupByAction_Queries(t *testing.T) {
	res := sampleResult(t)
	g := GroupByAction(res.Inputs, res.Outputs, "tc_action")

	assert.True(t, g.AppliesToAll("owner"))
	assert.True(t, g.AppliesToAll("tc_action"))
	assert.True(t, g.AppliesToAll("tc.id"))
	assert.False(t, g.AppliesToAll("tags"))
	assert.False(t, g.AppliesToAll("tc.tags"))
	assert.False(t, g.AppliesToAll("nope"))

	assert.Equal(t, []string{"Create"}, g.ActionsFor("tags"))
	assert.Equal(t, []string{"Create", "Update"}, g.ActionsFor("owner"))
	assert.Empty(t, g.ActionsFor("nope"))
}

func TestGroupByAction_ExcludesMissingOrNilAction(t *testing.T) {
	action := &catalog.ParameterDef{Name: "tc_action", Type: catalog.TypeString}
	other := &catalog.ParameterDef{Name: "x", Type: catalog.TypeString}

	inputs := []permutation.InputPermutation{
		{{Param: other}},
		{{Param: action}, {Param: other}},
		{{Param: action, Value: "Run"}},
	}
	g := GroupByAction(inputs, nil, "tc_action")

	assert.Equal(t, []string{"Run"}, g.Actions())
	assert.Equal(t, []string{"tc_action"}, g["Run"].InputNames())
	assert.Empty(t, g["Run"].OutputNames())
}

func TestGroupByAction_BooleanKey(t *testing.T) {
	flag := &catalog.ParameterDef{Name: "enabled", Type: catalog.TypeBoolean}
	inputs := []permutation.InputPermutation{
		{{Param: flag, Value: true}},
		{{Param: flag, Value: false}},
	}
	g := GroupByAction(inputs, nil, "enabled")
	assert.Equal(t, []string{"false", "true"}, g.Actions())
}

func TestGroupByAction_NoActionField(t *testing.T) {
	res := sampleResult(t)
	g := GroupByAction(res.Inputs, res.Outputs, "")
	assert.Empty(t, g)
	assert.Empty(t, g.Actions())
	assert.False(t, g.AppliesToAll("owner"))
}
