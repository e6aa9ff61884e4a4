package catalog

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclAppFile is the top-level structure of app.hcl. Block order is the
// layout order; display expressions sit inline.
//
//	action_field = "tc_action"
//
//	param "tc_action" {
//	  type         = "Choice"
//	  valid_values = ["Create", "Update"]
//	}
//
//	output "tc.id" {
//	  type    = "String"
//	  display = "tc_action in ('Create')"
//	}
type hclAppFile struct {
	ActionField string       `hcl:"action_field,optional"`
	Params      []*hclParam  `hcl:"param,block"`
	Outputs     []*hclOutput `hcl:"output,block"`
}

type hclParam struct {
	Name          string    `hcl:"name,label"`
	Type          string    `hcl:"type"`
	Label         string    `hcl:"label,optional"`
	ValidValues   []string  `hcl:"valid_values,optional"`
	Hidden        bool      `hcl:"hidden,optional"`
	ServiceConfig bool      `hcl:"service_config,optional"`
	Required      bool      `hcl:"required,optional"`
	Default       cty.Value `hcl:"default,optional"`
	Display       string    `hcl:"display,optional"`
}

type hclOutput struct {
	Name    string `hcl:"name,label"`
	Type    string `hcl:"type,optional"`
	Display string `hcl:"display,optional"`
}

// ParseHCL decodes an app.hcl source.
func ParseHCL(src []byte, filename string) (*ParameterCatalog, *LayoutCatalog, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclAppFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	inst := installFile{ActionField: parsed.ActionField}
	var lf layoutFile
	section := layoutSection{Sequence: 1}
	for _, p := range parsed.Params {
		inst.Params = append(inst.Params, paramRecord{
			Name:          p.Name,
			Type:          p.Type,
			Label:         p.Label,
			ValidValues:   p.ValidValues,
			Hidden:        p.Hidden,
			ServiceConfig: p.ServiceConfig,
			Required:      p.Required,
			Default:       ctyToGo(p.Default),
		})
		section.Parameters = append(section.Parameters, layoutRecord{Name: p.Name, Display: p.Display})
	}
	lf.Inputs = []layoutSection{section}
	for _, o := range parsed.Outputs {
		inst.Playbook.OutputVariables = append(inst.Playbook.OutputVariables, outputRecord{Name: o.Name, Type: o.Type})
		lf.Outputs = append(lf.Outputs, layoutRecord{Name: o.Name, Display: o.Display})
	}
	return build(&inst, &lf)
}

// ctyToGo converts a primitive HCL value to its Go form. Null, unknown and
// non-primitive values become nil.
func ctyToGo(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	switch {
	case v.Type().Equals(cty.String):
		return v.AsString()
	case v.Type().Equals(cty.Bool):
		return v.True()
	case v.Type().Equals(cty.Number):
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	default:
		return nil
	}
}
