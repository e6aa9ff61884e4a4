package catalog

import (
	"cmp"
	"slices"
)

// installFile mirrors install.json: the parameter catalog of an app.
type installFile struct {
	ActionField string         `json:"actionField,omitempty" yaml:"actionField,omitempty"`
	Params      []paramRecord  `json:"params" yaml:"params"`
	Playbook    playbookRecord `json:"playbook" yaml:"playbook"`
}

type playbookRecord struct {
	OutputVariables []outputRecord `json:"outputVariables,omitempty" yaml:"outputVariables,omitempty"`
}

type paramRecord struct {
	Name          string   `json:"name" yaml:"name"`
	Type          string   `json:"type" yaml:"type"`
	Label         string   `json:"label,omitempty" yaml:"label,omitempty"`
	ValidValues   []string `json:"validValues,omitempty" yaml:"validValues,omitempty"`
	Hidden        bool     `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ServiceConfig bool     `json:"serviceConfig,omitempty" yaml:"serviceConfig,omitempty"`
	Required      bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Default       any      `json:"default,omitempty" yaml:"default,omitempty"`
}

type outputRecord struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// layoutFile mirrors layout.json: input sections holding ordered parameter
// entries, and output entries.
type layoutFile struct {
	Inputs  []layoutSection `json:"inputs" yaml:"inputs"`
	Outputs []layoutRecord  `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

type layoutSection struct {
	Sequence   int            `json:"sequence" yaml:"sequence"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty"`
	Parameters []layoutRecord `json:"parameters" yaml:"parameters"`
}

type layoutRecord struct {
	Name    string `json:"name" yaml:"name"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// build converts decoded documents into catalogs. A nil layout yields a nil
// LayoutCatalog.
func build(inst *installFile, layout *layoutFile) (*ParameterCatalog, *LayoutCatalog, error) {
	params := make([]ParameterDef, 0, len(inst.Params))
	for _, r := range inst.Params {
		params = append(params, ParameterDef{
			Name:          r.Name,
			Type:          FieldType(r.Type),
			ValidValues:   r.ValidValues,
			Hidden:        r.Hidden,
			ServiceConfig: r.ServiceConfig,
			Default:       r.Default,
			Label:         r.Label,
			Required:      r.Required,
		})
	}
	outputs := make([]OutputDef, 0, len(inst.Playbook.OutputVariables))
	for _, r := range inst.Playbook.OutputVariables {
		outputs = append(outputs, OutputDef{Name: r.Name, Type: r.Type})
	}

	pc, err := NewParameterCatalog(params, outputs, resolveActionField(inst.ActionField, params))
	if err != nil {
		return nil, nil, err
	}
	if layout == nil {
		return pc, nil, nil
	}

	sections := slices.Clone(layout.Inputs)
	slices.SortStableFunc(sections, func(a, b layoutSection) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	var fields []LayoutEntry
	for _, s := range sections {
		for _, r := range s.Parameters {
			fields = append(fields, LayoutEntry(r))
		}
	}
	outs := make([]LayoutEntry, 0, len(layout.Outputs))
	for _, r := range layout.Outputs {
		outs = append(outs, LayoutEntry(r))
	}
	lc, err := NewLayoutCatalog(fields, outs)
	if err != nil {
		return nil, nil, err
	}
	return pc, lc, nil
}

// resolveActionField applies the default: an explicit name wins, otherwise
// tc_action when such a parameter exists.
func resolveActionField(explicit string, params []ParameterDef) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range params {
		if p.Name == DefaultActionField {
			return DefaultActionField
		}
	}
	return ""
}
