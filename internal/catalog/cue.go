package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// ParseCUE compiles a single CUE source holding both catalogs:
//
//	actionField: "tc_action"
//	params: [{name: "tc_action", type: "Choice", validValues: ["Create"]}]
//	playbook: outputVariables: [{name: "tc.id", type: "String"}]
//	inputs: [{sequence: 1, parameters: [{name: "tc_action"}]}]
//	outputs: [{name: "tc.id", display: "tc_action in ('Create')"}]
func ParseCUE(src []byte, filename string) (*ParameterCatalog, *LayoutCatalog, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(src, cue.Filename(filename))
	if val.Err() != nil {
		return nil, nil, fmt.Errorf("compiling %s: %w", filename, val.Err())
	}
	return decodeCUE(val)
}

// LoadCUE loads the CUE package in dir and decodes it like ParseCUE.
func LoadCUE(dir string) (*ParameterCatalog, *LayoutCatalog, error) {
	ctx := cuecontext.New()
	insts := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, nil, fmt.Errorf("no CUE instances found in %s", dir)
	}
	if insts[0].Err != nil {
		return nil, nil, fmt.Errorf("loading CUE in %s: %w", dir, insts[0].Err)
	}
	val := ctx.BuildInstance(insts[0])
	if val.Err() != nil {
		return nil, nil, fmt.Errorf("building CUE value in %s: %w", dir, val.Err())
	}
	return decodeCUE(val)
}

func decodeCUE(val cue.Value) (*ParameterCatalog, *LayoutCatalog, error) {
	var inst installFile
	if v := val.LookupPath(cue.ParsePath("actionField")); v.Exists() {
		s, err := v.String()
		if err != nil {
			return nil, nil, fmt.Errorf("decoding actionField: %w", err)
		}
		inst.ActionField = s
	}
	if err := decodePath(val, "params", &inst.Params); err != nil {
		return nil, nil, err
	}
	if err := decodePath(val, "playbook.outputVariables", &inst.Playbook.OutputVariables); err != nil {
		return nil, nil, err
	}

	inputs := val.LookupPath(cue.ParsePath("inputs"))
	outputs := val.LookupPath(cue.ParsePath("outputs"))
	if !inputs.Exists() && !outputs.Exists() {
		return build(&inst, nil)
	}
	var lf layoutFile
	if err := decodePath(val, "inputs", &lf.Inputs); err != nil {
		return nil, nil, err
	}
	if err := decodePath(val, "outputs", &lf.Outputs); err != nil {
		return nil, nil, err
	}
	return build(&inst, &lf)
}

// decodePath decodes the value at path into x. A missing path leaves x
// untouched.
func decodePath(val cue.Value, path string, x any) error {
	v := val.LookupPath(cue.ParsePath(path))
	if !v.Exists() {
		return nil
	}
	if err := v.Decode(x); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
