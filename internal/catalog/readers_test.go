package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const installJSON = `{
  "params": [
    {"name": "tc_action", "type": "Choice", "validValues": ["Create", "Update"], "required": true},
    {"name": "api_key", "type": "String", "serviceConfig": true},
    {"name": "include_tags", "type": "Boolean", "default": false},
    {"name": "owner", "type": "String", "hidden": true}
  ],
  "playbook": {
    "outputVariables": [
      {"name": "tc.id", "type": "String"},
      {"name": "tc.tags", "type": "StringArray"}
    ]
  }
}`

const layoutJSON = `{
  "inputs": [
    {"sequence": 2, "title": "Options", "parameters": [
      {"name": "include_tags", "display": "tc_action in ('Create')"}
    ]},
    {"sequence": 1, "title": "Action", "parameters": [
      {"name": "tc_action"}
    ]}
  ],
  "outputs": [
    {"name": "tc.tags", "display": "include_tags = true"}
  ]
}`

func assertSampleCatalog(t *testing.T, pc *ParameterCatalog, lc *LayoutCatalog) {
	t.Helper()
	require.NotNil(t, pc)
	assert.Equal(t, "tc_action", pc.ActionField())
	assert.Equal(t, []string{"tc_action", "api_key", "include_tags", "owner"}, pc.Names())

	action, ok := pc.Param("tc_action")
	require.True(t, ok)
	assert.Equal(t, TypeChoice, action.Type)
	assert.Equal(t, []string{"Create", "Update"}, action.ValidValues)
	assert.True(t, action.Required)

	owner, _ := pc.Param("owner")
	assert.True(t, owner.Hidden)
	key, _ := pc.Param("api_key")
	assert.True(t, key.ServiceConfig)

	require.Len(t, pc.Outputs(), 2)
	assert.Equal(t, "tc.tags", pc.Outputs()[1].Name)

	require.NotNil(t, lc)
	require.Len(t, lc.Fields(), 2)
	assert.Equal(t, "tc_action", lc.Fields()[0].Name, "sections sorted by sequence")
	assert.Equal(t, "include_tags", lc.Fields()[1].Name)
	d, _ := lc.FieldDisplay("include_tags")
	assert.Equal(t, "tc_action in ('Create')", d)
	d, _ = lc.OutputDisplay("tc.tags")
	assert.Equal(t, "include_tags = true", d)
}

func TestReadJSON(t *testing.T) {
	pc, lc, err := ReadJSON(strings.NewReader(installJSON), strings.NewReader(layoutJSON))
	require.NoError(t, err)
	assertSampleCatalog(t, pc, lc)

	p, _ := pc.Param("include_tags")
	assert.Equal(t, false, p.Default)
}

func TestReadJSON_NoLayout(t *testing.T) {
	pc, lc, err := ReadJSON(strings.NewReader(installJSON), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, pc.Len())
	assert.Nil(t, lc)
}

func TestReadJSON_Malformed(t *testing.T) {
	_, _, err := ReadJSON(strings.NewReader(`{"params": [`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding install.json")

	_, _, err = ReadJSON(strings.NewReader(installJSON), strings.NewReader(`[1,2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding layout.json")
}

func TestReadJSON_DuplicateParam(t *testing.T) {
	_, _, err := ReadJSON(strings.NewReader(`{"params":[{"name":"a","type":"String"},{"name":"a","type":"String"}]}`), nil)
	assert.True(t, errors.Is(err, ErrDuplicateName))
}

const installYAML = `
params:
  - name: tc_action
    type: Choice
    validValues: [Create, Update]
    required: true
  - name: api_key
    type: String
    serviceConfig: true
  - name: include_tags
    type: Boolean
  - name: owner
    type: String
    hidden: true
playbook:
  outputVariables:
    - {name: tc.id, type: String}
    - {name: tc.tags, type: StringArray}
`

const layoutYAML = `
inputs:
  - sequence: 2
    title: Options
    parameters:
      - name: include_tags
        display: "tc_action in ('Create')"
  - sequence: 1
    title: Action
    parameters:
      - name: tc_action
outputs:
  - name: tc.tags
    display: include_tags = true
`

func TestReadYAML(t *testing.T) {
	pc, lc, err := ReadYAML(strings.NewReader(installYAML), strings.NewReader(layoutYAML))
	require.NoError(t, err)
	assertSampleCatalog(t, pc, lc)
}

func TestReadYAML_Malformed(t *testing.T) {
	_, _, err := ReadYAML(strings.NewReader("params: [\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding install.yaml")
}

const appCUE = `
params: [
	{name: "tc_action", type: "Choice", validValues: ["Create", "Update"], required: true},
	{name: "api_key", type: "String", serviceConfig: true},
	{name: "include_tags", type: "Boolean"},
	{name: "owner", type: "String", hidden: true},
]
playbook: outputVariables: [
	{name: "tc.id", type: "String"},
	{name: "tc.tags", type: "StringArray"},
]
inputs: [
	{sequence: 2, title: "Options", parameters: [{name: "include_tags", display: "tc_action in ('Create')"}]},
	{sequence: 1, title: "Action", parameters: [{name: "tc_action"}]},
]
outputs: [{name: "tc.tags", display: "include_tags = true"}]
`

func TestParseCUE(t *testing.T) {
	pc, lc, err := ParseCUE([]byte(appCUE), "app.cue")
	require.NoError(t, err)
	assertSampleCatalog(t, pc, lc)
}

func TestParseCUE_ExplicitActionField(t *testing.T) {
	src := `
actionField: "mode"
params: [{name: "mode", type: "Choice", validValues: ["A"]}]
`
	pc, lc, err := ParseCUE([]byte(src), "app.cue")
	require.NoError(t, err)
	assert.Equal(t, "mode", pc.ActionField())
	assert.Nil(t, lc)
}

func TestParseCUE_Invalid(t *testing.T) {
	_, _, err := ParseCUE([]byte(`params: [`), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling bad.cue")
}

const appHCL = `
param "tc_action" {
  type         = "Choice"
  valid_values = ["Create", "Update"]
  required     = true
}

param "include_tags" {
  type    = "Boolean"
  default = true
  display = "tc_action in ('Create')"
}

param "owner" {
  type    = "String"
  hidden  = true
  display = "include_tags = true"
}

output "tc.id" {
  type = "String"
}

output "tc.tags" {
  type    = "StringArray"
  display = "include_tags = true"
}
`

func TestParseHCL(t *testing.T) {
	pc, lc, err := ParseHCL([]byte(appHCL), "app.hcl")
	require.NoError(t, err)

	assert.Equal(t, "tc_action", pc.ActionField())
	assert.Equal(t, []string{"tc_action", "include_tags", "owner"}, pc.Names())

	tags, _ := pc.Param("include_tags")
	assert.Equal(t, TypeBoolean, tags.Type)
	assert.Equal(t, true, tags.Default)
	owner, _ := pc.Param("owner")
	assert.True(t, owner.Hidden)

	require.Len(t, lc.Fields(), 3)
	d, _ := lc.FieldDisplay("owner")
	assert.Equal(t, "include_tags = true", d)
	d, _ = lc.OutputDisplay("tc.tags")
	assert.Equal(t, "include_tags = true", d)
	d, ok := lc.OutputDisplay("tc.id")
	assert.True(t, ok)
	assert.Empty(t, d)
}

func TestParseHCL_Invalid(t *testing.T) {
	_, _, err := ParseHCL([]byte(`param "x" {`), "bad.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file bad.hcl")

	_, _, err = ParseHCL([]byte(`param "x" {}`), "missing.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL file missing.hcl")
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadApp_Formats(t *testing.T) {
	tests := []struct {
		format string
		files  map[string]string
	}{
		{"json", map[string]string{"install.json": installJSON, "layout.json": layoutJSON}},
		{"yaml", map[string]string{"install.yaml": installYAML, "layout.yaml": layoutYAML}},
		{"cue", map[string]string{"app.cue": appCUE}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := writeFiles(t, tt.files)
			app, err := LoadApp(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.format, app.Format)
			assert.Equal(t, filepath.Base(dir), app.Name)
			assertSampleCatalog(t, app.Params, app.Layout)
		})
	}
}

func TestLoadApp_HCL(t *testing.T) {
	dir := writeFiles(t, map[string]string{"app.hcl": appHCL})
	app, err := LoadApp(dir)
	require.NoError(t, err)
	assert.Equal(t, "hcl", app.Format)
	assert.Equal(t, 3, app.Params.Len())
}

func TestLoadApp_FilePath(t *testing.T) {
	dir := writeFiles(t, map[string]string{"install.json": installJSON})
	app, err := LoadApp(filepath.Join(dir, "install.json"))
	require.NoError(t, err)
	assert.Equal(t, dir, app.Dir)
	assert.Nil(t, app.Layout)
}

func TestLoadApp_Errors(t *testing.T) {
	_, err := LoadApp(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	_, err = LoadApp(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoCatalog))

	dir := writeFiles(t, map[string]string{"notes.txt": "hi"})
	_, err = LoadApp(filepath.Join(dir, "notes.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported catalog file")
}

func TestLoadApp_LayoutPathResolvesInstall(t *testing.T) {
	tests := map[string]map[string]string{
		"layout.json": {"install.json": installJSON, "layout.json": layoutJSON},
		"layout.yaml": {"install.yml": installYAML, "layout.yaml": layoutYAML},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			dir := writeFiles(t, files)
			app, err := LoadApp(filepath.Join(dir, name))
			require.NoError(t, err)
			assertSampleCatalog(t, app.Params, app.Layout)
		})
	}
}

func TestLoadApp_RejectsOtherDataFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"layout.json":       layoutJSON,
		"permutations.json": `[{"index":0,"args":[]}]`,
	})

	_, err := LoadApp(filepath.Join(dir, "permutations.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported catalog file permutations.json: expected install.json or layout.json")

	_, err = LoadApp(filepath.Join(dir, "layout.json"))
	assert.True(t, errors.Is(err, ErrNoCatalog))
	assert.Contains(t, err.Error(), "no sibling install.json")
}
